// Package notify delivers the deal digest of a finished scan run.
package notify

import (
	"arbitrage/pkg/domain"
	"context"
)

//go:generate mockgen -package mocknotify -source=notify.go -destination=mock/mocknotify.go *
type Notifier interface {
	// Notify reports the run's filtered deals. Delivery failures are part of
	// the returned result and never an error of the run.
	Notify(ctx context.Context, result *domain.ScanResult) domain.NotificationResult
}

// NopNotifier is used when no notification channel is configured.
type NopNotifier struct{}

// Notify implements Notifier.
func (NopNotifier) Notify(_ context.Context, result *domain.ScanResult) domain.NotificationResult {
	return domain.NotificationResult{
		Success:       false,
		Message:       "email not configured",
		FilteredCount: len(result.Filtered()),
	}
}
