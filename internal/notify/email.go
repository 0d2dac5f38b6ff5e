package notify

import (
	"arbitrage/pkg/domain"
	"arbitrage/pkg/logger"
	"arbitrage/pkg/money"
	"bytes"
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("arbitrage/internal/notify") //nolint: gochecknoglobals

// SMTPOptions configures the mail server and the digest recipients.
type SMTPOptions struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
	// Timeout bounds one delivery attempt. Defaults to DefaultSendTimeout.
	Timeout time.Duration
}

// SendFunc delivers a prepared message. It matches (*email.Email).Send.
type SendFunc func(e *email.Email, addr string, auth smtp.Auth) error

// EmailNotifier sends the deal digest as a plain text and HTML e-mail.
type EmailNotifier struct {
	opts SMTPOptions
	send SendFunc
}

// NewEmailNotifier creates an EmailNotifier. A nil send delivers over SMTP
// bounded by opts.Timeout.
func NewEmailNotifier(opts SMTPOptions, send SendFunc) *EmailNotifier {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultSendTimeout
	}
	if send == nil {
		send = DeadlineSend(opts.Timeout)
	}
	if opts.From == "" {
		opts.From = opts.Username
	}

	return &EmailNotifier{opts: opts, send: send}
}

// Notify implements Notifier. Nothing is sent when no deal meets the threshold.
func (n *EmailNotifier) Notify(ctx context.Context, result *domain.ScanResult) domain.NotificationResult {
	ctx, span := tracer.Start(ctx, "notify:email")
	defer span.End()

	deals := result.Filtered()
	span.SetAttributes(attribute.Int("deals", len(deals)))
	if len(deals) == 0 {
		return domain.NotificationResult{
			Success: false,
			Message: fmt.Sprintf("Keine Deals mit ROI ≥ %s%% gefunden, keine E-Mail gesendet", result.MinROI.String()),
		}
	}

	mail, err := n.compose(result, deals)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to render email")

		return domain.NotificationResult{Message: fmt.Sprintf("could not render email: %s", err), FilteredCount: len(deals)}
	}

	addr := fmt.Sprintf("%s:%d", n.opts.Host, n.opts.Port)
	var auth smtp.Auth
	if n.opts.Username != "" {
		auth = smtp.PlainAuth("", n.opts.Username, n.opts.Password, n.opts.Host)
	}

	err = n.deliver(ctx, mail, addr, auth)
	if err != nil && auth != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = n.deliver(ctx, mail, addr, nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send email")
		logger.Warn(ctx, "could not send deal digest", zap.Error(err))

		return domain.NotificationResult{Message: fmt.Sprintf("could not send email: %s", err), FilteredCount: len(deals)}
	}

	logger.Info(ctx, "sent deal digest", zap.Int("deals", len(deals)), zap.Strings("to", n.opts.To))

	return domain.NotificationResult{
		Success:       true,
		Message:       fmt.Sprintf("E-Mail an %s gesendet", strings.Join(n.opts.To, ", ")),
		FilteredCount: len(deals),
	}
}

// deliver runs one send and gives up when ctx is done or the send timeout
// passes, whichever comes first. An abandoned send finishes in the background.
func (n *EmailNotifier) deliver(ctx context.Context, mail *email.Email, addr string, auth smtp.Auth) error {
	ctx, cancel := context.WithTimeout(ctx, n.opts.Timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- n.send(mail, addr, auth) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("smtp send to %s aborted: %w", addr, ctx.Err())
	}
}

func (n *EmailNotifier) compose(result *domain.ScanResult, deals []domain.ArbitrageDeal) (*email.Email, error) {
	view := newDigest(result, deals)

	var text, html bytes.Buffer
	if err := textTemplate.Execute(&text, view); err != nil {
		return nil, fmt.Errorf("could not render text body: %w", err)
	}
	if err := htmlTemplate.Execute(&html, view); err != nil {
		return nil, fmt.Errorf("could not render html body: %w", err)
	}

	mail := email.NewEmail()
	mail.From = fmt.Sprintf("Arbitrage Scanner <%s>", n.opts.From)
	mail.To = n.opts.To
	mail.Subject = view.Subject
	mail.Text = text.Bytes()
	mail.HTML = html.Bytes()

	return mail, nil
}

type digestRow struct {
	Title    string
	Category string
	Price    string
	Market   string
	Profit   string
	ROI      string
	URL      string
}

type digest struct {
	Subject string
	Time    string
	MinROI  string
	Rows    []digestRow
}

func newDigest(result *domain.ScanResult, deals []domain.ArbitrageDeal) digest {
	d := digest{
		Subject: fmt.Sprintf("%d Arbitrage-Deals mit ROI ≥ %s%%", len(deals), result.MinROI.String()),
		Time:    result.StartedAt.Format(time.DateTime),
		MinROI:  result.MinROI.String(),
		Rows:    make([]digestRow, 0, len(deals)),
	}
	for _, deal := range deals {
		d.Rows = append(d.Rows, digestRow{
			Title:    deal.Listing.Title,
			Category: deal.Category,
			Price:    money.Format(deal.Listing.Price),
			Market:   money.Format(deal.EstimatedMarketValue),
			Profit:   money.Format(deal.ProfitAfterFees),
			ROI:      deal.ROI.StringFixed(1) + " %",
			URL:      deal.Listing.URL,
		})
	}

	return d
}
