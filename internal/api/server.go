// Package api serves the scan API together with its documentation,
// Prometheus metrics, profiling endpoints and the optional job dashboard.
package api

import (
	"arbitrage/internal/api/handler/v1handler"
	"arbitrage/internal/config"
	"arbitrage/pkg/controller"
	"arbitrage/pkg/metrics"
	_ "embed"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggest/swgui/v5emb"
)

//go:embed specs/v1.yaml
var v1Spec []byte

const (
	// RiverUIPrefix is the path the job queue dashboard is mounted under.
	RiverUIPrefix = "/riverui"

	specPath = "/specs/v1.yaml"
	docsPath = "/v1/docs/"

	timeoutBody = `{"code":"TIMEOUT","message":"request timed out"}`
)

// Options configure the HTTP server. Zero durations leave the net/http
// defaults in place.
type Options struct {
	// SecHandlerOptions enables bearer authentication of the v1 routes.
	SecHandlerOptions *v1handler.SecHandlerOptions
	CORS              controller.CORSOptions

	Addr              string
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	// RequestTimeout bounds each request through http.TimeoutHandler.
	RequestTimeout time.Duration
	MaxHeaderBytes int
	// MetricsPath serves the Prometheus registry.
	MetricsPath string
}

// NewOptions maps the http and jwt sections of cfg.
func NewOptions(cfg *config.Config) Options {
	h := cfg.HTTP

	return Options{
		SecHandlerOptions: v1handler.NewSecHandlerOptions(cfg),
		CORS:              controller.CORSOptions{AllowedOrigins: h.AllowedOrigins},
		Addr:              h.Addr,
		ReadTimeout:       h.ReadTimeout,
		ReadHeaderTimeout: h.ReadHeaderTimeout,
		WriteTimeout:      h.WriteTimeout,
		IdleTimeout:       h.IdleTimeout,
		RequestTimeout:    h.RequestTimeout,
		MaxHeaderBytes:    h.MaxHeaderBytes,
		MetricsPath:       h.MetricsPath,
	}
}

// Deps are the collaborators of the server.
type Deps struct {
	v1handler.Deps

	// Metrics records per-route request metrics. Optional.
	Metrics *metrics.Metrics
	// RiverUI is mounted under RiverUIPrefix when set.
	RiverUI http.Handler
}

// NewServer builds the server. Every route passes through the CORS and access
// log middlewares and is bounded by the request timeout.
func NewServer(deps Deps, opts Options) (*http.Server, error) {
	mux := http.NewServeMux()

	if err := mountAPI(mux, deps.Deps, opts.SecHandlerOptions); err != nil {
		return nil, err
	}
	mountDocs(mux)
	mountOps(mux, deps, opts.MetricsPath)

	handler := controller.WithLogger(deps.Metrics)(controller.WithCORS(opts.CORS)(mux))
	if opts.RequestTimeout > 0 {
		handler = http.TimeoutHandler(handler, opts.RequestTimeout, timeoutBody)
	}

	return &http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadTimeout:       opts.ReadTimeout,
		ReadHeaderTimeout: opts.ReadHeaderTimeout,
		WriteTimeout:      opts.WriteTimeout,
		IdleTimeout:       opts.IdleTimeout,
		MaxHeaderBytes:    opts.MaxHeaderBytes,
	}, nil
}

func mountAPI(mux *http.ServeMux, deps v1handler.Deps, secOpts *v1handler.SecHandlerOptions) error {
	sec, err := v1handler.NewSecHandler(secOpts)
	if err != nil {
		return fmt.Errorf("could not create sec handler: %w", err)
	}

	var auth controller.Authenticator
	if sec.Enabled() {
		auth = sec.Authenticate
	}

	h := v1handler.New(deps)
	h.Register(mux, controller.WithBearerAuth(auth, h.WriteError))

	return nil
}

// mountDocs serves the OpenAPI document and a Swagger UI reading it.
func mountDocs(mux *http.ServeMux) {
	mux.HandleFunc("GET "+specPath, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(v1Spec)
	})
	mux.Handle(docsPath, v5emb.New("Arbitrage Scanner", specPath, docsPath))
}

func mountOps(mux *http.ServeMux, deps Deps, metricsPath string) {
	if metricsPath != "" {
		mux.Handle(metricsPath, promhttp.Handler())
	}
	mux.Handle("/debug/pprof/", controller.PprofMux())
	if deps.RiverUI != nil {
		mux.Handle(RiverUIPrefix+"/", deps.RiverUI)
	}
}
