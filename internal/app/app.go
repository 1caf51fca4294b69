package app

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/bmaxtar/storefront/internal/health"
	"github.com/bmaxtar/storefront/internal/service/checkout"
	"github.com/bmaxtar/storefront/web"
)

const shutdownTimeout = 5 * time.Second

// Run поднимает HTTP-сервер витрины и, если настроена Kafka,
// фоновый outbox relay. Блокируется до отмены ctx.
func Run(ctx context.Context, cfg Config) error {
	deps, err := NewDependencies(ctx, cfg)
	if err != nil {
		return err
	}
	defer deps.Close()

	logger := log.WithField("component", "app")

	router, err := NewRouter(deps)
	if err != nil {
		return err
	}

	if publisher := deps.Publisher(cfg.KafkaTopic); publisher != nil {
		relay := checkout.NewRelay(deps.Outbox, publisher,
			checkout.WithMetrics(deps.Metrics),
			checkout.WithPollInterval(cfg.OutboxPollInterval),
			checkout.WithBatchSize(cfg.OutboxBatchSize),
			checkout.WithMaxAttempts(cfg.OutboxMaxAttempts),
			checkout.WithRetryBaseDelay(cfg.OutboxRetryDelay),
		)
		go relay.Run(ctx)
		logger.WithField("topic", cfg.KafkaTopic).Info("outbox relay started")
	} else {
		logger.Info("kafka is not configured, outbox relay disabled")
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", cfg.HTTPAddr).Info("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	logger.Info("http server stopped")

	return nil
}

// NewRouter собирает chi-маршрутизатор витрины.
func NewRouter(deps *Dependencies) (http.Handler, error) {
	hello, err := template.ParseFS(web.Templates, "hello.html")
	if err != nil {
		return nil, fmt.Errorf("parse hello template: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/", helloHandler(hello))
	r.Get("/healthz", deps.Health.ServeHTTP)
	r.Get("/readyz", deps.Health.ReadinessHandler)
	r.Get("/livez", health.LivenessHandler)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r, nil
}

func helloHandler(tmpl *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("name")
		if name == "" {
			name = "guest"
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := tmpl.Execute(w, struct{ Name string }{Name: name}); err != nil {
			log.WithError(err).Error("failed to render hello page")
		}
	}
}
