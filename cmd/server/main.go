package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	auditpkg "accessgate/internal/audit"
	audithandler "accessgate/internal/audit/handler"
	auditmetrics "accessgate/internal/audit/metrics"
	"accessgate/internal/platform/config"
	"accessgate/internal/platform/httpserver"
	"accessgate/internal/platform/logger"
	tokenhandler "accessgate/internal/token/handler"
	tokenmetrics "accessgate/internal/token/metrics"
	tokenservice "accessgate/internal/token/service"
	tokenstore "accessgate/internal/token/store"
	"accessgate/pkg/platform/crypto"
	adminmw "accessgate/pkg/platform/middleware/admin"
	"accessgate/pkg/platform/middleware/requestid"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal services packages.
func main() {
	log := logger.New()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if cfg.AdminToken == "" {
		log.Error("invalid configuration", "error", "GATE_ADMIN_TOKEN not set in environment")
		os.Exit(1)
	}

	sealer, err := crypto.New(cfg.EncryptionKey)
	if err != nil {
		log.Error("invalid encryption key", "error", err)
		os.Exit(1)
	}

	fileStore, err := tokenstore.NewFileStore(cfg.TokenStorePath, sealer, tokenstore.WithLogger(log))
	if err != nil {
		log.Error("token store init failed", "error", err)
		os.Exit(1)
	}

	journal, err := auditpkg.New(cfg.AuditLogPath, sealer,
		auditpkg.WithLogger(log),
		auditpkg.WithMetrics(auditmetrics.New()),
	)
	if err != nil {
		log.Error("audit log init failed", "error", err)
		os.Exit(1)
	}

	metrics := tokenmetrics.New()
	tokenSvc, err := tokenservice.New(fileStore,
		tokenservice.WithLogger(log),
		tokenservice.WithMetrics(metrics),
		tokenservice.WithAuditSink(journal),
	)
	if err != nil {
		log.Error("token service init failed", "error", err)
		os.Exit(1)
	}

	tokens := tokenhandler.New(tokenSvc, log)
	events := audithandler.New(journal, log)

	router := chi.NewRouter()
	router.Use(requestid.Assign)

	tokens.Register(router)
	events.Register(router)
	router.Group(func(r chi.Router) {
		r.Use(adminmw.RequireAdminToken(cfg.AdminToken, log))
		tokens.RegisterAdmin(r)
		events.RegisterAdmin(r)
	})

	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("starting access gate",
		"addr", cfg.Addr,
		"token_store", cfg.TokenStorePath,
		"audit_log", cfg.AuditLogPath,
	)

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("access gate stopped")
}
