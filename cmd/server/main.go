package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	emailPkg "carevia/internal/adapters/email"
	web "carevia/internal/adapters/http"
	"carevia/internal/bootstrap"
	"carevia/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	configPath := flag.String("config", os.Getenv("CAREVIA_CONFIG"), "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	slog.SetDefault(config.NewLogger(cfg.Logging, os.Stderr))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := bootstrap.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to open %s backend: %v", cfg.Backend, err)
	}
	defer backend.Close()

	// Configure email sender
	var sender emailPkg.Sender
	if cfg.Email.ResendKey != "" {
		sender = emailPkg.NewResendSender(cfg.Email.ResendKey, cfg.Email.From)
		slog.Info("config_event", "event", "email_sender", "sender", "resend", "recipients", len(cfg.Email.NotifyTo))
	} else {
		sender = emailPkg.NewNoopSender()
		if cfg.IsProduction() {
			slog.Warn("config_event", "event", "email_disabled", "detail", "CAREVIA_RESEND_KEY is not set")
		} else {
			slog.Info("config_event", "event", "email_sender", "sender", "noop")
		}
	}

	handler, err := web.NewRouter(ctx, web.Deps{
		Gallery:            backend.Gallery,
		Stories:            backend.Stories,
		Contacts:           backend.Contacts,
		Verifier:           backend.Verifier,
		Email:              sender,
		NotifyTo:           cfg.Email.NotifyTo,
		MediaDir:           backend.MediaDir,
		MaxUploadBytes:     cfg.Media.MaxBytes,
		CSRFKey:            []byte(cfg.Server.CSRFKey),
		SecureCookies:      cfg.Server.SecureCookies,
		TrustedOrigins:     cfg.Server.TrustedOrigins,
		RateLimitPerSecond: cfg.Server.RateLimitPerSecond,
		SlowRequestMs:      cfg.Server.SlowRequestMs,
		GenerateID:         bootstrap.NewID,
		Now:                time.Now,
	})
	if err != nil {
		log.Fatalf("failed to build router: %v", err)
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server_event", "event", "shutdown_failed", "error", err)
		}
	}()

	slog.Info("server_event", "event", "starting", "version", version, "addr", cfg.Server.Addr,
		"env", cfg.Server.Env, "backend", cfg.Backend, "media", cfg.Media.Store)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server_event", "event", "failed", "error", err)
		os.Exit(1)
	}
	slog.Info("server_event", "event", "stopped")
}
