package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/suhtechpvtltdbuisness-collab/leadGenerationToolBackend/internal/browser"
	"github.com/suhtechpvtltdbuisness-collab/leadGenerationToolBackend/internal/config"
	"github.com/suhtechpvtltdbuisness-collab/leadGenerationToolBackend/internal/leads"
	"github.com/suhtechpvtltdbuisness-collab/leadGenerationToolBackend/internal/listing"
	"github.com/suhtechpvtltdbuisness-collab/leadGenerationToolBackend/internal/server"
)

const shutdownTimeout = 30 * time.Second

func main() {
	envFile := flag.String("env", ".env", "Path to an optional .env file")
	port := flag.String("port", "", "Listen port (overrides PORT)")
	flag.Parse()

	if err := run(*envFile, *port); err != nil {
		fmt.Fprintf(os.Stderr, "leadgen: %v\n", err)
		os.Exit(1)
	}
}

func run(envFile, port string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	if port != "" {
		cfg.Port = port
	}
	log := newLogger(cfg, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store *leads.Store
	if cfg.StoreEnabled() {
		store, err = leads.Open(ctx, cfg.DBDriver, cfg.DSN())
		if err != nil {
			return fmt.Errorf("open lead store: %w", err)
		}
		defer store.Close()
		log.Info().Str("driver", cfg.DBDriver).Msg("Connected to lead store")
	} else {
		log.Warn().Msg("DB_DRIVER=none, /api/leads will answer 503")
	}

	launcher := browser.NewLauncher(browser.Options{
		Headless:          cfg.Headless,
		ExecPath:          cfg.ChromePath,
		UserAgent:         cfg.UserAgent,
		SearchBaseURL:     cfg.SearchBaseURL,
		NavigationTimeout: cfg.NavigationTimeout,
		ScrollStep:        cfg.ScrollStep,
	})
	opener := server.OpenerFunc(func(ctx context.Context) (server.Session, error) {
		sess, err := launcher.Open(ctx)
		if err != nil {
			return nil, err
		}
		return sess, nil
	})
	converger := &listing.Converger{
		SettleInterval:     cfg.SettleInterval,
		FirstResultTimeout: cfg.FirstResultTimeout,
		Timeout:            cfg.ConvergeTimeout,
		StallLimit:         listing.DefaultStallLimit,
	}

	srv := server.New(server.Options{
		DefaultLimit: cfg.DefaultLimit,
		MaxLimit:     cfg.MaxLimit,
		AllowOrigin:  cfg.AllowOrigin,
	}, log, opener, converger, store)

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", httpServer.Addr).Msg("Backend server listening")
		errc <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func newLogger(cfg config.Config, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	if cfg.LogFormat == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
