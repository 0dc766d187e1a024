package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/steveyiyo/tutor-relay/internal/config"
	"github.com/steveyiyo/tutor-relay/internal/core/analysis"
	"github.com/steveyiyo/tutor-relay/internal/core/completion"
	"github.com/steveyiyo/tutor-relay/internal/core/session"
	"github.com/steveyiyo/tutor-relay/internal/core/tutor"
	h "github.com/steveyiyo/tutor-relay/internal/http"
	"github.com/steveyiyo/tutor-relay/internal/logging"
	"github.com/steveyiyo/tutor-relay/internal/observe"
	"github.com/steveyiyo/tutor-relay/internal/repo/memory"
	"github.com/steveyiyo/tutor-relay/internal/repo/sqlite"
	"github.com/steveyiyo/tutor-relay/pkg/ws"
)

const shutdownTimeout = 30 * time.Second

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:          "tutor-relay",
		Short:        "English speaking tutor relay",
		Long:         "Serves the tutor chat socket: analyzes each transcript, asks a chat model for feedback and replies.",
		Version:      version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), configPath)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", os.Getenv("TUTOR_CONFIG"), "YAML file overlaid on the environment")
	return cmd
}

func run(ctx context.Context, configPath string) error {
	_ = godotenv.Load()

	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.New(logging.Options{
		Production: cfg.Production(),
		Level:      cfg.LogLevel,
		File:       cfg.LogFile,
	})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	mp, shutdownMetrics, err := observe.InitProvider("tutor-relay", version)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	metrics, err := observe.NewMetrics(mp)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	backends, err := buildBackends(ctx, cfg)
	if err != nil {
		return err
	}
	client := completion.New(backends,
		completion.WithTimeout(cfg.RequestTimeout),
		completion.WithLogger(log.Named("completion")),
		completion.WithMetrics(metrics))

	var journal tutor.Journal
	if cfg.JournalPath != "" {
		j, err := sqlite.Open(cfg.JournalPath)
		if err != nil {
			return err
		}
		defer j.Close()
		journal = j
	}

	repo := memory.NewConnectionRepo()
	sessions := session.NewService(repo, log.Named("session"), metrics)
	hub := ws.NewHub()
	relay := tutor.New(tutor.Options{
		Analyzer:         analysis.NewHeuristic(log.Named("analysis")),
		Completer:        client,
		Sessions:         sessions,
		Journal:          journal,
		Logger:           log.Named("tutor"),
		Metrics:          metrics,
		MaxMessageLength: cfg.MaxMessageLength,
		MaxRetries:       cfg.MaxRetries,
		Verbose:          !cfg.Production(),
	})

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: h.NewRouter(h.Deps{
			Config:   cfg,
			Log:      log.Named("http"),
			Metrics:  metrics,
			Repo:     repo,
			Sessions: sessions,
			Hub:      hub,
			Relay:    relay,
			Version:  version,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("tutor relay started",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.Env),
			zap.Bool("completion_configured", client.Configured()),
			zap.Int("rate_limit_max", cfg.RateLimitMax),
			zap.Duration("rate_limit_window", cfg.RateLimitWindow))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		hub.CloseAll("server shutting down")
		err := srv.Shutdown(sctx)
		if merr := shutdownMetrics(sctx); merr != nil {
			log.Warn("metrics shutdown", zap.Error(merr))
		}
		return err
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped", zap.Error(err))
		return err
	}
	log.Info("graceful shutdown completed")
	return nil
}

// buildBackends returns the backends that have credentials. Prefix-bound
// backends come first; OpenRouter accepts any model and goes last.
func buildBackends(ctx context.Context, cfg config.Config) ([]completion.Backend, error) {
	var out []completion.Backend
	if cfg.GeminiKey != "" {
		g, err := completion.NewGemini(ctx, cfg.GeminiKey, cfg.RequestTimeout)
		if err != nil {
			return nil, fmt.Errorf("gemini client: %w", err)
		}
		out = append(out, g)
	}
	if a := completion.NewAnthropic(cfg.AnthropicKey, cfg.RequestTimeout); a != nil {
		out = append(out, a)
	}
	if o := completion.NewOpenRouter(completion.OpenRouterConfig{
		APIKey:  cfg.OpenRouterKey,
		BaseURL: cfg.OpenRouterURL,
		Referer: cfg.Referer(),
		Timeout: cfg.RequestTimeout,
	}); o != nil {
		out = append(out, o)
	}
	return out, nil
}
