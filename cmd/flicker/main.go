package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/alphabot-ai/flicker/internal/api"
	"github.com/alphabot-ai/flicker/internal/blobstore"
	"github.com/alphabot-ai/flicker/internal/config"
	"github.com/alphabot-ai/flicker/internal/events"
	"github.com/alphabot-ai/flicker/internal/identity"
	"github.com/alphabot-ai/flicker/internal/logging"
	"github.com/alphabot-ai/flicker/internal/metrics"
	"github.com/alphabot-ai/flicker/internal/reaper"
	"github.com/alphabot-ai/flicker/internal/service"
	"github.com/alphabot-ai/flicker/internal/store"
)

const buildVersion = "0.1.0"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "flicker",
		Short: "Ephemeral content core: posts, comments, votes, follows, and the nightly reaper",
	}
	root.AddCommand(serveCmd(), reapCmd(), migrateCmd(), versionCmd())
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(buildVersion)
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			return store.Migrate(cfg.DatabaseURL)
		},
	}
}

func reapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reap",
		Short: "Run a single reaper sweep and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			log, err := logging.New(cfg.Env == "development")
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer log.Sync()

			ctx := cmd.Context()
			st, ev, cleanup, err := wireBackends(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer cleanup()

			r := reaper.New(st, ev, log)
			summary := r.Run(ctx, time.Now().UTC())
			if len(summary.Errors) > 0 {
				return fmt.Errorf("reap sweep completed with %d errors", len(summary.Errors))
			}
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

// wireBackends constructs the Store and EventPublisher shared by serve and
// reap, returning a cleanup func that closes both.
func wireBackends(ctx context.Context, cfg *config.Config, log *zap.Logger) (*store.Store, events.Publisher, func(), error) {
	st, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect store: %w", err)
	}

	var ev events.Publisher
	if cfg.RabbitMQURL != "" {
		ev, err = events.NewRabbit(cfg.RabbitMQURL, cfg.EventsExchange)
		if err != nil {
			st.Close()
			return nil, nil, nil, fmt.Errorf("connect event broker: %w", err)
		}
	} else {
		ev = events.NewNoop()
		log.Info("RABBITMQ_URL unset, domain events are dropped")
	}

	cleanup := func() {
		_ = ev.Close()
		st.Close()
	}
	return st, ev, cleanup, nil
}

func serve(ctx context.Context) error {
	cfg := config.Load()
	log, err := logging.New(cfg.Env == "development")
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	metrics.MustRegister()

	st, ev, cleanup, err := wireBackends(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	blobs, err := blobstore.NewLocalDisk(cfg.BlobStoreDir, cfg.BlobBaseURL)
	if err != nil {
		return fmt.Errorf("init blob store: %w", err)
	}

	if cfg.JWTSecret == "" {
		log.Warn("JWT_SECRET is unset, bearer tokens cannot be verified")
	}
	resolver := identity.NewJWTResolver(cfg.JWTSecret, st, cfg.IdentityCacheSize, cfg.IdentityCacheTTL)

	posts := service.NewPostService(st, blobs, ev, cfg.MaxMediaBytes)
	comments := service.NewCommentService(st, ev)
	follows := service.NewFollowService(st, ev)
	feed := service.NewFeedService(st)

	handler := api.NewHandler(cfg, log, st, resolver, posts, comments, follows, feed)
	router := api.NewRouter(handler)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if cfg.ReapInterval > 0 {
		r := reaper.New(st, ev, log)
		reapCtx, cancelReap := context.WithCancel(ctx)
		defer cancelReap()
		go r.RunForever(reapCtx, cfg.ReapInterval)
	}

	go func() {
		log.Info("listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
	return nil
}
