package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"acadtutor/internal/app"
	"acadtutor/internal/config"
	"acadtutor/internal/engine"
	"acadtutor/internal/infra/memory"
	"acadtutor/internal/infra/postgres"
	infraredis "acadtutor/internal/infra/redis"
	"acadtutor/internal/infra/sqlite"
	"acadtutor/internal/llm"
	"acadtutor/internal/remote"
	transport "acadtutor/internal/transport/http"
	"github.com/common-nighthawk/go-figure"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	closeLog := setupLogging(cfg)
	defer closeLog()
	printBanner(os.Stdout)

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 2*time.Hour)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	store, closeStore, err := openStore(ctx, cfg, redisClient, pool)
	if err != nil {
		return err
	}
	defer closeStore()

	var loader memory.CatalogLoader = memory.NewStaticCatalogLoader(engine.SeedCatalog())
	if pool != nil {
		loader = memory.LayeredCatalogLoader{loader, postgres.NewCatalogLoader(pool)}
	}

	catalogTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var banks app.BankRepository
	if redisClient != nil {
		banks = infraredis.NewCatalogRepository(redisClient, loader, catalogTTL)
	} else {
		banks = memory.NewCatalogRepository(loader, catalogTTL)
	}

	var sessions app.SessionRepository
	if redisClient != nil {
		sessions = infraredis.NewSessionStore(redisClient, redisTTL)
	} else {
		sessions = memory.NewSessionStore()
	}

	llmCfg := cfg.LLMConfig()
	opts := []app.Option{app.WithRemoteTimeout(llmCfg.Timeout)}
	if cfg.Quiz.HistoryCap > 0 {
		opts = append(opts, app.WithHistoryCap(cfg.Quiz.HistoryCap))
	}
	provider, err := llm.NewProvider(ctx, llmCfg)
	if err != nil {
		log.Printf("remote AI disabled, serving local fallbacks only: %v", err)
	} else {
		opts = append(opts, app.WithRemote(
			remote.NewQuizClient(provider),
			remote.NewAssessor(provider, banks),
			remote.NewExplainer(provider),
		))
		log.Printf("remote AI enabled: provider=%s model=%s", llmCfg.Provider, provider.ModelID())
	}

	service := app.NewQuizService(sessions, store, banks, opts...)
	router := transport.NewRouter(service, transport.RouterOptions{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RequestTimeout: config.TTLDuration(cfg.Server.RequestTimeout, 60*time.Second),
	})

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
	}

	go func() {
		log.Printf("starting acadtutor on :%s (storage=%s)", finalPort, cfg.StorageBackend())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// openStore picks the progress backend named by the config.
func openStore(ctx context.Context, cfg config.Config, redisClient *redis.Client, pool *pgxpool.Pool) (app.Store, func(), error) {
	noop := func() {}
	switch backend := cfg.StorageBackend(); backend {
	case "memory":
		return memory.NewStore(), noop, nil
	case "redis":
		if redisClient == nil {
			return nil, noop, fmt.Errorf("storage backend redis requires redis.addr")
		}
		return infraredis.NewStore(redisClient, 0), noop, nil
	case "postgres":
		if pool == nil {
			return nil, noop, fmt.Errorf("storage backend postgres requires postgres.url")
		}
		return postgres.NewStore(pool), noop, nil
	case "sqlite":
		s, err := sqlite.Open(ctx, cfg.SQLite.DSN)
		if err != nil {
			return nil, noop, err
		}
		return s, func() { s.Close() }, nil
	default:
		return nil, noop, fmt.Errorf("unknown storage backend %q", backend)
	}
}

// setupLogging tees the standard logger into a rotating file when one is configured.
func setupLogging(cfg config.Config) func() {
	if cfg.Logging.File == "" {
		return func() {}
	}
	rotator := &lumberjack.Logger{
		Filename:   cfg.Logging.File,
		MaxSize:    orDefault(cfg.Logging.MaxSizeMB, 50),
		MaxBackups: orDefault(cfg.Logging.MaxBackups, 5),
		MaxAge:     orDefault(cfg.Logging.MaxAgeDays, 28),
		Compress:   true,
	}
	log.SetOutput(io.MultiWriter(os.Stderr, rotator))
	return func() {
		log.SetOutput(os.Stderr)
		rotator.Close()
	}
}

func printBanner(w io.Writer) {
	fmt.Fprintln(w, figure.NewFigure("AcadTutor", "", true).String())
	fmt.Fprintln(w, "======================================================")
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
