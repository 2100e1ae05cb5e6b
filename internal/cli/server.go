package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"quiz-runner-service/internal/app"
	"quiz-runner-service/internal/config"
	"quiz-runner-service/internal/domain"
	"quiz-runner-service/internal/infra/memory"
	pgstore "quiz-runner-service/internal/infra/postgres"
	rediscache "quiz-runner-service/internal/infra/redis"
	"quiz-runner-service/internal/logging"
	transport "quiz-runner-service/internal/transport/http"
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
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	slog.SetDefault(slog.New(logging.NewColorHandler(os.Stdout, logging.ParseLevel(cfg.Log.Level))))

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
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var (
		source   rediscache.CatalogSource = memory.NewStaticCatalog(sampleContents())
		results  app.ResultStore          = memory.NewResultStore()
		sessions app.SessionDirectory
		students app.StudentStore
	)
	if pool != nil {
		source = pgstore.NewCatalogLoader(pool)
		results = pgstore.NewResultStore(pool)
		store := pgstore.NewSessionStore(pool)
		sessions = store
		students = store
	} else {
		directory := memory.NewSessionDirectory(nil)
		directory.Put(domain.SessionInfo{
			ID:        "demo",
			Name:      "Demo session",
			ContentID: "content-1",
		})
		sessions = directory
		students = memory.NewStudentStore()
	}

	catalogTTL := config.TTLDuration(cfg.Catalog.TTL, 10*time.Minute)
	var catalog app.CatalogLoader
	if redisClient != nil {
		catalog = rediscache.NewCatalogCache(redisClient, source, catalogTTL)
	} else {
		catalog = memory.NewCachedCatalog(source, catalogTTL)
	}

	service := app.NewQuizService(catalog, results, sessions, students)
	wsHandler := transport.NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		slog.Info("starting quiz runner", "port", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		slog.Info("shutting down server")
	case <-ctx.Done():
		slog.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleContents provides a minimal catalog for running without Postgres.
func sampleContents() map[string][]domain.Question {
	return map[string][]domain.Question{
		"content-1": {
			{
				ID:            "q1",
				Prompt:        "Which vitamin does sunlight help the body produce?",
				Options:       []string{"Vitamin A", "Vitamin D", "Vitamin C", "Vitamin K"},
				CorrectOption: 1,
				Seq:           0,
			},
			{
				ID:            "q2",
				Prompt:        "How many chambers does the human heart have?",
				Options:       []string{"Two", "Four", "Three", "Five"},
				CorrectOption: 1,
				Seq:           1,
			},
		},
	}
}
