package cli

import (
	"context"
	"database/sql"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"quizlive/internal/app"
	"quizlive/internal/catalog"
	"quizlive/internal/config"
	"quizlive/internal/infra/memory"
	pgstore "quizlive/internal/infra/postgres"
	redisstore "quizlive/internal/infra/redis"
	transport "quizlive/internal/transport/http"
	"quizlive/internal/ws"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the live-quiz server",
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
	redisTTL := config.Duration(cfg.Redis.TTL, 10*time.Minute)

	var store app.Store = memory.NewStore()
	var persister app.CatalogPersister
	cat := catalog.New()

	if cfg.Postgres.URL != "" {
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
		db := bun.NewDB(sqldb, pgdialect.New())
		defer db.Close()
		store = pgstore.NewStore(db)

		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		loader := pgstore.NewCatalogLoader(pool)
		persister = loader

		questions, err := loader.LoadQuestions(ctx)
		if err != nil {
			return err
		}
		if added := cat.PutAll(questions); added > 0 {
			log.Printf("loaded %d catalog questions from postgres", added)
		}
	}
	if cat.Empty() {
		cat.PutAll(catalog.Seed())
		log.Printf("catalog empty, loaded built-in demo set (%d questions)", cat.Len())
	}

	if redisClient != nil {
		store = redisstore.NewServedCache(store, redisClient, redisTTL)
	}

	hub := ws.NewHub()
	selector := catalog.NewSelector(cat, rand.New(rand.NewSource(time.Now().UnixNano())))
	countdown := config.Duration(cfg.Quiz.Countdown, 5*time.Second)
	service := app.NewLiveService(store, cat, selector, hub, countdown)
	if persister != nil {
		service.SetCatalogPersister(persister)
	}

	mux := http.NewServeMux()
	transport.NewHandler(service).Register(mux)
	transport.NewWSHandler(hub).Register(mux)

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     mux,
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: it would sever long-lived websocket connections.
	}

	go func() {
		log.Printf("starting quizlive on :%s", finalPort)
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
