package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"quizcraft/internal/app"
	"quizcraft/internal/config"
	"quizcraft/internal/domain"
	"quizcraft/internal/generator"
	"quizcraft/internal/infra/memory"
	pgstore "quizcraft/internal/infra/postgres"
	redisinfra "quizcraft/internal/infra/redis"
	"quizcraft/internal/session"
	transport "quizcraft/internal/transport/http"
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

	var quizzes app.QuizStore = memory.NewQuizStore()
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		quizzes = pgstore.NewQuizStore(pool)
	}
	if redisClient != nil {
		cacheTTL := config.TTLDuration(cfg.Quiz.CacheTTL, 10*time.Minute)
		quizzes = redisinfra.NewQuizCache(redisClient, quizzes, cacheTTL)
	}

	var sessions app.SessionRepository = memory.NewSessionStore()
	if redisClient != nil {
		livenessTTL := config.TTLDuration(cfg.Session.LivenessTTL, 30*time.Minute)
		sessions = redisinfra.NewSessionStore(redisClient, livenessTTL)
	}

	var source generator.Source
	if cfg.OpenAI.APIKey != "" {
		source = generator.NewOpenAISource(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	} else {
		log.Printf("no OpenAI key configured, serving sample questions")
		source = generator.NewStaticSource(sampleQuestions())
	}

	sessionCfg := session.DefaultConfig()
	if cfg.Session.CountdownSeconds > 0 {
		sessionCfg.CountdownTicks = cfg.Session.CountdownSeconds
	}
	sessionCfg.TickInterval = config.TTLDuration(cfg.Session.TickInterval, time.Second)
	if cfg.Session.PassThreshold > 0 {
		sessionCfg.PassThreshold = cfg.Session.PassThreshold
	}

	service := app.NewService(quizzes, sessions, source, sessionCfg)
	restHandler := transport.NewHandler(service, cfg.Quiz.DefaultQuestions)
	wsHandler := transport.NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	restHandler.Register(mux)
	mux.HandleFunc("/ws/play", wsHandler.ServePlay)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quizcraft on :%s", finalPort)
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

// sampleQuestions keeps the server usable without an LLM key.
func sampleQuestions() []domain.Question {
	return []domain.Question{
		{
			Prompt:        "What is 2 + 2?",
			Options:       []string{"3", "4", "5", "22"},
			CorrectAnswer: "4",
		},
		{
			Prompt:        "Which planet is known as the Red Planet?",
			Options:       []string{"Venus", "Mars", "Jupiter", "Mercury"},
			CorrectAnswer: "Mars",
		},
		{
			Prompt:        "What is the capital of France?",
			Options:       []string{"Lyon", "Marseille", "Paris", "Nice"},
			CorrectAnswer: "Paris",
		},
		{
			Prompt:        "Which keyword starts a goroutine?",
			Options:       []string{"go", "run", "spawn", "async"},
			CorrectAnswer: "go",
		},
		{
			Prompt:        "How many options does every question here have?",
			Options:       []string{"two", "three", "four", "five"},
			CorrectAnswer: "four",
		},
	}
}
