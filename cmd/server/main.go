package main

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/brightlight720720/ILD/internal/agent"
	"github.com/brightlight720720/ILD/internal/analysis"
	"github.com/brightlight720720/ILD/internal/config"
	"github.com/brightlight720720/ILD/internal/knowledge"
	"github.com/brightlight720720/ILD/internal/llm"
	"github.com/brightlight720720/ILD/internal/meeting"
	"github.com/brightlight720720/ILD/internal/platform/telegram"
	"github.com/brightlight720720/ILD/internal/report"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	cfg := config.Load()

	// 1. Infrastructure
	var db *sql.DB
	for i := 0; i < 10; i++ {
		db, err = sql.Open("postgres", cfg.DatabaseURL)
		if err == nil {
			err = db.Ping()
		}
		if err == nil {
			break
		}
		sugar.Infow("waiting for database", "attempt", i+1)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		sugar.Fatalw("could not connect to database", "error", err)
	}
	sugar.Info("connected to database")

	m, err := migrate.New("file://"+cfg.MigrationsPath, cfg.DatabaseURL)
	if err != nil {
		sugar.Fatalw("migration init failed", "error", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		sugar.Fatalw("migration up failed", "error", err)
	}
	sugar.Info("migrations applied")

	// 2. Clients
	backend := llm.NewHTTPClient(llm.Config{
		BaseURL:     cfg.BackendBaseURL,
		APIKey:      cfg.BackendAPIKey,
		Model:       cfg.BackendModel,
		Temperature: cfg.BackendTemperature,
		Timeout:     cfg.BackendTimeout,
	})
	kb := knowledge.NewLiteratureBase()

	roster := agent.DefaultRoster()
	if cfg.RosterFile != "" {
		roster, err = config.LoadRoster(cfg.RosterFile)
		if err != nil {
			sugar.Fatalw("invalid roster file", "error", err)
		}
		sugar.Infow("roster loaded from file", "path", cfg.RosterFile, "roles", len(roster))
	}

	engine, err := meeting.NewEngine(backend, agent.CoordinatorRole(), roster, kb, sugar)
	if err != nil {
		sugar.Fatalw("engine construction failed", "error", err)
	}

	// 3. Services
	repo := analysis.NewRepository(db)

	var reporter analysis.ReportDispatcher
	if cfg.TelegramToken != "" && cfg.PhysicianChatID != 0 {
		reporter = report.NewService(telegram.NewClient(cfg.TelegramToken), cfg.PhysicianChatID)
	} else {
		sugar.Info("telegram reporting disabled; set TELEGRAM_BOT_TOKEN and PHYSICIAN_CHAT_ID to enable it")
	}

	svc := analysis.NewService(engine, repo, reporter, sugar, cfg.MaxConcurrentMeetings)
	handler := analysis.NewHandler(svc)

	// 4. Router
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS for the frontend
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")
			if r.Method == "OPTIONS" {
				return
			}
			next.ServeHTTP(w, r)
		})
	})

	r.Route("/api", func(r chi.Router) {
		analysis.RegisterRoutes(r, handler)
	})

	sugar.Infow("server starting", "port", cfg.Port, "model", cfg.BackendModel)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		sugar.Fatalw("server stopped", "error", err)
	}
}
