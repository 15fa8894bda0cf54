package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/classgate/classgate/internal/config"
	"github.com/classgate/classgate/internal/handlers"
	"github.com/classgate/classgate/internal/logger"
	"github.com/classgate/classgate/internal/middlewares"
	"github.com/classgate/classgate/internal/password"
	"github.com/classgate/classgate/internal/repositories"
	"github.com/classgate/classgate/internal/services"
	"github.com/classgate/classgate/internal/sessions"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting classgate auth gateway")

	// Pick the account store: MySQL when configured, embedded otherwise
	var accountRepo services.AccountRepository
	if cfg.DatabaseURL != "" {
		db, err := connectDB(cfg.DatabaseURL)
		if err != nil {
			logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		if err := runMigrations(db); err != nil {
			logger.Logger.Fatal("Failed to run migrations", zap.Error(err))
		}

		accountRepo = repositories.NewAccountRepository(db, logger.Logger)
		logger.Logger.Info("Using MySQL account store")
	} else {
		accountRepo = repositories.NewMemoryAccountRepository()
		logger.Logger.Info("Using embedded account store")
	}

	// Pick the session store: Redis when configured, in-process otherwise
	var sessionStore sessions.Store
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			logger.Logger.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer client.Close()

		sessionStore = sessions.NewRedisStore(client, cfg.Session.TTL)
		logger.Logger.Info("Using redis session store", zap.String("addr", cfg.Redis.Addr))
	} else {
		sessionStore = sessions.NewMemoryStore(cfg.Session.TTL)
		logger.Logger.Info("Using in-memory session store")
	}

	// Initialize session manager with the injected signing secret
	sessionCodec := sessions.NewCookieCodec(cfg.Session.Secret, cfg.Session.TTL)
	sessionManager := sessions.NewManager(sessionCodec, sessionStore, cfg.Session.TTL, cfg.Session.SecureCookie, logger.Logger)

	// Initialize services
	hasher := password.NewBcryptHasher(0)
	authService := services.NewAuthService(accountRepo, hasher, logger.Logger)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, sessionManager, logger.Logger)
	dashboardHandler := handlers.NewDashboardHandler(logger.Logger)

	// Setup router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(middlewares.RequestID)
	r.Use(middlewares.RequestLogger(logger.Logger))
	r.Use(middlewares.Recovery(logger.Logger))
	r.Use(middlewares.CORS(cfg.CORS.AllowedOrigins))
	r.Use(httprate.LimitByIP(100, time.Minute))
	r.Use(middlewares.RequestSizeLimit(1 << 20)) // 1MB, credentials only
	r.Use(sessionManager.Middleware)

	// Register dashboard and root routes
	dashboardHandler.RegisterRoutes(r)

	// Register auth routes with a tighter rate limit against credential
	// stuffing
	r.Group(func(r chi.Router) {
		r.Use(httprate.LimitByIP(15, time.Minute))
		authHandler.RegisterRoutes(r)
	})

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
}

// connectDB connects to the database
func connectDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// runMigrations runs database migrations
func runMigrations(db *sql.DB) error {
	driver, err := mysql.WithInstance(db, &mysql.Config{
		MigrationsTable: "classgate_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	// Get the working directory or use migrations folder relative to the binary
	migrationPath := "file://migrations"
	if _, err := os.Stat("migrations"); os.IsNotExist(err) {
		// Try parent directory if running from cmd
		if _, err := os.Stat("../migrations"); err == nil {
			migrationPath = "file://../migrations"
		}
	}

	m, err := migrate.NewWithDatabaseInstance(
		migrationPath,
		"mysql",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
