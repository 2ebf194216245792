package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"kot-system/internal/auth"
	authdb "kot-system/internal/auth/db"
	"kot-system/internal/config"
	"kot-system/internal/logger"
	"kot-system/internal/menu"
	menuapi "kot-system/internal/menu/api"
	menudb "kot-system/internal/menu/db"
	"kot-system/internal/tables"
	tablesapi "kot-system/internal/tables/api"
	tablesdb "kot-system/internal/tables/db"
	tablesredis "kot-system/internal/tables/redis"
)

// The management service owns the menu, the floor plan and staff accounts.
// Order handling lives in the cashier service.

func connectPostgres(cfg config.DatabaseConfig, log *logger.Logger) *bun.DB {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database)

	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		log.Info("DATABASE", fmt.Sprintf("Connecting to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", dsn)
		if err == nil {
			err = sqldb.Ping()
		}
		if err == nil {
			break
		}
		log.Error("DATABASE", fmt.Sprintf("PostgreSQL not ready: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	log.Info("DATABASE", "PostgreSQL connection successful")
	return bun.NewDB(sqldb, pgdialect.New())
}

func ensureTables(ctx context.Context, bunDB *bun.DB, log *logger.Logger) {
	if err := menudb.Migrate(ctx, bunDB); err != nil {
		log.Fatal("MIGRATE", fmt.Sprintf("Failed to create menu tables: %v", err))
	}
	if err := tablesdb.Migrate(ctx, bunDB); err != nil {
		log.Fatal("MIGRATE", fmt.Sprintf("Failed to create floor tables: %v", err))
	}
	if err := authdb.Migrate(ctx, bunDB); err != nil {
		log.Fatal("MIGRATE", fmt.Sprintf("Failed to create staff tables: %v", err))
	}
	log.Info("MIGRATE", "Management tables ensured from models")
}

func main() {
	log := logger.NewLogger("management-service")
	defer log.Close()

	log.Info("APP", "Starting Management Service initialization")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		log.Info("CONFIG", "Loaded environment variables from .env file")
	}

	cfg := config.Load()
	ctx := context.Background()

	bunDB := connectPostgres(cfg.Database, log)
	defer bunDB.Close()

	ensureTables(ctx, bunDB, log)

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Redis connection error: %v", err))
	}
	defer redisClient.Close()
	log.Info("DATABASE", fmt.Sprintf("Redis connection successful to %s", cfg.Redis.Addr))

	smtpPort, err := strconv.Atoi(cfg.Email.SMTPPort)
	if err != nil {
		log.Fatal("CONFIG", fmt.Sprintf("Invalid SMTP port %q", cfg.Email.SMTPPort))
	}
	mailer := &auth.SMTPMailer{
		Host:     cfg.Email.SMTPHost,
		Port:     smtpPort,
		From:     cfg.Email.FromAddress,
		Username: cfg.Email.SMTPUsername,
		Password: cfg.Email.SMTPPassword,
	}

	issuer := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authService := auth.NewAuthService(&authdb.DB{Bun: bunDB}, mailer, issuer, log, cfg.Auth.OTPTTL)
	menuService := menu.NewMenuService(&menudb.DB{Bun: bunDB}, log)
	tableService := tables.NewTableService(&tablesdb.DB{Bun: bunDB}, log, cfg.Menu.MenuBaseURL)
	seatHold := tablesredis.NewSeatHold(redisClient, log, cfg.Redis.SeatHoldTTL)

	authHandler := auth.NewHandler(authService, log)
	menuHandler := menuapi.NewHandler(menuService, log)
	tablesHandler := tablesapi.NewHandler(tableService, seatHold, log)

	log.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Registration and login stay public, everything else needs a staff token.
	authHandler.Routes(r)
	log.Info("ROUTER", "Auth routes registered under /auth")

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(issuer))
		menuHandler.Routes(r)
		tablesHandler.Routes(r)
	})
	log.Info("ROUTER", "Menu and table routes registered behind staff auth")

	port := os.Getenv("MANAGEMENT_PORT")
	if port == "" {
		port = ":8081"
	}
	server := &http.Server{
		Addr:         port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("Management Service running on %s", port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server shutdown failed: %v", err))
	} else {
		log.Info("HTTP", "Management Service shutdown complete")
	}
}
