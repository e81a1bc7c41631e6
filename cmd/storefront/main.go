package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/andresGon/cursor-pet/internal/cart"
	"github.com/andresGon/cursor-pet/internal/catalog"
	h "github.com/andresGon/cursor-pet/internal/http"
	"github.com/andresGon/cursor-pet/internal/kvstore"
	"github.com/andresGon/cursor-pet/internal/poller"
	"github.com/andresGon/cursor-pet/pkg/logger"
)

type Config struct {
	HTTPPort       string
	CatalogAPIURL  string
	CartBackend    string // "sqlite" or "redis"
	SQLitePath     string
	MigrationsPath string
	RedisAddr      string
	RedisPassword  string
	KafkaBrokers   string // empty disables the catalog update poller
	JWTSecret      string
	LogLevel       string

	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		CatalogAPIURL:   getEnv("CATALOG_API_URL", "http://localhost:1337"),
		CartBackend:     getEnv("CART_BACKEND", "sqlite"),
		SQLitePath:      getEnv("SQLITE_PATH", "storefront.db"),
		MigrationsPath:  getEnv("MIGRATIONS_PATH", "internal/kvstore/migrations"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		KafkaBrokers:    getEnv("KAFKA_BROKERS", ""),
		JWTSecret:       getEnv("JWT_SECRET", "dev-secret"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()
	logg := logger.New(logger.Options{Service: "storefront", Level: cfg.LogLevel})
	ctx := context.Background()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("Redis connection failed:", err)
	}
	logg.Info("redis ping succeeded", "addr", cfg.RedisAddr)

	// Persistence backend for the cart
	var backend kvstore.Store
	switch cfg.CartBackend {
	case "redis":
		backend = kvstore.NewRedisStore(redisClient)
	case "sqlite":
		sqliteStore, err := kvstore.NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			log.Fatalf("Failed to open cart database: %v", err)
		}
		defer sqliteStore.Close()
		if err := sqliteStore.RunMigrations(cfg.MigrationsPath); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		backend = sqliteStore
	default:
		log.Fatalf("Unknown cart backend %q", cfg.CartBackend)
	}

	cartStore := cart.NewStore(ctx, backend, logg)
	logg.Info("cart restored", "backend", cfg.CartBackend, "items", len(cartStore.Items()))

	// Catalog read path
	catalogClient := catalog.NewClient(cfg.CatalogAPIURL, cfg.RequestTimeout)
	listingCache := catalog.NewRedisCache(redisClient)
	catalogService := catalog.NewService(catalogClient, listingCache, logg)

	// Optional CMS update consumer
	pollerCtx, stopPoller := context.WithCancel(ctx)
	defer stopPoller()
	if cfg.KafkaBrokers != "" {
		p := poller.New(listingCache, logg, cfg.KafkaBrokers)
		defer p.Close()
		go p.Run(pollerCtx)
		logg.Info("catalog update poller started", "brokers", cfg.KafkaBrokers)
	}

	cartHandler := h.NewCartHandler(cartStore, catalogService, cfg.RequestTimeout)
	productHandler := h.NewProductHandler(catalogService, cfg.RequestTimeout)
	authHandler := h.NewAuthHandler([]byte(cfg.JWTSecret), 24*time.Hour)

	// Setup router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(h.RequestIDMiddleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", productHandler.Get)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{product_id}", cartHandler.RemoveItem)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.With(h.AuthMiddleware([]byte(cfg.JWTSecret))).Get("/me", authHandler.Me)
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logg.Info("storefront listening", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logg.Info("shutting down server")
	stopPoller()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	logg.Info("server exited")
}
