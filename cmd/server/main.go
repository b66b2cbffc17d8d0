package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/storefront/backend/internal/auth"
	"github.com/storefront/backend/internal/config"
	"github.com/storefront/backend/internal/events"
	"github.com/storefront/backend/internal/handlers"
	"github.com/storefront/backend/internal/middleware"
	"github.com/storefront/backend/internal/repository"
	mongostore "github.com/storefront/backend/internal/repository/mongo"
	"github.com/storefront/backend/internal/service"
	"github.com/storefront/backend/pkg/logger"
)

const version = "1.0.0"

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	log.Info("starting storefront api server",
		"port", cfg.Server.Port,
		"host", cfg.Server.Host,
		"store", cfg.Store.Driver,
		"log_level", cfg.LogLevel,
	)

	if err := run(cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped gracefully")
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx := context.Background()

	var cleanups []func()
	defer func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}()

	// Initialize store
	store, closeStore, err := openStore(ctx, cfg.Store, log)
	if err != nil {
		return err
	}
	cleanups = append(cleanups, closeStore)

	if cfg.Store.SeedCatalog {
		n, err := repository.SeedProducts(ctx, store.Products(), repository.DefaultCatalog())
		if err != nil {
			return fmt.Errorf("failed to seed catalog: %w", err)
		}
		log.Info("catalog seeded", "products", n)
	}

	// Token revocation
	var revoker auth.Revoker = auth.NewMemoryRevoker()
	if cfg.Auth.RedisURL != "" {
		redisRevoker, err := auth.NewRedisRevoker(ctx, cfg.Auth.RedisURL)
		if err != nil {
			return err
		}
		cleanups = append(cleanups, func() { _ = redisRevoker.Close() })
		revoker = redisRevoker
		log.Info("token revocation backed by redis")
	}

	// Order events
	var publisher events.Publisher = events.Noop{}
	if len(cfg.Events.KafkaBrokers) > 0 {
		kafkaPublisher := events.NewKafkaPublisher(cfg.Events.KafkaBrokers)
		cleanups = append(cleanups, func() {
			if err := kafkaPublisher.Close(); err != nil {
				log.Error("failed to close kafka writer", "error", err)
			}
		})
		publisher = kafkaPublisher
		log.Info("publishing order events to kafka", "brokers", cfg.Events.KafkaBrokers)
	}

	// Initialize services
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	userService := service.NewUserService(store.Users(), tokens, revoker, cfg.Auth.EmailFilterCapacity, log)
	accounts, err := userService.WarmEmailFilter(ctx)
	if err != nil {
		return fmt.Errorf("failed to load registered emails: %w", err)
	}
	log.Info("email filter warmed", "accounts", accounts)
	orderService := service.NewOrderService(store.Products(), store.Orders(), store.Users(), publisher, log)
	productService := service.NewProductService(store.Products())
	categoryService := service.NewCategoryService(store.Categories())

	routes := &handlers.Routes{
		Health:     handlers.NewHealthHandler(store, version, log),
		Orders:     handlers.NewOrderHandler(orderService, log),
		Products:   handlers.NewProductHandler(productService, log),
		Users:      handlers.NewUserHandler(userService, cfg.Auth.TokenTTL, cfg.Auth.CookieSecure, log),
		Categories: handlers.NewCategoryHandler(categoryService, log),
		Auth:       userService,
	}

	// Create router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(time.Duration(cfg.Server.RequestTimeout) * time.Second))

	// Session cookies need credentials, which browsers refuse with a
	// wildcard origin.
	allowCredentials := true
	for _, origin := range cfg.Server.CORSOrigins {
		if origin == "*" {
			allowCredentials = false
		}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: allowCredentials,
		MaxAge:           300,
	}))

	routes.Mount(r)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	err = srv.Shutdown(shutdownCtx)
	// Let in-flight order events reach the broker before it is closed.
	orderService.Wait()
	if err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

// openStore returns the configured store and a function releasing it.
func openStore(ctx context.Context, cfg config.StoreConfig, log *slog.Logger) (repository.Store, func(), error) {
	if cfg.Driver == "memory" {
		log.Warn("using in-memory store; data is lost on restart")
		return repository.NewMemoryStore(), func() {}, nil
	}

	client, err := mongostore.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			log.Error("failed to disconnect from mongodb", "error", err)
		}
	}

	store := mongostore.NewStore(client, cfg.Database, mongostore.Options{
		Transactions: cfg.Transactions,
		Logger:       log,
	})
	if err := store.EnsureIndexes(ctx); err != nil {
		closeFn()
		return nil, nil, err
	}

	log.Info("connected to mongodb", "database", cfg.Database, "transactions", cfg.Transactions)
	return store, closeFn, nil
}
