package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bookbridge/librental/internal/adapters/cache"
	"github.com/bookbridge/librental/internal/adapters/database"
	"github.com/bookbridge/librental/internal/adapters/events"
	"github.com/bookbridge/librental/internal/adapters/providers/payment"
	"github.com/bookbridge/librental/internal/adapters/session"
	"github.com/bookbridge/librental/internal/api/handlers"
	"github.com/bookbridge/librental/internal/api/routes"
	"github.com/bookbridge/librental/internal/application/services"
	"github.com/bookbridge/librental/internal/domain/repositories"
	"github.com/bookbridge/librental/internal/infrastructure/clients/postgres"
	"github.com/bookbridge/librental/internal/infrastructure/clients/redis"
	"github.com/bookbridge/librental/internal/infrastructure/observability"
	"github.com/bookbridge/librental/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger("librental-api", cfg.Env)

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()

	// Initialize Redis client. Sessions live in Redis, so unlike the catalog
	// cache it is not optional.
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize Redis client")
	}
	defer redisClient.Close()

	// Initialize adapters
	cacheProvider := cache.NewRedisAdapter(redisClient)
	eventBus := events.NewRedisEventBus(redisClient)
	defer eventBus.Close()

	sessionStore := session.NewRedisSessionStore(redisClient, cfg.Session.TTLSeconds)
	paymentProvider := payment.NewMockProvider()

	userAdapter := database.NewUserAdapter(pgClient)
	categoryAdapter := database.NewCategoryAdapter(pgClient)
	borrowingAdapter := database.NewBorrowingAdapter(pgClient)
	damagedLostAdapter := database.NewDamagedLostAdapter(pgClient)

	// Wrap the book adapter with the short-lived catalog cache
	var bookAdapter repositories.BookRepository = database.NewBookAdapter(pgClient)
	bookAdapter = database.NewCachedBookAdapter(bookAdapter, cacheProvider)

	// Initialize services
	authService := services.NewAuthService(userAdapter, borrowingAdapter, sessionStore)
	catalogService := services.NewCatalogService(bookAdapter, categoryAdapter, eventBus)
	borrowingService := services.NewBorrowingService(borrowingAdapter, bookAdapter, userAdapter, eventBus)
	damagedLostService := services.NewDamagedLostService(damagedLostAdapter, borrowingAdapter, userAdapter, eventBus)
	membershipService := services.NewMembershipService(userAdapter, paymentProvider, sessionStore)
	reportingService := services.NewReportingService(userAdapter, bookAdapter, borrowingAdapter)

	invalidationService := services.NewCacheInvalidationService(cacheProvider, eventBus)
	if err := invalidationService.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start cache invalidation service")
	}
	defer invalidationService.Stop()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	bookHandler := handlers.NewBookHandler(catalogService)
	borrowingHandler := handlers.NewBorrowingHandler(borrowingService, authService)
	memberHandler := handlers.NewMemberHandler(reportingService)
	dashboardHandler := handlers.NewDashboardHandler(reportingService)
	damagedLostHandler := handlers.NewDamagedLostHandler(damagedLostService)
	membershipHandler := handlers.NewMembershipHandler(membershipService)

	router := routes.NewRouter(
		authHandler,
		bookHandler,
		borrowingHandler,
		memberHandler,
		dashboardHandler,
		damagedLostHandler,
		membershipHandler,
		sessionStore,
		cfg.CORS.AllowedOrigins,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	log.Info().Msg("server stopped")
}
