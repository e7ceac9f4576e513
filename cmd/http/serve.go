package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/igaue-takahiko/food-delivery-app/internal/auth"
	"github.com/igaue-takahiko/food-delivery-app/internal/config"
	"github.com/igaue-takahiko/food-delivery-app/internal/handler"
	"github.com/igaue-takahiko/food-delivery-app/internal/logger"
	"github.com/igaue-takahiko/food-delivery-app/internal/metrics"
	"github.com/igaue-takahiko/food-delivery-app/internal/realtime"
	"github.com/igaue-takahiko/food-delivery-app/internal/repository"
	"github.com/igaue-takahiko/food-delivery-app/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and websocket server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func serve() error {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.Env)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer log.Sync()

	// 2. Setup Database
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer dbPool.Close()

	if err := dbPool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	log.Info("Connected to database")

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to parse redis url: %w", err)
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}
	log.Info("Connected to redis")

	// 3. Setup Realtime
	m := metrics.New("delivery")
	registry := realtime.NewRegistry()
	hub := realtime.NewHub(registry, cfg.ClientBaseURL, log.Named("hub"), m)
	dispatcher := realtime.NewDispatcher(registry, hub, cfg.DispatchBuffer, log.Named("dispatcher"), m)

	dispatchCtx, cancelDispatch := context.WithCancel(context.Background())
	dispatchDone := make(chan struct{})
	go func() {
		defer close(dispatchDone)
		dispatcher.Run(dispatchCtx)
	}()

	// 4. Setup Logic
	repo := repository.NewRepository(dbPool)
	carts := repository.NewCartRepository(rdb, cfg.CartTTL)

	cartService := service.NewCartService(carts, repo, repo, log.Named("cart"))
	orderService := service.NewOrderService(service.OrderDeps{
		Carts:       cartService,
		Catalog:     repo,
		Profiles:    repo,
		Orders:      repo,
		Notifier:    dispatcher,
		Concurrency: cfg.CheckoutConcurrency,
		Log:         log.Named("order"),
		Metrics:     m,
	})

	h := handler.NewHandler(handler.Deps{
		Orders:        orderService,
		Carts:         cartService,
		Restaurants:   service.NewRestaurantService(repo, cfg.NearbyRadiusKM),
		Profiles:      service.NewProfileService(repo, repo),
		Auth:          auth.NewManager(cfg.JWT.Secret, cfg.JWT.TTL),
		Realtime:      hub,
		Clients:       registry,
		ClientBaseURL: cfg.ClientBaseURL,
		Log:           log,
		Metrics:       m,
	})

	// 5. Setup Server
	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 6. Run Server with Graceful Shutdown
	serverErr := make(chan error, 1)
	go func() {
		log.Info("Starting server", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down server...")
	case err := <-serverErr:
		log.Error("Server failed", zap.Error(err))
	}

	// Create a deadline to wait for.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	cancelDispatch()
	<-dispatchDone
	hub.Close()

	log.Info("Server exiting")
	return nil
}
