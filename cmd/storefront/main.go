package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/gizmo_store/internal/auth"
	"github.com/fjod/gizmo_store/internal/cache"
	"github.com/fjod/gizmo_store/internal/cart"
	"github.com/fjod/gizmo_store/internal/catalog"
	"github.com/fjod/gizmo_store/internal/checkout"
	"github.com/fjod/gizmo_store/internal/config"
	"github.com/fjod/gizmo_store/internal/events"
	"github.com/fjod/gizmo_store/internal/logger"
	"github.com/fjod/gizmo_store/internal/payment"
	"github.com/fjod/gizmo_store/internal/repository"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	h "github.com/fjod/gizmo_store/internal/http"
)

func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	zl, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer zl.Sync()
	zap.ReplaceGlobals(zl)

	if err := run(cfg, zl); err != nil {
		zl.Fatal("storefront stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	ctx := context.Background()
	var closers []func()
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	storage, closeStorage, err := openCartStorage(ctx, cfg, zl)
	if err != nil {
		return err
	}
	closers = append(closers, closeStorage)

	catalogRepo, err := repository.NewSQLiteRepository(cfg.SQLitePath)
	if err != nil {
		return err
	}
	closers = append(closers, func() { catalogRepo.Close() })
	if err := catalogRepo.RunMigrations(); err != nil {
		return fmt.Errorf("catalog migrations: %w", err)
	}

	orders, closeOrders, err := openOrderStore(cfg, zl)
	if err != nil {
		return err
	}
	closers = append(closers, closeOrders)

	// payment backends
	cashService := payment.NewCashService(orders, zl.Named("cash"))
	paypalClient := payment.NewPayPalClient(payment.PayPalConfig{
		ClientID:     cfg.PayPalClientID,
		ClientSecret: cfg.PayPalClientSecret,
		BaseURL:      cfg.PayPalBaseURL,
		ReturnURL:    cfg.BackendURL() + "/api/v1/checkout/paypal/return",
		CancelURL:    cfg.BackendURL() + "/api/v1/checkout/paypal/cancel",
		BrandName:    cfg.PayPalBrandName,
	}, nil, zl.Named("paypal"))
	if !paypalClient.Configured() {
		zl.Warn("PayPal credentials not set; PayPal checkout will fail")
	}

	var processor payment.CardProcessor
	if cfg.CardProcessor == config.CardProcessorStripe {
		processor = payment.NewStripeProcessor(cfg.StripeSecretKey, nil, zl.Named("stripe"))
	} else {
		zl.Info("using sandbox card processor")
		processor = payment.NewSandboxProcessor(payment.RandomStatus{})
	}

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kp := events.NewKafkaPublisher(zl.Named("events"), cfg.KafkaBrokers...)
		closers = append(closers, func() { kp.Close() })
		publisher = kp
	}

	orchestrator := checkout.NewOrchestrator(
		payment.NewCashAdapter(cashService, cfg.CashTimeout, cfg.CashMaxRetries, zl.Named("cash")),
		payment.NewPayPalAdapter(paypalClient, cfg.PayPalTimeout),
		payment.NewCardAdapter(processor, cfg.CardTimeout),
		publisher,
		checkout.Options{ApprovalTTL: cfg.ApprovalTTL},
		zl.Named("checkout"),
	)

	carts := cart.NewManager(storage, cart.Options{
		IdleTTL: cfg.CartIdleTTL,
		OnEvict: orchestrator.Forget,
	}, zl.Named("cart"))
	closers = append(closers, carts.Close)

	authService := auth.NewService(catalogRepo, cfg.JWTSecret)
	requestTimeout := 5 * time.Second

	router := h.NewRouter(h.Handlers{
		Cart:     h.NewCartHandler(carts, orchestrator, requestTimeout),
		Checkout: h.NewCheckoutHandler(carts, orchestrator, zl),
		Backend:  h.NewBackendHandler(cashService, paypalClient, processor),
		Products: h.NewProductHandler(catalog.NewService(catalogRepo), requestTimeout, zl),
		Admin:    h.NewAdminHandler(authService, orders, cfg.IsProduction(), requestTimeout, zl),
		Verifier: authService,
	}, h.RouterConfig{
		RequestTimeout: routeTimeout(cfg.WriteTimeout),
		SecureCookies:  cfg.IsProduction(),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		zl.Info("storefront starting", zap.String("port", cfg.Port), zap.String("cart_store", cfg.CartStore))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
	}

	zl.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	zl.Info("server exited")
	return nil
}

func openCartStorage(ctx context.Context, cfg *config.Config, zl *zap.Logger) (cache.Store, func(), error) {
	switch cfg.CartStore {
	case config.CartStoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		store := cache.NewRedisCache(client, cfg.RedisCartTTL)
		if err := store.Ping(ctx); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("redis connection failed: %w", err)
		}
		zl.Info("cart storage: redis", zap.String("addr", cfg.RedisAddr))
		return store, func() { client.Close() }, nil

	case config.CartStoreMongo:
		db, err := repository.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		store := repository.NewMongoCartStore(db)
		if err := store.CreateIndexes(ctx); err != nil {
			zl.Warn("failed to create cart indexes", zap.Error(err))
		}
		zl.Info("cart storage: mongo", zap.String("database", cfg.MongoDatabase))
		return store, func() { db.Client().Disconnect(context.Background()) }, nil

	default:
		zl.Info("cart storage: memory")
		return cache.NewMemoryCache(), func() {}, nil
	}
}

// routeTimeout leaves the server a second to write the timeout response.
func routeTimeout(write time.Duration) time.Duration {
	if write > 2*time.Second {
		return write - time.Second
	}
	return write
}

type orderStore interface {
	payment.OrderStore
	h.OrderLister
}

func openOrderStore(cfg *config.Config, zl *zap.Logger) (orderStore, func(), error) {
	if cfg.PostgresHost == "" {
		zl.Info("order storage: memory")
		return repository.NewMemoryOrderRepository(), func() {}, nil
	}

	db, err := repository.OpenPostgres(&repository.Credentials{
		Host:     cfg.PostgresHost,
		Port:     cfg.PostgresPort,
		User:     cfg.PostgresUser,
		Password: cfg.PostgresPassword,
		DBName:   cfg.PostgresDB,
		SSLMode:  cfg.PostgresSSLMode,
	})
	if err != nil {
		return nil, nil, err
	}

	repo := repository.NewPostgresOrderRepository(db)
	if err := repo.RunMigrations(); err != nil {
		repo.Close()
		return nil, nil, fmt.Errorf("order migrations: %w", err)
	}
	zl.Info("order storage: postgres", zap.String("host", cfg.PostgresHost))
	return repo, func() { repo.Close() }, nil
}
