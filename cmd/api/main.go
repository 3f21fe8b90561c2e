package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rahulvermadev/tiffinbox-backend/api/routes"
	"github.com/rahulvermadev/tiffinbox-backend/internal/auth"
	cartsvc "github.com/rahulvermadev/tiffinbox-backend/internal/cart"
	"github.com/rahulvermadev/tiffinbox-backend/internal/catalog"
	checkoutsvc "github.com/rahulvermadev/tiffinbox-backend/internal/checkout"
	couponsvc "github.com/rahulvermadev/tiffinbox-backend/internal/coupons"
	ordersvc "github.com/rahulvermadev/tiffinbox-backend/internal/orders"
	"github.com/rahulvermadev/tiffinbox-backend/internal/payments"
	"github.com/rahulvermadev/tiffinbox-backend/internal/payments/phonepe"
	"github.com/rahulvermadev/tiffinbox-backend/internal/payments/razorpay"
	"github.com/rahulvermadev/tiffinbox-backend/internal/pricing"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/config"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/db"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/logger"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/metrics"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/migrate"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	catalogRepo := catalog.NewRepository(dbClient.DB())
	couponRepo := couponsvc.NewRepository(dbClient.DB())
	orderRepo := ordersvc.NewRepository(dbClient.DB())
	planRepo := pricing.NewRepository(dbClient.DB())

	catalogService, err := catalog.NewService(catalogRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	couponService, err := couponsvc.NewService(couponsvc.ServiceParams{
		Logger:   logg,
		Repo:     couponRepo,
		Sessions: redisClient,
		TTL:      cfg.Checkout.SessionTTL,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create coupon service", err)
		os.Exit(1)
	}

	cartService, err := cartsvc.NewService(cartsvc.ServiceParams{
		Logger:   logg,
		Plans:    planRepo,
		Products: catalogRepo,
		Coupons:  couponService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	razorpayClient, err := razorpay.NewClient(cfg.Razorpay)
	if err != nil {
		logg.Error(context.Background(), "failed to create razorpay client", err)
		os.Exit(1)
	}
	phonepeClient, err := phonepe.NewClient(cfg.PhonePe)
	if err != nil {
		logg.Error(context.Background(), "failed to create phonepe client", err)
		os.Exit(1)
	}
	gateways, err := payments.NewRegistry(razorpayClient, phonepeClient)
	if err != nil {
		logg.Error(context.Background(), "failed to build gateway registry", err)
		os.Exit(1)
	}

	checkoutService, err := checkoutsvc.NewService(checkoutsvc.ServiceParams{
		Logger:   logg,
		DB:       dbClient,
		Cart:     cartService,
		Orders:   orderRepo,
		Gateways: gateways,
		Coupons:  couponService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	orderService, err := ordersvc.NewService(ordersvc.ServiceParams{
		Logger: logg,
		DB:     dbClient,
		Repo:   orderRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		Logger:   logg,
		Repo:     auth.NewRepository(dbClient.DB()),
		JWT:      cfg.JWT,
		Password: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	if cfg.AdminSeed.Email != "" && cfg.AdminSeed.Password != "" {
		if err := authService.EnsureAdmin(context.Background(), cfg.AdminSeed.Email, cfg.AdminSeed.Password); err != nil {
			logg.Error(context.Background(), "failed to seed admin account", err)
			os.Exit(1)
		}
	}

	callbackMetrics := metrics.NewCallbackMetrics(prometheus.DefaultRegisterer)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:     cfg,
			Logger:     logg,
			DB:         dbClient,
			Redis:      redisClient,
			Metrics:    callbackMetrics,
			Gatherer:   prometheus.DefaultGatherer,
			Catalog:    catalogService,
			Cart:       cartService,
			Coupons:    couponService,
			Checkout:   checkoutService,
			Orders:     orderService,
			Auth:       authService,
			Plans:      planRepo,
			CouponRepo: couponRepo,
			Razorpay:   razorpayClient,
			PhonePe:    phonepeClient,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
