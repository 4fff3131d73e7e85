package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"homeserve/config"
	"homeserve/cron"
	"homeserve/database"
	"homeserve/database/repository"
	catalogRepo "homeserve/database/repository/catalog"
	"homeserve/handlers"
	"homeserve/middleware"
	"homeserve/routes"
	"homeserve/services/booking"
	"homeserve/services/catalog"
	"homeserve/services/ledger"
	"homeserve/services/payment"
	"homeserve/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	utils.InitializeLogger()
	logger := utils.GetLogger()
	cfg := config.AppConfig

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Store.
	var (
		repos       repository.Repositories
		tx          database.TxRunner
		mongoClient *mongo.Client
	)
	if config.UseMemoryStore() {
		logger.Warn("Using the in-memory store; data is lost on restart")
		repos = repository.NewMemoryRepositories()
		tx = database.DirectRunner{}
	} else {
		database.InitDB()
		mongoClient = database.MongoClient
		repos = repository.NewMongoRepositories(database.DB())
		tx = &database.MongoTxRunner{Client: mongoClient, Enabled: cfg.MongoTransactions}
	}

	seedCtx, seedCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if n, err := repos.Catalog.SeedDefaults(seedCtx, catalogRepo.DefaultServices); err != nil {
		logger.Error("Failed to seed service catalogue", zap.Error(err))
	} else if n > 0 {
		logger.Info("Seeded service catalogue", zap.Int("services", n))
	}
	seedCancel()

	// Catalogue, fronted by Redis when available.
	var svcCatalog catalog.Catalog = &catalog.RepoCatalog{Repo: repos.Catalog}
	redisEnabled := cfg.RedisAddr != ""
	if redisEnabled {
		utils.InitCache()
		svcCatalog = catalog.NewCachedCatalog(svcCatalog, utils.GetCacheClient(), cfg.CatalogCacheTTL, logger)
	}

	// Payments.
	var payments payment.PaymentConfirmer = payment.AlwaysPaid{}
	if cfg.StripeKey != "" {
		payments = payment.NewStripeConfirmer(cfg.StripeKey, logger)
	} else if cfg.RequirePayment {
		logger.Warn("REQUIRE_PAYMENT is set without STRIPE_KEY; every payment reference is accepted")
	}

	// Services.
	earnings := &ledger.DefaultEarningsLedger{
		Bookings:  repos.Bookings,
		Providers: repos.Providers,
		Tx:        tx,
		Share:     cfg.ProviderShare,
		Logger:    logger.Named("ledger"),
	}
	ratings := &ledger.DefaultRatingAggregator{
		Bookings:  repos.Bookings,
		Providers: repos.Providers,
		Tx:        tx,
		Logger:    logger.Named("ratings"),
	}
	bookingService := &booking.DefaultBookingService{
		Bookings:       repos.Bookings,
		Providers:      repos.Providers,
		Homeowners:     repos.Homeowners,
		Catalog:        svcCatalog,
		Payments:       payments,
		RequirePayment: cfg.RequirePayment,
		Ledger:         earnings,
		Tx:             tx,
		Logger:         logger.Named("booking"),
	}
	matchingService := &booking.DefaultMatchingService{
		Providers: repos.Providers,
		Bookings:  repos.Bookings,
		Logger:    logger.Named("matching"),
	}

	// Background jobs.
	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()
	cacheClient := utils.CacheClient
	utils.StartHealthMonitor(bgCtx, cacheClient, mongoClient)

	var worker *cron.EarningsWorker
	if redisEnabled {
		worker = cron.StartEarningsWorker(cfg, earnings, logger.Named("cron"))
	}

	handlerBundle := &handlers.HandlerBundle{
		Booking:           handlers.NewBookingHandler(bookingService, matchingService, ratings),
		Admin:             handlers.NewAdminHandler(bookingService, earnings, cfg.ReconcileBatch),
		Catalog:           handlers.NewCatalogHandler(svcCatalog),
		JWTSecret:         cfg.JWTSecret,
		AdminToken:        cfg.AdminToken,
		MaxRequestsPerMin: cfg.MaxRequestsPerMin,
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(utils.ErrorHandler())
	routes.RegisterRoutes(router, handlerBundle)

	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              "0.0.0.0:" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	worker.Shutdown()
	bgCancel()
	if err := database.Close(ctx); err != nil {
		logger.Warn("main: mongo disconnect failed", zap.Error(err))
	}
	if cacheClient != nil {
		_ = cacheClient.Close()
	}

	logger.Sugar().Info("main: server stopped gracefully")
	_ = logger.Sync()
}
