package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vastramitra/config"
	"vastramitra/cron"
	"vastramitra/database"
	deviceRepo "vastramitra/database/repository/device"
	ledgerRepo "vastramitra/database/repository/ledger"
	"vastramitra/handlers"
	"vastramitra/middleware"
	"vastramitra/routes"
	"vastramitra/services/lifecycle"
	"vastramitra/services/notification"
	"vastramitra/services/orders"
	"vastramitra/services/reminder"
	"vastramitra/services/stages"
	"vastramitra/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer func() { _ = logger.Sync() }()

	if config.AppConfig.TailorID == "" {
		logger.Fatal("main: TAILOR_ID is required")
	}
	if config.AppConfig.JWTSecret == "" {
		logger.Fatal("main: JWT_SECRET is required")
	}

	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()

	// Booking ledger and device registry.
	var (
		ledger  ledgerRepo.Ledger
		devices deviceRepo.DeviceRepository
	)
	switch config.AppConfig.LedgerDriver {
	case "memory":
		logger.Warn("main: using the in-memory ledger, data is lost on exit")
		ledger = ledgerRepo.NewMemoryLedger()
		devices = deviceRepo.NewMemoryDeviceRepo()
	default:
		db, err := database.InitDB(baseCtx)
		if err != nil {
			logger.Fatal("main: failed to initialize database", zap.Error(err))
		}
		logger.Info("Connected to MongoDB", zap.String("database", db.Name()))
		ledger = ledgerRepo.NewMongoLedger(db)
		devices = deviceRepo.NewMongoDeviceRepo(db)
	}

	// Redis backs cross-process booking locks and scheduled reminders.
	var (
		locker  lifecycle.Locker
		queue   reminder.Enqueuer
		redisUp bool
	)
	if config.RedisEnabled() {
		if err := utils.InitRedis(); err != nil {
			logger.Warn("main: Redis unavailable, falling back to in-process locks and the daily sweep", zap.Error(err))
		} else {
			redisUp = true
		}
	}
	if redisUp {
		locker = lifecycle.NewRedisLocker(utils.LockClient, 30*time.Second, 10*time.Second)
		client := asynq.NewClient(utils.ReminderQueueOpt())
		defer client.Close()
		queue = client
	} else {
		locker = lifecycle.NewLocalLocker()
	}

	// Delivery: FCM push with Twilio fallback, or log only.
	var gateway notification.Gateway = notification.LogGateway{Logger: logger}
	var sender notification.MessageSender
	if fcm, err := utils.FirebaseInit(baseCtx); err != nil {
		logger.Warn("main: push notifications disabled", zap.Error(err))
	} else {
		sender = fcm
	}
	var sms notification.SMSSender
	if config.AppConfig.TwilioAccountSID != "" {
		sms = notification.NewTwilioSMS(
			config.AppConfig.TwilioAccountSID,
			config.AppConfig.TwilioAuthToken,
			config.AppConfig.TwilioPhoneNumber,
			config.AppConfig.TwilioWhatsAppNumber,
			logger,
		)
	}
	if sender != nil || sms != nil {
		gateway = notification.NewFCMGateway(sender, devices, sms, logger)
	}

	// services.
	outbox := orders.NewOutbox(ledger, logger)
	views := orders.NewMaterializer(ledger, outbox, logger)
	dispatcher := notification.NewDispatcher(notification.Decider{
		Scheme:   config.AppConfig.DeepLinkScheme,
		TailorID: config.AppConfig.TailorID,
	}, ledger, gateway, logger)
	reminders := reminder.NewScheduler(ledger, views, dispatcher, queue, logger)

	coordinator, err := lifecycle.NewCoordinator(lifecycle.Deps{
		Ledger:     ledger,
		Views:      views,
		Stages:     stages.NewService(ledger, logger),
		Reminders:  reminders,
		Dispatcher: dispatcher,
		Locker:     locker,
		Logger:     logger,
	})
	if err != nil {
		logger.Fatal("main: failed to build lifecycle coordinator", zap.Error(err))
	}

	// Background work.
	if redisUp {
		worker := cron.InitReminderWorker(utils.ReminderQueueOpt(), reminders, logger)
		defer worker.Shutdown()
	}
	jobs, err := cron.StartJobs(config.AppConfig.ReminderSweepSpec, config.AppConfig.OutboxReconcileSpec, reminders, outbox, logger)
	if err != nil {
		logger.Fatal("main: failed to start background jobs", zap.Error(err))
	}
	utils.StartHealthMonitor(baseCtx, utils.LockClient, database.MongoClient, 60*time.Second)

	// Create the Gin router.
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin, logger))

	handlerBundle := handlers.NewHandlerBundle(
		handlers.NewLifecycleHandler(coordinator),
		handlers.NewNotificationHandler(coordinator),
		handlers.NewMeasurementHandler(coordinator),
		handlers.NewDeviceHandler(devices, logger),
		handlers.NewWatchHandler(coordinator, logger),
	)
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	srv := &http.Server{
		Addr:        "0.0.0.0:" + config.AppConfig.AppPort,
		Handler:     router,
		BaseContext: func(net.Listener) context.Context { return baseCtx },
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

	// Ends open watch streams and the health monitor.
	cancelBase()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	<-jobs.Stop().Done()
	if err := database.Disconnect(ctx); err != nil {
		logger.Sugar().Warnf("main: failed to disconnect MongoDB: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
