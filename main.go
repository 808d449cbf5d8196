package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/S204-Inatel-2025-2/AgendaFacil/config"
	"github.com/S204-Inatel-2025-2/AgendaFacil/cron"
	"github.com/S204-Inatel-2025-2/AgendaFacil/database"
	accountRepo "github.com/S204-Inatel-2025-2/AgendaFacil/database/repository/account"
	offeringRepo "github.com/S204-Inatel-2025-2/AgendaFacil/database/repository/offering"
	publisherRepo "github.com/S204-Inatel-2025-2/AgendaFacil/database/repository/publisher"
	"github.com/S204-Inatel-2025-2/AgendaFacil/handlers"
	"github.com/S204-Inatel-2025-2/AgendaFacil/metrics"
	"github.com/S204-Inatel-2025-2/AgendaFacil/middleware"
	"github.com/S204-Inatel-2025-2/AgendaFacil/routes"
	"github.com/S204-Inatel-2025-2/AgendaFacil/services/catalogue"
	"github.com/S204-Inatel-2025-2/AgendaFacil/services/identity"
	"github.com/S204-Inatel-2025-2/AgendaFacil/services/publisher"
	"github.com/S204-Inatel-2025-2/AgendaFacil/services/reservation"
	"github.com/S204-Inatel-2025-2/AgendaFacil/services/socialAuth"
	"github.com/S204-Inatel-2025-2/AgendaFacil/services/tasks"
	"github.com/S204-Inatel-2025-2/AgendaFacil/utils"
)

type stores struct {
	accounts   accountRepo.AccountRepository
	offerings  offeringRepo.OfferingRepository
	publishers publisherRepo.PublisherRepository
	pingers    map[string]utils.Pinger
	close      func()
}

func buildStores(ctx context.Context, cfg config.Config, logger *zap.Logger) (*stores, error) {
	if cfg.StoreDriver == "memory" {
		logger.Warn("Using in-memory store; data is lost on restart")
		return &stores{
			accounts:   accountRepo.NewMemoryAccountRepo(),
			offerings:  offeringRepo.NewMemoryOfferingRepo(),
			publishers: publisherRepo.NewMemoryPublisherRepo(),
			pingers:    map[string]utils.Pinger{},
			close:      func() {},
		}, nil
	}

	client, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	db := client.Database(cfg.DatabaseName)

	accounts, err := accountRepo.NewMongoAccountRepo(ctx, db)
	if err != nil {
		return nil, err
	}
	offerings, err := offeringRepo.NewMongoOfferingRepo(ctx, db)
	if err != nil {
		return nil, err
	}
	publishers, err := publisherRepo.NewMongoPublisherRepo(ctx, db)
	if err != nil {
		return nil, err
	}
	logger.Info("Connected to MongoDB", zap.String("database", cfg.DatabaseName))

	return &stores{
		accounts:   accounts,
		offerings:  offerings,
		publishers: publishers,
		pingers: map[string]utils.Pinger{
			"mongo": utils.PingFunc(func(ctx context.Context) error { return client.Ping(ctx, readpref.Primary()) }),
		},
		close: func() { _ = client.Disconnect(context.Background()) },
	}, nil
}

func main() {
	config.LoadConfig()
	cfg := config.AppConfig
	utils.InitializeLogger(cfg.Env, cfg.LogLevel)
	logger := utils.GetLogger()
	defer logger.Sync()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := buildStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialise storage", zap.Error(err))
	}
	defer st.close()

	codec, err := utils.NewTokenCodec([]byte(cfg.JWTSecret), cfg.JWTTTL)
	if err != nil {
		logger.Fatal("Failed to build token codec", zap.Error(err))
	}

	// Locks are process-local unless Redis is configured.
	var locker utils.Locker = utils.NewKeyedMutex()
	var notifier reservation.Notifier
	var worker *cron.ConfirmationWorker
	if cfg.RedisEnabled {
		lockClient, err := utils.NewRedisClient(utils.RedisOptions{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisLockDB})
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer lockClient.Close()
		locker = utils.NewRedisLocker(lockClient, cfg.LockTTL)
		st.pingers["redis"] = utils.PingFunc(func(ctx context.Context) error { return lockClient.Ping(ctx).Err() })

		queueOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisQueueDB}
		queueClient := asynq.NewClient(queueOpts)
		defer queueClient.Close()
		notifier = &tasks.QueueNotifier{Client: queueClient}

		worker = cron.NewConfirmationWorker(queueOpts, st.offerings, logger)
		worker.Start()
		defer worker.Shutdown()
		logger.Info("Redis locks and reservation queue enabled", zap.String("addr", cfg.RedisAddr))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	health := utils.NewHealthMonitor(st.pingers)
	health.Start(ctx, 30*time.Second)

	// Services.
	identitySvc := &identity.DefaultIdentityService{
		Repo: st.accounts, Tokens: codec, Locker: locker, Metrics: collector, Logger: logger,
	}
	catalogueSvc := &catalogue.DefaultCatalogueService{Offerings: st.offerings, Publishers: st.publishers, Logger: logger}
	engine := &reservation.Engine{
		Offerings: st.offerings, Accounts: st.accounts, Locker: locker,
		Notifier: notifier, Metrics: collector, Logger: logger,
	}
	publisherSvc := &publisher.DefaultPublisherService{
		Repo: st.publishers, CNPJ: publisher.NewCNPJClient(cfg.CNPJAPIBaseURL), Locker: locker, Logger: logger,
	}
	google := socialAuth.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
	if !google.Configured() {
		logger.Warn("GOOGLE_CLIENT_ID/GOOGLE_CLIENT_SECRET not set; Google sign-in will fail")
	}

	handlerBundle := handlers.NewHandlerBundle(
		handlers.NewAuthHandler(identitySvc, catalogueSvc, logger),
		handlers.NewOAuthHandler(google, identitySvc, cfg.OAuthSuccessRedirect, config.IsProduction(), logger),
		handlers.NewOfferingHandler(catalogueSvc, engine, identitySvc, logger),
		handlers.NewPublisherHandler(publisherSvc, logger),
	)

	router := gin.New()
	router.Use(gin.Logger())
	routes.RegisterRoutes(router, handlerBundle, routes.Options{
		AllowedOrigins: cfg.AllowedOrigins(),
		Tokens:         codec,
		Limiter:        middleware.NewRateLimiter(cfg.MaxRequestsPerMin),
		Metrics:        collector,
		Gatherer:       reg,
		Health:         health,
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:    "0.0.0.0:" + cfg.AppPort,
		Handler: router,
	}

	logger.Info("Starting server", zap.String("addr", srv.Addr))
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Server is shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	logger.Info("Server stopped gracefully")
}

