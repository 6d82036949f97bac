package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/DRSN-tech/storefront/internal/cfg"
	v1Grpc "github.com/DRSN-tech/storefront/internal/delivery/v1/grpc"
	v1Http "github.com/DRSN-tech/storefront/internal/delivery/v1/http"
	"github.com/DRSN-tech/storefront/internal/infrastructure/carrier"
	"github.com/DRSN-tech/storefront/internal/infrastructure/kafka"
	"github.com/DRSN-tech/storefront/internal/infrastructure/payment"
	s3Repo "github.com/DRSN-tech/storefront/internal/repository/minio"
	"github.com/DRSN-tech/storefront/internal/repository/pgdb"
	"github.com/DRSN-tech/storefront/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/storefront/internal/repository/redis"
	"github.com/DRSN-tech/storefront/internal/repository/static"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/clients"
	"github.com/DRSN-tech/storefront/pkg/closer"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/DRSN-tech/storefront/pkg/postgres"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
)

const (
	shutdownTimeout     = 10 * time.Second
	startupTimeout      = 10 * time.Second
	topicTimeout        = 10 * time.Second
	healthProbeInterval = 15 * time.Second
)

// App держит собранные зависимости и управляет их жизненным циклом.
type App struct {
	cfg    *config.Config
	logger logger.Logger
	closer *closer.Closer

	httpSrv *v1Http.Server
	grpcSrv *v1Grpc.GRPCServer

	bgCtx    context.Context
	bgCancel context.CancelFunc
}

// NewApp подключается к внешним системам и собирает сценарии. Ресурсы, открытые до ошибки, закрываются.
func NewApp(cfg *config.Config, log logger.Logger) (*App, error) {
	a := &App{
		cfg:    cfg,
		logger: log,
		closer: closer.NewCloser(0),
	}
	a.bgCtx, a.bgCancel = context.WithCancel(context.Background())

	if err := a.init(); err != nil {
		a.bgCancel()
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if cerr := a.closer.Close(ctx); cerr != nil {
			log.Warnf("cleanup after failed init: %v", cerr)
		}
		return nil, err
	}

	return a, nil
}

func (a *App) init() error {
	cfg, log := a.cfg, a.logger

	// === Postgres: заказы и outbox ===
	db, err := initPGDB(log, cfg)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	a.closer.Add("postgres", db.Close)

	txManager := pgdb.NewTxManager(db.Pool)
	orderRepo := pgdb.NewOrderRepo(db.Pool, converter.OrderConverter{})
	outboxRepo := pgdb.NewOutboxEventRepo(db.Pool, converter.OutboxEventConverter{})

	// === Redis: корзины и кэш способов доставки ===
	redisClient := clients.NewRedisClient(cfg.Redis)
	a.closer.Add("redis", redisClient.Close)

	redisCtx, redisCancel := context.WithTimeout(context.Background(), startupTimeout)
	defer redisCancel()
	if err := redisClient.Ping(redisCtx); err != nil {
		log.Errorf(err, "failed to connect to redis")
		return e.Wrap(whereami.WhereAmI(), err)
	}
	cartRepo := redis.NewCartRepo(redisClient, cfg.Redis)
	methodsCache := redis.NewCacheRepo(redisClient, cfg.Redis, cfg.Carrier.CarrierFilter, log)

	// === MinIO: архив чеков ===
	minioClient, err := clients.NewMinIOClient(cfg.Minio)
	if err != nil {
		log.Errorf(err, "failed to initialize minio client")
		return e.Wrap(whereami.WhereAmI(), err)
	}
	minioCtx, minioCancel := context.WithTimeout(context.Background(), startupTimeout)
	defer minioCancel()
	if err := clients.EnsureBucket(minioCtx, minioClient, cfg.Minio.BucketName); err != nil {
		log.Errorf(err, "failed to initialize MinIO bucket")
		return e.Wrap(whereami.WhereAmI(), err)
	}
	receiptRepo := s3Repo.NewReceiptRepo(minioClient, cfg.Minio)

	// === Kafka: публикация событий из outbox ===
	producer, err := kafka.NewProducer(log, cfg.Kafka)
	if err != nil {
		log.Errorf(err, "failed to initialize kafka producer")
		return e.Wrap(whereami.WhereAmI(), err)
	}
	a.closer.Add("kafka producer", producer.Close)
	if err := producer.EnsureTopic(topicTimeout); err != nil {
		// брокер может подняться позже, outbox дождётся
		log.Warnf("failed to ensure kafka topic %s: %v", cfg.Kafka.Topic, err)
	}

	worker := kafka.NewOutboxWorker(outboxRepo, log, producer, db.Dsn)
	worker.Start(a.bgCtx)
	a.closer.Add("outbox worker", worker.Stop)

	// === Каталог ===
	overrides, err := static.LoadDisplayOverrides(cfg.Catalog.OverridesFile)
	if err != nil {
		log.Errorf(err, "failed to load catalog overrides")
		return e.Wrap(whereami.WhereAmI(), err)
	}
	productRepo := static.NewProductRepo()
	catalogUC := usecase.NewCatalogUC(productRepo, overrides)

	// === Внешние API ===
	carrierInfra := carrier.NewCarrier(cfg.Carrier, methodsCache, log)
	if !cfg.Carrier.Enabled() {
		log.Warnf("carrier credentials are not set, shipping rates will use the fallback table")
	}
	gateway := payment.NewGateway(cfg.Payment, log)
	if !cfg.Payment.Enabled() {
		log.Warnf("payment secret key is not set, payment endpoints will answer 503")
	}

	// === Сценарии ===
	cartUC := usecase.NewCartUC(cartRepo, productRepo, cfg.Cart, log)
	go cartUC.Run(a.bgCtx)

	shippingUC := usecase.NewShippingUC(carrierInfra, cfg.Carrier)
	paymentUC := usecase.NewPaymentUC(productRepo, gateway, cfg.Checkout.DefaultCurrency, log)

	orderUC := usecase.NewOrderUC(txManager, orderRepo, outboxRepo, receiptRepo, log)
	a.closer.Add("receipt archiving", orderUC.Wait)

	checkoutUC := usecase.NewCheckoutUC(cartUC, shippingUC, gateway, orderUC, cfg.Checkout, cfg.Payment, log)
	go checkoutUC.Run(a.bgCtx)
	a.closer.Add("checkout", checkoutUC.Shutdown)

	// === Delivery ===
	a.grpcSrv = v1Grpc.NewGRPCServer(cfg.Grpc, log)
	a.grpcSrv.RegisterServices()
	go a.grpcSrv.WatchDependencies(a.bgCtx, healthProbeInterval,
		v1Grpc.Probe{Name: "postgres", Check: db.Pool.Ping},
		v1Grpc.Probe{Name: "redis", Check: redisClient.Ping},
	)

	r := chi.NewRouter()
	v1Http.NewRouter(r, log).Init(v1Http.Usecases{
		Catalog:  catalogUC,
		Cart:     cartUC,
		Shipping: shippingUC,
		Payment:  paymentUC,
		Checkout: checkoutUC,
	})
	a.httpSrv = v1Http.NewServer(r, cfg.Http)

	return nil
}

// Run запускает HTTP и gRPC серверы и блокируется до сигнала остановки или фатальной ошибки.
func (a *App) Run() error {
	grpcErrCh := make(chan error, 1)
	go func() {
		a.logger.Infof("gRPC server starting on %s:%s", a.cfg.Grpc.NetworkMode, a.cfg.Grpc.Port)
		if err := a.grpcSrv.Start(); err != nil {
			a.logger.Errorf(err, "gRPC server failed")
			grpcErrCh <- err
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Infof("HTTP server started on port %s", a.cfg.Http.Port)
		if err := a.httpSrv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Errorf(err, "HTTP server failed")
			errCh <- err
		}
	}()

	// === Ожидание сигнала или ошибки ===
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	var appErr error
	select {
	case appErr = <-errCh:
		a.logger.Errorf(appErr, "HTTP server fatal error")
	case appErr = <-grpcErrCh:
		a.logger.Errorf(appErr, "gRPC server fatal error")
	case <-shutdown:
		a.logger.Infof("Received shutdown signal, stopping gracefully...")
	}

	// === Graceful shutdown ===
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := a.httpSrv.Stop(shutdownCtx); err != nil {
		a.logger.Errorf(err, "HTTP server shutdown error")
	} else {
		a.logger.Infof("HTTP server stopped")
	}

	if err := a.grpcSrv.Stop(shutdownCtx); err != nil {
		if !errors.Is(err, context.DeadlineExceeded) {
			a.logger.Errorf(err, "gRPC server shutdown error")
		} else {
			a.logger.Warnf("gRPC server shutdown timeout")
		}
	}

	a.bgCancel()
	if err := a.closer.Close(shutdownCtx); err != nil {
		a.logger.Errorf(err, "resource shutdown error")
	}

	a.logger.Infof("Application shutdown complete")
	return appErr
}

func initPGDB(logger logger.Logger, cfg *config.Config) (*postgres.PgDatabase, error) {
	db, err := postgres.Connect(cfg.Db)
	if err != nil {
		logger.Errorf(err, "failed to connect to database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.RunMigrations(logger); err != nil {
		logger.Errorf(err, "failed to run migrations")
		db.Pool.Close()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}
