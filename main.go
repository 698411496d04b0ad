package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/text/language"

	apihttp "contract-ledger/internal/api/http"
	"contract-ledger/internal/audit"
	"contract-ledger/internal/auth"
	"contract-ledger/internal/config"
	"contract-ledger/internal/observability/logging"
	"contract-ledger/internal/observability/metrics"
	reportapp "contract-ledger/internal/reporting/application"
	"contract-ledger/internal/reporting/infrastructure/backend"
	reportpostgres "contract-ledger/internal/reporting/infrastructure/postgres"
	reportredis "contract-ledger/internal/reporting/infrastructure/redis"
	reportinterfaces "contract-ledger/internal/reporting/interfaces"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, err := logging.New(logging.Config{Level: cfg.LogLevel, Development: cfg.LogDevelopment})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	metrics.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		periods     reportapp.PeriodSource
		charges     reportapp.ChargeSource
		warranty    reportapp.WarrantySource
		auditLogger audit.Logger
		health      apihttp.Pinger
	)

	switch cfg.PeriodSource {
	case config.SourcePostgres:
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			logger.Fatalw("db open error", "error", err)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			logger.Fatalw("db ping error", "error", err)
		}
		periods = reportpostgres.NewPeriodRepository(db, reportpostgres.WithPeriodLogger(logger.WithComponent("period_repository")))
		charges = reportpostgres.NewChargeRepository(db)
		warranty = reportpostgres.NewWarrantyRepository(db)
		auditLogger = audit.NewRepository(db)
		health = db
	case config.SourceBackend:
		client, err := backend.NewClient(cfg.BackendBaseURL,
			backend.WithToken(cfg.BackendToken),
			backend.WithHTTPClient(&http.Client{Timeout: cfg.BackendTimeout}),
			backend.WithLogger(logger.WithComponent("backend_client")),
			backend.WithLocation(cfg.BackendLocation),
		)
		if err != nil {
			logger.Fatalw("backend client error", "error", err)
		}
		periods = client
		charges = client
		auditLogger = audit.NewLogWriter(logger)
	}

	if cfg.RedisAddr != "" {
		rdb := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warnw("redis unreachable, charge cache will fall through", "addr", cfg.RedisAddr, "error", err)
		}
		cache, err := reportredis.NewChargeCache(rdb, charges,
			reportredis.WithTTL(cfg.ChargeCacheTTL),
			reportredis.WithLogger(logger.WithComponent("charge_cache")),
		)
		if err != nil {
			logger.Fatalw("charge cache error", "error", err)
		}
		charges = cache
	}

	ledger, err := reportapp.NewChargeLedger(charges,
		reportapp.WithFetchConcurrency(cfg.FetchConcurrency),
		reportapp.WithLedgerLogger(logger),
	)
	if err != nil {
		logger.Fatalw("charge ledger error", "error", err)
	}

	serviceOpts := []reportapp.ServiceOption{
		reportapp.WithServiceLogger(logger),
		reportapp.WithExporter("xlsx", reportinterfaces.NewWorkbookExporter(cfg.Report)),
		reportapp.WithExporter("pdf", reportinterfaces.NewPDFExporter(cfg.Report)),
	}
	if warranty != nil {
		serviceOpts = append(serviceOpts, reportapp.WithWarrantySource(warranty))
	}
	service, err := reportapp.NewReportService(periods, ledger, serviceOpts...)
	if err != nil {
		logger.Fatalw("report service error", "error", err)
	}

	reportHandler, err := reportinterfaces.NewReportHandler(service,
		reportinterfaces.WithAuditLogger(auditLogger),
		reportinterfaces.WithCurrency(reportinterfaces.NewCurrencyFormatter(cfg.Report.CurrencySymbol, language.Thai)),
		reportinterfaces.WithHandlerLogger(logger.WithComponent("report_http")),
	)
	if err != nil {
		logger.Fatalw("report handler error", "error", err)
	}

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)
	authMiddleware.Logger = logger.WithComponent("auth")

	server := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: apihttp.NewRouter(apihttp.RouterConfig{
			Logger: logger,
			Auth:   authMiddleware,
			Health: health,
			Mounts: []apihttp.Mounter{reportHandler},
		}),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Infow("http listening", "addr", cfg.HTTPAddr, "source", cfg.PeriodSource)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalw("http server error", "error", err)
	}
}
