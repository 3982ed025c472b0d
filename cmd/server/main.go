package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Skotchmaster/zefir_shop/internal/config"
	"github.com/Skotchmaster/zefir_shop/internal/events"
	"github.com/Skotchmaster/zefir_shop/internal/httpserver"
	"github.com/Skotchmaster/zefir_shop/internal/models"
	"github.com/Skotchmaster/zefir_shop/internal/repo"
	"github.com/Skotchmaster/zefir_shop/internal/search"
	"github.com/Skotchmaster/zefir_shop/internal/service"
	pkgdb "github.com/Skotchmaster/zefir_shop/pkg/db"
	"github.com/Skotchmaster/zefir_shop/pkg/logging"
	"github.com/Skotchmaster/zefir_shop/pkg/metrics"
	loggingmw "github.com/Skotchmaster/zefir_shop/pkg/middleware/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel).With("service", "zefir_shop")
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers)
	} else {
		logger.Warn("kafka disabled, KAFKA_BROKERS is empty")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewServerMetrics("shop", reg)

	r := repo.New(db)
	catalog := &service.CatalogService{Repo: r, Events: publisher, Views: m.ProductViews}
	if cfg.ESURL != "" {
		es, err := search.New(cfg.ESURL, cfg.ESUser, cfg.ESPassword, cfg.ESIndex)
		if err != nil {
			log.Fatalf("elasticsearch: %v", err)
		}
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := es.Ping(pingCtx); err != nil {
			logger.Warn("elasticsearch unreachable, search falls back to catalog filtering", "error", err)
		} else {
			catalog.Index = es
		}
		pingCancel()
	}
	if catalog.Index != nil {
		reindexCtx, reindexCancel := context.WithTimeout(context.Background(), time.Minute)
		n, err := catalog.Reindex(reindexCtx)
		reindexCancel()
		if err != nil {
			logger.Warn("reindex products", "indexed", n, "error", err)
		} else {
			logger.Info("reindex products", "indexed", n)
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = httpserver.ErrorHandler
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(m.Middleware())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	httpserver.Register(e, &httpserver.Deps{
		DB:      db,
		Metrics: m,
		AccountHandler: &httpserver.AccountHTTP{Svc: &service.AccountService{
			Repo:        r,
			Events:      publisher,
			JWTSecret:   cfg.JWTSecret,
			AccessTTL:   cfg.AccessTokenTTL,
			DefaultRole: cfg.DefaultRole,
		}},
		CatalogHandler:  &httpserver.CatalogHTTP{Svc: catalog},
		CategoryHandler: &httpserver.CategoryHTTP{Svc: &service.CategoryService{Repo: r}},
		ThematicHandler: &httpserver.ThematicHTTP{Svc: &service.ThematicService{Repo: r}},
		BasketHandler:   &httpserver.BasketHTTP{Svc: &service.BasketService{Repo: r}},
		OrderHandler:    &httpserver.OrderHTTP{Svc: &service.OrderService{Repo: r, Events: publisher}},
		JWTSecret:       cfg.JWTSecret,
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := publisher.Close(); err != nil {
		logger.Error("kafka close", "error", err)
	}
	if err := pkgdb.Close(db); err != nil {
		logger.Error("db close", "error", err)
	}

	logger.Info("stopped")
}
