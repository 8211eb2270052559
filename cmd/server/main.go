package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"github.com/Skotchmaster/rocketshoes/internal/cart"
	"github.com/Skotchmaster/rocketshoes/internal/catalog"
	"github.com/Skotchmaster/rocketshoes/internal/config"
	"github.com/Skotchmaster/rocketshoes/internal/es"
	carthandlers "github.com/Skotchmaster/rocketshoes/internal/handlers/cart"
	"github.com/Skotchmaster/rocketshoes/internal/logging"
	"github.com/Skotchmaster/rocketshoes/internal/middleware/csrf"
	loggingmw "github.com/Skotchmaster/rocketshoes/internal/middleware/logging"
	"github.com/Skotchmaster/rocketshoes/internal/mykafka"
	"github.com/Skotchmaster/rocketshoes/internal/notify"
	"github.com/Skotchmaster/rocketshoes/internal/storage"
	httpserver "github.com/Skotchmaster/rocketshoes/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)
	slog.SetDefault(logger)

	var (
		slots cart.SlotStore
		ready func() error
		db    *gorm.DB
		rdb   *storage.RedisSlots
	)
	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	switch configuration.SLOT_STORE {
	case "redis":
		rdb = storage.NewRedisSlots(configuration.REDIS_URL)
		if err := rdb.Ping(initCtx); err != nil {
			log.Fatalf("redis init error: %v", err)
		}
		slots = rdb
		ready = func() error { return rdb.Ping(context.Background()) }
	default:
		db, err = config.InitDB(initCtx, configuration)
		if err != nil {
			log.Fatalf("db init error: %v", err)
		}
		slots = &storage.GormSlots{DB: db}
		ready = func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Ping()
		}
	}
	cancel()

	catalogClient := catalog.NewClient(configuration.CATALOG_URL)

	var products cart.ProductSource = catalogClient
	if configuration.PRODUCT_SOURCE == "elasticsearch" {
		esClient, err := es.NewClient(configuration)
		if err != nil {
			log.Fatal(err)
		}
		products = &es.Products{ES: esClient, Index: configuration.ES_INDEX}
	}

	opts := []cart.Option{cart.WithLogger(logger)}
	if configuration.STOCK_CHECK_INCLUSIVE {
		opts = append(opts, cart.WithInclusiveStock())
	}

	carts := cart.NewRegistry(cart.Deps{
		Products: products,
		Stock:    catalogClient,
		Slots:    slots,
		Notifier: notify.Logger{},
	}, opts...)

	var prod *mykafka.Producer
	if len(configuration.KAFKA_BROKERS) > 0 {
		prod, err = mykafka.NewProducer(configuration.KAFKA_BROKERS, configuration.KAFKA_TOPIC)
		if err != nil {
			log.Fatal(err)
		}
		carts.OnCreate(func(session string, s *cart.Store) {
			s.Subscribe(prod.CartObserver(session))
		})
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(middleware.CORS())

	var csrfCfg *csrf.Config
	if configuration.CSRF_ENABLED {
		c := csrf.DefaultConfig()
		csrfCfg = &c
	}

	httpserver.Register(e, &httpserver.Deps{
		CartHandler: &carthandlers.CartHandler{Carts: carts},
		JWTSecret:   []byte(configuration.JWT_SECRET),
		CSRF:        csrfCfg,
		Ready:       ready,
	})

	srv := &http.Server{
		Addr:              ":" + configuration.SERVER_PORT,
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		logger.Info("cart service listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if prod != nil {
		if err := prod.Close(); err != nil {
			logger.Error("kafka close error", "error", err)
		}
	}

	if rdb != nil {
		if err := rdb.Close(); err != nil {
			logger.Error("redis close error", "error", err)
		}
	}
	if db != nil {
		if sqlDB, err := db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				logger.Error("db close error", "error", err)
			}
		}
	}

	logger.Info("shutdown complete")
}
