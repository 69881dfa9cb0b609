package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tiaadeals/server/internal/config"
	"github.com/tiaadeals/server/internal/denylist"
	"github.com/tiaadeals/server/internal/es"
	"github.com/tiaadeals/server/internal/events"
	"github.com/tiaadeals/server/internal/httpserver"
	"github.com/tiaadeals/server/internal/logging"
	authmw "github.com/tiaadeals/server/internal/middleware/auth"
	"github.com/tiaadeals/server/internal/repo"
	"github.com/tiaadeals/server/internal/service"
	"github.com/tiaadeals/server/internal/tokens"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel)

	db, err := config.InitDB(ctx, cfg)
	if err != nil {
		logger.Error("db_init_error", "error", err)
		os.Exit(1)
	}

	var dl *denylist.Denylist
	if cfg.RevocationEnabled {
		dl, err = denylist.Connect(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			logger.Error("redis_connect_error", "error", err)
			os.Exit(1)
		}
		defer dl.Close()
		logger.Info("token revocation enabled", "redis", cfg.RedisAddr)
	}

	var producer *events.Producer
	if cfg.KafkaAddress != "" {
		producer = events.NewProducer([]string{cfg.KafkaAddress})
		defer producer.Close()
		logger.Info("event publishing enabled", "kafka", cfg.KafkaAddress)
	}

	issuer := tokens.NewIssuer([]byte(cfg.JWTSecret), cfg.AccessTTL, cfg.RefreshTTL)
	r := repo.New(db)

	authSvc := &service.AuthService{Repo: r, Tokens: issuer, Denylist: dl}
	cartSvc := service.NewCartService(r)
	catalogSvc := &service.CatalogService{Repo: r}
	wishlistSvc := &service.WishlistService{Repo: r}
	userSvc := &service.UserService{Repo: r}

	deps := &httpserver.Deps{
		Logger:   logger,
		DB:       db,
		AuthMW:   authmw.New(issuer, dl),
		Auth:     &httpserver.AuthHTTP{Svc: authSvc, Producer: producer},
		Cart:     &httpserver.CartHTTP{Svc: cartSvc, Producer: producer},
		Product:  &httpserver.ProductHTTP{Svc: catalogSvc, Producer: producer},
		Category: &httpserver.CategoryHTTP{Svc: catalogSvc},
		Wishlist: &httpserver.WishlistHTTP{Svc: wishlistSvc},
		User:     &httpserver.UserHTTP{Svc: userSvc},
	}

	if cfg.ESURL != "" {
		esClient, err := es.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			logger.Error("es_connect_error", "error", err)
			os.Exit(1)
		}
		deps.Search = &httpserver.SearchHTTP{ES: esClient, Index: cfg.ESIndex}
		logger.Info("search enabled", "es", cfg.ESURL, "index", cfg.ESIndex)
	}

	e := httpserver.New(deps)

	go func() {
		addr := ":" + cfg.Port
		logger.Info("server starting", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server_error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown_error", "error", err)
	}
	logger.Info("server stopped")
}
