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

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/acolhimento-gf/visitantes-api/internal/business/accounts"
	"github.com/acolhimento-gf/visitantes-api/internal/business/visitors"
	"github.com/acolhimento-gf/visitantes-api/internal/platform/config"
	apirouter "github.com/acolhimento-gf/visitantes-api/internal/platform/http"
	"github.com/acolhimento-gf/visitantes-api/internal/platform/logger"
	"github.com/acolhimento-gf/visitantes-api/internal/platform/metrics"
	redisclient "github.com/acolhimento-gf/visitantes-api/internal/platform/redis"
	"github.com/acolhimento-gf/visitantes-api/internal/platform/viacep"
	"github.com/acolhimento-gf/visitantes-api/internal/repository/stores"
	"github.com/acolhimento-gf/visitantes-api/internal/session"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load(".env.local", ".env")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	lg, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer lg.Sync()

	gin.SetMode(cfg.GinMode)

	set, err := stores.Open(ctx, cfg)
	if err != nil {
		lg.Fatal("store init", "backend", cfg.StoreBackend, "error", err)
	}
	defer set.Close()
	lg.Info("store connected", "backend", set.Backend, "source", set.Source)

	m := metrics.New()

	cepCfg := viacep.Config{
		BaseURL:  cfg.ViaCEPBaseURL,
		Mock:     cfg.ViaCEPMock,
		CacheTTL: cfg.CEPCacheTTL,
		Observe:  m.ObserveCEPLookup,
	}
	rdb, err := redisclient.New(ctx, cfg.RedisURL)
	if err != nil {
		lg.Warn("redis unavailable, CEP cache disabled", "error", err)
	}
	if rdb != nil {
		defer rdb.Close()
		cepCfg.Cache = redisclient.NewCEPCache(rdb)
		lg.Info("CEP cache enabled", "ttl", cfg.CEPCacheTTL.String())
	}
	cep := viacep.New(nil, cepCfg)

	issuer := session.NewIssuer(cfg.JWTSecret, cfg.JWTTTL)
	accountSvc := accounts.NewService(set.Users, issuer, lg.With("component", "accounts"))
	visitorSvc := visitors.NewService(set.Visitors, set.Stats, set.Runs, cep, visitors.Options{
		Workers: cfg.BackfillWorkers,
		Metrics: m,
		Logger:  lg.With("component", "visitors"),
	})

	router := apirouter.NewRouter(apirouter.RouterConfig{
		Accounts:       accountSvc,
		Visitors:       visitorSvc,
		Issuer:         issuer,
		Metrics:        m,
		Logger:         lg.With("component", "http"),
		AllowedOrigins: cfg.Origins(),
		Health: func(ctx context.Context) error {
			if err := set.Ping(ctx); err != nil {
				return err
			}
			if rdb != nil {
				return rdb.Health(ctx)
			}
			return nil
		},
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lg.Info("server listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		lg.Error("server stopped with error", "error", err)
		return
	}
	lg.Info("server exited")
}
