package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"fintrack/internal/amqp"
	"fintrack/internal/auth"
	"fintrack/internal/cache"
	"fintrack/internal/cli"
	apphttp "fintrack/internal/http"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		log.New(log.DefaultConfig()).Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg, log.ComponentApp)

	res, err := cli.OpenBackend(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, log.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}

	var publisher services.Publisher = services.NewDirectPublisher(res.Store)
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		publisher = amqpClient
		logger.Info("Publishing events to AMQP", "exchange", cfg.AMQPExchange)
	} else {
		logger.Info("AMQP disabled - recording activity in-process")
	}

	overviews := cache.NewLRUCache[services.Overview](cfg.CacheSize, cfg.CacheTTL)
	cacheManager := cache.NewManager(logger)
	cacheManager.Register(overviews)
	cacheManager.StartCleanup(cfg.CacheTTL)

	fin := services.NewFinanceService(res.Store, overviews, nil, logger)
	deps := apphttp.Dependencies{
		Finance: fin,
		Savings: services.NewSavingsService(res.Store, fin, publisher, logger),
		Ledger:  services.NewLedgerService(res.Store, fin, publisher, logger),
	}
	if pinger, ok := res.Store.(apphttp.Pinger); ok {
		deps.Ready = pinger
	}
	if cfg.AuthEnabled() {
		deps.Identity = auth.Bearer{Tokens: auth.NewTokens(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)}
		logger.Info("Bearer token authentication enabled", "issuer", cfg.JWTIssuer)
	} else {
		logger.Warn("JWT_SECRET not set - identifying users by X-User-ID header")
	}

	srv := apphttp.NewServer(apphttp.Config{
		Addr:            ":" + cfg.Port,
		RateLimitRPM:    cfg.RateLimitRPM,
		BlockSuspicious: cfg.BlockSuspicious,
	}, deps, logger)

	_, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		cacheManager.Stop()
		closers := []func() error{res.Cleanup}
		if amqpClient != nil {
			closers = append(closers, amqpClient.Close)
		}
		if err := cli.Cleanup(closers...); err != nil {
			logger.Error("Cleanup failed", log.FieldError, err)
		}
	})

	logger.Info("Starting fintrack server", log.FieldPort, cfg.Port, log.FieldBackend, cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, log.FieldPort, cfg.Port)
		os.Exit(1)
	}

	<-done
	logger.Info("Server stopped gracefully")
}
