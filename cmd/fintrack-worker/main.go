package main

import (
	"context"
	"os"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/cli"
	"fintrack/internal/log"
	"fintrack/internal/notify"
	"fintrack/internal/services"
	"fintrack/internal/worker"
)

const digestTimeout = 10 * time.Minute

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		log.New(log.DefaultConfig()).Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg, log.ComponentWorker)
	logger.Info("Starting fintrack-worker")

	res, err := cli.OpenBackend(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, log.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}

	var mailer notify.Mailer
	if cfg.MailEnabled() {
		mailer = notify.NewSMTPMailer(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
		logger.Info("Digest mail enabled", "smtp_host", cfg.SMTPHost)
	} else {
		mailer = notify.NewLogMailer(logger)
		logger.Info("SMTP disabled - digests will be logged")
	}

	fin := services.NewFinanceService(res.Store, nil, nil, logger)
	scheduler, err := worker.NewScheduler(cfg.DigestSchedule,
		worker.NewDigestJob(res.Store, fin, mailer, logger), digestTimeout, logger)
	if err != nil {
		logger.Error("Failed to schedule digest", log.FieldError, err)
		os.Exit(1)
	}

	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
	} else {
		logger.Info("AMQP disabled - skipping activity consumption")
	}

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(ctx context.Context) {
		scheduler.Stop(ctx)
		closers := []func() error{res.Cleanup}
		if amqpClient != nil {
			closers = append(closers, amqpClient.Close)
		}
		if err := cli.Cleanup(closers...); err != nil {
			logger.Error("Cleanup failed", log.FieldError, err)
		}
	})

	scheduler.Start()

	if amqpClient != nil {
		activity := worker.NewActivityWorker(amqpClient, res.Store, logger)
		go func() {
			if err := activity.Run(ctx); err != nil {
				logger.Error("Activity consumer stopped", log.FieldError, err)
			}
		}()
	}

	<-done
	logger.Info("Worker stopped gracefully")
}
