package main

import (
	"os"
	"os/signal"
	"syscall"

	"calbook/config"
	"calbook/internal/adapters/email"
	"calbook/internal/notify"
	"calbook/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := config.NewLogger()

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:          cfg.SESRegion,
			AccessKeyID:     cfg.SESAccessKeyID,
			SecretAccessKey: cfg.SESSecretAccessKey,
		},
	})
	if err != nil {
		logger.Error("create mailer", "err", err)
		os.Exit(1)
	}

	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer())
	worker := notify.NewWorker(cfg.RedisAddr, emailService, logger)

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop
		logger.Info("shutting down worker")
		worker.Shutdown()
	}()

	logger.Info("notification worker starting", "redis", cfg.RedisAddr, "provider", cfg.EmailProvider)
	if err := worker.Run(); err != nil {
		logger.Error("worker error", "err", err)
		os.Exit(1)
	}
}
