package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	_ "clearing_proposals/docs"
	"clearing_proposals/internal/adapter/http/routes"
	"clearing_proposals/internal/config"
	"clearing_proposals/internal/infrastructure/logger"

	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"
)

// @title           Clearing Proposals API
// @version         1.0
// @description     Proposal lifecycle with signed approval links, deposits and audit events.
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.url    http://www.swagger.io/support
// @contact.email  support@swagger.io

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080

// @BasePath  /v1

// @securityDefinitions.apikey AdminKey
// @in header
// @name X-Admin-Key
// @description Static back-office API key.

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	l := logger.New(cfg.App.LogLevel, cfg.App.LogFormat)
	defer func() { _ = l.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	l.Info("[main] starting",
		zap.String("env", cfg.App.Environment),
		zap.String("storage", cfg.Storage.Backend),
		zap.String("email", cfg.Email.Transport),
		zap.Bool("payments_mock", cfg.Payments.Mock),
	)
	if err := routes.Run(ctx, cfg, l); err != nil {
		l.Fatal("Failed to startup the application", zap.Error(err))
	}
}
