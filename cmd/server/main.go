package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/firepit/infernos/internal/config"
	"github.com/firepit/infernos/internal/cult"
	"github.com/firepit/infernos/internal/httpapi"
	"github.com/firepit/infernos/internal/inferno"
	"github.com/firepit/infernos/internal/revalidate"
	"github.com/firepit/infernos/internal/service"
	"github.com/firepit/infernos/internal/storage/memory"
	"github.com/firepit/infernos/internal/storage/postgres"
	"github.com/firepit/infernos/internal/user"
	"go.uber.org/zap"
)

func main() {
	config.LoadEnv()

	storageType := flag.String("storage", "memory", "storage backend: memory or postgres")
	addr := flag.String("addr", config.GetEnvDefault("LISTEN_ADDR", ":8080"), "listen address")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	var userStore user.UserStorage
	var infernoStore inferno.InfernoStorage
	var cultStore cult.CultStorage

	switch *storageType {
	case "postgres":
		if err := postgres.InitDB(); err != nil {
			logger.Fatal("database connection failed", zap.Error(err))
		}
		if err := postgres.Migrate(); err != nil {
			logger.Fatal("database migration failed", zap.Error(err))
		}
		logger.Info("using postgres storage")
		userStore = postgres.NewUserPostgresStorage()
		infernoStore = postgres.NewInfernoPostgresStorage()
		cultStore = postgres.NewCultPostgresStorage()

	case "memory":
		logger.Info("using in-memory storage")
		userStore = memory.NewUserMemoryStorage()
		infernoStore = memory.NewInfernoMemoryStorage()
		cultStore = memory.NewCultMemoryStorage()

	default:
		logger.Fatal("unknown storage type", zap.String("storage", *storageType))
	}

	var reval revalidate.Manager
	var redisManager *revalidate.RedisManager
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		redisManager, err = revalidate.NewRedisManager(redisURL, logger)
		if err != nil {
			logger.Fatal("redis connection failed", zap.Error(err))
		}
		logger.Info("view revalidation via redis")
		reval = redisManager
	} else {
		logger.Info("view revalidation in-process")
		reval = revalidate.NewMemoryManager()
	}

	svc := service.New(userStore, infernoStore, cultStore, reval, logger)
	app := httpapi.NewApp(httpapi.NewHandler(svc, logger))

	go func() {
		logger.Info("server listening", zap.String("addr", *addr))
		if err := app.Listen(*addr); err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}

	if *storageType == "postgres" {
		if err := postgres.CloseDB(); err != nil {
			logger.Error("database close error", zap.Error(err))
		}
	}
	if redisManager != nil {
		if err := redisManager.Close(); err != nil {
			logger.Error("redis close error", zap.Error(err))
		}
	}

	logger.Info("server stopped")
}
