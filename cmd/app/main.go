package main

import (
	"PowerOyoApi/internal/app"
	"PowerOyoApi/internal/config"
	"PowerOyoApi/internal/db"
	"PowerOyoApi/pkg/logger"
	"PowerOyoApi/pkg/notify"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration: %v", err)
	}

	gdb, err := db.Connect(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize database: %v", err)
	}

	publisher, err := notify.NewRedisPublisher(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		logger.Fatal("Failed to connect to redis: %v", err)
	}

	app.Start(cfg, gdb, publisher)
}
