package db

import (
	"PowerOyoApi/internal/config"
	"PowerOyoApi/pkg/logger"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect opens the postgres connection. The handle is passed explicitly
// to every service; there is no package-level singleton.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return nil, logger.WrapError(err, "open postgres")
	}

	return gdb, nil
}
