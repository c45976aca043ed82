package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Defaults preserved from the original platform behaviour: withdrawals past
// a cumulative 500 require an approved KYC.
const DefaultKYCWithdrawalLimit = 500

type Config struct {
	ListenAddr string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RedisAddr     string
	RedisPassword string

	JWTSecret          string
	KYCWithdrawalLimit float64
}

// Load reads configuration from the environment. A .env file is applied
// first when present so local setups match the docker-compose one.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ListenAddr:         getEnv("LISTEN_ADDR", ":8080"),
		DBHost:             getEnv("POSTGRES_HOST", "localhost"),
		DBPort:             getEnv("POSTGRES_PORT", "5432"),
		DBUser:             getEnv("POSTGRES_USER", "postgres"),
		DBPassword:         os.Getenv("POSTGRES_PASSWORD"),
		DBName:             getEnv("POSTGRES_DB", "poweroyo"),
		RedisAddr:          getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		KYCWithdrawalLimit: DefaultKYCWithdrawalLimit,
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}

	if v, ok := os.LookupEnv("KYC_WITHDRAWAL_LIMIT"); ok {
		limit, err := strconv.ParseFloat(v, 64)
		if err != nil || limit <= 0 {
			return nil, fmt.Errorf("invalid KYC_WITHDRAWAL_LIMIT: %q", v)
		}
		cfg.KYCWithdrawalLimit = limit
	}

	return cfg, nil
}

func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName)
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
