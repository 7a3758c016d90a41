package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"

	LockBackendRedis = "redis"
	LockBackendLocal = "local"

	RoomProviderTwilio = "twilio"
	RoomProviderLocal  = "local"
)

type Config struct {
	AppPort string
	AppMode string
	LogMode string

	StoreDriver string
	DBHost      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBPort      string

	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	JWTSecret string

	LockBackend string
	LockTTL     time.Duration

	RoomProvider       string
	RoomAccountSID     string
	RoomAPIKey         string
	RoomAPISecret      string
	RoomType           string
	RoomTokenTTL       time.Duration
	RoomDestroyTimeout time.Duration

	StaleSessionAfter  time.Duration
	StaleSweepInterval time.Duration

	KafkaBrokers []string
	KafkaTopic   string

	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string

	CallRateLimit  int
	CallRateWindow time.Duration

	FanoutRetries int
}

func LoadConfig() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		AppPort: getEnv("APP_PORT", "8080"),
		AppMode: getEnv("APP_MODE", "debug"),
		LogMode: getEnv("LOG_MODE", "development"),

		StoreDriver: getEnv("STORE_DRIVER", StoreDriverPostgres),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPassword:  getEnv("DB_PASSWORD", "postgres"),
		DBName:      getEnv("DB_NAME", "jobfair_live"),
		DBPort:      getEnv("DB_PORT", "5432"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		JWTSecret: getEnv("JWT_SECRET", "change-me"),

		LockBackend: getEnv("LOCK_BACKEND", LockBackendRedis),
		LockTTL:     getEnvAsDuration("LOCK_TTL", 10*time.Second),

		RoomProvider:       getEnv("ROOM_PROVIDER", RoomProviderLocal),
		RoomAccountSID:     getEnv("ROOM_ACCOUNT_SID", ""),
		RoomAPIKey:         getEnv("ROOM_API_KEY", ""),
		RoomAPISecret:      getEnv("ROOM_API_SECRET", ""),
		RoomType:           getEnv("ROOM_TYPE", "group"),
		RoomTokenTTL:       getEnvAsDuration("ROOM_TOKEN_TTL", time.Hour),
		RoomDestroyTimeout: getEnvAsDuration("ROOM_DESTROY_TIMEOUT", 5*time.Second),

		StaleSessionAfter:  getEnvAsDuration("STALE_SESSION_AFTER", time.Hour),
		StaleSweepInterval: getEnvAsDuration("STALE_SWEEP_INTERVAL", 0),

		KafkaBrokers: getEnvAsList("KAFKA_BROKERS"),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "jobfair.live.events"),

		S3Bucket:    getEnv("S3_BUCKET", ""),
		S3Region:    getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:  getEnv("S3_ENDPOINT", ""),
		S3AccessKey: getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey: getEnv("S3_SECRET_KEY", ""),

		CallRateLimit:  getEnvAsInt("CALL_RATE_LIMIT", 30),
		CallRateWindow: getEnvAsDuration("CALL_RATE_WINDOW", time.Minute),

		FanoutRetries: getEnvAsInt("FANOUT_RETRIES", 3),
	}
}

// Validate rejects combinations the server cannot start with.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreDriverPostgres, StoreDriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	switch c.LockBackend {
	case LockBackendRedis, LockBackendLocal:
	default:
		return fmt.Errorf("unknown LOCK_BACKEND %q", c.LockBackend)
	}
	switch c.RoomProvider {
	case RoomProviderTwilio:
		if c.RoomAccountSID == "" || c.RoomAPIKey == "" || c.RoomAPISecret == "" {
			return fmt.Errorf("ROOM_ACCOUNT_SID, ROOM_API_KEY and ROOM_API_SECRET are required for the twilio provider")
		}
	case RoomProviderLocal:
	default:
		return fmt.Errorf("unknown ROOM_PROVIDER %q", c.RoomProvider)
	}
	if c.AppMode == "release" && (c.JWTSecret == "" || c.JWTSecret == "change-me") {
		return fmt.Errorf("JWT_SECRET must be set in release mode")
	}
	if c.StaleSessionAfter <= 0 {
		return fmt.Errorf("STALE_SESSION_AFTER must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsList(key string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
