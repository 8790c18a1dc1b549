package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultSessionSecret = "default-secret-key-change-in-production"

type StorageConfig struct {
	Endpoint     string
	AccessKey    string
	SecretKey    string
	Bucket       string
	UseSSL       bool
	UploadPreset string
}

// Configured reports whether every credential needed to reach object storage is present.
func (s StorageConfig) Configured() bool {
	return s.Endpoint != "" && s.AccessKey != "" && s.SecretKey != "" && s.Bucket != ""
}

type Config struct {
	Port        string
	Environment string
	LogLevel    string
	DBUrl       string

	SessionSecret   string
	SessionTTL      time.Duration
	DefaultSecret   bool
	LoginPath       string
	CORSOrigins     []string
	RateLimitRPS    float64
	RateLimitBurst  int
	Storage         StorageConfig
	RedisAddr       string
	ViewDedupWindow time.Duration
	TrustProxy      bool
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func LoadConfig() Config {
	err := godotenv.Load()
	if err != nil {
		log.Println(".env file not found, using environment and defaults")
	}

	secret := os.Getenv("SESSION_SECRET")
	defaultSecret := secret == ""
	if defaultSecret {
		secret = defaultSessionSecret
	}

	return Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		DBUrl:       withParseTime(os.Getenv("DB_URL")),

		SessionSecret:  secret,
		DefaultSecret:  defaultSecret,
		SessionTTL:     getDuration("SESSION_TTL", 7*24*time.Hour),
		LoginPath:      getEnv("LOGIN_PATH", "/login"),
		CORSOrigins:    splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		RateLimitRPS:   getFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst: getInt("RATE_LIMIT_BURST", 20),
		Storage: StorageConfig{
			Endpoint:     os.Getenv("STORAGE_ENDPOINT"),
			AccessKey:    os.Getenv("STORAGE_ACCESS_KEY"),
			SecretKey:    os.Getenv("STORAGE_SECRET_KEY"),
			Bucket:       os.Getenv("STORAGE_BUCKET"),
			UseSSL:       getBool("STORAGE_USE_SSL", true),
			UploadPreset: getEnv("STORAGE_UPLOAD_PRESET", "inmobiliaria_preset"),
		},
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		ViewDedupWindow: getDuration("VIEW_DEDUP_WINDOW", 0),
		TrustProxy:      getBool("TRUST_PROXY", false),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return fallback
	}
	return v
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// withParseTime makes the MySQL driver scan DATETIME columns into time.Time.
func withParseTime(dsn string) string {
	if dsn == "" || strings.Contains(dsn, "parseTime=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&parseTime=true"
	}
	return dsn + "?parseTime=true"
}
