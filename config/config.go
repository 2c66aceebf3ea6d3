package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds everything the process reads from the environment. It is
// loaded once in main and passed down; nothing else touches os.Getenv.
type Config struct {
	Port            string
	Env             string
	MongoURI        string
	DBName          string
	JWTSecret       string
	FrontendBaseURL string

	// Photo storage: "local" (default) or "s3".
	StorageBackend string
	UploadDir      string

	S3   S3Config
	SMTP SMTPConfig

	RedisAddr     string
	RedisPassword string
}

type S3Config struct {
	Region    string
	Bucket    string
	Endpoint  string
	AccessKey string
	SecretKey string
	PublicURL string
}

type SMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

// Load reads the environment into a Config. MONGODB_URI and JWT_SECRET are
// mandatory; everything else has a dev-friendly default.
func Load() (*Config, error) {
	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("GO_ENV", "development"),
		MongoURI:        os.Getenv("MONGODB_URI"),
		DBName:          getEnv("DB_NAME", "fixmycity"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		FrontendBaseURL: getEnv("FRONTEND_BASE_URL", "http://localhost:5173"),
		StorageBackend:  getEnv("STORAGE_BACKEND", "local"),
		UploadDir:       getEnv("UPLOAD_DIR", "./uploads"),
		S3: S3Config{
			Region:    getEnv("S3_REGION", "us-east-1"),
			Bucket:    os.Getenv("S3_BUCKET"),
			Endpoint:  os.Getenv("S3_ENDPOINT"),
			AccessKey: os.Getenv("S3_ACCESS_KEY"),
			SecretKey: os.Getenv("S3_SECRET_KEY"),
			PublicURL: os.Getenv("S3_PUBLIC_URL"),
		},
		SMTP: SMTPConfig{
			Host: os.Getenv("SMTP_HOST"),
			Port: getEnvInt("SMTP_PORT", 587),
			User: os.Getenv("SMTP_USER"),
			Pass: os.Getenv("SMTP_PASS"),
			From: os.Getenv("SMTP_FROM"),
		},
		RedisAddr:     os.Getenv("REDIS_ADDRESS"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
	}

	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("MONGODB_URI environment variable is not set")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is not set")
	}
	if cfg.StorageBackend == "s3" && cfg.S3.Bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET is required when STORAGE_BACKEND=s3")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
