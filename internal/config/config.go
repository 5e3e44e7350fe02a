package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Storage     StorageConfig
	Database    DatabaseConfig
	Camera      CameraConfig
	Recognition RecognitionConfig
	Email       EmailConfig
	Web         WebConfig
}

type StorageConfig struct {
	DBPath       string // SQLite database file (default backend)
	EncodingsDir string // one JSON encoding file per student
	DatasetDir   string // accepted face crops, one directory per student
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL; empty selects SQLite
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

type CameraConfig struct {
	URL string // MJPEG stream or snapshot JPEG endpoint
}

type RecognitionConfig struct {
	ModelsDir     string  // dlib model files for go-face
	Tolerance     float64 // max embedding distance for a match (default 0.4)
	BlurThreshold float64 // min variance of Laplacian for an accepted frame (default 100)
	UseHNSW       bool    // accelerate nearest-embedding search with an in-memory index
}

type EmailConfig struct {
	Sender   string
	Password string
	Host     string
	Port     int
	Domain   string // institutional domain, recipient is <reg_no>@<domain>
}

type WebConfig struct {
	Host string
	Port int
}

// Enabled reports whether notification delivery is configured.
// Missing credentials disable email without failing the capture flow.
func (c *EmailConfig) Enabled() bool {
	return c.Sender != "" && c.Password != ""
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a positive float.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

// envBool reads an environment variable as a boolean flag.
func envBool(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && v
}

func envDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func Load() *Config {
	return &Config{
		Storage: StorageConfig{
			DBPath:       envDefault("ATTENDANCE_DB_PATH", "database/attendance.db"),
			EncodingsDir: envDefault("ENCODINGS_DIR", "encodings"),
			DatasetDir:   envDefault("DATASET_DIR", "dataset"),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Camera: CameraConfig{
			URL: os.Getenv("CAMERA_URL"),
		},
		Recognition: RecognitionConfig{
			ModelsDir:     envDefault("MODELS_DIR", "models"),
			Tolerance:     envFloat("MATCH_TOLERANCE", 0.4),
			BlurThreshold: envFloat("BLUR_THRESHOLD", 100),
			UseHNSW:       envBool("HNSW_INDEX"),
		},
		Email: EmailConfig{
			Sender:   os.Getenv("EMAIL_SENDER"),
			Password: os.Getenv("EMAIL_APP_PASSWORD"),
			Host:     envDefault("SMTP_HOST", "smtp.gmail.com"),
			Port:     envInt("SMTP_PORT", 587),
			Domain:   envDefault("EMAIL_DOMAIN", "ses.yu.edu.jo"),
		},
		Web: WebConfig{
			Host: envDefault("WEB_HOST", "0.0.0.0"),
			Port: envInt("WEB_PORT", 8080),
		},
	}
}

// Validate checks ranges that would otherwise fail deep inside a session.
func (c *Config) Validate() error {
	if c.Recognition.Tolerance <= 0 || c.Recognition.Tolerance > 1 {
		return fmt.Errorf("MATCH_TOLERANCE must be in (0, 1], got %f", c.Recognition.Tolerance)
	}
	if c.Recognition.BlurThreshold <= 0 {
		return fmt.Errorf("BLUR_THRESHOLD must be positive, got %f", c.Recognition.BlurThreshold)
	}
	if c.Email.Port <= 0 || c.Email.Port > 65535 {
		return fmt.Errorf("SMTP_PORT out of range: %d", c.Email.Port)
	}
	if c.Web.Port <= 0 || c.Web.Port > 65535 {
		return fmt.Errorf("WEB_PORT out of range: %d", c.Web.Port)
	}
	return nil
}
