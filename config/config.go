package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server ServerConfig
	Exam   ExamConfig
	Export ExportConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all (e.g. http://localhost:3000)
	SubmitDelayMS      int    // simulated processing window before a submission is finalized
}

// ExamConfig holds the exam-program settings pre-filled into new drafts.
type ExamConfig struct {
	Date string // program exam date, yyyy-mm-dd
}

// ExportConfig holds document rasterization and PDF export settings.
type ExportConfig struct {
	RasterScale      float64 // device scale factor for node screenshots; min 2 for legible text
	ChromeTimeoutSec int     // budget for one headless-Chrome rasterization
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load() // .env

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        getEnvInt("READ_TIMEOUT_SEC", 30),
			WriteTimeout:       getEnvInt("WRITE_TIMEOUT_SEC", 60),
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
			SubmitDelayMS:      getEnvInt("SUBMIT_DELAY_MS", 1500),
		},
		Exam: ExamConfig{
			Date: getEnv("EXAM_DATE", "2024-06-15"),
		},
		Export: ExportConfig{
			RasterScale:      getEnvFloat("RASTER_SCALE", 2),
			ChromeTimeoutSec: getEnvInt("CHROME_TIMEOUT_SEC", 30),
		},
	}
	if cfg.Export.RasterScale < 2 {
		cfg.Export.RasterScale = 2
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
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
