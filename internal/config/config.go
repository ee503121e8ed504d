// Package config loads service configuration from the environment.
package config

import "os"

// Config holds the settings of the converter service.
type Config struct {
	HTTP struct {
		Addr string
	}
	Upload struct {
		Dir string
	}
	Gemini struct {
		APIKey string
		Model  string
	}
	Log struct {
		Level  string
		Format string
	}
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":3000")
	cfg.Upload.Dir = getEnv("UPLOAD_DIR", "uploads")

	// Without an API key the AI fallback mapper stays inert.
	cfg.Gemini.APIKey = getEnv("GEMINI_API_KEY", "")
	cfg.Gemini.Model = getEnv("GEMINI_MODEL", "")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
