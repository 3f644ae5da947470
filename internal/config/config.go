// Package config loads the service configuration from config.yaml, an
// optional .env file and environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/ocrfields/extract-json-service/internal/models"
)

// Load reads the YAML file at path (a missing file means defaults), loads
// .env into the environment when present, then applies overrides.
func Load(path string) (*models.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	config := Defaults()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
		log.Debug().Str("path", path).Msg("config file not found, using defaults")
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := applyEnv(config); err != nil {
		return nil, err
	}
	fillDefaults(config)
	return config, nil
}

// Defaults returns the configuration used when nothing is set
func Defaults() *models.Config {
	return &models.Config{
		Port:         models.DefaultPort,
		Host:         models.DefaultHost,
		MaxBodyBytes: models.DefaultMaxBodyBytes,
		OCR: models.OCRConfig{
			Engine:   models.DefaultOCREngine,
			Language: models.DefaultOCRLanguage,
			Timeout:  models.DefaultOCRTimeout,
		},
		Log: models.LogConfig{
			Level:      models.DefaultLogLevel,
			Format:     models.DefaultLogFormat,
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
			Compress:   true,
		},
		Storage: models.StorageConfig{
			Bucket: models.DefaultStorageBucket,
		},
	}
}

// fillDefaults restores defaults for values the YAML file zeroed out
func fillDefaults(c *models.Config) {
	d := Defaults()
	if c.Port == 0 {
		c.Port = d.Port
	}
	if c.Host == "" {
		c.Host = d.Host
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = d.MaxBodyBytes
	}
	if c.OCR.Engine == "" {
		c.OCR.Engine = d.OCR.Engine
	}
	if c.OCR.Language == "" {
		c.OCR.Language = d.OCR.Language
	}
	if c.OCR.Timeout <= 0 {
		c.OCR.Timeout = d.OCR.Timeout
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
	if c.Storage.Bucket == "" {
		c.Storage.Bucket = d.Storage.Bucket
	}
}

// applyEnv overrides config values with environment variables if present
func applyEnv(c *models.Config) error {
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", port, err)
		}
		c.Port = p
	}
	if host := os.Getenv("HOST"); host != "" {
		c.Host = host
	}

	if engine := os.Getenv("OCR_ENGINE"); engine != "" {
		c.OCR.Engine = engine
	}
	if lang := os.Getenv("OCR_LANGUAGE"); lang != "" {
		c.OCR.Language = lang
	}
	if timeout := os.Getenv("OCR_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid OCR_TIMEOUT %q: %w", timeout, err)
		}
		c.OCR.Timeout = d
	}
	if n := os.Getenv("OCR_MAX_CONCURRENT"); n != "" {
		v, err := strconv.Atoi(n)
		if err != nil {
			return fmt.Errorf("invalid OCR_MAX_CONCURRENT %q: %w", n, err)
		}
		c.OCR.MaxConcurrent = v
	}
	if v := os.Getenv("OCR_PREPROCESS"); v != "" {
		c.OCR.Preprocess = parseBool(v)
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		c.Log.Format = format
	}
	if file := os.Getenv("LOG_FILE"); file != "" {
		c.Log.File = file
	}

	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		c.Auth.JWTSecret = secret
	}
	if url := os.Getenv("DATABASE_URL"); url != "" {
		c.Database.URL = url
	}

	if endpoint := os.Getenv("MINIO_ENDPOINT"); endpoint != "" {
		c.Storage.Endpoint = endpoint
		c.Storage.Enabled = true
	}
	if key := os.Getenv("MINIO_ACCESS_KEY"); key != "" {
		c.Storage.AccessKey = key
	}
	if secret := os.Getenv("MINIO_SECRET_KEY"); secret != "" {
		c.Storage.SecretKey = secret
	}
	if bucket := os.Getenv("MINIO_BUCKET"); bucket != "" {
		c.Storage.Bucket = bucket
	}
	if v := os.Getenv("MINIO_USE_SSL"); v != "" {
		c.Storage.UseSSL = parseBool(v)
	}

	return nil
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
