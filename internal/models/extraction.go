package models

import "time"

// ExtractRequest is the JSON body accepted by POST /extract-json
type ExtractRequest struct {
	// ImageBase64 is the encoded image, optionally prefixed with
	// "data:image/png;base64,". Nil when the key is absent.
	ImageBase64 *string `json:"imageBase64"`
}

// ExtractedData holds the four labeled values returned on success.
// On failure it is left zero so it encodes as {}.
type ExtractedData struct {
	Name         string `json:"name,omitempty"`
	Organization string `json:"organization,omitempty"`
	Address      string `json:"address,omitempty"`
	Mobile       string `json:"mobile,omitempty"`
}

// ExtractionResult is the response payload of POST /extract-json
type ExtractionResult struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Data    ExtractedData `json:"data"`
}

// Response messages
const (
	MessageSuccess        = "Successfully extracted JSON from image"
	MessageIncomplete     = "Failed to extract all required fields from image"
	MessageMissingImage   = "Missing imageBase64 in request"
	MessageInvalidBody    = "Invalid request body"
	MessageBodyTooLarge   = "Request body too large"
	MessageServerError    = "Server error during OCR processing"
	MessageUnauthorized   = "Unauthorized"
	MessageRootLiveness   = "✅ Server Running......."
	DataImagePNGPrefix    = "data:image/png;base64,"
	DefaultMaxBodyBytes   = 10 * 1024 * 1024 // 10MB
	DefaultOCRTimeout     = 60 * time.Second
	DefaultOCRLanguage    = "eng"
	DefaultOCREngine      = "tesseract"
	DefaultPort           = 3000
	DefaultHost           = "0.0.0.0"
	DefaultStorageBucket  = "ocr-images"
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "console"
	DefaultShutdownPeriod = 15 * time.Second
)

// Config represents the service configuration
type Config struct {
	// Server config
	Port         int    `yaml:"port"`
	Host         string `yaml:"host"`
	MaxBodyBytes int64  `yaml:"max_body_bytes"`

	// OCR config
	OCR OCRConfig `yaml:"ocr"`

	// Logging config
	Log LogConfig `yaml:"log"`

	// Optional integrations
	Auth     AuthConfig     `yaml:"auth"`
	Database DatabaseConfig `yaml:"database"`
	Storage  StorageConfig  `yaml:"storage"`
}

// OCRConfig represents OCR-specific configuration
type OCRConfig struct {
	Engine        string        `yaml:"engine"`         // "tesseract" or "tesseract-cli"
	Language      string        `yaml:"language"`       // OCR language (default: "eng")
	Timeout       time.Duration `yaml:"timeout"`        // Per-request OCR deadline
	MaxConcurrent int           `yaml:"max_concurrent"` // 0 means runtime.NumCPU()
	Preprocess    bool          `yaml:"preprocess"`     // Grayscale/contrast pass before OCR
	BinaryPath    string        `yaml:"binary_path"`    // tesseract-cli only
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level      string `yaml:"level"`  // debug, info, warn, error
	Format     string `yaml:"format"` // "console" or "json"
	File       string `yaml:"file"`   // Empty = stderr only
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// AuthConfig enables bearer-token checks on the extraction endpoint
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"` // Empty disables auth
}

// DatabaseConfig for the extraction log
type DatabaseConfig struct {
	URL string `yaml:"url"` // Empty disables the extraction log
}

// StorageConfig for the MinIO image archive
type StorageConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}
