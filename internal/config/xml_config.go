// Package config provides XML-based configuration for the upload widget hosts.
package config

import (
	"encoding/xml"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig represents the root XML configuration structure
type AppConfig struct {
	XMLName xml.Name `xml:"PDFUploader"`

	// Browser host settings
	Server ServerConfig `xml:"Server"`

	// Upload request settings shared by both hosts
	Client ClientConfig `xml:"Client"`

	// Relay of /upload to the processing backend
	Relay RelayConfig `xml:"Relay"`

	// Advanced options
	Advanced AdvancedConfig `xml:"Advanced"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         int    `xml:"Port"`
	BindAddress  string `xml:"BindAddress"`
	EnableCORS   bool   `xml:"EnableCORS"`
	AllowOrigins string `xml:"AllowOrigins"`
	ReadTimeout  int    `xml:"ReadTimeoutSeconds"`
	WriteTimeout int    `xml:"WriteTimeoutSeconds"`
	IdleTimeout  int    `xml:"IdleTimeoutSeconds"`
	BodyLimit    string `xml:"BodyLimit"`
}

// ClientConfig contains the upload request contract
type ClientConfig struct {
	BaseURL          string `xml:"BaseURL"`
	EndpointPath     string `xml:"EndpointPath"`
	FieldName        string `xml:"FieldName"`
	AcceptedMIMEType string `xml:"AcceptedMIMEType"`
	RequestTimeout   int    `xml:"RequestTimeoutSeconds"` // 0 = no timeout
}

// RelayConfig contains settings for forwarding uploads to the backend
type RelayConfig struct {
	BackendURL              string `xml:"BackendURL"`
	MaxConcurrentUploads    int    `xml:"MaxConcurrentUploads"` // 0 = unlimited
	AttemptRetentionMinutes int    `xml:"AttemptRetentionMinutes"`
	CleanupIntervalMinutes  int    `xml:"CleanupIntervalMinutes"`
}

// AdvancedConfig contains logging and diagnostics options
type AdvancedConfig struct {
	LogMode              string `xml:"LogMode"`
	LogLevel             string `xml:"LogLevel"`
	EnableRequestLogging bool   `xml:"EnableRequestLogging"`
	DiagnosticFormat     string `xml:"DiagnosticFormat"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:         8089,
			BindAddress:  "0.0.0.0",
			EnableCORS:   false,
			AllowOrigins: "*",
			ReadTimeout:  30,
			WriteTimeout: 120,
			IdleTimeout:  120,
			BodyLimit:    "16M",
		},
		Client: ClientConfig{
			BaseURL:          "http://localhost:8089",
			EndpointPath:     "/upload",
			FieldName:        "pdf",
			AcceptedMIMEType: "application/pdf",
			RequestTimeout:   0,
		},
		Relay: RelayConfig{
			BackendURL:              "",
			MaxConcurrentUploads:    0,
			AttemptRetentionMinutes: 60,
			CleanupIntervalMinutes:  5,
		},
		Advanced: AdvancedConfig{
			LogMode:              "development",
			LogLevel:             "info",
			EnableRequestLogging: true,
			DiagnosticFormat:     "json",
		},
	}
}

// LoadConfig loads configuration from XML file
func LoadConfig(configPath string) (*AppConfig, error) {
	config := DefaultConfig()

	// If file doesn't exist, create default
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := xml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// .env next to the config file feeds the environment overrides
	if err := loadDotEnv(filepath.Join(filepath.Dir(configPath), ".env")); err != nil {
		return nil, err
	}
	config.applyEnvironmentOverrides()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Save saves the configuration to XML file
func (c *AppConfig) Save(configPath string) error {
	output, err := xml.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(xml.Header + "\n<!-- PDF Uploader Configuration -->\n<!-- This file is auto-generated on first run -->\n\n")
	content := append(header, output...)

	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks the settings both hosts depend on.
func (c *AppConfig) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if strings.TrimSpace(c.Client.FieldName) == "" {
		return errors.New("client field name must not be empty")
	}
	if !strings.HasPrefix(c.Client.EndpointPath, "/") {
		return fmt.Errorf("endpoint path %q must start with /", c.Client.EndpointPath)
	}
	if c.Client.RequestTimeout < 0 {
		return errors.New("request timeout must not be negative")
	}
	if err := validateURL("client base URL", c.Client.BaseURL, true); err != nil {
		return err
	}
	if err := validateURL("relay backend URL", c.Relay.BackendURL, false); err != nil {
		return err
	}
	switch strings.ToLower(c.Advanced.DiagnosticFormat) {
	case "", "json", "yaml", "yml":
	default:
		return fmt.Errorf("unknown diagnostic format %q", c.Advanced.DiagnosticFormat)
	}
	return nil
}

func validateURL(name, raw string, required bool) error {
	if raw == "" {
		if required {
			return fmt.Errorf("%s must not be empty", name)
		}
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid %s %q: want http(s)://host[:port]", name, raw)
	}
	return nil
}

// loadDotEnv loads path into the process environment without overriding
// variables that are already set. A missing file is not an error.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *AppConfig) applyEnvironmentOverrides() {
	// PORT override
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	if baseURL := os.Getenv("UPLOAD_BASE_URL"); baseURL != "" {
		c.Client.BaseURL = baseURL
	}

	if backend := os.Getenv("UPLOAD_BACKEND_URL"); backend != "" {
		c.Relay.BackendURL = backend
	}

	if mode := os.Getenv("LOG_MODE"); mode != "" {
		c.Advanced.LogMode = mode
	}
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// GetRequestTimeout returns the upload request timeout; zero means none.
func (c *AppConfig) GetRequestTimeout() time.Duration {
	return time.Duration(c.Client.RequestTimeout) * time.Second
}

// GetAttemptRetention returns how long finished relay attempts are kept.
func (c *AppConfig) GetAttemptRetention() time.Duration {
	return time.Duration(c.Relay.AttemptRetentionMinutes) * time.Minute
}

// GetCleanupInterval returns how often the attempt journal is pruned.
func (c *AppConfig) GetCleanupInterval() time.Duration {
	interval := time.Duration(c.Relay.CleanupIntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return interval
}

// AllowedOrigins splits AllowOrigins, defaulting to "*".
func (c *AppConfig) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.Server.AllowOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
