package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port        int              `json:"port"`
	JWTSecret   string           `json:"jwt_secret"`
	JWTTTLHours int              `json:"jwt_ttl_hours"`
	LogConfig   logger.LogConfig `json:"log_config"`
	Database    DatabaseConfig   `json:"database"`
	FileStore   FileStoreConfig  `json:"file_store"`
	Extractor   ExtractorConfig  `json:"extractor"`
	AI          AIConfig         `json:"ai"`
	Access      AccessConfig     `json:"access"`
	Chat        ChatConfig       `json:"chat"`
	CORSOrigins []string         `json:"cors_origins"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	SSLMode  string `json:"sslmode"`
}

type FileStoreConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type ExtractorConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type AIConfig struct {
	Provider      string      `json:"provider"`
	Model         string      `json:"model"`
	EmbedModel    string      `json:"embed_model"`
	MaxInputChars int         `json:"max_input_chars"`
	Timeout       int         `json:"timeout"`
	Data          interface{} `json:"data"`
}

// AccessConfig carries the tenancy defaults that the system used to keep in
// ambient globals. It is handed explicitly to the bootstrap command and the
// access filter so different deployments and tests can run with different
// defaults at the same time.
type AccessConfig struct {
	DefaultClientID  string `json:"default_client_id"`
	DefaultProjectID string `json:"default_project_id"`
	SuperAdminEmail  string `json:"super_admin_email"`
	// StrictOwnership treats documents without an owning client/project as
	// inaccessible instead of globally visible.
	StrictOwnership bool `json:"strict_ownership"`
}

type ChatConfig struct {
	MaxResults      int `json:"max_results"`
	OverfetchFactor int `json:"overfetch_factor"`
	RateLimitMillis int `json:"rate_limit_millis"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt_secret is required")
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.Database.DSN == "" && cfg.Database.Host == "" {
		return nil, fmt.Errorf("database.dsn or database.host is required")
	}
	if cfg.JWTTTLHours == 0 {
		cfg.JWTTTLHours = 72
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.FileStore.Type == "" {
		cfg.FileStore.Type = "local"
	}
	if cfg.Extractor.Type == "" {
		cfg.Extractor.Type = "markdown"
	}
	if cfg.Chat.MaxResults <= 0 {
		cfg.Chat.MaxResults = 10
	}
	// Over-fetch so candidates dropped by access filtering still leave
	// enough accessible results behind.
	if cfg.Chat.OverfetchFactor <= 0 {
		cfg.Chat.OverfetchFactor = 3
	}
	return &cfg, nil
}
