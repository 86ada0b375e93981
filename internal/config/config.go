// Package config loads and validates application configuration from
// config.yaml and BUYERGROUP_* environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Research   ResearchConfig   `yaml:"research" mapstructure:"research"`
	Directory  DirectoryConfig  `yaml:"directory" mapstructure:"directory"`
	Verify     VerifyConfig     `yaml:"verify" mapstructure:"verify"`
	Notion     NotionConfig     `yaml:"notion" mapstructure:"notion"`
	Salesforce SalesforceConfig `yaml:"salesforce" mapstructure:"salesforce"`
	Policy     PolicyConfig     `yaml:"policy" mapstructure:"policy"`
	Pipeline   PipelineConfig   `yaml:"pipeline" mapstructure:"pipeline"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // "postgres" or "sqlite"
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ResearchConfig holds Anthropic API settings for executive research.
type ResearchConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// DirectoryConfig holds the employee-directory vendor settings.
type DirectoryConfig struct {
	Key           string  `yaml:"key" mapstructure:"key"`
	BaseURL       string  `yaml:"base_url" mapstructure:"base_url"`
	MaxCandidates int     `yaml:"max_candidates" mapstructure:"max_candidates"`
	RateLimit     float64 `yaml:"rate_limit" mapstructure:"rate_limit"` // requests/sec
}

// VerifyConfig holds the email/phone verification vendor settings.
type VerifyConfig struct {
	Key       string  `yaml:"key" mapstructure:"key"`
	BaseURL   string  `yaml:"base_url" mapstructure:"base_url"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// NotionConfig holds Notion API credentials for buyer-group export.
type NotionConfig struct {
	Token   string `yaml:"token" mapstructure:"token"`
	GroupDB string `yaml:"group_db" mapstructure:"group_db"`
}

// SalesforceConfig holds Salesforce JWT auth settings for contact sync.
type SalesforceConfig struct {
	ClientID string `yaml:"client_id" mapstructure:"client_id"`
	Username string `yaml:"username" mapstructure:"username"`
	KeyPath  string `yaml:"key_path" mapstructure:"key_path"`
	LoginURL string `yaml:"login_url" mapstructure:"login_url"`
}

// PolicyConfig points at the optional sizing-policy override file.
type PolicyConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// PipelineConfig configures assembly behavior.
type PipelineConfig struct {
	DefaultDealSize   float64 `yaml:"default_deal_size" mapstructure:"default_deal_size"`
	VerifyConcurrency int     `yaml:"verify_concurrency" mapstructure:"verify_concurrency"`
	MinMemberScore    float64 `yaml:"min_member_score" mapstructure:"min_member_score"`
}

// ServerConfig configures the sizing HTTP API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("BUYERGROUP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("research.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("research.max_tokens", 1024)
	v.SetDefault("directory.base_url", "https://api.peopledirectory.io/v1")
	v.SetDefault("directory.max_candidates", 100)
	v.SetDefault("directory.rate_limit", 5)
	v.SetDefault("verify.base_url", "https://api.contactcheck.io/v1")
	v.SetDefault("verify.rate_limit", 10)
	v.SetDefault("salesforce.login_url", "https://login.salesforce.com")
	v.SetDefault("pipeline.default_deal_size", 0)
	v.SetDefault("pipeline.verify_concurrency", 4)
	v.SetDefault("pipeline.min_member_score", 0)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the configuration required for the given mode is
// present. Modes: "assemble" (full pipeline), "store" (persistence only),
// "serve" (HTTP API), "export" (Notion/Salesforce/file export).
func (c *Config) Validate(mode string) error {
	var problems []string

	needStore := func() {
		if c.Store.DatabaseURL == "" && c.Store.Driver != "sqlite" {
			problems = append(problems, "store.database_url is required")
		}
	}
	checkPipeline := func() {
		if c.Pipeline.VerifyConcurrency < 1 || c.Pipeline.VerifyConcurrency > 50 {
			problems = append(problems, "pipeline.verify_concurrency must be between 1 and 50")
		}
	}

	switch mode {
	case "assemble":
		needStore()
		checkPipeline()
		if c.Directory.Key == "" {
			problems = append(problems, "directory.key is required")
		}
	case "store":
		needStore()
	case "serve":
		checkPipeline()
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
	case "export":
		needStore()
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New(fmt.Sprintf("config: %s", strings.Join(problems, "; ")))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
