package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/subosito/gotenv"
	"gopkg.in/yaml.v3"
)

const defaultExternalHTTPTimeout = 90 * time.Second
const defaultExternalHTTPTimeoutSeconds = int(defaultExternalHTTPTimeout / time.Second)

const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderVader     = "vader"
)

type Config struct {
	LLMProvider     string `yaml:"llm_provider"`
	LLMModel        string `yaml:"llm_model"`
	LLMMaxTokens    int    `yaml:"llm_max_tokens"`
	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	OpenAIAPIKey    string `yaml:"openai_api_key"`

	ExternalHTTPTimeoutSeconds int `yaml:"external_http_timeout_seconds"`

	HTTPAddr string `yaml:"http_addr"`
	GinMode  string `yaml:"gin_mode"`

	DBPath          string `yaml:"db_path"`
	HistoryEnabled  *bool  `yaml:"history_enabled"`
	GroundTruthPath string `yaml:"ground_truth_path"`
	ExportOutputDir string `yaml:"export_output_dir"`

	InboxPath       string `yaml:"inbox_path"`
	AnalyzeSchedule string `yaml:"analyze_schedule"`
	Timezone        string `yaml:"timezone"`

	SlackBotToken   string `yaml:"slack_bot_token"`
	SlackAppToken   string `yaml:"slack_app_token"`
	ReportChannelID string `yaml:"report_channel_id"`

	ValkeyAddress   string `yaml:"valkey_address"`
	ValkeyPassword  string `yaml:"valkey_password"`
	ValkeyTLS       bool   `yaml:"valkey_tls"`
	CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	Location *time.Location `yaml:"-"` // computed from Timezone, not from YAML
	Sources  []string       `yaml:"-"` // .env and YAML files that were read
}

// ConfigurationError is a startup problem no request can recover from.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid config '%s': %s", e.Key, e.Reason)
}

// LoadConfig reads .env, config.yaml and the environment, in that order of
// precedence from lowest to highest. Any configuration error is fatal.
func LoadConfig() Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("%v", err)
	}
	return cfg
}

func Load() (Config, error) {
	var cfg Config

	envFile := ".env"
	if p := os.Getenv("ENV_FILE"); p != "" {
		envFile = p
	}
	if _, err := os.Stat(envFile); err == nil {
		if err := gotenv.Load(envFile); err != nil {
			return cfg, fmt.Errorf("loading %s: %w", envFile, err)
		}
		cfg.Sources = append(cfg.Sources, envFile)
	}

	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("Error parsing %s: %w", configPath, err)
		}
		cfg.Sources = append(cfg.Sources, configPath)
	}

	envOverride(&cfg.LLMProvider, "LLM_PROVIDER")
	envOverride(&cfg.LLMModel, "LLM_MODEL")
	envOverride(&cfg.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	envOverride(&cfg.OpenAIAPIKey, "OPENAI_API_KEY")
	envOverride(&cfg.HTTPAddr, "HTTP_ADDR")
	envOverride(&cfg.GinMode, "GIN_MODE")
	envOverride(&cfg.DBPath, "DB_PATH")
	envOverride(&cfg.GroundTruthPath, "GROUND_TRUTH_PATH")
	envOverride(&cfg.ExportOutputDir, "EXPORT_OUTPUT_DIR")
	envOverride(&cfg.InboxPath, "INBOX_PATH")
	envOverride(&cfg.AnalyzeSchedule, "ANALYZE_SCHEDULE")
	envOverride(&cfg.Timezone, "TIMEZONE")
	envOverride(&cfg.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&cfg.SlackAppToken, "SLACK_APP_TOKEN")
	envOverride(&cfg.ReportChannelID, "REPORT_CHANNEL_ID")
	envOverride(&cfg.ValkeyAddress, "VALKEY_ADDRESS")
	envOverride(&cfg.ValkeyPassword, "VALKEY_PASSWORD")
	envOverrideBool(&cfg.ValkeyTLS, "VALKEY_TLS")
	envOverride(&cfg.LogLevel, "LOG_LEVEL")
	envOverride(&cfg.LogFormat, "LOG_FORMAT")
	if val := os.Getenv("HISTORY_ENABLED"); val != "" {
		enabled := false
		envOverrideBool(&enabled, "HISTORY_ENABLED")
		cfg.HistoryEnabled = &enabled
	}
	for _, o := range []struct {
		field *int
		key   string
	}{
		{&cfg.LLMMaxTokens, "LLM_MAX_TOKENS"},
		{&cfg.ExternalHTTPTimeoutSeconds, "EXTERNAL_HTTP_TIMEOUT_SECONDS"},
		{&cfg.CacheTTLSeconds, "CACHE_TTL_SECONDS"},
	} {
		if err := envOverrideInt(o.field, o.key); err != nil {
			return cfg, err
		}
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	if strings.EqualFold(cfg.Timezone, "Local") {
		cfg.Location = time.Local
	} else {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return cfg, &ConfigurationError{Key: "timezone", Reason: err.Error()}
		}
		cfg.Location = loc
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	cfg.LLMProvider = strings.ToLower(strings.TrimSpace(cfg.LLMProvider))
	if cfg.LLMProvider == "" {
		cfg.LLMProvider = ProviderAnthropic
	}
	if cfg.LLMMaxTokens == 0 {
		cfg.LLMMaxTokens = 8192
	}
	if cfg.ExternalHTTPTimeoutSeconds == 0 {
		cfg.ExternalHTTPTimeoutSeconds = defaultExternalHTTPTimeoutSeconds
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.GinMode == "" {
		cfg.GinMode = "release"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "./sentiboard.db"
	}
	if cfg.HistoryEnabled == nil {
		enabled := true
		cfg.HistoryEnabled = &enabled
	}
	if cfg.ExportOutputDir == "" {
		cfg.ExportOutputDir = "./exports"
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Local"
	}
	if cfg.CacheTTLSeconds == 0 {
		cfg.CacheTTLSeconds = 3600
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
}

// Validate checks a fully defaulted config.
func (c Config) Validate() error {
	switch c.LLMProvider {
	case ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			return &ConfigurationError{Key: "anthropic_api_key", Reason: "required when llm_provider=anthropic"}
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return &ConfigurationError{Key: "openai_api_key", Reason: "required when llm_provider=openai"}
		}
	case ProviderVader:
	default:
		return &ConfigurationError{Key: "llm_provider", Reason: fmt.Sprintf("must be 'anthropic', 'openai' or 'vader', got '%s'", c.LLMProvider)}
	}

	if (c.SlackBotToken == "") != (c.SlackAppToken == "") {
		return &ConfigurationError{Key: "slack_app_token", Reason: "slack_bot_token and slack_app_token are required together"}
	}
	if c.ExternalHTTPTimeoutSeconds < 5 {
		return &ConfigurationError{Key: "external_http_timeout_seconds", Reason: fmt.Sprintf("'%d' must be >= 5", c.ExternalHTTPTimeoutSeconds)}
	}
	if c.LLMMaxTokens < 256 {
		return &ConfigurationError{Key: "llm_max_tokens", Reason: fmt.Sprintf("'%d' must be >= 256", c.LLMMaxTokens)}
	}
	if c.CacheTTLSeconds < 0 {
		return &ConfigurationError{Key: "cache_ttl_seconds", Reason: "must be >= 0"}
	}
	if s := strings.TrimSpace(c.AnalyzeSchedule); s != "" {
		if c.InboxPath == "" {
			return &ConfigurationError{Key: "inbox_path", Reason: "required when analyze_schedule is set"}
		}
		if _, err := ParseSchedule(s); err != nil {
			return &ConfigurationError{Key: "analyze_schedule", Reason: err.Error()}
		}
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return &ConfigurationError{Key: "log_format", Reason: fmt.Sprintf("must be 'text' or 'json', got '%s'", c.LogFormat)}
	}
	return nil
}

var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ParseSchedule parses analyze_schedule: five cron fields or a descriptor
// such as @hourly.
func ParseSchedule(spec string) (cron.Schedule, error) {
	return scheduleParser.Parse(strings.TrimSpace(spec))
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) error {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			return &ConfigurationError{Key: envKey, Reason: fmt.Sprintf("'%s': %v", val, err)}
		}
		*field = parsed
	}
	return nil
}

func envOverrideBool(field *bool, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = strings.EqualFold(val, "true") || val == "1"
	}
}

func (c Config) History() bool {
	return c.HistoryEnabled == nil || *c.HistoryEnabled
}

func (c Config) SlackConfigured() bool {
	return c.SlackBotToken != "" && c.SlackAppToken != ""
}

func (c Config) CacheConfigured() bool {
	return c.ValkeyAddress != "" && c.CacheTTLSeconds > 0
}

func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// Model returns the configured model or the provider default.
func (c Config) Model() string {
	if m := strings.TrimSpace(c.LLMModel); m != "" {
		return m
	}
	switch c.LLMProvider {
	case ProviderOpenAI:
		return "gpt-4o-mini"
	case ProviderVader:
		return "vader-lexicon"
	default:
		return "claude-sonnet-4-5-20250929"
	}
}
