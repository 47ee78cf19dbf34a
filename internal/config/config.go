package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/labtrend-cli/internal/ai"
)

const (
	envPrefix = "LABTREND"
	dirName   = ".labtrend"
)

// Global configuration structure.
type Global struct {
	// Narrative enrichment
	NarrativeProvider   string `mapstructure:"narrative_provider" yaml:"narrative_provider"`
	NarrativeAPIKey     string `mapstructure:"narrative_api_key" yaml:"narrative_api_key"`
	NarrativeModel      string `mapstructure:"narrative_model" yaml:"narrative_model"`
	NarrativeTimeoutSec int    `mapstructure:"narrative_timeout_sec" yaml:"narrative_timeout_sec"`
	ExcerptMaxChars     int    `mapstructure:"excerpt_max_chars" yaml:"excerpt_max_chars"`

	// HTTP/Retry configuration
	HTTPTimeoutSec   int `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`
	RetryMaxAttempts int `mapstructure:"retry_max_attempts" yaml:"retry_max_attempts"`
	RetryBaseDelayMs int `mapstructure:"retry_base_delay_ms" yaml:"retry_base_delay_ms"`
	RetryMaxDelayMs  int `mapstructure:"retry_max_delay_ms" yaml:"retry_max_delay_ms"`

	// Local runtimes (Ollama)
	OllamaHost string `mapstructure:"ollama_host" yaml:"ollama_host"`

	LogLevel         string `mapstructure:"log_level" yaml:"log_level"`
	BatchConcurrency int    `mapstructure:"batch_concurrency" yaml:"batch_concurrency"`
}

// Narrative is the resolved narrative configuration. When Enabled is false
// the heuristic composer is used and DisabledReason says why.
type Narrative struct {
	Enabled        bool
	DisabledReason string
	Provider       string
	Model          string
	Timeout        time.Duration
	ExcerptMax     int
	Runtime        ai.RuntimeConfig
}

// Narrative resolves provider, credentials and limits once. A keyed provider
// without a key disables the branch instead of failing.
func (c *Global) Narrative() Narrative {
	n := Narrative{
		Provider:   strings.ToLower(strings.TrimSpace(c.NarrativeProvider)),
		Model:      c.NarrativeModel,
		Timeout:    time.Duration(c.NarrativeTimeoutSec) * time.Second,
		ExcerptMax: c.ExcerptMaxChars,
		Runtime: ai.RuntimeConfig{
			HTTPTimeout: time.Duration(c.HTTPTimeoutSec) * time.Second,
			RetryMax:    c.RetryMaxAttempts,
			BaseDelay:   time.Duration(c.RetryBaseDelayMs) * time.Millisecond,
			MaxDelay:    time.Duration(c.RetryMaxDelayMs) * time.Millisecond,
			APIKey:      strings.TrimSpace(c.NarrativeAPIKey),
			Host:        c.OllamaHost,
		},
	}
	if n.Timeout <= 0 {
		n.Timeout = 20 * time.Second
	}
	if n.ExcerptMax <= 0 {
		n.ExcerptMax = 3000
	}
	switch n.Provider {
	case "":
		n.DisabledReason = "no narrative_provider configured"
		return n
	case ai.ProviderOpenRouter, ai.ProviderOllama, ai.ProviderGemini:
	default:
		n.DisabledReason = fmt.Sprintf("unknown narrative_provider %q", n.Provider)
		return n
	}
	if ai.RequiresAPIKey(n.Provider) && n.Runtime.APIKey == "" {
		n.DisabledReason = fmt.Sprintf("narrative_provider %s needs narrative_api_key", n.Provider)
		return n
	}
	if n.Model == "" {
		n.Model = ai.DefaultModel(n.Provider)
	}
	n.Enabled = true
	return n
}

// DefaultPath returns ~/.labtrend/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, dirName, "config.yaml"), nil
}

// Save writes the given configuration to cfgFile, or to the default path
// when cfgFile is empty, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. CLI flags are applied by callers.
func Load(cfgFile string) (*Global, error) {
	return load(cfgFile, true)
}

// LoadFile loads the config file over the defaults and ignores LABTREND_*
// environment values. Use it to edit and Save the stored configuration.
func LoadFile(cfgFile string) (*Global, error) {
	return load(cfgFile, false)
}

func load(cfgFile string, withEnv bool) (*Global, error) {
	v := viper.New()
	if withEnv {
		v.SetEnvPrefix(envPrefix)
		v.AutomaticEnv()
	}

	// Every key needs a default so env values survive Unmarshal.
	v.SetDefault("narrative_provider", "")
	v.SetDefault("narrative_api_key", "")
	v.SetDefault("narrative_model", "")
	v.SetDefault("narrative_timeout_sec", 20)
	v.SetDefault("excerpt_max_chars", 3000)
	v.SetDefault("http_timeout_sec", 60)
	v.SetDefault("retry_max_attempts", 3)
	v.SetDefault("retry_base_delay_ms", 500)
	v.SetDefault("retry_max_delay_ms", 4000)
	v.SetDefault("ollama_host", "http://127.0.0.1:11434")
	v.SetDefault("log_level", "info")
	v.SetDefault("batch_concurrency", 4)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(filepath.Dir(p))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !(cfgFile != "" && errors.Is(err, os.ErrNotExist)) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}
