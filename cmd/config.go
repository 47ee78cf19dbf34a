package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/labtrend-cli/internal/ai"
	cfgpkg "github.com/KaramelBytes/labtrend-cli/internal/config"
	"github.com/KaramelBytes/labtrend-cli/internal/logging"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set labtrend configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "narrative_provider: %s\n", cfg.NarrativeProvider)
		fmt.Fprintf(out, "narrative_api_key: %s\n", mask(cfg.NarrativeAPIKey))
		fmt.Fprintf(out, "narrative_model: %s\n", cfg.NarrativeModel)
		fmt.Fprintf(out, "narrative_timeout_sec: %d\n", cfg.NarrativeTimeoutSec)
		fmt.Fprintf(out, "excerpt_max_chars: %d\n", cfg.ExcerptMaxChars)
		fmt.Fprintf(out, "http_timeout_sec: %d\n", cfg.HTTPTimeoutSec)
		fmt.Fprintf(out, "retry_max_attempts: %d\n", cfg.RetryMaxAttempts)
		fmt.Fprintf(out, "retry_base_delay_ms: %d\n", cfg.RetryBaseDelayMs)
		fmt.Fprintf(out, "retry_max_delay_ms: %d\n", cfg.RetryMaxDelayMs)
		fmt.Fprintf(out, "ollama_host: %s\n", cfg.OllamaHost)
		fmt.Fprintf(out, "log_level: %s\n", cfg.LogLevel)
		fmt.Fprintf(out, "batch_concurrency: %d\n", cfg.BatchConcurrency)
		n := cfg.Narrative()
		if n.Enabled {
			fmt.Fprintf(out, "narrative: enabled (%s, model %s)\n", n.Provider, n.Model)
		} else {
			fmt.Fprintf(out, "narrative: disabled (%s)\n", n.DisabledReason)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		positive := func() (int, error) {
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return 0, fmt.Errorf("invalid positive int for %s: %v", key, val)
			}
			return i, nil
		}
		// Only the stored file is edited; env and flag overrides stay out of it.
		stored, err := cfgpkg.LoadFile(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		switch key {
		case "narrative_provider":
			p := strings.ToLower(strings.TrimSpace(val))
			switch p {
			case "", "none", "off":
				stored.NarrativeProvider = ""
			case ai.ProviderOpenRouter, ai.ProviderOllama, ai.ProviderGemini:
				stored.NarrativeProvider = p
			default:
				return fmt.Errorf("invalid narrative_provider: %s (use %s or none)", val, strings.Join(ai.Providers(), ", "))
			}
		case "narrative_api_key":
			stored.NarrativeAPIKey = val
		case "narrative_model":
			stored.NarrativeModel = val
		case "narrative_timeout_sec":
			stored.NarrativeTimeoutSec, err = positive()
		case "excerpt_max_chars":
			stored.ExcerptMaxChars, err = positive()
		case "http_timeout_sec":
			stored.HTTPTimeoutSec, err = positive()
		case "retry_max_attempts":
			stored.RetryMaxAttempts, err = positive()
		case "retry_base_delay_ms":
			stored.RetryBaseDelayMs, err = positive()
		case "retry_max_delay_ms":
			stored.RetryMaxDelayMs, err = positive()
		case "batch_concurrency":
			stored.BatchConcurrency, err = positive()
		case "ollama_host":
			stored.OllamaHost = val
		case "log_level":
			if _, err := logging.ParseLevel(val); err != nil {
				return err
			}
			stored.LogLevel = val
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err != nil {
			return err
		}
		if err := cfgpkg.Save(stored, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 6 {
		return "******"
	}
	return s[:3] + "****" + s[len(s)-3:]
}
