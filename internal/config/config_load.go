package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/titanous/json5"
)

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Agents: AgentsConfig{
			Default: "main",
		},
		Slack: SlackConfig{
			DMPolicy: "pairing",
		},
		Gateway: GatewayConfig{
			RateLimitRPM:   20,
			MaxPromptChars: 4000,
		},
		Store: StoreConfig{
			Path: "~/.openclaw/openclaw.db",
		},
	}
}

// Load reads config from a JSON5 file, then overlays env vars.
// A missing file is not an error: env vars alone can configure the gateway.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := json5.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides overlays env vars onto the config.
// Env vars take precedence over file values. Tokens are secrets and are
// expected to come from the environment, never from config on disk.
func (c *Config) applyEnvOverrides() {
	envStr := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	envStr("OPENCLAW_SLACK_BOT_TOKEN", &c.Slack.BotToken)
	envStr("OPENCLAW_SLACK_APP_TOKEN", &c.Slack.AppToken)
	envStr("OPENCLAW_STORE_PATH", &c.Store.Path)
	envStr("OPENCLAW_DEFAULT_AGENT", &c.Agents.Default)
	envStr("OPENCLAW_AGENT_URL", &c.Agents.Endpoint)

	if v := os.Getenv("OPENCLAW_RATE_LIMIT_RPM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Gateway.RateLimitRPM = n
		}
	}

	if c.Slack.BotToken != "" && c.Slack.AppToken != "" {
		c.Slack.Enabled = true
	}
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(strings.TrimPrefix(path, "~"), "/"))
	}
	return path
}
