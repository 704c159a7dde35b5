package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "config"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config", "local.yaml"), []byte(content), 0o644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadAppliesDefaults(t *testing.T) {
	writeConfig(t, "server:\n  mode: release\n")
	t.Setenv("APP_ENV", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, "gemini-2.0-flash-exp", cfg.Planner.Model)
	assert.Equal(t, "claude-sonnet-4-5-20250929", cfg.Anthropic.Model)
	assert.Equal(t, "sonar-pro", cfg.Perplexity.Model)
	assert.Equal(t, "MWD Assistant", cfg.GoogleChat.BotName)
}

func TestLoadEnvOverridesSecrets(t *testing.T) {
	writeConfig(t, `
server:
  port: 9090
slack:
  bot_token: from-file
tracker:
  base_url: https://invoices.internal
`)
	t.Setenv("APP_ENV", "")
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-from-env")
	t.Setenv("MWD_WEBHOOK_SECRET", "wh-secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "xoxb-from-env", cfg.Slack.BotToken)
	assert.Equal(t, "https://invoices.internal", cfg.Tracker.BaseURL)
	assert.Equal(t, "wh-secret", cfg.Tracker.WebhookSecret)
}

func TestLoadMissingFileFails(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("APP_ENV", "staging")

	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config/staging.yaml")
}
