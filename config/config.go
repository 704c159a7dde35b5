package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full application configuration, loaded once at startup and
// immutable afterwards. A vendor section without credentials degrades that
// integration to "unconfigured" instead of failing the process.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Planner    PlannerConfig    `yaml:"planner"`
	Anthropic  AnthropicConfig  `yaml:"anthropic"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	Perplexity PerplexityConfig `yaml:"perplexity"`
	Slack      SlackConfig      `yaml:"slack"`
	GoogleChat GoogleChatConfig `yaml:"google_chat"`
	Notion     NotionConfig     `yaml:"notion"`
	Drive      DriveConfig      `yaml:"drive"`
	Tracker    TrackerConfig    `yaml:"tracker"`
}

type ServerConfig struct {
	Port int    `yaml:"port"`
	Mode string `yaml:"mode"` // debug, release
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// PlannerConfig configures the Gemini model driving orchestration.
type PlannerConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

type AnthropicConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

type PerplexityConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

type SlackConfig struct {
	BotToken      string `yaml:"bot_token"`
	SigningSecret string `yaml:"signing_secret"`
	BotUserID     string `yaml:"bot_user_id"` // resolved via auth.test when empty
}

type GoogleChatConfig struct {
	BotToken          string `yaml:"bot_token"` // pre-issued bearer token
	VerificationToken string `yaml:"verification_token"`
	BotName           string `yaml:"bot_name"`
}

type NotionConfig struct {
	APIKey           string `yaml:"api_key"`
	ProjectsDatabase string `yaml:"projects_database"`
	MeetingsDatabase string `yaml:"meetings_database"`
	PortalsPage      string `yaml:"portals_page"`
}

type DriveConfig struct {
	BotToken   string `yaml:"bot_token"` // pre-issued bearer token
	RootFolder string `yaml:"root_folder"`
}

type TrackerConfig struct {
	BaseURL       string `yaml:"base_url"`
	APIKey        string `yaml:"api_key"`
	WebhookSecret string `yaml:"webhook_secret"`
}

// Load reads config/<APP_ENV>.yaml (local, dev or prod; default local) and
// applies environment-variable overrides for every secret.
func Load() (*Config, error) {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	path := fmt.Sprintf("config/%s.yaml", env)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	overrideFromEnv(&cfg)
	applyDefaults(&cfg)
	return &cfg, nil
}

func overrideFromEnv(c *Config) {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.Planner.APIKey = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		c.Anthropic.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.OpenAI.APIKey = v
	}
	if v := os.Getenv("PERPLEXITY_API_KEY"); v != "" {
		c.Perplexity.APIKey = v
	}
	if v := os.Getenv("SLACK_BOT_TOKEN"); v != "" {
		c.Slack.BotToken = v
	}
	if v := os.Getenv("SLACK_SIGNING_SECRET"); v != "" {
		c.Slack.SigningSecret = v
	}
	if v := os.Getenv("GOOGLE_CHAT_BOT_TOKEN"); v != "" {
		c.GoogleChat.BotToken = v
	}
	if v := os.Getenv("GOOGLE_CHAT_VERIFICATION_TOKEN"); v != "" {
		c.GoogleChat.VerificationToken = v
	}
	if v := os.Getenv("NOTION_API_KEY"); v != "" {
		c.Notion.APIKey = v
	}
	if v := os.Getenv("NOTION_PROJECTS_DATABASE"); v != "" {
		c.Notion.ProjectsDatabase = v
	}
	if v := os.Getenv("NOTION_MEETINGS_DATABASE"); v != "" {
		c.Notion.MeetingsDatabase = v
	}
	if v := os.Getenv("NOTION_PORTALS_PAGE"); v != "" {
		c.Notion.PortalsPage = v
	}
	if v := os.Getenv("DRIVE_BOT_TOKEN"); v != "" {
		c.Drive.BotToken = v
	}
	if v := os.Getenv("MWD_INVOICE_SYSTEM_URL"); v != "" {
		c.Tracker.BaseURL = v
	}
	if v := os.Getenv("MWD_INVOICE_SYSTEM_API_KEY"); v != "" {
		c.Tracker.APIKey = v
	}
	if v := os.Getenv("MWD_WEBHOOK_SECRET"); v != "" {
		c.Tracker.WebhookSecret = v
	}
}

func applyDefaults(c *Config) {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Planner.Model == "" {
		c.Planner.Model = "gemini-2.0-flash-exp"
	}
	if c.Anthropic.Model == "" {
		c.Anthropic.Model = "claude-sonnet-4-5-20250929"
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-5.1"
	}
	if c.Perplexity.Model == "" {
		c.Perplexity.Model = "sonar-pro"
	}
	if c.GoogleChat.BotName == "" {
		c.GoogleChat.BotName = "MWD Assistant"
	}
}
