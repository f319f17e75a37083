package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone  = "UTC"
	defaultIdleTTL   = 30 * time.Minute
	configPathEnv    = "CADENCE_CONFIG"
	storagePathEnv   = "CADENCE_DB_PATH"
	llmAPIKeyEnv     = "CADENCE_LLM_API_KEY"
	llmModelEnv      = "CADENCE_LLM_MODEL"
	llmProviderEnv   = "CADENCE_LLM_PROVIDER"
	telegramTokenEnv = "TELEGRAM_BOT_TOKEN"
	webchatAddrEnv   = "CADENCE_WEBCHAT_ADDR"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Storage   StorageConfig   `yaml:"storage"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	LLM       LLMConfig       `yaml:"llm"`
	Appraisal AppraisalConfig `yaml:"appraisal"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Webchat   WebchatConfig   `yaml:"webchat"`
	Engine    EngineConfig    `yaml:"engine"`
	Session   SessionConfig   `yaml:"session"`
}

// LoggingConfig selects the slog level for the whole process.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// StorageConfig describes the sqlite journal location.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// SchedulerConfig defines when the session reaper runs.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// LLMConfig defines how replies are generated.
type LLMConfig struct {
	Provider string `yaml:"provider"`
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"apiKey"`
	Persona  string `yaml:"persona"`
}

// AppraisalConfig selects how user text turns into affect impulses.
type AppraisalConfig struct {
	Mode         string `yaml:"mode"` // local or remote
	InferenceURL string `yaml:"inferenceUrl"`
	APIKey       string `yaml:"apiKey"`
}

// TelegramConfig wires the bot transport; an empty token disables it.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
}

// WebchatConfig describes the websocket chat endpoint.
type WebchatConfig struct {
	Addr string `yaml:"addr"`
}

// EngineConfig tunes segmentation and rhythm. The boolean zero values
// match the deployment defaults: timing on, delivery logging off.
type EngineConfig struct {
	MinSegmentLength     int     `yaml:"minSegmentLength"`
	MaxSegmentLength     int     `yaml:"maxSegmentLength"`
	BaseWordsPerMinute   float64 `yaml:"baseWordsPerMinute"`
	HesitationBase       float64 `yaml:"hesitationBase"`
	HesitationMultiplier float64 `yaml:"hesitationMultiplier"`
	DisableTiming        bool    `yaml:"disableTiming"`
	LogDeliveries        bool    `yaml:"logDeliveries"`
}

// SessionConfig bounds per-session history and idle lifetime.
type SessionConfig struct {
	HistoryLimit int    `yaml:"historyLimit"`
	IdleTTL      string `yaml:"idleTtl"`
}

// TTL parses the idle lifetime, falling back to the default on bad input.
func (s SessionConfig) TTL() time.Duration {
	if s.IdleTTL == "" {
		return defaultIdleTTL
	}
	ttl, err := time.ParseDuration(s.IdleTTL)
	if err != nil || ttl <= 0 {
		log.Printf("config: invalid session idleTtl %q, using %s", s.IdleTTL, defaultIdleTTL)
		return defaultIdleTTL
	}
	return ttl
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(storagePathEnv); v != "" {
		c.Storage.Path = v
	}

	if v := os.Getenv(llmAPIKeyEnv); v != "" {
		c.LLM.APIKey = v
	}

	if v := os.Getenv(llmModelEnv); v != "" {
		c.LLM.Model = v
	}

	if v := os.Getenv(llmProviderEnv); v != "" {
		c.LLM.Provider = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Telegram.BotToken = v
	}

	if v := os.Getenv(webchatAddrEnv); v != "" {
		c.Webchat.Addr = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.Storage.Path != "" {
		base.Storage.Path = override.Storage.Path
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.LLM.Provider != "" {
		base.LLM.Provider = override.LLM.Provider
	}
	if override.LLM.Endpoint != "" {
		base.LLM.Endpoint = override.LLM.Endpoint
	}
	if override.LLM.Model != "" {
		base.LLM.Model = override.LLM.Model
	}
	if override.LLM.APIKey != "" {
		base.LLM.APIKey = override.LLM.APIKey
	}
	if override.LLM.Persona != "" {
		base.LLM.Persona = override.LLM.Persona
	}

	if override.Appraisal.Mode != "" {
		base.Appraisal.Mode = override.Appraisal.Mode
	}
	if override.Appraisal.InferenceURL != "" {
		base.Appraisal.InferenceURL = override.Appraisal.InferenceURL
	}
	if override.Appraisal.APIKey != "" {
		base.Appraisal.APIKey = override.Appraisal.APIKey
	}

	if override.Telegram.BotToken != "" {
		base.Telegram.BotToken = override.Telegram.BotToken
	}

	if override.Webchat.Addr != "" {
		base.Webchat.Addr = override.Webchat.Addr
	}

	if override.Engine.MinSegmentLength > 0 {
		base.Engine.MinSegmentLength = override.Engine.MinSegmentLength
	}
	if override.Engine.MaxSegmentLength > 0 {
		base.Engine.MaxSegmentLength = override.Engine.MaxSegmentLength
	}
	if override.Engine.BaseWordsPerMinute > 0 {
		base.Engine.BaseWordsPerMinute = override.Engine.BaseWordsPerMinute
	}
	if override.Engine.HesitationBase > 0 {
		base.Engine.HesitationBase = override.Engine.HesitationBase
	}
	if override.Engine.HesitationMultiplier > 0 {
		base.Engine.HesitationMultiplier = override.Engine.HesitationMultiplier
	}
	base.Engine.DisableTiming = override.Engine.DisableTiming
	base.Engine.LogDeliveries = override.Engine.LogDeliveries

	if override.Session.HistoryLimit > 0 {
		base.Session.HistoryLimit = override.Session.HistoryLimit
	}
	if override.Session.IdleTTL != "" {
		base.Session.IdleTTL = override.Session.IdleTTL
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Storage: StorageConfig{Path: "cadence.db"},
		Scheduler: SchedulerConfig{
			CronExpression: "@every 5m",
			Timezone:       defaultTimezone,
			location:       tz,
		},
		LLM: LLMConfig{
			Provider: "mock",
			Endpoint: "https://api.openai.com/v1/chat/completions",
			Model:    "gpt-4o-mini",
			APIKey:   "",
			Persona:  "You are a warm, attentive chat companion. Keep replies short and conversational.",
		},
		Appraisal: AppraisalConfig{Mode: "local", InferenceURL: "", APIKey: ""},
		Telegram:  TelegramConfig{BotToken: ""},
		Webchat:   WebchatConfig{Addr: ":8085"},
		Engine: EngineConfig{
			MinSegmentLength:     10,
			MaxSegmentLength:     50,
			BaseWordsPerMinute:   60,
			HesitationBase:       0.5,
			HesitationMultiplier: 1.5,
		},
		Session: SessionConfig{HistoryLimit: 20, IdleTTL: "30m"},
	}
}
