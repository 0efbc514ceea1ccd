package model

import (
	"fmt"
	"time"
)

// GuildGuardConfig holds the per-guild moderation settings.
type GuildGuardConfig struct {
	Name            string           `json:"name" mapstructure:"name"`
	NotifyChannelID string           `json:"notify_channel_id" mapstructure:"notify_channel_id"`
	Rules           []PunishmentRule `json:"rules" mapstructure:"rules"`
}

// SpamConfig tunes the text-spam detector heuristics.
type SpamConfig struct {
	WindowTTL          time.Duration `mapstructure:"window_ttl"`
	WindowMax          int           `mapstructure:"window_max"`
	DuplicateThreshold int           `mapstructure:"duplicate_threshold"`
	DuplicateWeight    int           `mapstructure:"duplicate_weight"`
	RapidCount         int           `mapstructure:"rapid_count"`
	RapidWindow        time.Duration `mapstructure:"rapid_window"`
	RapidWeight        int           `mapstructure:"rapid_weight"`
	CapsMinLength      int           `mapstructure:"caps_min_length"`
	CapsRepeat         int           `mapstructure:"caps_repeat"`
	CapsWeight         int           `mapstructure:"caps_weight"`
}

// DecayConfig controls the optional periodic score decay job. It is
// disabled unless explicitly configured; no decay rate is assumed.
type DecayConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Interval string `mapstructure:"interval"` // supports day units, e.g. "7d"
	Amount   int    `mapstructure:"amount"`
}

// GuardConfig is the validated engine configuration.
type GuardConfig struct {
	DatabasePath      string                      `mapstructure:"database_path"`
	SweepInterval     time.Duration               `mapstructure:"sweep_interval"`
	ModerationTimeout time.Duration               `mapstructure:"moderation_timeout"`
	Spam              SpamConfig                  `mapstructure:"spam"`
	Decay             DecayConfig                 `mapstructure:"decay"`
	Guilds            map[string]GuildGuardConfig `mapstructure:"guilds"`
}

// Validate checks the guard configuration after defaults are applied.
func (c *GuardConfig) Validate() error {
	if c.Spam.WindowMax <= 0 {
		return fmt.Errorf("spam.window_max must be positive")
	}
	if c.Spam.WindowTTL <= 0 {
		return fmt.Errorf("spam.window_ttl must be positive")
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("sweep_interval must be positive")
	}
	if c.Decay.Enabled && c.Decay.Amount <= 0 {
		return fmt.Errorf("decay.amount must be positive when decay is enabled")
	}
	for guildID, guildCfg := range c.Guilds {
		for _, rule := range guildCfg.Rules {
			if err := rule.Validate(); err != nil {
				return fmt.Errorf("guild %s: %w", guildID, err)
			}
		}
	}
	return nil
}

// Config stores the application configuration.
type Config struct {
	BotToken     string
	LogChannelID string
	Guard        GuardConfig
}
