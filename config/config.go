package config

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"trust-guard/model"
	"trust-guard/utils"
)

// Load loads the configuration from environment variables and the
// guard config file.
func Load() (*model.Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: .env file not found, relying on environment variables")
	}

	token := os.Getenv("BOT_TOKEN")
	if token == "" {
		log.Fatal("Error: BOT_TOKEN environment variable not set")
	}

	logChannelID := os.Getenv("LOG_CHANNEL_ID")
	if logChannelID == "" {
		log.Println("Warning: LOG_CHANNEL_ID not set, admin alerts will be disabled")
	}

	guard, err := loadGuardConfig()
	if err != nil {
		return nil, err
	}

	return &model.Config{
		BotToken:     token,
		LogChannelID: logChannelID,
		Guard:        *guard,
	}, nil
}

// loadGuardConfig reads data/guard_config.json with every default
// enumerated, so a missing file yields a fully working engine with no
// guild rules configured.
func loadGuardConfig() (*model.GuardConfig, error) {
	v := viper.New()
	v.SetConfigName("guard_config")
	v.SetConfigType("json")
	v.AddConfigPath("data")

	v.SetDefault("database_path", "data/trust.db")
	v.SetDefault("sweep_interval", "5m")
	v.SetDefault("moderation_timeout", "10s")
	v.SetDefault("spam.window_ttl", "10m")
	v.SetDefault("spam.window_max", 10)
	v.SetDefault("spam.duplicate_threshold", 3)
	v.SetDefault("spam.duplicate_weight", 2)
	v.SetDefault("spam.rapid_count", 5)
	v.SetDefault("spam.rapid_window", "10s")
	v.SetDefault("spam.rapid_weight", 1)
	v.SetDefault("spam.caps_min_length", 12)
	v.SetDefault("spam.caps_repeat", 3)
	v.SetDefault("spam.caps_weight", 4)
	v.SetDefault("decay.enabled", false)
	v.SetDefault("decay.interval", "24h")
	v.SetDefault("decay.amount", 0)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			log.Println("Warning: guard config file not found, using defaults")
		} else {
			return nil, fmt.Errorf("failed to read guard config: %w", err)
		}
	}

	var guard model.GuardConfig
	if err := v.Unmarshal(&guard); err != nil {
		return nil, fmt.Errorf("failed to parse guard config: %w", err)
	}

	if guard.Decay.Enabled {
		if _, err := utils.ParseDuration(guard.Decay.Interval); err != nil {
			return nil, fmt.Errorf("invalid decay.interval: %w", err)
		}
	}

	if err := guard.Validate(); err != nil {
		return nil, fmt.Errorf("invalid guard config: %w", err)
	}
	return &guard, nil
}
