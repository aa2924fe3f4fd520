package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load loads and validates configuration from:
// 1. Default values
// 2. The config file at path (YAML)
// 3. BOT_* environment variables
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// A missing config file is fine, defaults and env vars still apply.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("%w: failed to read config file: %v", ErrConfiguration, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrConfiguration, err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	if cfg.Auth.Policy == PolicyAllowlist && len(cfg.Auth.OfficialGroups) == 0 {
		return nil, fmt.Errorf("%w: allowlist policy requires auth.official_groups", ErrConfiguration)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", true)

	v.SetDefault("auth.policy", PolicyOpen)
	v.SetDefault("membership.fail_mode", FailClosed)

	v.SetDefault("shaper.inline_limit", DefaultInlineLimit)
	v.SetDefault("shaper.footer", DefaultFooter)

	v.SetDefault("dispatch.cleanup_delay", DefaultCleanupDelay)
	v.SetDefault("dispatch.caption_limit", DefaultCaptionLimit)
	v.SetDefault("dispatch.request_timeout", DefaultRequestTimeout)

	v.SetDefault("database.path", "storage.db")
	v.SetDefault("database.maintenance_schedule", "0 4 * * *")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.addr", ":9090")

	v.SetDefault("messages.welcome", DefaultMessages.Welcome)
	v.SetDefault("messages.fetching", DefaultMessages.Fetching)
	v.SetDefault("messages.no_data", DefaultMessages.NoData)
	v.SetDefault("messages.denied_private", DefaultMessages.DeniedPrivate)
	v.SetDefault("messages.denied_group", DefaultMessages.DeniedGroup)
	v.SetDefault("messages.join_required", DefaultMessages.JoinRequired)
	v.SetDefault("messages.not_authorized", DefaultMessages.NotAuthorized)
	v.SetDefault("messages.reply_to_broadcast", DefaultMessages.ReplyToBroadcast)
	v.SetDefault("messages.general_error", DefaultMessages.GeneralError)
}
