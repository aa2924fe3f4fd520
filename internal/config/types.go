// Package config manages application configuration from config.yaml,
// BOT_* environment variables, and built-in defaults.
package config

import (
	"errors"
	"time"
)

// ErrConfiguration is returned for any configuration loading or
// validation failure.
var ErrConfiguration = errors.New("configuration error")

// Authorization policy variants. The open policy admits every group and
// denies private chats for non-owners; the allowlist policy admits only
// the configured official groups and leaves any other group it is added to.
const (
	PolicyOpen      = "open"
	PolicyAllowlist = "allowlist"
)

// Membership fail modes decide how a failed channel-membership query is
// interpreted: closed counts the channel as missing, open as satisfied.
const (
	FailClosed = "closed"
	FailOpen   = "open"
)

// Config is the root configuration. It is constructed once at process
// start and never mutated afterwards.
type Config struct {
	Log        LogConfig                 `mapstructure:"log"`
	Telegram   TelegramConfig            `mapstructure:"telegram"`
	Auth       AuthConfig                `mapstructure:"auth"`
	Membership MembershipConfig          `mapstructure:"membership"`
	Providers  map[string]ProviderConfig `mapstructure:"providers" validate:"dive"`
	Shaper     ShaperConfig              `mapstructure:"shaper"`
	Dispatch   DispatchConfig            `mapstructure:"dispatch"`
	Database   DatabaseConfig            `mapstructure:"database"`
	Metrics    MetricsConfig             `mapstructure:"metrics"`
	Messages   MessagesConfig            `mapstructure:"messages"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds transport credentials and the owner identity.
type TelegramConfig struct {
	Token   string `mapstructure:"token"    validate:"required"`
	OwnerID int64  `mapstructure:"owner_id" validate:"required,gt=0"`
}

// AuthConfig selects the authorization policy and its parameters.
type AuthConfig struct {
	Policy         string  `mapstructure:"policy" validate:"oneof=open allowlist"`
	OfficialGroups []int64 `mapstructure:"official_groups"`
	// InviteLink is shown to denied chats as the "use me here" affordance.
	InviteLink string `mapstructure:"invite_link" validate:"omitempty,url"`
}

// MembershipConfig lists the channels a user must be subscribed to before
// non-owner commands are serviced. Channels are Telegram handles ("@name")
// or numeric chat ids ("-100...").
type MembershipConfig struct {
	RequiredChannels []string `mapstructure:"required_channels"`
	FailMode         string   `mapstructure:"fail_mode" validate:"oneof=closed open"`
}

// ProviderConfig binds one command to one external lookup endpoint.
// URL must contain the {arg} placeholder, replaced with the
// query-escaped command argument.
type ProviderConfig struct {
	URL   string `mapstructure:"url"   validate:"required,contains={arg}"`
	Title string `mapstructure:"title" validate:"required"`
	Usage string `mapstructure:"usage"`
}

// ShaperConfig controls response shaping.
type ShaperConfig struct {
	// InlineLimit is the serialized-text length above which the response
	// is spilled to a document attachment.
	InlineLimit int    `mapstructure:"inline_limit" validate:"gt=0"`
	Footer      string `mapstructure:"footer"`
}

// DispatchConfig controls the per-command dispatch protocol.
type DispatchConfig struct {
	// CleanupDelay is how long replies live before the deferred deletion
	// removes both the command message and the response.
	CleanupDelay time.Duration `mapstructure:"cleanup_delay" validate:"min=1s"`
	// CaptionLimit is the caller-side cap applied to attachment captions.
	CaptionLimit int `mapstructure:"caption_limit" validate:"gt=0"`
	// RequestTimeout bounds a single provider fetch.
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"min=1s"`
}

// DatabaseConfig holds the SQLite store settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
	// MaintenanceSchedule is a cron expression for the periodic VACUUM job.
	MaintenanceSchedule string `mapstructure:"maintenance_schedule"`
}

// MetricsConfig controls the /metrics and /healthz HTTP listener.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// MessagesConfig holds the user-visible message templates.
type MessagesConfig struct {
	Welcome          string `mapstructure:"welcome"`
	Fetching         string `mapstructure:"fetching"`
	NoData           string `mapstructure:"no_data"`
	DeniedPrivate    string `mapstructure:"denied_private"`
	DeniedGroup      string `mapstructure:"denied_group"`
	JoinRequired     string `mapstructure:"join_required"`
	NotAuthorized    string `mapstructure:"not_authorized"`
	ReplyToBroadcast string `mapstructure:"reply_to_broadcast"`
	GeneralError     string `mapstructure:"general_error"`
}
