package config

import "time"

// Default values for optional configuration parameters.
const (
	// DefaultInlineLimit is the serialized-payload length above which a
	// response is sent as a document instead of inline text.
	DefaultInlineLimit = 3500

	// DefaultCaptionLimit caps attachment captions before sending.
	DefaultCaptionLimit = 1000

	DefaultCleanupDelay   = 30 * time.Second
	DefaultRequestTimeout = 15 * time.Second

	DefaultFooter = "\n\n━━━━━━━━━━━━━━━━━━\n🤖 lookupbot"
)

// DefaultMessages are the built-in user-visible message templates.
var DefaultMessages = MessagesConfig{
	Welcome:          "👋 Hello! Add me to a group and use my lookup commands there.",
	Fetching:         "🔄 Fetching...",
	NoData:           "❌ No data found.",
	DeniedPrivate:    "⚠️ I only work inside groups.\n\nAdd me to a group to use my commands.",
	DeniedGroup:      "⚠️ Active only in official groups.\n\nUse me here: %s",
	JoinRequired:     "🔒 Join the required channels below to use this bot.",
	NotAuthorized:    "🚫 You are not authorized to use this command.",
	ReplyToBroadcast: "Reply to a message to broadcast it.",
	GeneralError:     "❌ An error occurred. Please try again later.",
}
