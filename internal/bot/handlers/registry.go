package handlers

import (
	tgbot "github.com/go-telegram/bot"

	"github.com/frappeash/lookupbot/internal/telegram"
)

// RegisterAllCommands initializes and returns a map of all available bot
// commands. One lookup handler is registered per configured provider, so
// the command surface follows the configuration rather than the code.
func RegisterAllCommands(deps HandlerDeps) map[string]telegram.RegisteredHandler {
	handlers := make(map[string]telegram.RegisteredHandler)

	handlers["/start"] = telegram.RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "start",
		Handler:     NewStartHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
	}
	handlers["/help"] = telegram.RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "help",
		Handler:     NewHelpHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
	}

	for command := range deps.Config.Providers {
		handlers["/"+command] = telegram.RegisteredHandler{
			HandlerType: tgbot.HandlerTypeMessageText,
			Pattern:     command,
			Handler:     NewLookupHandler(deps, command),
			MatchType:   tgbot.MatchTypeCommandStartOnly,
		}
	}

	handlers["/broadcast"] = telegram.RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "broadcast",
		Handler:     NewBroadcastHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Middleware:  []tgbot.Middleware{OwnerOnly(deps)},
	}

	return handlers
}
