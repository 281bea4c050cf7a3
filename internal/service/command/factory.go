package command

import (
	"github.com/sandevgo/ceramicsrag/internal/core"
)

// NewCommands returns the chat commands; /help is added by the router.
func NewCommands(provider string, sessions SessionReader, models ModelSwitcher) []core.Command {
	return []core.Command{
		NewHistoryCommand(sessions),
		NewSourcesCommand(sessions),
		NewModelCommand(provider, models),
	}
}
