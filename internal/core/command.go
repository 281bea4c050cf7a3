package core

import "context"

// CmdRouter dispatches slash commands typed into a chat. Execute reports
// false when input is a question rather than a command.
type CmdRouter interface {
	Execute(ctx context.Context, sessionID, input string) (string, bool)
	ListCommands() []Command
}

// Command is one slash command. Name is used without the leading slash and
// args are the whitespace-separated words after it.
type Command interface {
	Name() string
	Description() string
	Execute(ctx context.Context, sessionID string, args []string) (output string, err error)
}
