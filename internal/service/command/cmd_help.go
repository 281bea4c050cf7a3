package command

import (
	"context"
	"fmt"

	"github.com/sandevgo/ceramicsrag/internal/service/ui"
)

type HelpCommand struct {
	router    *Router
	formatter *ResponseFormatter
}

func (c *HelpCommand) Name() string {
	return "help"
}

func (c *HelpCommand) Description() string {
	return "List available commands"
}

func (c *HelpCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	var items []string
	for _, cmd := range c.router.ListCommands() {
		items = append(items, fmt.Sprintf("%-10s %s", ui.UsageStyle.Render("/"+cmd.Name()), cmd.Description()))
	}
	return c.formatter.Combine(
		c.formatter.Info("Commands"),
		c.formatter.List(items),
		c.formatter.Tip("anything not starting with / is sent as a question; /exit quits"),
	), nil
}
