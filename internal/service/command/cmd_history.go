package command

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sandevgo/ceramicsrag/internal/core"
)

type SessionReader interface {
	History(ctx context.Context, id string) ([]core.Turn, error)
	LastAnswer(id string) (*core.Answer, bool)
}

type HistoryCommand struct {
	sessions  SessionReader
	formatter *ResponseFormatter
}

func NewHistoryCommand(sessions SessionReader) *HistoryCommand {
	return &HistoryCommand{sessions: sessions, formatter: NewResponseFormatter()}
}

func (c *HistoryCommand) Name() string {
	return "history"
}

func (c *HistoryCommand) Description() string {
	return "Show the conversation so far (optionally the last N turns)"
}

func (c *HistoryCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	turns, err := c.sessions.History(ctx, sessionID)
	if err != nil {
		return "", err
	}

	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return c.formatter.Usage("/history [N]"), nil
		}
		if n < len(turns) {
			turns = turns[len(turns)-n:]
		}
	}

	if len(turns) == 0 {
		return c.formatter.Combine(
			c.formatter.Info("History"),
			c.formatter.Label("Status", "No turns yet."),
		), nil
	}

	items := make([]string, 0, len(turns))
	for _, t := range turns {
		line := fmt.Sprintf("%s: %s", t.Role, preview(t.Content, 120))
		if t.Failed() {
			line += "  [failed: " + t.Error + "]"
		}
		items = append(items, line)
	}

	return c.formatter.Combine(
		c.formatter.Info(fmt.Sprintf("History (%d turns)", len(turns))),
		c.formatter.List(items),
	), nil
}

func preview(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "…"
}
