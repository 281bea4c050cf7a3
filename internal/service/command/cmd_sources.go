package command

import (
	"context"
	"fmt"
)

type SourcesCommand struct {
	sessions  SessionReader
	formatter *ResponseFormatter
}

func NewSourcesCommand(sessions SessionReader) *SourcesCommand {
	return &SourcesCommand{sessions: sessions, formatter: NewResponseFormatter()}
}

func (c *SourcesCommand) Name() string {
	return "sources"
}

func (c *SourcesCommand) Description() string {
	return "Show the retrieved chunks behind the last answer"
}

func (c *SourcesCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	answer, ok := c.sessions.LastAnswer(sessionID)
	if !ok {
		return c.formatter.Combine(
			c.formatter.Info("Sources"),
			c.formatter.Label("Status", "Ask a question first."),
		), nil
	}

	items := make([]string, 0, len(answer.Retrieved))
	for i, sc := range answer.Retrieved {
		items = append(items, fmt.Sprintf("%d. %.4f  %s  %s", i+1, sc.Score, sc.Chunk.Source(), preview(sc.Chunk.Content, 80)))
	}

	return c.formatter.Combine(
		c.formatter.Info("Files Used for Retrieved Context"),
		c.formatter.List(answer.Sources()),
		"",
		c.formatter.Info("Chunks"),
		c.formatter.List(items),
	), nil
}
