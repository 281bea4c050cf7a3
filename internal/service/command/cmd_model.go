package command

import (
	"context"
	"fmt"

	"github.com/sandevgo/ceramicsrag/internal/core"
)

type ModelSwitcher interface {
	core.ModelLister
	Model() string
	SetModel(ctx context.Context, model string) error
}

type ModelCommand struct {
	provider  string
	models    ModelSwitcher
	formatter *ResponseFormatter
}

func NewModelCommand(provider string, models ModelSwitcher) *ModelCommand {
	return &ModelCommand{
		provider:  provider,
		models:    models,
		formatter: NewResponseFormatter(),
	}
}

func (c *ModelCommand) Name() string {
	return "model"
}

func (c *ModelCommand) Description() string {
	return "Show, list or change the chat model"
}

func (c *ModelCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	if len(args) == 0 {
		return c.formatter.Combine(
			c.formatter.Info("Current Model"),
			c.formatter.Label("Provider", c.provider),
			c.formatter.Label("Model", c.models.Model()),
			c.formatter.Usage("/model [list | <model>]"),
		), nil
	}

	if args[0] == "list" {
		models, err := c.models.Models(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to list models: %w", err)
		}
		ids := make([]string, 0, len(models))
		for _, m := range models {
			ids = append(ids, m.ID)
		}
		return c.formatter.Combine(
			c.formatter.Info(fmt.Sprintf("Models (%s)", c.provider)),
			c.formatter.List(ids),
		), nil
	}

	if err := c.models.SetModel(ctx, args[0]); err != nil {
		return "", fmt.Errorf("failed to set model: %w", err)
	}

	return c.formatter.Success(fmt.Sprintf("Model changed to %s/%s", c.provider, c.models.Model())), nil
}
