package main

import (
	"fmt"

	"github.com/sandevgo/ceramicsrag/internal/config"
	"github.com/sandevgo/ceramicsrag/internal/providers/llm"
	"github.com/sandevgo/ceramicsrag/internal/service/ui"
	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List chat models of the configured provider",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		loadEnv(ctx)
		cfg := config.NewProviderConfig(ctx)

		provider, err := llm.NewProvider(ctx, *cfg)
		if err != nil {
			return err
		}

		models, err := provider.Models(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.TitleStyle.Render(fmt.Sprintf("Models (%s)", cfg.Provider)))
		for _, m := range models {
			marker := " "
			if m.ID == cfg.Model {
				marker = "*"
			}
			line := fmt.Sprintf("%s %s", marker, m.ID)
			if m.ContextLength > 0 {
				line += ui.DescStyle.Render(fmt.Sprintf("  (%d ctx)", m.ContextLength))
			}
			fmt.Fprintln(out, line)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}
