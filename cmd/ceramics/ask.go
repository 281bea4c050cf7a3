package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sandevgo/ceramicsrag/internal/service/ui"
	"github.com/spf13/cobra"
)

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a single question",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		p, err := newPipeline(ctx)
		if err != nil {
			return err
		}

		answer, err := p.orchestrator.Ask(ctx, strings.Join(args, " "), nil)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if askJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(answer.Response())
		}

		fmt.Fprintf(out, "%s\n\n", answer.Text)
		fmt.Fprintln(out, ui.TitleStyle.Render("Files Used for Retrieved Context"))
		for _, src := range answer.Sources() {
			fmt.Fprintf(out, "  %s\n", ui.SourceStyle.Render(src))
		}
		return nil
	},
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print answer, retrieved_docs and similarity_scores as JSON")
	rootCmd.AddCommand(askCmd)
}
