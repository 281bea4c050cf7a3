package main

import (
	"os"
	"os/signal"

	"github.com/sandevgo/ceramicsrag/internal/service/command"
	"github.com/sandevgo/ceramicsrag/internal/transport/cli"
	"github.com/sandevgo/ceramicsrag/pkg/log"
	"github.com/spf13/cobra"
)

var chatSession string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation",
	Long:  `Starts a multi-turn conversation. Turns are saved so --session can resume it later.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		ctx, flushLog := setupLogger(ctx)
		defer flushLog()

		p, err := newPipeline(ctx)
		if err != nil {
			return err
		}

		sessions, db, err := p.openSessions(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		id := chatSession
		if id == "" {
			if id, err = sessions.Create(ctx); err != nil {
				return err
			}
		} else if err := sessions.Open(ctx, id); err != nil {
			return err
		}
		log.FromCtx(ctx).Debug().Str("session", id).Msg("chat session ready")

		router := command.New(command.NewCommands(p.provider.Provider, sessions, p.model))
		return cli.NewChat(sessions, router, id, cmd.InOrStdin(), cmd.OutOrStdout()).Run(ctx)
	},
}

func init() {
	chatCmd.Flags().StringVar(&chatSession, "session", "", "resume the conversation with this id")
	rootCmd.AddCommand(chatCmd)
}
