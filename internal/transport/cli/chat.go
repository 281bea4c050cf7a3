// Package cli runs the line-oriented chat loop of `ceramics chat`.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sandevgo/ceramicsrag/internal/core"
	"github.com/sandevgo/ceramicsrag/internal/service/ui"
	"github.com/sandevgo/ceramicsrag/pkg/log"
)

const prompt = ">>> "

type Asker interface {
	Ask(ctx context.Context, sessionID, query string) (*core.Answer, error)
}

type Chat struct {
	asker     Asker
	router    core.CmdRouter
	sessionID string

	in  io.Reader
	out io.Writer
}

func NewChat(asker Asker, router core.CmdRouter, sessionID string, in io.Reader, out io.Writer) *Chat {
	return &Chat{
		asker:     asker,
		router:    router,
		sessionID: sessionID,
		in:        in,
		out:       out,
	}
}

// Run reads questions until /exit, EOF or ctx cancellation.
func (c *Chat) Run(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	logger.Debug().Str("session", c.sessionID).Msg("chat started")

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.in)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	fmt.Fprintf(c.out, "%s\n", ui.DescStyle.Render("Session "+c.sessionID+". Type /help for commands, /exit to quit."))

	for {
		fmt.Fprint(c.out, ui.PromptStyle.Render(prompt))

		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(c.out)
			return nil
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(c.out)
				select {
				case err := <-readErr:
					return err
				default:
					return nil
				}
			}
			line = strings.TrimSpace(l)
		}

		if line == "" {
			continue
		}
		if line == "/exit" || line == "exit" {
			return nil
		}

		if out, handled := c.router.Execute(ctx, c.sessionID, line); handled {
			fmt.Fprintln(c.out, out)
			continue
		}

		c.ask(ctx, line)
	}
}

func (c *Chat) ask(ctx context.Context, query string) {
	answer, err := c.asker.Ask(ctx, c.sessionID, query)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.FromCtx(ctx).Error().Err(err).Str("session", c.sessionID).Msg("turn failed")
		}
		fmt.Fprintln(c.out, ui.ErrorStyle.Render("Error: "+err.Error()))
		return
	}

	fmt.Fprintf(c.out, "%s\n\n", answer.Text)
	if sources := answer.Sources(); len(sources) > 0 {
		fmt.Fprintln(c.out, ui.SourceStyle.Render("Sources: "+strings.Join(sources, ", ")))
	}
}
