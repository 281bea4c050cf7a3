package core

import "fmt"

// Conversation is an append-only sequence of turns owned by a single session.
// It is not safe for concurrent mutation; callers serialize turns per session.
type Conversation struct {
	turns []Turn
}

func NewConversation(history ...Turn) *Conversation {
	turns := make([]Turn, len(history))
	copy(turns, history)
	return &Conversation{turns: turns}
}

func (c *Conversation) Append(t Turn) {
	c.turns = append(c.turns, t)
}

// MarkLastFailed records err on the most recent turn.
func (c *Conversation) MarkLastFailed(err error) {
	if len(c.turns) == 0 || err == nil {
		return
	}
	c.turns[len(c.turns)-1].Error = err.Error()
}

// Turns returns a copy of the turns in chronological order.
func (c *Conversation) Turns() []Turn {
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Since returns a copy of the turns appended after the first n.
func (c *Conversation) Since(n int) []Turn {
	if n < 0 {
		n = 0
	}
	if n >= len(c.turns) {
		return nil
	}
	out := make([]Turn, len(c.turns)-n)
	copy(out, c.turns[n:])
	return out
}

func (c *Conversation) Len() int {
	return len(c.turns)
}

// CleanHistory checks history received from outside the process. Only user
// and assistant turns are accepted, and Error is cleared so a caller cannot
// hide turns from the prompt.
func CleanHistory(history []Turn) ([]Turn, error) {
	out := make([]Turn, len(history))
	for i, t := range history {
		if t.Role != RoleUser && t.Role != RoleAssistant {
			return nil, fmt.Errorf("%w: turn %d has role %q", ErrInvalidHistory, i, t.Role)
		}
		out[i] = Turn{Role: t.Role, Content: t.Content}
	}
	return out, nil
}
