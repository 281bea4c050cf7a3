package rag

import (
	"strings"

	"github.com/sandevgo/ceramicsrag/internal/core"
	"github.com/sandevgo/ceramicsrag/pkg/tokens"
)

const systemTemplate = "You are an assistant for question-answering tasks. Use the context below to answer the question.\n\nContext:\n"

const contextSeparator = "\n\n"

// turnOverhead approximates the role and framing tokens each chat message costs.
const turnOverhead = 4

// Prompter builds the model input from retrieved context and conversation
// history. History is windowed to a token budget; the conversation itself is
// never modified.
type Prompter struct {
	maxHistoryTokens int
	counter          tokens.Counter
}

// NewPrompter returns a Prompter keeping at most maxHistoryTokens of history.
// Zero or less keeps the whole history.
func NewPrompter(maxHistoryTokens int, counter tokens.Counter) *Prompter {
	if counter == nil {
		counter = tokens.Estimator{}
	}
	return &Prompter{maxHistoryTokens: maxHistoryTokens, counter: counter}
}

// SystemPrompt renders the instruction turn for the given context chunks.
func SystemPrompt(chunks []core.Chunk) string {
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = c.Content
	}
	return systemTemplate + strings.Join(parts, contextSeparator)
}

// Assemble returns the system turn followed by the windowed history.
func (p *Prompter) Assemble(chunks []core.Chunk, history []core.Turn) []core.Turn {
	window := p.Window(history)

	turns := make([]core.Turn, 0, len(window)+1)
	turns = append(turns, core.Turn{Role: core.RoleSystem, Content: SystemPrompt(chunks)})
	return append(turns, window...)
}

// Window drops failed turns and then the oldest turns until the rest fit the
// budget. The newest turn is always kept.
func (p *Prompter) Window(history []core.Turn) []core.Turn {
	kept := make([]core.Turn, 0, len(history))
	for _, t := range history {
		if t.Failed() {
			continue
		}
		kept = append(kept, core.Turn{Role: t.Role, Content: t.Content})
	}

	if p.maxHistoryTokens <= 0 || len(kept) == 0 {
		return kept
	}

	start := len(kept) - 1
	used := p.cost(kept[start])
	for start > 0 {
		next := p.cost(kept[start-1])
		if used+next > p.maxHistoryTokens {
			break
		}
		used += next
		start--
	}
	return kept[start:]
}

func (p *Prompter) cost(t core.Turn) int {
	return p.counter.Count(t.Content) + turnOverhead
}
