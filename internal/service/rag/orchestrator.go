package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sandevgo/ceramicsrag/internal/core"
	"github.com/sandevgo/ceramicsrag/pkg/log"
)

type ContextRetriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]core.ScoredChunk, error)
}

// Observer receives the output of each stage of a turn, synchronously.
type Observer interface {
	OnRetrieved(ctx context.Context, query string, retrieved []core.ScoredChunk)
	OnPrompt(ctx context.Context, turns []core.Turn)
	OnAnswer(ctx context.Context, answer *core.Answer, elapsed time.Duration)
}

type Orchestrator struct {
	retriever ContextRetriever
	prompter  *Prompter
	model     core.ChatModel
	topK      int
	observer  Observer
}

func NewOrchestrator(retriever ContextRetriever, prompter *Prompter, model core.ChatModel, topK int) (*Orchestrator, error) {
	if retriever == nil || model == nil {
		return nil, errors.New("rag: retriever and model are required")
	}
	if prompter == nil {
		prompter = NewPrompter(0, nil)
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Orchestrator{
		retriever: retriever,
		prompter:  prompter,
		model:     model,
		topK:      topK,
		observer:  LogObserver{},
	}, nil
}

func (o *Orchestrator) WithObserver(obs Observer) *Orchestrator {
	o.observer = obs
	return o
}

// Answer runs one turn against conv. The user turn is appended before any
// remote call and stays on failure, marked with the error. On success exactly
// one assistant turn follows it. Blank queries are rejected with
// core.ErrEmptyQuery and leave conv untouched.
func (o *Orchestrator) Answer(ctx context.Context, conv *core.Conversation, query string) (*core.Answer, error) {
	if strings.TrimSpace(query) == "" {
		return nil, core.ErrEmptyQuery
	}

	start := time.Now()
	conv.Append(core.Turn{Role: core.RoleUser, Content: query})

	retrieved, err := o.retriever.Retrieve(ctx, query, o.topK)
	if err != nil {
		err = fmt.Errorf("retrieve: %w", err)
		conv.MarkLastFailed(err)
		return nil, err
	}
	o.observer.OnRetrieved(ctx, query, retrieved)

	chunks := make([]core.Chunk, len(retrieved))
	for i, sc := range retrieved {
		chunks[i] = sc.Chunk
	}

	// Failed turns of conv are not resent; see Prompter.Window.
	turns := o.prompter.Assemble(chunks, conv.Turns())
	o.observer.OnPrompt(ctx, turns)

	text, err := o.model.Chat(ctx, turns)
	if err != nil {
		err = fmt.Errorf("generate: %w", err)
		conv.MarkLastFailed(err)
		return nil, err
	}

	conv.Append(core.Turn{Role: core.RoleAssistant, Content: text})

	answer := &core.Answer{Text: text, Retrieved: retrieved}
	o.observer.OnAnswer(ctx, answer, time.Since(start))
	return answer, nil
}

// Ask answers a question against a throwaway conversation seeded with
// caller-supplied history, which must hold only user and assistant turns.
func (o *Orchestrator) Ask(ctx context.Context, query string, history []core.Turn) (*core.Answer, error) {
	history, err := core.CleanHistory(history)
	if err != nil {
		return nil, err
	}
	return o.Answer(ctx, core.NewConversation(history...), query)
}

// LogObserver writes stage outputs to the context logger at debug level.
type LogObserver struct{}

func (LogObserver) OnRetrieved(ctx context.Context, query string, retrieved []core.ScoredChunk) {
	logger := log.FromCtx(ctx)
	logger.Debug().Str("query", query).Int("chunks", len(retrieved)).Msg("retrieved context")
	for i, sc := range retrieved {
		logger.Debug().Int("rank", i+1).Float64("score", sc.Score).Str("source", sc.Chunk.Source()).Msg("context chunk")
	}
}

func (LogObserver) OnPrompt(ctx context.Context, turns []core.Turn) {
	size := 0
	for _, t := range turns {
		size += len(t.Content)
	}
	log.FromCtx(ctx).Debug().Int("turns", len(turns)).Int("chars", size).Msg("prompt assembled")
}

func (LogObserver) OnAnswer(ctx context.Context, answer *core.Answer, elapsed time.Duration) {
	log.FromCtx(ctx).Debug().
		Int("chars", len(answer.Text)).
		Strs("sources", answer.Sources()).
		Dur("elapsed", elapsed).
		Msg("answer generated")
}
