// Package session keeps persistent conversations and serializes turns per session.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sandevgo/ceramicsrag/internal/core"
	"github.com/sandevgo/ceramicsrag/pkg/log"
)

type Answerer interface {
	Answer(ctx context.Context, conv *core.Conversation, query string) (*core.Answer, error)
}

type Manager struct {
	repo     core.MessagesRepository
	answerer Answerer

	// historyLimit caps the turns loaded from storage per question.
	historyLimit int

	mu    sync.Mutex
	locks map[string]*sessionLock
	last  *answerCache
}

// sessionLock is dropped from Manager.locks once nobody holds or waits for it.
type sessionLock struct {
	sync.Mutex
	refs int
}

// DefaultHistoryLimit bounds what is read back from storage; the prompt
// token budget trims further.
const DefaultHistoryLimit = 200

// lastAnswers bounds how many sessions keep their last answer in memory.
const lastAnswers = 256

func NewManager(repo core.MessagesRepository, answerer Answerer, historyLimit int) *Manager {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &Manager{
		repo:         repo,
		answerer:     answerer,
		historyLimit: historyLimit,
		locks:        make(map[string]*sessionLock),
		last:         newAnswerCache(lastAnswers),
	}
}

// Create starts a new session and returns its id.
func (m *Manager) Create(ctx context.Context) (string, error) {
	id := uuid.NewString()
	if err := m.repo.CreateSession(ctx, id); err != nil {
		return "", err
	}
	log.FromCtx(ctx).Debug().Str("session", id).Msg("session created")
	return id, nil
}

// Open makes sure the session exists, creating it under the given id if needed.
func (m *Manager) Open(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid session id %q: %w", id, err)
	}
	return m.repo.CreateSession(ctx, id)
}

func (m *Manager) History(ctx context.Context, id string) ([]core.Turn, error) {
	if err := m.ensureExists(ctx, id); err != nil {
		return nil, err
	}
	return m.repo.GetTurns(ctx, id, 0)
}

// Ask answers query within the session. Turns of one session run one at a
// time; different sessions proceed in parallel. Failed turns are stored with
// their error so the history shows what was asked.
func (m *Manager) Ask(ctx context.Context, id, query string) (*core.Answer, error) {
	if err := m.ensureExists(ctx, id); err != nil {
		return nil, err
	}

	m.lock(id)
	defer m.unlock(id)

	history, err := m.repo.GetTurns(ctx, id, m.historyLimit)
	if err != nil {
		return nil, err
	}

	conv := core.NewConversation(history...)
	answer, answerErr := m.answerer.Answer(ctx, conv, query)
	if errors.Is(answerErr, core.ErrEmptyQuery) {
		return nil, answerErr
	}

	if err := m.repo.AddTurns(context.WithoutCancel(ctx), id, conv.Since(len(history))); err != nil {
		log.FromCtx(ctx).Error().Err(err).Str("session", id).Msg("failed to persist turns")
		if answerErr == nil {
			return nil, err
		}
	}

	if answerErr != nil {
		return nil, answerErr
	}

	m.mu.Lock()
	m.last.put(id, answer)
	m.mu.Unlock()

	return answer, nil
}

// LastAnswer returns the most recent successful answer of the session in this process.
func (m *Manager) LastAnswer(id string) (*core.Answer, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last.get(id)
}

func (m *Manager) ensureExists(ctx context.Context, id string) error {
	ok, err := m.repo.SessionExists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", core.ErrSessionNotFound, id)
	}
	return nil
}

func (m *Manager) lock(id string) {
	m.mu.Lock()
	l, ok := m.locks[id]
	if !ok {
		l = &sessionLock{}
		m.locks[id] = l
	}
	l.refs++
	m.mu.Unlock()

	l.Lock()
}

func (m *Manager) unlock(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l := m.locks[id]
	l.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(m.locks, id)
	}
}
