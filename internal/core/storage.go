package core

import "context"

type MessagesRepository interface {
	CreateSession(ctx context.Context, sessionID string) error
	SessionExists(ctx context.Context, sessionID string) (bool, error)
	AddTurns(ctx context.Context, sessionID string, turns []Turn) error
	GetTurns(ctx context.Context, sessionID string, limit int) ([]Turn, error)
}
