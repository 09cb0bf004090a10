package inmemory

import (
	"context"
	"log/slog"
	"sync"

	"github.com/sharetube/watchroom/internal/repository/session"
)

type repo struct {
	sessions map[string]string
	mu       sync.RWMutex
}

func NewRepo() *repo {
	return &repo{
		sessions: make(map[string]string),
	}
}

func (r *repo) SetSession(ctx context.Context, params *session.SetSessionParams) error {
	funcName := "session.inmemory.SetSession"
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[params.Token]; ok {
		slog.InfoContext(ctx, funcName, "error", session.ErrSessionAlreadyExists)
		return session.ErrSessionAlreadyExists
	}

	r.sessions[params.Token] = params.UserId
	return nil
}

func (r *repo) UpdateSession(ctx context.Context, params *session.SetSessionParams) error {
	funcName := "session.inmemory.UpdateSession"
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[params.Token]; !ok {
		slog.InfoContext(ctx, funcName, "error", session.ErrSessionNotFound)
		return session.ErrSessionNotFound
	}

	r.sessions[params.Token] = params.UserId
	return nil
}

func (r *repo) GetSession(ctx context.Context, token string) (session.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	userId, ok := r.sessions[token]
	if !ok {
		return session.Session{}, session.ErrSessionNotFound
	}

	return session.Session{Token: token, UserId: userId}, nil
}
