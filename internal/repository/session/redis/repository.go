package redis

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/sharetube/watchroom/internal/repository/session"
)

type repo struct {
	rc *redis.Client
}

func NewRepo(rc *redis.Client) *repo {
	return &repo{rc: rc}
}

func (r repo) getSessionKey(token string) string {
	return "session:" + token
}

func (r repo) SetSession(ctx context.Context, params *session.SetSessionParams) error {
	funcName := "session.redis.SetSession"
	ok, err := r.rc.HSetNX(ctx, r.getSessionKey(params.Token), "user_id", params.UserId).Result()
	if err != nil {
		slog.ErrorContext(ctx, funcName, "error", err)
		return err
	}

	if !ok {
		slog.InfoContext(ctx, funcName, "error", session.ErrSessionAlreadyExists)
		return session.ErrSessionAlreadyExists
	}

	return nil
}

func (r repo) UpdateSession(ctx context.Context, params *session.SetSessionParams) error {
	funcName := "session.redis.UpdateSession"
	key := r.getSessionKey(params.Token)

	exists, err := r.rc.Exists(ctx, key).Result()
	if err != nil {
		slog.ErrorContext(ctx, funcName, "error", err)
		return err
	}

	if exists == 0 {
		return session.ErrSessionNotFound
	}

	return r.rc.HSet(ctx, key, "user_id", params.UserId).Err()
}

func (r repo) GetSession(ctx context.Context, token string) (session.Session, error) {
	if token == "" {
		return session.Session{}, session.ErrSessionNotFound
	}

	var res session.Session
	if err := r.rc.HGetAll(ctx, r.getSessionKey(token)).Scan(&res); err != nil {
		return session.Session{}, err
	}

	if res.UserId == "" {
		return session.Session{}, session.ErrSessionNotFound
	}

	res.Token = token
	return res, nil
}
