package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sharetube/watchroom/internal/repository/user"
	_ "modernc.org/sqlite"
)

type repo struct {
	db *sql.DB
}

// Open opens or creates the user catalog at path. ":memory:" keeps it in
// process memory on a single connection.
func Open(ctx context.Context, path string) (*repo, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open user db: %w", err)
	}

	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	} else {
		for _, pragma := range []string{
			"PRAGMA journal_mode = WAL",
			"PRAGMA busy_timeout = 5000",
		} {
			if _, err := db.ExecContext(ctx, pragma); err != nil {
				db.Close()
				return nil, fmt.Errorf("set pragma: %w", err)
			}
		}
	}

	_, err = db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		username      TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL DEFAULT '',
		avatar_url    TEXT NOT NULL DEFAULT '',
		created_at    INTEGER NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create users table: %w", err)
	}

	return &repo{db: db}, nil
}

func (r *repo) Close() error {
	return r.db.Close()
}

func (r *repo) CreateUser(ctx context.Context, params *user.CreateUserParams) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, avatar_url, created_at) VALUES (?, ?, ?, ?, ?)`,
		params.Id, params.Username, params.PasswordHash, params.AvatarURL, time.Now().Unix(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return user.ErrUserAlreadyExists
		}

		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

func (r *repo) GetUserById(ctx context.Context, id string) (user.User, error) {
	return r.getOne(ctx, `SELECT id, username, password_hash, avatar_url, created_at FROM users WHERE id = ?`, id)
}

func (r *repo) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	return r.getOne(ctx, `SELECT id, username, password_hash, avatar_url, created_at FROM users WHERE username = ?`, username)
}

func (r *repo) getOne(ctx context.Context, query string, arg string) (user.User, error) {
	var u user.User
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&u.Id, &u.Username, &u.PasswordHash, &u.AvatarURL, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return user.User{}, user.ErrUserNotFound
	}

	if err != nil {
		return user.User{}, fmt.Errorf("select user: %w", err)
	}

	return u, nil
}
