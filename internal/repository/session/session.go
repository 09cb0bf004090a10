package session

import "errors"

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
)

type Session struct {
	Token  string `redis:"-"`
	UserId string `redis:"user_id"`
}

type SetSessionParams struct {
	Token  string
	UserId string
}
