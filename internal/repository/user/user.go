package user

import "errors"

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
)

type User struct {
	Id           string
	Username     string
	PasswordHash string
	AvatarURL    string
	CreatedAt    int64
}

type CreateUserParams struct {
	Id           string
	Username     string
	PasswordHash string
	AvatarURL    string
}
