package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sharetube/watchroom/internal/domain"
	"github.com/sharetube/watchroom/internal/repository/user"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 10

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	return string(hash), nil
}

type LoginParams struct {
	Username string
	Password string
}

// Login resolves a username and password to a catalog user. Unknown
// usernames are registered on the spot; a known username with a wrong
// password yields ErrInvalidCredentials.
func (s *service) Login(ctx context.Context, params *LoginParams) (domain.User, error) {
	existing, err := s.userRepo.GetUserByUsername(ctx, params.Username)
	if errors.Is(err, user.ErrUserNotFound) {
		created, err := s.register(ctx, params)
		if !errors.Is(err, user.ErrUserAlreadyExists) {
			return created, err
		}

		existing, err = s.userRepo.GetUserByUsername(ctx, params.Username)
		if err != nil {
			return domain.User{}, err
		}
	} else if err != nil {
		return domain.User{}, fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(existing.PasswordHash), []byte(params.Password)); err != nil {
		s.logger.InfoContext(ctx, "login rejected", "username", params.Username)
		return domain.User{}, ErrInvalidCredentials
	}

	return toDomainUser(existing), nil
}

func (s *service) register(ctx context.Context, params *LoginParams) (domain.User, error) {
	hash, err := hashPassword(params.Password)
	if err != nil {
		return domain.User{}, err
	}

	u := user.User{
		Id:           uuid.NewString(),
		Username:     params.Username,
		PasswordHash: hash,
		AvatarURL:    domain.DefaultAvatarURL,
	}
	if err := s.userRepo.CreateUser(ctx, &user.CreateUserParams{
		Id:           u.Id,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		AvatarURL:    u.AvatarURL,
	}); err != nil {
		return domain.User{}, err
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", u.Id, "username", u.Username)
	return toDomainUser(u), nil
}
