package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sharetube/watchroom/internal/domain"
	"github.com/sharetube/watchroom/internal/repository/session"
	"github.com/sharetube/watchroom/internal/repository/user"
	"github.com/sharetube/watchroom/pkg/names"
)

type iSessionRepo interface {
	SetSession(context.Context, *session.SetSessionParams) error
	GetSession(context.Context, string) (session.Session, error)
	UpdateSession(context.Context, *session.SetSessionParams) error
}

type iUserRepo interface {
	GetUserById(context.Context, string) (user.User, error)
}

// service is the session registry together with the process-wide presence
// set of connected users.
type service struct {
	sessionRepo iSessionRepo
	userRepo    iUserRepo
	logger      *slog.Logger

	mu     sync.Mutex
	known  map[string]domain.User
	online map[string]int
}

func NewService(sessionRepo iSessionRepo, userRepo iUserRepo, logger *slog.Logger) *service {
	return &service{
		sessionRepo: sessionRepo,
		userRepo:    userRepo,
		logger:      logger,
		known:       make(map[string]domain.User),
		online:      make(map[string]int),
	}
}

type ResolveResponse struct {
	Token string
	User  domain.User
	IsNew bool
}

// Resolve maps a session token to its user. Unknown or empty tokens get a
// new session bound to a new anonymous user.
func (s *service) Resolve(ctx context.Context, token string) (ResolveResponse, error) {
	if token != "" {
		sess, err := s.sessionRepo.GetSession(ctx, token)
		switch {
		case err == nil:
			u, err := s.lookupUser(ctx, sess.UserId)
			if err == nil {
				return ResolveResponse{Token: token, User: u}, nil
			}

			s.logger.InfoContext(ctx, "session user is gone, rebinding", "user_id", sess.UserId, "error", err)
			u = s.NewAnonymousUser()
			if err := s.sessionRepo.UpdateSession(ctx, &session.SetSessionParams{Token: token, UserId: u.Id}); err != nil {
				return ResolveResponse{}, fmt.Errorf("failed to update session: %w", err)
			}

			return ResolveResponse{Token: token, User: u}, nil
		case !errors.Is(err, session.ErrSessionNotFound):
			return ResolveResponse{}, fmt.Errorf("failed to get session: %w", err)
		}
	}

	u := s.NewAnonymousUser()
	newToken := uuid.NewString()
	if err := s.sessionRepo.SetSession(ctx, &session.SetSessionParams{Token: newToken, UserId: u.Id}); err != nil {
		return ResolveResponse{}, fmt.Errorf("failed to set session: %w", err)
	}

	s.logger.DebugContext(ctx, "session created", "user_id", u.Id)
	return ResolveResponse{Token: newToken, User: u, IsNew: true}, nil
}

// Connect resolves the session and marks its user as online.
func (s *service) Connect(ctx context.Context, token string) (ResolveResponse, error) {
	resp, err := s.Resolve(ctx, token)
	if err != nil {
		return ResolveResponse{}, err
	}

	s.mu.Lock()
	s.online[resp.User.Id]++
	s.mu.Unlock()

	return resp, nil
}

// Disconnect marks one connection of userId as gone.
func (s *service) Disconnect(userId string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.release(userId)
}

type ChangeIdentityParams struct {
	Token     string
	OldUserId string
	NewUser   domain.User
}

// ChangeIdentity moves a connection from one user to another and points the
// session at the new user for future reconnects.
func (s *service) ChangeIdentity(ctx context.Context, params *ChangeIdentityParams) error {
	s.mu.Lock()
	s.release(params.OldUserId)
	s.known[params.NewUser.Id] = params.NewUser
	s.online[params.NewUser.Id]++
	s.mu.Unlock()

	if err := s.sessionRepo.UpdateSession(ctx, &session.SetSessionParams{
		Token:  params.Token,
		UserId: params.NewUser.Id,
	}); err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	return nil
}

func (s *service) NewAnonymousUser() domain.User {
	u := domain.NewAnonymousUser(names.Generate())

	s.mu.Lock()
	s.known[u.Id] = u
	s.mu.Unlock()

	return u
}

// Online returns connected users ordered by username.
func (s *service) Online() []domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := make([]domain.User, 0, len(s.online))
	for id := range s.online {
		res = append(res, s.known[id])
	}

	slices.SortFunc(res, func(a, b domain.User) int {
		if c := strings.Compare(a.Username, b.Username); c != 0 {
			return c
		}
		return strings.Compare(a.Id, b.Id)
	})
	return res
}

func (s *service) lookupUser(ctx context.Context, userId string) (domain.User, error) {
	s.mu.Lock()
	u, ok := s.known[userId]
	s.mu.Unlock()
	if ok {
		return u, nil
	}

	stored, err := s.userRepo.GetUserById(ctx, userId)
	if err != nil {
		return domain.User{}, err
	}

	u = domain.User{Id: stored.Id, Username: stored.Username, AvatarURL: stored.AvatarURL}
	if u.AvatarURL == "" {
		u.AvatarURL = domain.DefaultAvatarURL
	}

	s.mu.Lock()
	s.known[u.Id] = u
	s.mu.Unlock()

	return u, nil
}

func (s *service) release(userId string) {
	if s.online[userId] <= 1 {
		delete(s.online, userId)
		return
	}

	s.online[userId]--
}
