package room

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/sharetube/watchroom/internal/domain"
	"github.com/sharetube/watchroom/internal/repository/message"
	"github.com/sharetube/watchroom/internal/repository/room"
	"github.com/sharetube/watchroom/internal/repository/user"
	"github.com/sharetube/watchroom/pkg/ytvideodata"
)

var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidVideo       = errors.New("invalid video")
)

type iRoomRepo interface {
	SetRoom(context.Context, *room.SetRoomParams) error
	GetRoom(context.Context, string) (room.Room, error)
	GetRoomIds(context.Context) ([]string, error)
	SetPlaylistItem(context.Context, *room.SetPlaylistItemParams) error
	GetPlaylistItems(context.Context, string) ([]room.PlaylistItem, error)
	RemovePlaylistItem(context.Context, *room.RemovePlaylistItemParams) error
	AddMod(context.Context, *room.ModParams) error
	RemoveMod(context.Context, *room.ModParams) error
	GetModIds(context.Context, string) ([]string, error)
}

type iUserRepo interface {
	CreateUser(context.Context, *user.CreateUserParams) error
	GetUserById(context.Context, string) (user.User, error)
	GetUserByUsername(context.Context, string) (user.User, error)
}

type iMessageArchive interface {
	Append(message.Message) error
	Recent(roomId string, limit int) ([]message.Message, error)
}

type iVideoDataProvider interface {
	Get(ctx context.Context, videoId string) (*ytvideodata.VideoData, error)
}

type Config struct {
	OwnerUsername    string
	OwnerPassword    string
	DefaultRoomId    string
	CatchupMessages  int
	VideoDataTimeout time.Duration
	Room             domain.Config
}

type service struct {
	roomRepo  iRoomRepo
	userRepo  iUserRepo
	archive   iMessageArchive
	videoData iVideoDataProvider
	logger    *slog.Logger
	cfg       Config

	mu            sync.RWMutex
	rooms         map[string]*domain.Room
	defaultRoomId string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewService(
	roomRepo iRoomRepo,
	userRepo iUserRepo,
	archive iMessageArchive,
	videoData iVideoDataProvider,
	logger *slog.Logger,
	cfg Config,
) *service {
	if cfg.CatchupMessages <= 0 {
		cfg.CatchupMessages = 20
	}

	if cfg.VideoDataTimeout <= 0 {
		cfg.VideoDataTimeout = 5 * time.Second
	}

	return &service{
		roomRepo:  roomRepo,
		userRepo:  userRepo,
		archive:   archive,
		videoData: videoData,
		logger:    logger,
		cfg:       cfg,
		rooms:     make(map[string]*domain.Room),
	}
}

func (s *service) GetRoom(roomId string) (*domain.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rooms[roomId]
	if !ok {
		return nil, ErrRoomNotFound
	}

	return r, nil
}

func (s *service) RoomIds() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.rooms))
	for id := range s.rooms {
		ids = append(ids, id)
	}

	slices.Sort(ids)
	return ids
}

func (s *service) DefaultRoomId() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.defaultRoomId
}

// Close stops every room loop and waits for them to exit.
func (s *service) Close() {
	if s.cancel != nil {
		s.cancel()
	}

	s.wg.Wait()
}

func (s *service) call(ctx context.Context, roomId string, fn func(r *domain.Room)) error {
	r, err := s.GetRoom(roomId)
	if err != nil {
		return err
	}

	return r.Call(ctx, func() { fn(r) })
}
