package controller

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/websocket"
	"github.com/sharetube/watchroom/internal/domain"
	"github.com/sharetube/watchroom/internal/service/room"
	"github.com/sharetube/watchroom/internal/service/session"
	"github.com/sharetube/watchroom/pkg/validator"
	"github.com/sharetube/watchroom/pkg/wsrouter"
)

type iRoomService interface {
	GetRoom(string) (*domain.Room, error)
	RoomIds() []string
	DefaultRoomId() string
	Login(context.Context, *room.LoginParams) (domain.User, error)
	PostMessage(context.Context, *room.PostMessageParams) error
	Enqueue(context.Context, *room.AddVideoParams) error
	AddToPlaylist(context.Context, *room.AddVideoParams) error
	RemoveVideo(context.Context, *room.VideoRefParams) error
	RequestPlay(context.Context, *room.AddVideoParams) error
	SetMute(context.Context, *room.SetRoleParams) error
	SetMod(context.Context, *room.SetRoleParams) error
	UpdatePlayer(context.Context, *room.UpdatePlayerParams) error
}

type iSessionService interface {
	Resolve(context.Context, string) (session.ResolveResponse, error)
	Connect(context.Context, string) (session.ResolveResponse, error)
	Disconnect(string)
	Online() []domain.User
	ChangeIdentity(context.Context, *session.ChangeIdentityParams) error
	NewAnonymousUser() domain.User
}

type Config struct {
	Secret          string
	CatchupMessages int
	SendBuffer      int
	WriteTimeout    time.Duration
	LeaveTimeout    time.Duration
	// PongWait bounds the silence allowed from a peer. Pings go out every
	// nine tenths of it.
	PongWait  time.Duration
	ReadLimit int64
}

type controller struct {
	roomService    iRoomService
	sessionService iSessionService
	upgrader       websocket.Upgrader
	validate       *validator.Validator
	cookies        *securecookie.SecureCookie
	wsmux          *wsrouter.WSRouter
	logger         *slog.Logger
	cfg            Config
}

func NewController(roomService iRoomService, sessionService iSessionService, logger *slog.Logger, cfg Config) *controller {
	if cfg.CatchupMessages <= 0 {
		cfg.CatchupMessages = 20
	}

	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = 256
	}

	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}

	if cfg.LeaveTimeout <= 0 {
		cfg.LeaveTimeout = 5 * time.Second
	}

	if cfg.PongWait <= 0 {
		cfg.PongWait = 60 * time.Second
	}

	if cfg.ReadLimit <= 0 {
		cfg.ReadLimit = 1 << 20
	}

	c := &controller{
		roomService:    roomService,
		sessionService: sessionService,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		validate: validator.NewValidator(),
		cookies:  securecookie.New([]byte(cfg.Secret), nil),
		logger:   logger,
		cfg:      cfg,
	}
	c.wsmux = c.getWSRouter()

	return c
}
