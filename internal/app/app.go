package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sharetube/watchroom/internal/controller"
	"github.com/sharetube/watchroom/internal/domain"
	messagePebble "github.com/sharetube/watchroom/internal/repository/message/pebble"
	roomRedis "github.com/sharetube/watchroom/internal/repository/room/redis"
	sessionRepo "github.com/sharetube/watchroom/internal/repository/session"
	sessionInmemory "github.com/sharetube/watchroom/internal/repository/session/inmemory"
	sessionRedis "github.com/sharetube/watchroom/internal/repository/session/redis"
	userSqlite "github.com/sharetube/watchroom/internal/repository/user/sqlite"
	"github.com/sharetube/watchroom/internal/service/room"
	"github.com/sharetube/watchroom/internal/service/session"
	"github.com/sharetube/watchroom/pkg/ctxlogger"
	"github.com/sharetube/watchroom/pkg/redisclient"
	"github.com/sharetube/watchroom/pkg/ytvideodata"
)

const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

type AppConfig struct {
	Secret             string        `json:"-"`
	Host               string        `json:"host"`
	Port               int           `json:"port"`
	LogLevel           string        `json:"log_level"`
	RedisPort          int           `json:"redis_port"`
	RedisHost          string        `json:"redis_host"`
	RedisPassword      string        `json:"-"`
	UserDBPath         string        `json:"user_db_path"`
	MessageDBPath      string        `json:"message_db_path"`
	SessionStore       string        `json:"session_store"`
	OwnerUsername      string        `json:"owner_username"`
	OwnerPassword      string        `json:"-"`
	DefaultRoom        string        `json:"default_room"`
	CatchupMessages    int           `json:"catchup_messages"`
	MessageLogCapacity int           `json:"message_log_capacity"`
	TickInterval       time.Duration `json:"tick_interval"`
	VideoDataTimeout   time.Duration `json:"video_data_timeout"`
}

func (cfg *AppConfig) Validate() error {
	var errs []error

	if len(cfg.Secret) < 32 {
		errs = append(errs, fmt.Errorf("secret must be at least 32 bytes"))
	}
	if cfg.Port < 1 {
		errs = append(errs, fmt.Errorf("port must be greater than 0"))
	}
	if cfg.OwnerUsername == "" || cfg.OwnerPassword == "" {
		errs = append(errs, fmt.Errorf("owner username and password are required"))
	}
	if cfg.CatchupMessages < 1 {
		errs = append(errs, fmt.Errorf("catchup messages must be greater than 0"))
	}
	if cfg.MessageLogCapacity < 1 {
		errs = append(errs, fmt.Errorf("message log capacity must be greater than 0"))
	}
	if cfg.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("tick interval must be positive"))
	}
	if cfg.VideoDataTimeout <= 0 {
		errs = append(errs, fmt.Errorf("video data timeout must be positive"))
	}
	if cfg.SessionStore != SessionStoreMemory && cfg.SessionStore != SessionStoreRedis {
		errs = append(errs, fmt.Errorf("unknown session store %q", cfg.SessionStore))
	}

	return errors.Join(errs...)
}

type iSessionRepo interface {
	SetSession(context.Context, *sessionRepo.SetSessionParams) error
	GetSession(context.Context, string) (sessionRepo.Session, error)
	UpdateSession(context.Context, *sessionRepo.SetSessionParams) error
}

// application holds the wired handler and everything that must be closed on
// shutdown, in reverse order of creation.
type application struct {
	handler http.Handler
	closers []func()
}

func (a *application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func newApplication(ctx context.Context, cfg *AppConfig, rc *redis.Client, logger *slog.Logger) (*application, error) {
	a := &application{}

	users, err := userSqlite.Open(ctx, cfg.UserDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open user db: %w", err)
	}
	a.closers = append(a.closers, func() { users.Close() })

	archive, err := messagePebble.Open(cfg.MessageDBPath)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to open message db: %w", err)
	}
	a.closers = append(a.closers, func() { archive.Close() })

	var sessions iSessionRepo
	switch cfg.SessionStore {
	case SessionStoreRedis:
		sessions = sessionRedis.NewRepo(rc)
	default:
		sessions = sessionInmemory.NewRepo()
	}

	videoData := ytvideodata.NewClient(ytvideodata.Config{Timeout: cfg.VideoDataTimeout})

	roomService := room.NewService(roomRedis.NewRepo(rc), users, archive, videoData, logger, room.Config{
		OwnerUsername:    cfg.OwnerUsername,
		OwnerPassword:    cfg.OwnerPassword,
		DefaultRoomId:    cfg.DefaultRoom,
		CatchupMessages:  cfg.CatchupMessages,
		VideoDataTimeout: cfg.VideoDataTimeout,
		Room: domain.Config{
			MessageCapacity: cfg.MessageLogCapacity,
			TickInterval:    cfg.TickInterval,
		},
	})
	if err := roomService.Bootstrap(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to bootstrap rooms: %w", err)
	}
	a.closers = append(a.closers, roomService.Close)

	sessionService := session.NewService(sessions, users, logger)

	c := controller.NewController(roomService, sessionService, logger, controller.Config{
		Secret:          cfg.Secret,
		CatchupMessages: cfg.CatchupMessages,
	})
	a.handler = c.Mux()

	return a, nil
}

func Run(ctx context.Context, cfg *AppConfig) error {
	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}),
	}

	logger := slog.New(&h)

	rc, err := redisclient.NewRedisClient(&redisclient.Config{
		Port:     cfg.RedisPort,
		Host:     cfg.RedisHost,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer rc.Close()

	a, err := newApplication(ctx, cfg, rc, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	server := &http.Server{Addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), Handler: a.handler}

	// graceful shutdown
	serverCtx, serverStopCtx := context.WithCancel(ctx)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig

		shutdownCtx, c := context.WithTimeout(serverCtx, 30*time.Second)
		defer c()

		go func() {
			<-shutdownCtx.Done()
			if shutdownCtx.Err() == context.DeadlineExceeded {
				log.Fatal("graceful shutdown timed out.. forcing exit.")
			}
		}()

		err := server.Shutdown(shutdownCtx)
		if err != nil {
			log.Fatal(err)
		}
		serverStopCtx()
	}()

	logger.InfoContext(serverCtx, "starting server", "address", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	<-serverCtx.Done()

	return nil
}
