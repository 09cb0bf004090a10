package controller

import (
	"context"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/sharetube/watchroom/internal/domain"
	"github.com/sharetube/watchroom/internal/service/room"
)

var (
	errNoClient     = errors.New("no client in context")
	errEmptyPayload = errors.New("empty payload")
)

type EmptyInput struct{}

// joinedClient returns the client of ctx and fails when it has no room yet.
func (c controller) joinedClient(ctx context.Context) (*client, error) {
	cl := c.getClientFromCtx(ctx)
	if cl == nil {
		return nil, errNoClient
	}

	if cl.room == nil {
		return nil, errNotJoined
	}

	return cl, nil
}

type JoinInput struct {
	RoomId string `json:"room_id" validate:"required"`
}

func (c controller) handleJoin(ctx context.Context, _ *websocket.Conn, input JoinInput) error {
	if err := c.validatePayload(input); err != nil {
		return err
	}

	cl := c.getClientFromCtx(ctx)
	if cl == nil {
		return errNoClient
	}

	if cl.room != nil && cl.room.Id() == input.RoomId {
		return nil
	}

	r, err := c.roomService.GetRoom(input.RoomId)
	if err != nil {
		return fmt.Errorf("failed to get room: %w", err)
	}

	if err := cl.leave(ctx); err != nil {
		return fmt.Errorf("failed to leave room: %w", err)
	}

	if err := cl.bind(ctx, r); err != nil {
		return fmt.Errorf("failed to bind room: %w", err)
	}

	c.logger.InfoContext(ctx, "client joined room", "room_id", input.RoomId)
	return nil
}

type MessageInput struct {
	Text string `json:"text" validate:"required,max=2000"`
}

func (c controller) handleMessage(ctx context.Context, _ *websocket.Conn, input MessageInput) error {
	if err := c.validatePayload(input); err != nil {
		return err
	}

	cl, err := c.joinedClient(ctx)
	if err != nil {
		return err
	}

	return c.roomService.PostMessage(ctx, &room.PostMessageParams{
		RoomId:  cl.room.Id(),
		Sender:  cl.user,
		Content: input.Text,
	})
}

func (c controller) handlePlayerPrompt(ctx context.Context, _ *websocket.Conn, _ EmptyInput) error {
	cl, err := c.joinedClient(ctx)
	if err != nil {
		return err
	}

	r := cl.room
	if !r.Do(func() { cl.push("player", r.Player()) }) {
		return domain.ErrRoomClosed
	}

	return nil
}

type PlayerActionInput struct {
	Time  *float64 `json:"time"`
	State *string  `json:"state" validate:"omitempty,oneof=playing paused"`
}

func (c controller) handlePlayerAction(ctx context.Context, _ *websocket.Conn, input PlayerActionInput) error {
	if input.Time == nil && input.State == nil {
		return errEmptyPayload
	}

	if err := c.validatePayload(input); err != nil {
		return err
	}

	cl, err := c.joinedClient(ctx)
	if err != nil {
		return err
	}

	return c.roomService.UpdatePlayer(ctx, &room.UpdatePlayerParams{
		RoomId: cl.room.Id(),
		Sender: cl.user,
		Time:   input.Time,
		State:  input.State,
	})
}

type VideoInput struct {
	Id        string `json:"id"`
	URL       string `json:"url" validate:"required,len=11"`
	Duration  int    `json:"duration" validate:"gte=0"`
	Title     string `json:"title" validate:"max=256"`
	Uploader  string `json:"uploader" validate:"max=256"`
	Thumbnail string `json:"thumbnail" validate:"max=1024"`
}

func (v VideoInput) params() room.VideoParams {
	return room.VideoParams{
		Id:        v.Id,
		URL:       v.URL,
		Duration:  v.Duration,
		Title:     v.Title,
		Uploader:  v.Uploader,
		Thumbnail: v.Thumbnail,
	}
}

func (c controller) handleAddQueue(ctx context.Context, _ *websocket.Conn, input VideoInput) error {
	if err := c.validatePayload(input); err != nil {
		return err
	}

	cl, err := c.joinedClient(ctx)
	if err != nil {
		return err
	}

	if err := c.roomService.Enqueue(ctx, &room.AddVideoParams{
		RoomId: cl.room.Id(),
		Sender: cl.user,
		Video:  input.params(),
	}); err != nil {
		return fmt.Errorf("failed to enqueue video: %w", err)
	}

	return nil
}

func (c controller) handleAddPlaylist(ctx context.Context, _ *websocket.Conn, input VideoInput) error {
	if err := c.validatePayload(input); err != nil {
		return err
	}

	cl, err := c.joinedClient(ctx)
	if err != nil {
		return err
	}

	if err := c.roomService.AddToPlaylist(ctx, &room.AddVideoParams{
		RoomId: cl.room.Id(),
		Sender: cl.user,
		Video:  input.params(),
	}); err != nil {
		return fmt.Errorf("failed to add video to playlist: %w", err)
	}

	return nil
}

type VideoRefInput struct {
	Id string `json:"id" validate:"required"`
}

func (c controller) handleRemoveVideo(ctx context.Context, _ *websocket.Conn, input VideoRefInput) error {
	if err := c.validatePayload(input); err != nil {
		return err
	}

	cl, err := c.joinedClient(ctx)
	if err != nil {
		return err
	}

	return c.roomService.RemoveVideo(ctx, &room.VideoRefParams{
		RoomId:  cl.room.Id(),
		Sender:  cl.user,
		VideoId: input.Id,
	})
}

type PlayVideoInput struct {
	Id        string `json:"id"`
	URL       string `json:"url" validate:"omitempty,len=11"`
	Duration  int    `json:"duration" validate:"gte=0"`
	Title     string `json:"title" validate:"max=256"`
	Uploader  string `json:"uploader" validate:"max=256"`
	Thumbnail string `json:"thumbnail" validate:"max=1024"`
}

func (c controller) handlePlayVideo(ctx context.Context, _ *websocket.Conn, input PlayVideoInput) error {
	if input.Id == "" && input.URL == "" {
		return errEmptyPayload
	}

	if err := c.validatePayload(input); err != nil {
		return err
	}

	cl, err := c.joinedClient(ctx)
	if err != nil {
		return err
	}

	if err := c.roomService.RequestPlay(ctx, &room.AddVideoParams{
		RoomId: cl.room.Id(),
		Sender: cl.user,
		Video:  VideoInput(input).params(),
	}); err != nil {
		return fmt.Errorf("failed to play video: %w", err)
	}

	return nil
}

type LoginInput struct {
	Username string `json:"username" validate:"required,max=32"`
	Password string `json:"password" validate:"required,max=72"`
}

// handleLogin is the only handler whose failure reaches the client, as
// login(false).
func (c controller) handleLogin(ctx context.Context, _ *websocket.Conn, input LoginInput) error {
	if err := c.validatePayload(input); err != nil {
		return err
	}

	cl := c.getClientFromCtx(ctx)
	if cl == nil {
		return errNoClient
	}

	user, err := c.roomService.Login(ctx, &room.LoginParams{
		Username: input.Username,
		Password: input.Password,
	})
	if errors.Is(err, room.ErrInvalidCredentials) {
		cl.push("login", false)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to login: %w", err)
	}

	if user.Id == cl.user.Id {
		cl.push("login", user)
		return nil
	}

	return cl.switchUser(ctx, user)
}

func (c controller) handleLogout(ctx context.Context, _ *websocket.Conn, _ EmptyInput) error {
	cl := c.getClientFromCtx(ctx)
	if cl == nil {
		return errNoClient
	}

	return cl.switchUser(ctx, c.sessionService.NewAnonymousUser())
}

type SetMuteInput struct {
	UserId string `json:"user_id" validate:"required"`
	Muted  bool   `json:"muted"`
}

func (c controller) handleSetMute(ctx context.Context, _ *websocket.Conn, input SetMuteInput) error {
	if err := c.validatePayload(input); err != nil {
		return err
	}

	cl, err := c.joinedClient(ctx)
	if err != nil {
		return err
	}

	return c.roomService.SetMute(ctx, &room.SetRoleParams{
		RoomId:   cl.room.Id(),
		Sender:   cl.user,
		TargetId: input.UserId,
		Enabled:  input.Muted,
	})
}

type SetModInput struct {
	UserId string `json:"user_id" validate:"required"`
	IsMod  bool   `json:"is_mod"`
}

func (c controller) handleSetMod(ctx context.Context, _ *websocket.Conn, input SetModInput) error {
	if err := c.validatePayload(input); err != nil {
		return err
	}

	cl, err := c.joinedClient(ctx)
	if err != nil {
		return err
	}

	return c.roomService.SetMod(ctx, &room.SetRoleParams{
		RoomId:   cl.room.Id(),
		Sender:   cl.user,
		TargetId: input.UserId,
		Enabled:  input.IsMod,
	})
}
