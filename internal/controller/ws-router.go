package controller

import (
	"context"

	"github.com/gorilla/websocket"
	"github.com/sharetube/watchroom/pkg/wsrouter"
)

func (c controller) getWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New()
	mux.Use(c.wsRequestIdMw, c.wsLoggingMw)
	mux.OnError(func(ctx context.Context, _ *websocket.Conn, err error) {
		c.logger.InfoContext(ctx, "ws request failed", "error", err)
	})

	// room
	wsrouter.AddRoute(mux, "join", c.handleJoin)
	wsrouter.AddRoute(mux, "message", c.handleMessage)

	// player
	wsrouter.AddRoute(mux, "player_prompt", c.handlePlayerPrompt)
	wsrouter.AddRoute(mux, "player_action", c.handlePlayerAction)

	// video
	wsrouter.AddRoute(mux, "add_queue", c.handleAddQueue)
	wsrouter.AddRoute(mux, "add_playlist", c.handleAddPlaylist)
	wsrouter.AddRoute(mux, "remove_video", c.handleRemoveVideo)
	wsrouter.AddRoute(mux, "play_video", c.handlePlayVideo)

	// profile
	wsrouter.AddRoute(mux, "login", c.handleLogin)
	wsrouter.AddRoute(mux, "logout", c.handleLogout)

	// member
	wsrouter.AddRoute(mux, "set_mute", c.handleSetMute)
	wsrouter.AddRoute(mux, "set_mod", c.handleSetMod)

	return mux
}
