package controller

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sharetube/watchroom/internal/domain"
	"github.com/sharetube/watchroom/internal/service/session"
	"github.com/sharetube/watchroom/pkg/ctxlogger"
)

var errNotJoined = errors.New("connection has not joined a room")

type Output struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// client binds one websocket connection to a session, its current user and
// at most one room. Outbound messages go through send and are written by
// writePump only.
type client struct {
	c     *controller
	conn  *websocket.Conn
	token string

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
	inert     atomic.Bool

	// fields below are owned by the read loop
	user         domain.User
	room         *domain.Room
	unsubscribes []func()
}

func (c controller) newClient(conn *websocket.Conn, token string, user domain.User) *client {
	return &client{
		c:     &c,
		conn:  conn,
		token: token,
		user:  user,
		send:  make(chan []byte, c.cfg.SendBuffer),
		done:  make(chan struct{}),
	}
}

// push queues an outbound event. It never blocks: a client that cannot keep
// up is closed.
func (cl *client) push(typ string, payload any) {
	if cl.inert.Load() {
		return
	}

	data, err := json.Marshal(&Output{Type: typ, Payload: payload})
	if err != nil {
		cl.c.logger.Error("failed to marshal output", "type", typ, "error", err)
		return
	}

	select {
	case cl.send <- data:
	default:
		cl.c.logger.Warn("send buffer overflow, closing connection", "type", typ)
		cl.close()
	}
}

func (cl *client) close() {
	cl.closeOnce.Do(func() {
		cl.inert.Store(true)
		close(cl.done)
	})
}

func (cl *client) writePump() {
	ticker := time.NewTicker(cl.c.cfg.PongWait * 9 / 10)
	defer func() {
		ticker.Stop()
		cl.conn.Close()
	}()

	for {
		select {
		case <-ticker.C:
			if err := cl.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(cl.c.cfg.WriteTimeout)); err != nil {
				cl.close()
				return
			}
		case data := <-cl.send:
			if err := cl.conn.SetWriteDeadline(time.Now().Add(cl.c.cfg.WriteTimeout)); err != nil {
				cl.close()
				return
			}

			if err := cl.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				cl.close()
				return
			}
		case <-cl.done:
			cl.conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second),
			)
			return
		}
	}
}

// bind sends the catch-up, subscribes to every room stream and joins the
// user, all in one step on the room loop so no notification is missed or
// duplicated.
func (cl *client) bind(ctx context.Context, r *domain.Room) error {
	catchup := cl.c.cfg.CatchupMessages

	err := r.Call(ctx, func() {
		for _, msg := range r.Messages(catchup) {
			cl.push("message", msg)
		}

		cl.unsubscribes = append(cl.unsubscribes,
			r.Subscribe(func(e domain.RoomEvent) {
				switch e.Kind {
				case domain.MessageAdded:
					cl.push("message", e.Message)
				case domain.StatusPosted:
					cl.push("status", e.Status)
				case domain.UserJoined, domain.UserLeft, domain.RolesChanged:
					cl.push("userlist", r.Userlist())
				}
			}),
			r.SubscribePlayer(func(e domain.PlayerEvent) {
				// the item that follows is announced by the advance
				if e.Kind == domain.PlayerItemEnded {
					return
				}
				cl.push("player", e.Player)
			}),
			r.SubscribeQueue(func(domain.ListEvent) {
				cl.push("queue", r.Queue())
			}),
			r.SubscribePlaylist(func(domain.ListEvent) {
				cl.push("playlist", r.Playlist())
			}),
		)

		r.Join(cl.user)

		cl.push("player", r.Player())
		cl.push("queue", r.Queue())
		cl.push("playlist", r.Playlist())
		cl.push("userlist", r.Userlist())
	})
	if err != nil {
		return err
	}

	cl.room = r
	return nil
}

// leave drops every subscription and removes the user from the room.
func (cl *client) leave(ctx context.Context) error {
	r := cl.room
	if r == nil {
		return nil
	}

	unsubscribes := cl.unsubscribes
	userId := cl.user.Id
	cl.room = nil
	cl.unsubscribes = nil

	return r.Call(ctx, func() {
		for _, unsubscribe := range unsubscribes {
			unsubscribe()
		}
		r.Leave(userId)
		cl.c.logger.DebugContext(ctx, "client left room", "room_id", r.Id(), "user_id", userId, "subscriptions", r.Subscriptions())
	})
}

// switchUser rebinds the connection to user and reports the identity change
// to the session registry.
func (cl *client) switchUser(ctx context.Context, user domain.User) error {
	old := cl.user

	if r := cl.room; r != nil {
		if err := r.Call(ctx, func() {
			r.Leave(old.Id)
			r.Join(user)
		}); err != nil {
			return err
		}
	}

	cl.user = user
	cl.push("login", user)

	return cl.c.sessionService.ChangeIdentity(ctx, &session.ChangeIdentityParams{
		Token:     cl.token,
		OldUserId: old.Id,
		NewUser:   user,
	})
}

// disconnect makes the client inert first so callbacks still queued on the
// room loop send nothing.
func (cl *client) disconnect() {
	cl.close()

	ctx, cancel := context.WithTimeout(context.Background(), cl.c.cfg.LeaveTimeout)
	defer cancel()

	if err := cl.leave(ctx); err != nil && !errors.Is(err, domain.ErrRoomClosed) {
		cl.c.logger.WarnContext(ctx, "failed to leave room", "user_id", cl.user.Id, "error", err)
	}

	cl.c.sessionService.Disconnect(cl.user.Id)
}

// serveWS is the connection manager: it resolves the session from the signed
// cookie, upgrades the connection and serves it until the peer goes away.
func (c controller) serveWS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := c.readSessionToken(r)

	resp, err := c.sessionService.Connect(ctx, token)
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to connect session", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	header := http.Header{}
	if resp.Token != token {
		cookie, err := c.sessionCookie(resp.Token)
		if err != nil {
			c.sessionService.Disconnect(resp.User.Id)
			c.logger.ErrorContext(ctx, "failed to build session cookie", "error", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		header.Add("Set-Cookie", cookie.String())
	}

	conn, err := c.upgrader.Upgrade(w, r, header)
	if err != nil {
		c.sessionService.Disconnect(resp.User.Id)
		c.logger.InfoContext(ctx, "failed to upgrade connection", "error", err)
		return
	}

	conn.SetReadLimit(c.cfg.ReadLimit)
	conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})

	cl := c.newClient(conn, resp.Token, resp.User)
	go cl.writePump()
	defer cl.disconnect()

	cl.push("login", resp.User)

	ctx = ctxlogger.AppendCtx(ctx, slog.String("user_id", resp.User.Id))
	ctx = withClient(ctx, cl)

	c.logger.InfoContext(ctx, "client connected", "is_new", resp.IsNew)
	if err := c.wsmux.ServeConn(ctx, conn); err != nil {
		c.logger.InfoContext(ctx, "client disconnected", "error", err)
	}
}
