package controller

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/sharetube/watchroom/internal/domain"
	messagePebble "github.com/sharetube/watchroom/internal/repository/message/pebble"
	roomRedis "github.com/sharetube/watchroom/internal/repository/room/redis"
	sessionInmemory "github.com/sharetube/watchroom/internal/repository/session/inmemory"
	userSqlite "github.com/sharetube/watchroom/internal/repository/user/sqlite"
	"github.com/sharetube/watchroom/internal/service/room"
	"github.com/sharetube/watchroom/internal/service/session"
	"github.com/sharetube/watchroom/pkg/ytvideodata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noVideoData struct{}

func (noVideoData) Get(context.Context, string) (*ytvideodata.VideoData, error) {
	return nil, ytvideodata.ErrVideoNotFound
}

type event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type testEnv struct {
	srv   *httptest.Server
	rooms iRoomService
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return newTestEnv(t, Config{}).srv
}

func newTestEnv(t *testing.T, cfg Config) testEnv {
	t.Helper()

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rc.Close() })

	users, err := userSqlite.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { users.Close() })

	archive, err := messagePebble.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { archive.Close() })

	roomService := room.NewService(roomRedis.NewRepo(rc), users, archive, noVideoData{}, logger, room.Config{
		OwnerUsername: "admin",
		OwnerPassword: "secret",
		DefaultRoomId: "lobby",
		Room:          domain.Config{TickInterval: time.Hour},
	})
	require.NoError(t, roomService.Bootstrap(ctx))
	t.Cleanup(roomService.Close)

	sessionService := session.NewService(sessionInmemory.NewRepo(), users, logger)

	cfg.Secret = testSecret
	c := NewController(roomService, sessionService, logger, cfg)
	srv := httptest.NewServer(c.Mux())
	t.Cleanup(srv.Close)

	return testEnv{srv: srv, rooms: roomService}
}

const testSecret = "0123456789abcdef0123456789abcdef"

// subscriptions reads the room's subscription count on its loop, or -1 when
// the room is gone.
func subscriptions(r *domain.Room) int {
	n := -1
	if err := r.Call(context.Background(), func() { n = r.Subscriptions() }); err != nil {
		return -1
	}

	return n
}

func dial(t *testing.T, srv *httptest.Server, header http.Header) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })

	return conn
}

func send(t *testing.T, conn *websocket.Conn, typ string, payload any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(map[string]any{"type": typ, "payload": payload}))
}

// waitFor reads events until one of type typ satisfies match.
func waitFor(t *testing.T, conn *websocket.Conn, typ string, match func(json.RawMessage) bool) json.RawMessage {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var e event
		require.NoError(t, conn.ReadJSON(&e))
		if e.Type == typ && (match == nil || match(e.Payload)) {
			return e.Payload
		}
	}
}

func joinLobby(t *testing.T, conn *websocket.Conn) {
	t.Helper()

	send(t, conn, "join", map[string]string{"room_id": "lobby"})
	waitFor(t, conn, "playlist", nil)
}

func loggedUser(t *testing.T, payload json.RawMessage) domain.User {
	t.Helper()

	var u domain.User
	require.NoError(t, json.Unmarshal(payload, &u))
	return u
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestIndexSeedsSession(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		RoomId string      `json:"room_id"`
		User   domain.User `json:"user"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "lobby", body.RoomId)
	assert.Equal(t, domain.DefaultAvatarURL, body.User.AvatarURL)

	cookies := resp.Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, sessionCookieName, cookies[0].Name)

	header := http.Header{}
	header.Add("Cookie", sessionCookieName+"="+cookies[0].Value)
	conn := dial(t, srv, header)

	u := loggedUser(t, waitFor(t, conn, "login", nil))
	assert.Equal(t, body.User.Id, u.Id)
}

func TestForgedCookieGetsNewSession(t *testing.T) {
	srv := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "forged"})

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Len(t, resp.Cookies(), 1)
	assert.NotEqual(t, "forged", resp.Cookies()[0].Value)
}

func TestQueueBroadcast(t *testing.T) {
	srv := newTestServer(t)

	conn1 := dial(t, srv, nil)
	conn2 := dial(t, srv, nil)
	joinLobby(t, conn1)
	joinLobby(t, conn2)

	send(t, conn1, "add_queue", map[string]any{
		"url":       "dQw4w9WgXcQ",
		"duration":  213,
		"title":     "Never Gonna Give You Up",
		"uploader":  "Rick Astley",
		"thumbnail": "thumb",
	})

	payload := waitFor(t, conn2, "queue", func(p json.RawMessage) bool {
		return strings.Contains(string(p), "dQw4w9WgXcQ")
	})

	var queue []domain.MediaItem
	require.NoError(t, json.Unmarshal(payload, &queue))
	require.Len(t, queue, 1)
	assert.Equal(t, "3:33", queue[0].TimeText)

	player := waitFor(t, conn2, "player", func(p json.RawMessage) bool {
		return strings.Contains(string(p), "dQw4w9WgXcQ")
	})
	var snapshot domain.PlayerSnapshot
	require.NoError(t, json.Unmarshal(player, &snapshot))
	assert.Equal(t, domain.PlayerPlaying, snapshot.State)
}

func TestChatBroadcast(t *testing.T) {
	srv := newTestServer(t)

	conn1 := dial(t, srv, nil)
	conn2 := dial(t, srv, nil)
	joinLobby(t, conn1)
	joinLobby(t, conn2)

	send(t, conn1, "message", map[string]string{"text": ""})
	send(t, conn1, "message", map[string]string{"text": "hello"})

	var msg domain.Message
	require.NoError(t, json.Unmarshal(waitFor(t, conn2, "message", nil), &msg))
	assert.Equal(t, "hello", msg.Content)

	conn3 := dial(t, srv, nil)
	send(t, conn3, "join", map[string]string{"room_id": "lobby"})
	require.NoError(t, json.Unmarshal(waitFor(t, conn3, "message", nil), &msg))
	assert.Equal(t, "hello", msg.Content)
}

func TestLogin(t *testing.T) {
	srv := newTestServer(t)

	conn := dial(t, srv, nil)
	anon := loggedUser(t, waitFor(t, conn, "login", nil))
	joinLobby(t, conn)

	send(t, conn, "login", map[string]string{"username": "alice", "password": "pw"})
	waitFor(t, conn, "userlist", func(p json.RawMessage) bool {
		return strings.Contains(string(p), `"alice"`) && !strings.Contains(string(p), anon.Id)
	})

	alice := loggedUser(t, waitFor(t, conn, "login", nil))
	assert.Equal(t, "alice", alice.Username)
	assert.NotEqual(t, anon.Id, alice.Id)

	other := dial(t, srv, nil)
	waitFor(t, other, "login", nil)

	send(t, other, "login", map[string]string{"username": "alice", "password": "wrong"})
	assert.JSONEq(t, "false", string(waitFor(t, other, "login", nil)))

	send(t, other, "login", map[string]string{"username": "alice", "password": "pw"})
	again := loggedUser(t, waitFor(t, other, "login", nil))
	assert.Equal(t, alice.Id, again.Id)
}

func TestLogoutCreatesAnonymousUser(t *testing.T) {
	srv := newTestServer(t)

	conn := dial(t, srv, nil)
	waitFor(t, conn, "login", nil)

	send(t, conn, "login", map[string]string{"username": "bob", "password": "pw"})
	bob := loggedUser(t, waitFor(t, conn, "login", nil))

	send(t, conn, "logout", nil)
	anon := loggedUser(t, waitFor(t, conn, "login", nil))
	assert.NotEqual(t, bob.Id, anon.Id)
	assert.NotEqual(t, "bob", anon.Username)
}

func TestUnknownRoomIsIgnored(t *testing.T) {
	srv := newTestServer(t)

	conn := dial(t, srv, nil)
	waitFor(t, conn, "login", nil)

	send(t, conn, "join", map[string]string{"room_id": "nowhere"})
	send(t, conn, "player_prompt", nil)
	joinLobby(t, conn)

	send(t, conn, "player_prompt", nil)
	var snapshot domain.PlayerSnapshot
	require.NoError(t, json.Unmarshal(waitFor(t, conn, "player", nil), &snapshot))
	assert.Nil(t, snapshot.Current)
}

func TestOnlineUsers(t *testing.T) {
	srv := newTestServer(t)

	conn := dial(t, srv, nil)
	u := loggedUser(t, waitFor(t, conn, "login", nil))

	resp, err := http.Get(srv.URL + "/api/v1/users")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Users []domain.User `json:"users"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Users, 1)
	assert.Equal(t, u.Id, body.Users[0].Id)
}

func TestDisconnectLeavesRoom(t *testing.T) {
	env := newTestEnv(t, Config{})
	lobby, err := env.rooms.GetRoom("lobby")
	require.NoError(t, err)

	observer := dial(t, env.srv, nil)
	joinLobby(t, observer)
	base := subscriptions(lobby)

	leaver := dial(t, env.srv, nil)
	u := loggedUser(t, waitFor(t, leaver, "login", nil))
	joinLobby(t, leaver)
	assert.Equal(t, base+4, subscriptions(lobby))

	waitFor(t, observer, "userlist", func(p json.RawMessage) bool {
		return strings.Contains(string(p), u.Id)
	})

	require.NoError(t, leaver.Close())

	waitFor(t, observer, "userlist", func(p json.RawMessage) bool {
		return !strings.Contains(string(p), u.Id)
	})
	waitFor(t, observer, "status", func(p json.RawMessage) bool {
		return string(p) == `"`+u.Username+` has left"`
	})
	assert.Equal(t, base, subscriptions(lobby))
}

func TestSecondConnectionKeepsUserPresent(t *testing.T) {
	env := newTestEnv(t, Config{})
	lobby, err := env.rooms.GetRoom("lobby")
	require.NoError(t, err)

	resp, err := http.Get(env.srv.URL + "/")
	require.NoError(t, err)
	resp.Body.Close()
	require.Len(t, resp.Cookies(), 1)

	header := http.Header{}
	header.Add("Cookie", sessionCookieName+"="+resp.Cookies()[0].Value)

	tabA := dial(t, env.srv, header)
	tabB := dial(t, env.srv, header)
	u := loggedUser(t, waitFor(t, tabA, "login", nil))
	assert.Equal(t, u.Id, loggedUser(t, waitFor(t, tabB, "login", nil)).Id)
	joinLobby(t, tabA)
	joinLobby(t, tabB)

	observer := dial(t, env.srv, nil)
	joinLobby(t, observer)
	base := subscriptions(lobby)

	require.NoError(t, tabA.Close())
	require.Eventually(t, func() bool {
		return subscriptions(lobby) == base-4
	}, 5*time.Second, 10*time.Millisecond)

	var present bool
	require.NoError(t, lobby.Call(context.Background(), func() { present = lobby.HasUser(u.Id) }))
	assert.True(t, present)

	send(t, tabB, "message", map[string]string{"text": "still here"})

	var msg domain.Message
	require.NoError(t, json.Unmarshal(waitFor(t, observer, "message", nil), &msg))
	assert.Equal(t, "still here", msg.Content)
	assert.Equal(t, u.Id, msg.Author)
}

func TestSilentPeerIsDropped(t *testing.T) {
	env := newTestEnv(t, Config{PongWait: 500 * time.Millisecond})

	observer := dial(t, env.srv, nil)
	joinLobby(t, observer)

	silent := dial(t, env.srv, nil)
	u := loggedUser(t, waitFor(t, silent, "login", nil))
	joinLobby(t, silent)

	// silent stops reading, so it never answers pings
	waitFor(t, observer, "status", func(p json.RawMessage) bool {
		return string(p) == `"`+u.Username+` has left"`
	})
}

func TestOversizedMessageClosesConnection(t *testing.T) {
	env := newTestEnv(t, Config{ReadLimit: 512})

	conn := dial(t, env.srv, nil)
	waitFor(t, conn, "login", nil)

	send(t, conn, "message", map[string]string{"text": strings.Repeat("a", 2048)})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var err error
	for err == nil {
		_, _, err = conn.ReadMessage()
	}
	assert.True(t, websocket.IsCloseError(err, websocket.CloseMessageTooBig), "unexpected error: %v", err)
}
