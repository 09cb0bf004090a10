package domain

import (
	"fmt"
	"time"
)

type RoomEventKind int

const (
	UserJoined RoomEventKind = iota
	UserLeft
	RolesChanged
	MessageAdded
	StatusPosted
)

type RoomEvent struct {
	Kind    RoomEventKind
	User    User
	Message Message
	Status  string
}

type Config struct {
	MessageCapacity int
	TickInterval    time.Duration
	ActionBuffer    int
}

func (c Config) withDefaults() Config {
	if c.MessageCapacity <= 0 {
		c.MessageCapacity = DefaultMessageCapacity
	}

	if c.TickInterval <= 0 {
		c.TickInterval = time.Second
	}

	if c.ActionBuffer <= 0 {
		c.ActionBuffer = 64
	}

	return c
}

// Room owns the shared state of one watch room. Its methods are not safe for
// concurrent use: callers outside the room loop go through Do or Call.
type Room struct {
	Observable[RoomEvent]

	id       string
	owner    User
	users    *Set[User]
	// presence counts bound connections per user id.
	presence map[string]int
	mods     *Set[User]
	mutes    *Set[User]
	queue    *MediaList
	playlist *MediaList
	player   *Player
	messages *MessageLog
	// current is the playlist cursor.
	current string
	// resumeNext is the queue successor of resumeAfter, a playing item that
	// was removed from the queue.
	resumeAfter string
	resumeNext  string

	tickInterval time.Duration
	actions      chan func()
	done         chan struct{}
}

func NewRoom(id string, owner User, cfg Config) *Room {
	cfg = cfg.withDefaults()

	r := &Room{
		id:           id,
		owner:        owner,
		users:        NewSet[User](),
		presence:     make(map[string]int),
		mods:         NewSet[User](),
		mutes:        NewSet[User](),
		queue:        NewMediaList(),
		playlist:     NewMediaList(),
		player:       NewPlayer(),
		messages:     NewMessageLog(cfg.MessageCapacity),
		tickInterval: cfg.TickInterval,
		actions:      make(chan func(), cfg.ActionBuffer),
		done:         make(chan struct{}),
	}

	r.player.Subscribe(func(e PlayerEvent) {
		if e.Kind == PlayerItemEnded {
			r.advance()
		}
	})

	return r
}

func (r *Room) Id() string {
	return r.id
}

func (r *Room) Owner() User {
	return r.owner
}

func (r *Room) Current() string {
	return r.current
}

func (r *Room) Player() PlayerSnapshot {
	return r.player.Snapshot()
}

func (r *Room) Queue() []MediaItem {
	return r.queue.Snapshot()
}

func (r *Room) Playlist() []MediaItem {
	return r.playlist.Snapshot()
}

func (r *Room) Messages(n int) []Message {
	return r.messages.Last(n)
}

func (r *Room) MessageCount() int {
	return r.messages.Len()
}

// Lookup finds a queued or playlisted item by id and returns a detached copy.
func (r *Room) Lookup(id string) (*MediaItem, bool) {
	if item, ok := r.queue.Get(id); ok {
		return item.detached(), true
	}

	if item, ok := r.playlist.Get(id); ok {
		return item.detached(), true
	}

	return nil, false
}

func (r *Room) HasUser(id string) bool {
	return r.users.Has(id)
}

func (r *Room) IsMod(id string) bool {
	return r.mods.Has(id)
}

func (r *Room) IsMuted(id string) bool {
	return r.mutes.Has(id)
}

func (r *Room) Mods() []User {
	return r.mods.Items()
}

// Userlist returns present users with their roles.
func (r *Room) Userlist() []Member {
	users := r.users.Items()
	res := make([]Member, 0, len(users))
	for _, u := range users {
		res = append(res, Member{
			User:    u,
			IsOwner: u.Id == r.owner.Id,
			IsMod:   r.mods.Has(u.Id),
			IsMuted: r.mutes.Has(u.Id),
		})
	}

	return res
}

// Subscriptions counts the callbacks registered on the room and on its
// player and lists, including the room's own player hook.
func (r *Room) Subscriptions() int {
	return r.Subscribers() + r.player.Subscribers() + r.queue.Subscribers() + r.playlist.Subscribers()
}

func (r *Room) SubscribePlayer(fn func(PlayerEvent)) func() {
	return r.player.Subscribe(fn)
}

func (r *Room) SubscribeQueue(fn func(ListEvent)) func() {
	return r.queue.Subscribe(fn)
}

func (r *Room) SubscribePlaylist(fn func(ListEvent)) func() {
	return r.playlist.Subscribe(fn)
}

// Join binds one connection of user. Only the first connection adds the
// user to the userlist.
func (r *Room) Join(user User) bool {
	r.presence[user.Id]++
	if !r.users.Add(user) {
		return false
	}

	r.publish(RoomEvent{Kind: UserJoined, User: user})
	r.status(fmt.Sprintf("%s has joined", user.Username))
	return true
}

// Leave unbinds one connection of userId and removes the user from the
// userlist once no connection is left. Mute and mod entries are kept.
func (r *Room) Leave(userId string) bool {
	if n := r.presence[userId]; n > 1 {
		r.presence[userId] = n - 1
		return false
	}
	delete(r.presence, userId)

	user, ok := r.users.Remove(userId)
	if !ok {
		return false
	}

	r.publish(RoomEvent{Kind: UserLeft, User: user})
	r.status(fmt.Sprintf("%s has left", user.Username))
	return true
}

// PostMessage appends a chat message from a present, unmuted author.
func (r *Room) PostMessage(authorId, content string) (Message, bool) {
	if content == "" || !r.users.Has(authorId) || r.mutes.Has(authorId) {
		return Message{}, false
	}

	msg := NewMessage(authorId, content)
	r.messages.Add(msg)
	r.publish(RoomEvent{Kind: MessageAdded, Message: msg})
	return msg, true
}

// RestoreMessages seeds the log, typically from an archive at startup.
func (r *Room) RestoreMessages(msgs []Message) {
	r.messages.Restore(msgs)
}

func (r *Room) SetMute(modId, targetId string, muted bool) bool {
	mod, ok := r.mods.Get(modId)
	if !ok {
		return false
	}

	target, ok := r.users.Get(targetId)
	if !ok || !toggle(r.mutes, target, muted) {
		return false
	}

	r.publish(RoomEvent{Kind: RolesChanged, User: target})
	if muted {
		r.status(fmt.Sprintf("%s muted %s", mod.Username, target.Username))
	} else {
		r.status(fmt.Sprintf("%s unmuted %s", mod.Username, target.Username))
	}
	return true
}

func (r *Room) SetMod(ownerId, targetId string, isMod bool) bool {
	if ownerId != r.owner.Id {
		return false
	}

	target, ok := r.users.Get(targetId)
	if !ok || !toggle(r.mods, target, isMod) {
		return false
	}

	r.publish(RoomEvent{Kind: RolesChanged, User: target})
	if isMod {
		r.status(fmt.Sprintf("%s made %s a moderator", r.owner.Username, target.Username))
	} else {
		r.status(fmt.Sprintf("%s removed %s from moderators", r.owner.Username, target.Username))
	}
	return true
}

// LoadMods seeds the modlist without notifications.
func (r *Room) LoadMods(users []User) {
	for _, u := range users {
		r.mods.Add(u)
	}
}

func (r *Room) Enqueue(actor User, item *MediaItem) bool {
	if !r.queue.Append(item) {
		return false
	}

	r.status(fmt.Sprintf("%s added a video to queue", actor.Username))
	r.startIfIdle()
	return true
}

func (r *Room) AddToPlaylist(actor User, item *MediaItem) bool {
	if !r.playlist.Append(item) {
		return false
	}

	r.status(fmt.Sprintf("%s added a video to playlist", actor.Username))
	r.startIfIdle()
	return true
}

// RemoveVideo removes id from the queue and the playlist and reports which
// lists held it. A removed playlist cursor falls back to its predecessor.
func (r *Room) RemoveVideo(actor User, id string) (fromQueue, fromPlaylist bool) {
	if r.queue.Has(id) {
		cur := r.player.Current()
		if (cur != nil && cur.Id == id) || id == r.resumeNext {
			if cur != nil && cur.Id == id {
				r.resumeAfter = id
			}
			r.resumeNext = ""
			if next, ok := r.queue.Next(id); ok {
				r.resumeNext = next.Id
			}
		}

		r.queue.Remove(id)
		fromQueue = true
		r.status(fmt.Sprintf("%s removed a video from queue", actor.Username))
	}

	if r.playlist.Has(id) {
		if r.current == id {
			r.current = ""
			if prev, ok := r.playlist.Before(id); ok {
				r.current = prev.Id
			}
		}

		r.playlist.Remove(id)
		fromPlaylist = true
		r.status(fmt.Sprintf("%s removed a video from playlist", actor.Username))
	}

	return fromQueue, fromPlaylist
}

// RequestPlay plays a queued or playlisted item straight away. Any other item
// is queued right after the current one and the player advances to it.
func (r *Room) RequestPlay(actor User, item *MediaItem) bool {
	if item == nil {
		return false
	}

	switch {
	case r.queue.Has(item.Id):
		queued, _ := r.queue.Get(item.Id)
		r.player.SetItem(queued)
	case r.playlist.Has(item.Id):
		listed, _ := r.playlist.Get(item.Id)
		r.current = listed.Id
		r.player.SetItem(listed)
	default:
		anchor := ""
		if cur := r.player.Current(); cur != nil {
			anchor = cur.Id
		}

		if !r.queue.InsertAfter(item, anchor) {
			return false
		}
		r.advance()
	}

	r.status(fmt.Sprintf("%s played a new video", actor.Username))
	return true
}

// LoadPlaylist replaces the playlist. Without elapsed playback the cursor
// moves to the first member and it starts playing.
func (r *Room) LoadPlaylist(items []*MediaItem) {
	r.playlist.Reset(items)

	if r.player.Current() != nil && r.player.Time() > 0 {
		return
	}

	if first, ok := r.playlist.First(); ok {
		r.current = first.Id
		r.player.SetItem(first)
	}
}

// SeekTo applies a client-reported time within the current item. Jumps of
// more than two seconds from the room clock are announced, smaller ones are
// applied silently as drift.
func (r *Room) SeekTo(actor User, t float64) bool {
	if r.player.Current() == nil || t < 0 || t > r.player.Duration() {
		return false
	}

	if diff := t - r.player.Time(); diff > 2 || diff < -2 {
		r.player.Seek(t)
		r.status(fmt.Sprintf("%s seeked to %.0f seconds", actor.Username, t))
		return true
	}

	r.player.Sync(t)
	return false
}

func (r *Room) SetPlayState(actor User, state PlayerState) bool {
	if !r.player.SetState(state) {
		return false
	}

	r.status(fmt.Sprintf("%s set video to %s", actor.Username, state))
	return true
}

// Tick advances the playback clock by one step.
func (r *Room) Tick() {
	r.player.Tick()
}

// advance picks what plays after the current item: its queue successor, the
// queue head, the next playlist member, or nothing.
func (r *Room) advance() {
	resumeAfter, resumeNext := r.resumeAfter, r.resumeNext
	r.resumeAfter, r.resumeNext = "", ""

	cur := r.player.Current()
	switch {
	case cur != nil && r.queue.Has(cur.Id):
		following, ok := r.queue.Next(cur.Id)
		r.queue.Remove(cur.Id)
		if ok {
			r.player.SetItem(following)
			return
		}
	case cur != nil && cur.Id == resumeAfter && resumeNext != "":
		if following, ok := r.queue.Get(resumeNext); ok {
			r.player.SetItem(following)
			return
		}
	}

	if next, ok := r.queue.First(); ok {
		r.player.SetItem(next)
		return
	}

	if next, ok := r.playlist.After(r.current); ok {
		r.current = next.Id
		r.player.SetItem(next)
		return
	}

	r.current = ""
	r.player.Clear()
}

func (r *Room) startIfIdle() {
	if r.player.Current() == nil {
		r.advance()
	}
}

func (r *Room) status(text string) {
	r.publish(RoomEvent{Kind: StatusPosted, Status: text})
}

func toggle(s *Set[User], u User, on bool) bool {
	if on {
		return s.Add(u)
	}

	_, ok := s.Remove(u.Id)
	return ok
}
