package domain

type PlayerState string

const (
	PlayerPaused  PlayerState = "paused"
	PlayerPlaying PlayerState = "playing"
)

func (s PlayerState) Valid() bool {
	return s == PlayerPaused || s == PlayerPlaying
}

type PlayerEventKind int

const (
	// PlayerActioned follows play, pause and seek.
	PlayerActioned PlayerEventKind = iota
	// PlayerItemChanged follows a new item being selected or the player being cleared.
	PlayerItemChanged
	// PlayerItemEnded fires when a tick would move past the item duration.
	PlayerItemEnded
)

type PlayerEvent struct {
	Kind   PlayerEventKind
	Player PlayerSnapshot
}

type PlayerSnapshot struct {
	Current *MediaItem  `json:"current"`
	State   PlayerState `json:"state"`
	Time    float64     `json:"time"`
}

type Player struct {
	Observable[PlayerEvent]

	current *MediaItem
	state   PlayerState
	time    float64
}

func NewPlayer() *Player {
	return &Player{state: PlayerPaused}
}

func (p *Player) Current() *MediaItem {
	return p.current
}

func (p *Player) State() PlayerState {
	return p.state
}

func (p *Player) Time() float64 {
	return p.time
}

func (p *Player) Duration() float64 {
	if p.current == nil {
		return 0
	}

	return float64(p.current.Duration)
}

func (p *Player) Snapshot() PlayerSnapshot {
	s := PlayerSnapshot{State: p.state, Time: p.time}
	if p.current != nil {
		s.Current = p.current.detached()
	}

	return s
}

func (p *Player) Play() {
	p.state = PlayerPlaying
	p.emit(PlayerActioned)
}

func (p *Player) Pause() {
	p.state = PlayerPaused
	p.emit(PlayerActioned)
}

// SetState applies a valid state that differs from the current one.
func (p *Player) SetState(state PlayerState) bool {
	if !state.Valid() || state == p.state {
		return false
	}

	p.state = state
	p.emit(PlayerActioned)
	return true
}

// SetItem selects a copy of item and starts it from the beginning.
func (p *Player) SetItem(item *MediaItem) {
	if item == nil {
		p.Clear()
		return
	}

	p.current = item.detached()
	p.time = 0
	p.state = PlayerPlaying
	p.emit(PlayerItemChanged)
}

func (p *Player) Clear() {
	p.current = nil
	p.time = 0
	p.state = PlayerPaused
	p.emit(PlayerItemChanged)
}

// Seek moves to t clamped to [0, duration].
func (p *Player) Seek(t float64) {
	p.time = p.clamp(t)
	p.emit(PlayerActioned)
}

// Sync moves to t clamped to [0, duration] without notifying subscribers.
func (p *Player) Sync(t float64) {
	p.time = p.clamp(t)
}

// Tick advances a playing item by one second. The update is silent; once the
// next second would pass the duration PlayerItemEnded fires instead.
func (p *Player) Tick() {
	if p.state != PlayerPlaying || p.current == nil {
		return
	}

	if p.time+1 > p.Duration() {
		p.emit(PlayerItemEnded)
		return
	}

	p.time++
}

func (p *Player) clamp(t float64) float64 {
	return max(0, min(t, p.Duration()))
}

func (p *Player) emit(kind PlayerEventKind) {
	p.publish(PlayerEvent{Kind: kind, Player: p.Snapshot()})
}
