package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayerSeekClamps(t *testing.T) {
	p := NewPlayer()
	p.SetItem(item("a", 30))

	p.Seek(45)
	assert.Equal(t, float64(30), p.Time())

	p.Seek(-3)
	assert.Equal(t, float64(0), p.Time())

	p.Seek(12.5)
	assert.Equal(t, 12.5, p.Time())
}

func TestPlayerSetItemResets(t *testing.T) {
	p := NewPlayer()
	var events []PlayerEvent
	p.Subscribe(func(e PlayerEvent) { events = append(events, e) })

	p.SetItem(item("a", 30))
	p.Seek(10)
	p.Pause()
	p.SetItem(item("b", 20))

	assert.Equal(t, "b", p.Current().Id)
	assert.Equal(t, float64(0), p.Time())
	assert.Equal(t, PlayerPlaying, p.State())

	require.Len(t, events, 4)
	assert.Equal(t, PlayerItemChanged, events[0].Kind)
	assert.Equal(t, PlayerActioned, events[1].Kind)
	assert.Equal(t, PlayerActioned, events[2].Kind)
	assert.Equal(t, PlayerItemChanged, events[3].Kind)
	assert.Equal(t, "b", events[3].Player.Current.Id)
}

func TestPlayerTickIsSilentAndEnds(t *testing.T) {
	p := NewPlayer()
	p.SetItem(item("a", 3))

	var events []PlayerEventKind
	p.Subscribe(func(e PlayerEvent) { events = append(events, e.Kind) })

	for i := 0; i < 3; i++ {
		p.Tick()
		assert.LessOrEqual(t, p.Time(), p.Duration())
	}
	assert.Equal(t, float64(3), p.Time())
	assert.Empty(t, events)

	p.Tick()
	assert.Equal(t, float64(3), p.Time())
	assert.Equal(t, []PlayerEventKind{PlayerItemEnded}, events)
}

func TestPlayerTickPausedOrEmpty(t *testing.T) {
	p := NewPlayer()
	p.Tick()
	assert.Equal(t, float64(0), p.Time())

	p.SetItem(item("a", 10))
	p.Pause()
	p.Tick()
	assert.Equal(t, float64(0), p.Time())
}

func TestPlayerSetState(t *testing.T) {
	p := NewPlayer()
	assert.False(t, p.SetState(PlayerPaused), "unchanged")
	assert.False(t, p.SetState("rewinding"), "invalid")
	assert.True(t, p.SetState(PlayerPlaying))
	assert.Equal(t, PlayerPlaying, p.State())
}

func TestPlayerSnapshotIsDetached(t *testing.T) {
	l := NewMediaList()
	a := item("a", 10)
	l.Append(a)
	l.Append(item("b", 10))

	p := NewPlayer()
	p.SetItem(a)
	s := p.Snapshot()
	require.NotNil(t, s.Current)
	assert.Nil(t, s.Current.next)
	assert.Nil(t, p.Current().list)
}

func TestPlayerClear(t *testing.T) {
	p := NewPlayer()
	p.SetItem(item("a", 10))
	p.Tick()
	p.Clear()

	assert.Nil(t, p.Current())
	assert.Equal(t, PlayerPaused, p.State())
	assert.Equal(t, float64(0), p.Time())
}
