package domain

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(id string, duration int) *MediaItem {
	return NewMediaItem(MediaItem{Id: id, URL: "dQw4w9WgXcQ", Duration: duration})
}

func ids(items []MediaItem) []string {
	res := make([]string, 0, len(items))
	for _, i := range items {
		res = append(res, i.Id)
	}
	return res
}

func TestMediaListAppendAndAfter(t *testing.T) {
	l := NewMediaList()
	assert.True(t, l.Append(item("a", 1)))
	assert.True(t, l.Append(item("b", 1)))
	assert.True(t, l.Append(item("c", 1)))

	assert.Equal(t, []string{"a", "b", "c"}, ids(l.Snapshot()))

	next, ok := l.After("a")
	require.True(t, ok)
	assert.Equal(t, "b", next.Id)

	next, ok = l.After("c")
	require.True(t, ok)
	assert.Equal(t, "a", next.Id, "last member wraps to the first")
}

func TestMediaListAfterSingleAndEmpty(t *testing.T) {
	l := NewMediaList()
	_, ok := l.After("x")
	assert.False(t, ok)

	l.Append(item("a", 1))
	next, ok := l.After("a")
	require.True(t, ok)
	assert.Equal(t, "a", next.Id)

	next, ok = l.After("unknown")
	require.True(t, ok)
	assert.Equal(t, "a", next.Id)
}

func TestMediaListAppendRejects(t *testing.T) {
	l := NewMediaList()
	assert.False(t, l.Append(nil))
	assert.True(t, l.Append(item("a", 1)))
	assert.False(t, l.Append(item("a", 1)), "duplicate id")

	other := NewMediaList()
	shared := item("b", 1)
	require.True(t, other.Append(shared))
	assert.False(t, l.Append(shared), "member of another list")
	assert.Equal(t, 1, l.Len())
}

func TestMediaListInsertAfter(t *testing.T) {
	l := NewMediaList()
	l.Append(item("a", 1))
	l.Append(item("c", 1))

	assert.True(t, l.InsertAfter(item("b", 1), "a"))
	assert.True(t, l.InsertAfter(item("d", 1), "c"))
	assert.True(t, l.InsertAfter(item("z", 1), "missing"))

	assert.Equal(t, []string{"z", "a", "b", "c", "d"}, ids(l.Snapshot()))
	last, _ := l.Last()
	assert.Equal(t, "d", last.Id)
}

func TestMediaListRemoveRelinks(t *testing.T) {
	l := NewMediaList()
	for _, id := range []string{"a", "b", "c"} {
		l.Append(item(id, 1))
	}

	removed, ok := l.Remove("b")
	require.True(t, ok)
	assert.Equal(t, "b", removed.Id)
	assert.Nil(t, removed.prev)
	assert.Nil(t, removed.next)

	next, _ := l.After("a")
	assert.Equal(t, "c", next.Id)
	prev, _ := l.Before("c")
	assert.Equal(t, "a", prev.Id)

	_, ok = l.Remove("b")
	assert.False(t, ok)

	l.Remove("a")
	l.Remove("c")
	assert.Equal(t, 0, l.Len())
	_, ok = l.First()
	assert.False(t, ok)

	assert.True(t, l.Append(removed), "detached item can join again")
}

func TestMediaListEvents(t *testing.T) {
	l := NewMediaList()
	var kinds []ListEventKind
	unsubscribe := l.Subscribe(func(e ListEvent) { kinds = append(kinds, e.Kind) })

	l.Append(item("a", 1))
	l.Remove("a")
	l.Remove("a")
	l.Reset([]*MediaItem{item("b", 1)})
	unsubscribe()
	l.Append(item("c", 1))

	assert.Equal(t, []ListEventKind{ItemAdded, ItemRemoved, ListReset}, kinds)
}

func TestMediaListCycleProperty(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	for round := 0; round < 200; round++ {
		l := NewMediaList()
		var members []string
		removed := map[string]bool{}

		for step := 0; step < 30; step++ {
			id := fmt.Sprintf("%d-%d", round, step)
			switch op := rng.IntN(3); {
			case op == 0 || len(members) == 0:
				l.Append(item(id, 1))
				members = append(members, id)
			case op == 1:
				l.InsertAfter(item(id, 1), members[rng.IntN(len(members))])
				members = append(members, id)
			default:
				i := rng.IntN(len(members))
				l.Remove(members[i])
				removed[members[i]] = true
				members = append(members[:i], members[i+1:]...)
			}
		}

		require.Equal(t, len(members), l.Len())
		if len(members) == 0 {
			continue
		}

		start := members[rng.IntN(len(members))]
		seen := map[string]bool{}
		cur := start
		for i := 0; i < len(members); i++ {
			next, ok := l.After(cur)
			require.True(t, ok)
			require.False(t, removed[next.Id])
			require.False(t, seen[next.Id], "revisited %s before completing the cycle", next.Id)
			seen[next.Id] = true
			cur = next.Id
		}

		assert.Equal(t, start, cur)
		assert.Len(t, seen, len(members))
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0:00", FormatDuration(0))
	assert.Equal(t, "0:09", FormatDuration(9))
	assert.Equal(t, "3:33", FormatDuration(213))
	assert.Equal(t, "61:01", FormatDuration(3661))
	assert.Equal(t, "0:00", FormatDuration(-5))
}

func TestNewMediaItem(t *testing.T) {
	m := NewMediaItem(MediaItem{URL: "dQw4w9WgXcQ", Duration: 75})
	assert.NotEmpty(t, m.Id)
	assert.Equal(t, "1:15", m.TimeText)
}

func TestMediaListNextDoesNotWrap(t *testing.T) {
	l := NewMediaList()
	l.Append(item("a", 1))
	l.Append(item("b", 1))

	next, ok := l.Next("a")
	require.True(t, ok)
	assert.Equal(t, "b", next.Id)

	_, ok = l.Next("b")
	assert.False(t, ok)
}
