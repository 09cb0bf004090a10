package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessageLogHardReset(t *testing.T) {
	l := NewMessageLog(3)
	assert.False(t, l.Add(NewMessage("u", "1")))
	assert.False(t, l.Add(NewMessage("u", "2")))
	assert.False(t, l.Add(NewMessage("u", "3")))
	assert.True(t, l.Add(NewMessage("u", "4")))

	assert.Equal(t, 1, l.Len())
	assert.Equal(t, "4", l.Last(10)[0].Content)
}

func TestMessageLogLast(t *testing.T) {
	l := NewMessageLog(100)
	for i := 0; i < 30; i++ {
		l.Add(NewMessage("u", fmt.Sprint(i)))
	}

	last := l.Last(20)
	assert.Len(t, last, 20)
	assert.Equal(t, "10", last[0].Content)
	assert.Equal(t, "29", last[19].Content)
	assert.Empty(t, l.Last(0))

	last[0].Content = "changed"
	assert.Equal(t, "10", l.Last(20)[0].Content)
}

func TestMessageLogRestore(t *testing.T) {
	l := NewMessageLog(2)
	l.Restore([]Message{NewMessage("u", "a"), NewMessage("u", "b"), NewMessage("u", "c")})

	last := l.Last(5)
	assert.Len(t, last, 2)
	assert.Equal(t, "b", last[0].Content)
}
