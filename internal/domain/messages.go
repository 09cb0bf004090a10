package domain

import (
	"time"

	"github.com/google/uuid"
)

const DefaultMessageCapacity = 100

type Message struct {
	Id       string    `json:"id"`
	Author   string    `json:"author"`
	Content  string    `json:"content"`
	Time     time.Time `json:"time"`
	Rendered bool      `json:"rendered"`
}

func NewMessage(author, content string) Message {
	return Message{
		Id:      uuid.NewString(),
		Author:  author,
		Content: content,
		Time:    time.Now().UTC(),
	}
}

// MessageLog holds at most capacity messages. Adding to a full log clears it
// first rather than evicting the oldest entry.
type MessageLog struct {
	capacity int
	items    []Message
}

func NewMessageLog(capacity int) *MessageLog {
	if capacity <= 0 {
		capacity = DefaultMessageCapacity
	}

	return &MessageLog{capacity: capacity}
}

// Add appends m and reports whether the log was reset to make room.
func (l *MessageLog) Add(m Message) bool {
	reset := len(l.items) >= l.capacity
	if reset {
		l.items = nil
	}

	l.items = append(l.items, m)
	return reset
}

func (l *MessageLog) Len() int {
	return len(l.items)
}

// Last returns a copy of the newest n messages, oldest first.
func (l *MessageLog) Last(n int) []Message {
	if n <= 0 {
		return []Message{}
	}

	start := max(0, len(l.items)-n)
	res := make([]Message, len(l.items)-start)
	copy(res, l.items[start:])
	return res
}

// Restore replaces the log with the newest messages of msgs that fit.
func (l *MessageLog) Restore(msgs []Message) {
	start := max(0, len(msgs)-l.capacity)
	l.items = append([]Message(nil), msgs[start:]...)
}
