package domain

import (
	"fmt"

	"github.com/google/uuid"
)

const VideoURLLength = 11

type MediaItem struct {
	Id        string `json:"id"`
	URL       string `json:"url"`
	Duration  int    `json:"duration"`
	Title     string `json:"title"`
	Uploader  string `json:"uploader"`
	Thumbnail string `json:"thumbnail"`
	TimeText  string `json:"time_text"`

	prev *MediaItem
	next *MediaItem
	list *MediaList
}

// NewMediaItem copies v, assigning an id and formatted duration when missing.
func NewMediaItem(v MediaItem) *MediaItem {
	item := v.detached()
	if item.Id == "" {
		item.Id = uuid.NewString()
	}

	if item.TimeText == "" {
		item.TimeText = FormatDuration(item.Duration)
	}

	return item
}

func (m *MediaItem) Key() string {
	return m.Id
}

func (m MediaItem) detached() *MediaItem {
	m.prev, m.next, m.list = nil, nil, nil
	return &m
}

// FormatDuration renders seconds as m:ss.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}

	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

type ListEventKind int

const (
	ItemAdded ListEventKind = iota
	ItemRemoved
	ListReset
)

type ListEvent struct {
	Kind ListEventKind
	Item *MediaItem
}

// MediaList is a doubly linked ordering of media items with O(1) lookup by id.
// An item is a member of at most one list at a time.
type MediaList struct {
	Observable[ListEvent]

	items map[string]*MediaItem
	head  *MediaItem
	tail  *MediaItem
}

func NewMediaList() *MediaList {
	return &MediaList{items: make(map[string]*MediaItem)}
}

func (l *MediaList) Len() int {
	return len(l.items)
}

func (l *MediaList) Has(id string) bool {
	_, ok := l.items[id]
	return ok
}

func (l *MediaList) Get(id string) (*MediaItem, bool) {
	item, ok := l.items[id]
	return item, ok
}

func (l *MediaList) First() (*MediaItem, bool) {
	return l.head, l.head != nil
}

func (l *MediaList) Last() (*MediaItem, bool) {
	return l.tail, l.tail != nil
}

// Append adds item at the tail. Nil items, items owned by another list and
// duplicate ids are ignored.
func (l *MediaList) Append(item *MediaItem) bool {
	if !l.accepts(item) {
		return false
	}

	l.link(item, l.tail)
	l.publish(ListEvent{Kind: ItemAdded, Item: item})
	return true
}

// InsertAfter splices item right after the member with anchorId. When the
// anchor is not a member the item becomes the new head.
func (l *MediaList) InsertAfter(item *MediaItem, anchorId string) bool {
	if !l.accepts(item) {
		return false
	}

	l.link(item, l.items[anchorId])
	l.publish(ListEvent{Kind: ItemAdded, Item: item})
	return true
}

// Remove detaches the member with id, relinking its neighbours first.
func (l *MediaList) Remove(id string) (*MediaItem, bool) {
	item, ok := l.items[id]
	if !ok {
		return nil, false
	}

	if item.prev != nil {
		item.prev.next = item.next
	} else {
		l.head = item.next
	}

	if item.next != nil {
		item.next.prev = item.prev
	} else {
		l.tail = item.prev
	}

	delete(l.items, id)
	item.prev, item.next, item.list = nil, nil, nil

	l.publish(ListEvent{Kind: ItemRemoved, Item: item})
	return item, true
}

// After returns the member following id, wrapping to the head. Unknown ids
// resolve to the head. It reports false only for an empty list.
func (l *MediaList) After(id string) (*MediaItem, bool) {
	if l.head == nil {
		return nil, false
	}

	item, ok := l.items[id]
	if !ok || item.next == nil {
		return l.head, true
	}

	return item.next, true
}

// Next returns the member following id without wrapping.
func (l *MediaList) Next(id string) (*MediaItem, bool) {
	item, ok := l.items[id]
	if !ok || item.next == nil {
		return nil, false
	}

	return item.next, true
}

// Before returns the member preceding id, if any.
func (l *MediaList) Before(id string) (*MediaItem, bool) {
	item, ok := l.items[id]
	if !ok || item.prev == nil {
		return nil, false
	}

	return item.prev, true
}

// Reset replaces the contents with items in the given order.
func (l *MediaList) Reset(items []*MediaItem) {
	for _, item := range l.items {
		item.prev, item.next, item.list = nil, nil, nil
	}

	l.items = make(map[string]*MediaItem, len(items))
	l.head, l.tail = nil, nil

	for _, item := range items {
		if l.accepts(item) {
			l.link(item, l.tail)
		}
	}

	l.publish(ListEvent{Kind: ListReset})
}

// Snapshot returns detached copies of the members in order.
func (l *MediaList) Snapshot() []MediaItem {
	res := make([]MediaItem, 0, len(l.items))
	for item := l.head; item != nil; item = item.next {
		res = append(res, *item.detached())
	}

	return res
}

func (l *MediaList) accepts(item *MediaItem) bool {
	if item == nil || item.Id == "" || item.list != nil {
		return false
	}

	_, exists := l.items[item.Id]
	return !exists
}

// link places item after anchor, or at the head when anchor is nil.
func (l *MediaList) link(item, anchor *MediaItem) {
	item.list = l
	l.items[item.Id] = item

	if anchor == nil {
		item.prev = nil
		item.next = l.head
		if l.head != nil {
			l.head.prev = item
		}
		l.head = item
		if l.tail == nil {
			l.tail = item
		}
		return
	}

	item.prev = anchor
	item.next = anchor.next
	if anchor.next != nil {
		anchor.next.prev = item
	} else {
		l.tail = item
	}
	anchor.next = item
}
