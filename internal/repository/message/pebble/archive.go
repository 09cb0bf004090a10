package pebble

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/pebble/v2"
	"github.com/sharetube/watchroom/internal/repository/message"
)

// Archive stores chat messages in pebble. Keys are the room id, a zero byte
// and an 8-byte big-endian sequence, so one room's messages sort together in
// arrival order.
type Archive struct {
	db  *pebble.DB
	seq atomic.Uint64
}

func Open(dir string) (*Archive, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}

	db, err := pebble.Open(filepath.Clean(dir), &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	a := &Archive{db: db}
	a.seq.Store(uint64(time.Now().UnixNano()))
	return a, nil
}

func (a *Archive) Close() error {
	return a.db.Close()
}

func (a *Archive) Append(m message.Message) error {
	val, err := json.Marshal(m)
	if err != nil {
		return err
	}

	return a.db.Set(messageKey(m.RoomId, a.seq.Add(1)), val, pebble.Sync)
}

// Recent returns up to limit of the newest messages of a room, oldest first.
func (a *Archive) Recent(roomId string, limit int) ([]message.Message, error) {
	if limit <= 0 {
		return []message.Message{}, nil
	}

	lower := roomPrefix(roomId)
	upper := append(slices.Clone(lower[:len(lower)-1]), 1)

	it, err := a.db.NewIter(&pebble.IterOptions{LowerBound: lower, UpperBound: upper})
	if err != nil {
		return nil, err
	}
	defer func() { _ = it.Close() }()

	out := make([]message.Message, 0, limit)
	for it.Last(); it.Valid() && len(out) < limit; it.Prev() {
		var m message.Message
		if err := json.Unmarshal(it.Value(), &m); err != nil {
			continue
		}
		out = append(out, m)
	}

	if err := it.Error(); err != nil {
		return nil, err
	}

	slices.Reverse(out)
	return out, nil
}

func roomPrefix(roomId string) []byte {
	return append([]byte(roomId), 0)
}

func messageKey(roomId string, seq uint64) []byte {
	return binary.BigEndian.AppendUint64(roomPrefix(roomId), seq)
}
