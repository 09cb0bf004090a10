package domain

import (
	"context"
	"errors"
	"time"
)

var ErrRoomClosed = errors.New("room closed")

// Run serves queued actions and the playback clock until ctx is done. Every
// mutation of the room and every notification happen on this goroutine.
func (r *Room) Run(ctx context.Context) error {
	defer close(r.done)

	ticker := time.NewTicker(r.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-r.actions:
			fn()
		case <-ticker.C:
			r.Tick()
		}
	}
}

// Do schedules fn on the room loop without waiting for it.
func (r *Room) Do(fn func()) bool {
	select {
	case <-r.done:
		return false
	default:
	}

	select {
	case r.actions <- fn:
		return true
	case <-r.done:
		return false
	}
}

// Call runs fn on the room loop and waits for it to finish.
func (r *Room) Call(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	wrapped := func() {
		defer close(finished)
		fn()
	}

	select {
	case r.actions <- wrapped:
	case <-r.done:
		return ErrRoomClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-finished:
		return nil
	case <-r.done:
		select {
		case <-finished:
			return nil
		default:
			return ErrRoomClosed
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed once Run returns.
func (r *Room) Done() <-chan struct{} {
	return r.done
}
