package controller

import (
	"net/http"

	"github.com/sharetube/watchroom/pkg/rest"
)

// getIndex seeds the session cookie and tells the page which room to join.
func (c controller) getIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := c.readSessionToken(r)

	resp, err := c.sessionService.Resolve(ctx, token)
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to resolve session", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if resp.Token != token {
		cookie, err := c.sessionCookie(resp.Token)
		if err != nil {
			c.logger.ErrorContext(ctx, "failed to build session cookie", "error", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		http.SetCookie(w, cookie)
	}

	if err := rest.WriteJSON(w, http.StatusOK, rest.Envelope{
		"room_id": c.roomService.DefaultRoomId(),
		"user":    resp.User,
	}); err != nil {
		c.logger.ErrorContext(ctx, "failed to write response", "error", err)
	}
}

func (c controller) getHealthz(w http.ResponseWriter, r *http.Request) {
	if err := rest.WriteJSON(w, http.StatusOK, rest.Envelope{"status": "ok"}); err != nil {
		c.logger.ErrorContext(r.Context(), "failed to write response", "error", err)
	}
}

func (c controller) getRooms(w http.ResponseWriter, r *http.Request) {
	if err := rest.WriteJSON(w, http.StatusOK, rest.Envelope{"rooms": c.roomService.RoomIds()}); err != nil {
		c.logger.ErrorContext(r.Context(), "failed to write response", "error", err)
	}
}

// getUsers lists users with at least one open connection.
func (c controller) getUsers(w http.ResponseWriter, r *http.Request) {
	if err := rest.WriteJSON(w, http.StatusOK, rest.Envelope{"users": c.sessionService.Online()}); err != nil {
		c.logger.ErrorContext(r.Context(), "failed to write response", "error", err)
	}
}
