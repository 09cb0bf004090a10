package controller

import (
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"
)

const sessionCookieName = "session"

var idCounter atomic.Uint64

func (c controller) generateTimeBasedId() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 36) + "-" + strconv.FormatUint(idCounter.Add(1), 36)
}

// readSessionToken returns the verified token from the session cookie, or ""
// when the cookie is missing or was not signed by us.
func (c controller) readSessionToken(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}

	var token string
	if err := c.cookies.Decode(sessionCookieName, cookie.Value, &token); err != nil {
		c.logger.InfoContext(r.Context(), "invalid session cookie", "error", err)
		return ""
	}

	return token
}

func (c controller) sessionCookie(token string) (*http.Cookie, error) {
	encoded, err := c.cookies.Encode(sessionCookieName, token)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session cookie: %w", err)
	}

	return &http.Cookie{
		Name:     sessionCookieName,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		// the registry keeps sessions without expiry
		MaxAge: 10 * 365 * 24 * 60 * 60,
	}, nil
}

func (c controller) validatePayload(v any) error {
	if errs, ok := c.validate.Validate(v); !ok {
		return fmt.Errorf("invalid payload: %v", errs)
	}

	return nil
}
