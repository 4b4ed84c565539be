package http

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/secmon-lab/guidebook/pkg/utils/logging"
)

const (
	sessionCookieName = "session_id"
	userIDHeader      = "X-User-ID"

	// sessionMaxAge keeps the session cookie for 30 days
	sessionMaxAge = 30 * 24 * 60 * 60
)

type ctxSessionKey struct{}

type session struct {
	ID     string
	UserID string
}

func sessionFrom(ctx context.Context) *session {
	if s, ok := ctx.Value(ctxSessionKey{}).(*session); ok {
		return s
	}
	return &session{}
}

// sessionMiddleware issues the session cookie when the request has none and stores the
// session in the request context. The user id is the session id unless trustUserHeader
// is set, in which case a X-User-ID header from an upstream auth proxy takes precedence.
func sessionMiddleware(secure, trustUserHeader bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sessionID string
			if c, err := r.Cookie(sessionCookieName); err == nil {
				if _, err := uuid.Parse(c.Value); err == nil {
					sessionID = c.Value
				}
			}

			if sessionID == "" {
				id, err := uuid.NewV7()
				if err != nil {
					id = uuid.New()
				}
				sessionID = id.String()
				http.SetCookie(w, &http.Cookie{
					Name:     sessionCookieName,
					Value:    sessionID,
					Path:     "/",
					HttpOnly: true,
					Secure:   secure || r.TLS != nil,
					SameSite: http.SameSiteLaxMode,
					MaxAge:   sessionMaxAge,
				})
			}

			userID := sessionID
			if trustUserHeader {
				if h := r.Header.Get(userIDHeader); h != "" {
					userID = h
				}
			}

			ctx := context.WithValue(r.Context(), ctxSessionKey{}, &session{ID: sessionID, UserID: userID})
			ctx = logging.With(ctx, logging.From(ctx).With("session_id", sessionID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func clearSessionCookie(w http.ResponseWriter, r *http.Request, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   secure || r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
