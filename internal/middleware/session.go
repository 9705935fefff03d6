package middleware

import (
	"net/http"

	"go.uber.org/zap"

	"dconn.dev/projectgrid/internal/logging"
	"dconn.dev/projectgrid/internal/session"
)

// SessionCookie names the cookie carrying the session id
const SessionCookie = "projectgrid_session"

// Session attaches the browser's session to the request context, starting a
// new one when the cookie is missing or no longer known.
func Session(store *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sess *session.Session
			if c, err := r.Cookie(SessionCookie); err == nil {
				sess, _ = store.Get(c.Value)
			}
			if sess == nil {
				sess = store.Create()
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookie,
					Value:    sess.ID(),
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
				logging.FromContext(r.Context()).Debug(r.Context(), "session started",
					zap.String("session.id", sess.ID()))
			}
			next.ServeHTTP(w, r.WithContext(session.WithSession(r.Context(), sess)))
		})
	}
}
