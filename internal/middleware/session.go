package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/templui/incomeatlas/internal/ctxkeys"
	"github.com/templui/incomeatlas/internal/session"
)

// Session ensures every /api request carries a session user id, minting one
// (and setting the cookie) on first contact. The id is stored in the request
// context.
func Session(sessions *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, "/api/") {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := sessions.EnsureUserID(w, r)
			if err != nil {
				slog.Error("failed to establish session", "error", err)
				writeError(w, http.StatusInternalServerError, "Internal server error")
				return
			}

			ctx := ctxkeys.WithUserID(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
