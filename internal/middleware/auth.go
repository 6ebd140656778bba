package middleware

import (
	"net/http"
	"strings"

	"github.com/xelth-com/huissierpro/internal/session"
	"github.com/xelth-com/huissierpro/internal/utils"
)

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, bool) {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// Auth verifies JWT access tokens and attaches the resulting session to the
// request context.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				writeError(w, http.StatusUnauthorized, "Authorization header required")
				return
			}
			tokenString, ok := BearerToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "Invalid authorization header format")
				return
			}

			sess, err := SessionFromToken(tokenString, secret)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(session.WithSession(r.Context(), sess)))
		})
	}
}

// SessionFromToken validates an access token and builds its session.
func SessionFromToken(tokenString, secret string) (*session.Session, error) {
	claims, err := utils.ValidateToken(tokenString, secret)
	if err != nil {
		return nil, err
	}
	if utils.ClaimString(claims, "type") == "refresh" {
		return nil, session.ErrNoSession
	}
	return session.FromClaims(claims)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":"` + message + `"}`))
}
