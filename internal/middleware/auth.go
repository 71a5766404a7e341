package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/houseoftheai/server/internal/auth"
	"github.com/houseoftheai/server/internal/model"
	"github.com/houseoftheai/server/internal/repo"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "token"

type contextKey string

const userKey contextKey = "user"

// RequireAuth validates the session cookie, re-fetches the account by id, and
// attaches it to the request context. A deleted account invalidates every
// outstanding session on next use even though the token itself is still
// structurally valid.
func RequireAuth(jwtService *auth.JWTService, users repo.UserRepo) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				respondWithError(w, http.StatusUnauthorized, "Not authorized — No token")
				return
			}

			claims, err := jwtService.VerifySession(cookie.Value)
			if err != nil {
				respondWithError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			id, err := bson.ObjectIDFromHex(claims.UserID)
			if err != nil {
				respondWithError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			user, err := users.GetByID(r.Context(), id)
			if err != nil {
				respondWithError(w, http.StatusUnauthorized, "User no longer exists")
				return
			}

			// The password hash never leaves this middleware.
			user.PasswordHash = ""

			ctx := context.WithValue(r.Context(), userKey, &user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUser returns the account attached by RequireAuth
func GetUser(ctx context.Context) (*model.User, bool) {
	u, ok := ctx.Value(userKey).(*model.User)
	return u, ok
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
