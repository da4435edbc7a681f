package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"ev-assembly/internal/storage"
)

type ctxKey struct{}

// UserProvider resolves the worker code sent by the gateway. The
// gateway terminates the session token and forwards the code in the
// X-Worker-Code header.
type UserProvider interface {
	GetUserByCode(ctx context.Context, code string) (*storage.User, error)
}

// Identify resolves X-Worker-Code into a storage.User and puts it on
// the request context. Requests without a known code are rejected.
func Identify(log *slog.Logger, users UserProvider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			code := r.Header.Get("X-Worker-Code")
			if code == "" {
				unauthorized(w, r, "missing X-Worker-Code header")
				return
			}

			ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
			defer cancel()

			user, err := users.GetUserByCode(ctx, code)
			if err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					unauthorized(w, r, "unknown worker code")
					return
				}
				log.Error("identity lookup failed", slog.String("error", err.Error()))
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func WithUser(ctx context.Context, user *storage.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, user)
}

// UserFrom returns the identified worker, nil when the route is not
// behind Identify.
func UserFrom(ctx context.Context) *storage.User {
	user, _ := ctx.Value(ctxKey{}).(*storage.User)
	return user
}

func unauthorized(w http.ResponseWriter, r *http.Request, msg string) {
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, map[string]any{
		"success": false,
		"error":   map[string]string{"code": "UNAUTHORIZED", "message": msg},
	})
}
