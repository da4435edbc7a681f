package get

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"ev-assembly/http-server/response"
	"ev-assembly/internal/middleware/auth"
	"ev-assembly/internal/storage"
)

type TodayProvider interface {
	GetUserRegistrations(ctx context.Context, userID int64, day time.Time) ([]*storage.DailyRegistration, error)
}

// Today lists the caller's registrations for the current day.
func Today(log *slog.Logger, provider TodayProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.registration.get.Today"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		user := auth.UserFrom(r.Context())

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		registrations, err := provider.GetUserRegistrations(ctx, user.ID, time.Now())
		if err != nil {
			response.Err(w, r, log, err)
			return
		}

		response.OK(w, r, registrations)
	}
}
