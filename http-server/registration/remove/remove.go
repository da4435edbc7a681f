package remove

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"ev-assembly/http-server/response"
	"ev-assembly/internal/middleware/auth"
	"ev-assembly/internal/storage"
)

type RegistrationRemover interface {
	Remove(ctx context.Context, user *storage.User, regID int64) error
}

// DeleteRegistration cancels a not-yet-completed registration. The
// owning worker or an admin may do it.
func DeleteRegistration(log *slog.Logger, registrations RegistrationRemover) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.registration.delete.DeleteRegistration"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		regID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			response.Fail(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid registration id")
			return
		}

		user := auth.UserFrom(r.Context())

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := registrations.Remove(ctx, user, regID); err != nil {
			response.Err(w, r, log, err)
			return
		}

		log.Info("registration removed",
			slog.Int64("registration_id", regID),
			slog.Int64("by_user", user.ID),
		)

		response.OK(w, r, map[string]string{"status": "deleted"})
	}
}
