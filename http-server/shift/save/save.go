package save

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

type ShiftStarter interface {
	Start(ctx context.Context, userID int64) (*storage.Shift, error)
}

// StartShift opens today's shift for the caller.
func StartShift(log *slog.Logger, shifts ShiftStarter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.shift.save.StartShift"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		user := auth.UserFrom(r.Context())

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		sh, err := shifts.Start(ctx, user.ID)
		if err != nil {
			response.Err(w, r, log, err)
			return
		}

		log.Info("shift started",
			slog.Int64("user_id", user.ID),
			slog.Int64("shift_id", sh.ID),
		)

		response.Created(w, r, sh)
	}
}
