package update

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

type ShiftEnder interface {
	End(ctx context.Context, userID int64) (*storage.Shift, error)
}

// EndShift closes the caller's active shift and settles its minutes.
func EndShift(log *slog.Logger, shifts ShiftEnder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.shift.update.EndShift"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		user := auth.UserFrom(r.Context())

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		sh, err := shifts.End(ctx, user.ID)
		if err != nil {
			response.Err(w, r, log, err)
			return
		}

		log.Info("shift ended",
			slog.Int64("user_id", user.ID),
			slog.Int64("shift_id", sh.ID),
			slog.Int("total_minutes", sh.TotalWorkingMinutes),
		)

		response.OK(w, r, sh)
	}
}
