package get

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"ev-assembly/http-server/response"
	"ev-assembly/internal/middleware/auth"
	"ev-assembly/internal/service/shift"
	"ev-assembly/internal/storage"
)

type ShiftProvider interface {
	Current(ctx context.Context, userID int64) (*storage.Shift, error)
	History(ctx context.Context, userID int64, from, to *time.Time, limit, page int) (*shift.HistoryPage, error)
}

// CurrentShift serves the caller's active shift, null when none is
// open.
func CurrentShift(log *slog.Logger, shifts ShiftProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.shift.get.CurrentShift"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		user := auth.UserFrom(r.Context())

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		sh, err := shifts.Current(ctx, user.ID)
		if err != nil {
			response.Err(w, r, log, err)
			return
		}

		response.OK(w, r, sh)
	}
}

// ShiftHistory pages through the caller's past shifts.
func ShiftHistory(log *slog.Logger, shifts ShiftProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.shift.get.ShiftHistory"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var from, to *time.Time
		if fromStr := r.URL.Query().Get("from"); fromStr != "" {
			t, err := time.Parse("2006-01-02", fromStr)
			if err != nil {
				response.Fail(w, r, http.StatusBadRequest, "BAD_REQUEST", "from must be YYYY-MM-DD")
				return
			}
			from = &t
		}
		if toStr := r.URL.Query().Get("to"); toStr != "" {
			t, err := time.Parse("2006-01-02", toStr)
			if err != nil {
				response.Fail(w, r, http.StatusBadRequest, "BAD_REQUEST", "to must be YYYY-MM-DD")
				return
			}
			to = &t
		}

		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))

		user := auth.UserFrom(r.Context())

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		history, err := shifts.History(ctx, user.ID, from, to, limit, page)
		if err != nil {
			response.Err(w, r, log, err)
			return
		}

		response.OK(w, r, history)
	}
}
