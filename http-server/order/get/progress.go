package get

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

type ProgressProvider interface {
	Progress(ctx context.Context, orderID int64) (*storage.OrderProgress, error)
	CheckCompletion(ctx context.Context, orderID, checkedBy int64) (*storage.CompletionResult, error)
}

// Progress serves the live per-process view of an order.
func Progress(log *slog.Logger, provider ProgressProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.order.get.Progress"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			response.Fail(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid order id")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		progress, err := provider.Progress(ctx, orderID)
		if err != nil {
			response.Err(w, r, log, err)
			return
		}

		response.OK(w, r, progress)
	}
}

// CheckCompletion reports per-process shortfalls and leaves an audit
// row. The order status is never changed here.
func CheckCompletion(log *slog.Logger, provider ProgressProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.order.get.CheckCompletion"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			response.Fail(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid order id")
			return
		}

		user := auth.UserFrom(r.Context())

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		result, err := provider.CheckCompletion(ctx, orderID, user.ID)
		if err != nil {
			response.Err(w, r, log, err)
			return
		}

		response.OK(w, r, result)
	}
}
