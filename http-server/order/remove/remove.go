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
)

type OrderRemover interface {
	DeleteOrder(ctx context.Context, id int64) error
}

// DeleteOrder removes an order that never started; in_progress orders
// are refused.
func DeleteOrder(log *slog.Logger, orders OrderRemover) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.order.remove.DeleteOrder"

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

		if err := orders.DeleteOrder(ctx, orderID); err != nil {
			response.Err(w, r, log, err)
			return
		}

		log.Info("order deleted", slog.Int64("order_id", orderID))

		response.OK(w, r, map[string]string{"status": "deleted"})
	}
}
