package save

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"ev-assembly/http-server/response"
	"ev-assembly/internal/middleware/auth"
	"ev-assembly/internal/storage"
)

type OrderCreator interface {
	CreateOrder(ctx context.Context, no storage.NewOrder) (int64, string, error)
	GetOrder(ctx context.Context, id int64) (*storage.ProductionOrder, error)
	GetVehicleType(ctx context.Context, id int64) (*storage.VehicleType, error)
}

// SaveOrder creates a production order. The order code is assigned from
// the per-year sequence inside the storage transaction.
func SaveOrder(log *slog.Logger, orders OrderCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.order.save.SaveOrder"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req storage.NewOrder
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("failed to decode request", slog.String("error", err.Error()))
			response.Fail(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
			return
		}

		if req.VehicleTypeID <= 0 || req.Quantity <= 0 {
			response.Fail(w, r, http.StatusBadRequest, "BAD_REQUEST", "vehicle_type_id and a positive quantity are required")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if _, err := orders.GetVehicleType(ctx, req.VehicleTypeID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				err = storage.ErrInvalidRef
			}
			response.Err(w, r, log, err)
			return
		}

		req.CreatedBy = auth.UserFrom(r.Context()).ID

		id, code, err := orders.CreateOrder(ctx, req)
		if err != nil {
			response.Err(w, r, log, err)
			return
		}

		log.Info("order created",
			slog.Int64("order_id", id),
			slog.String("order_code", code),
		)

		order, err := orders.GetOrder(ctx, id)
		if err != nil {
			response.Err(w, r, log, err)
			return
		}

		response.Created(w, r, order)
	}
}
