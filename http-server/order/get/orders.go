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
	"ev-assembly/internal/storage"
)

type OrdersProvider interface {
	GetOrders(ctx context.Context, status string, vehicleTypeID int64) ([]*storage.ProductionOrder, error)
	GetOrder(ctx context.Context, id int64) (*storage.ProductionOrder, error)
	GetActiveOrder(ctx context.Context) (*storage.ProductionOrder, error)
	GetCompletionChecks(ctx context.Context, orderID int64) ([]storage.CompletionCheck, error)
}

// OrderDetail is the single-order view: the order plus the audit trail
// of completion-check attempts against it.
type OrderDetail struct {
	*storage.ProductionOrder
	CompletionChecks []storage.CompletionCheck `json:"completion_checks"`
}

// Orders lists production orders, optionally filtered by status and
// vehicle type.
func Orders(log *slog.Logger, provider OrdersProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.order.get.Orders"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		status := r.URL.Query().Get("status")
		if status != "" && !storage.ValidOrderStatus(status) {
			response.Fail(w, r, http.StatusBadRequest, "INVALID_STATUS", "unknown order status")
			return
		}

		var vehicleTypeID int64
		if vtStr := r.URL.Query().Get("vehicle_type_id"); vtStr != "" {
			var err error
			vehicleTypeID, err = strconv.ParseInt(vtStr, 10, 64)
			if err != nil {
				response.Fail(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid vehicle_type_id")
				return
			}
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		orders, err := provider.GetOrders(ctx, status, vehicleTypeID)
		if err != nil {
			response.Err(w, r, log, err)
			return
		}

		response.OK(w, r, orders)
	}
}

func Order(log *slog.Logger, provider OrdersProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.order.get.Order"

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

		order, err := provider.GetOrder(ctx, orderID)
		if err != nil {
			response.Err(w, r, log, err)
			return
		}

		checks, err := provider.GetCompletionChecks(ctx, orderID)
		if err != nil {
			response.Err(w, r, log, err)
			return
		}
		if checks == nil {
			checks = []storage.CompletionCheck{}
		}

		response.OK(w, r, OrderDetail{ProductionOrder: order, CompletionChecks: checks})
	}
}

// ActiveOrder serves the single in_progress order the floor works on.
func ActiveOrder(log *slog.Logger, provider OrdersProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.order.get.ActiveOrder"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		order, err := provider.GetActiveOrder(ctx)
		if err != nil {
			response.Err(w, r, log, err)
			return
		}

		response.OK(w, r, order)
	}
}
