package update

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"ev-assembly/http-server/response"
	"ev-assembly/internal/storage"
)

type OrderUpdater interface {
	UpdateOrder(ctx context.Context, id int64, upd storage.OrderUpdate) error
	GetOrder(ctx context.Context, id int64) (*storage.ProductionOrder, error)
}

type StatusUpdater interface {
	UpdateStatus(ctx context.Context, orderID int64, status string) (*storage.ProductionOrder, error)
}

type OrderCompleter interface {
	CompleteOrder(ctx context.Context, orderID int64, force bool) (*storage.ProductionOrder, error)
}

// UpdateOrder edits the caller-supplied fields of a pending or running
// order. Status changes go through UpdateStatus instead.
func UpdateOrder(log *slog.Logger, orders OrderUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.order.update.UpdateOrder"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			response.Fail(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid order id")
			return
		}

		var req storage.OrderUpdate
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("failed to decode request", slog.String("error", err.Error()))
			response.Fail(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
			return
		}

		if req.Quantity != nil && *req.Quantity <= 0 {
			response.Fail(w, r, http.StatusBadRequest, "BAD_REQUEST", "quantity must be positive")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := orders.UpdateOrder(ctx, orderID, req); err != nil {
			response.Err(w, r, log, err)
			return
		}

		order, err := orders.GetOrder(ctx, orderID)
		if err != nil {
			response.Err(w, r, log, err)
			return
		}

		response.OK(w, r, order)
	}
}

type StatusRequest struct {
	Status string `json:"status"`
}

// UpdateOrderStatus moves an order through its lifecycle. Activating an
// order is refused while another one is in progress.
func UpdateOrderStatus(log *slog.Logger, orders StatusUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.order.update.UpdateOrderStatus"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			response.Fail(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid order id")
			return
		}

		var req StatusRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("failed to decode request", slog.String("error", err.Error()))
			response.Fail(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		order, err := orders.UpdateStatus(ctx, orderID, req.Status)
		if err != nil {
			response.Err(w, r, log, err)
			return
		}

		log.Info("order status updated",
			slog.Int64("order_id", orderID),
			slog.String("status", req.Status),
		)

		response.OK(w, r, order)
	}
}

type CompleteRequest struct {
	Force bool `json:"force_complete"`
}

// CompleteOrder marks the order completed once every process reached
// the order quantity; force overrides remaining shortfalls.
func CompleteOrder(log *slog.Logger, orders OrderCompleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.order.update.CompleteOrder"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			response.Fail(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid order id")
			return
		}

		var req CompleteRequest
		if r.ContentLength > 0 {
			if err := render.DecodeJSON(r.Body, &req); err != nil {
				log.Error("failed to decode request", slog.String("error", err.Error()))
				response.Fail(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
				return
			}
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		order, err := orders.CompleteOrder(ctx, orderID, req.Force)
		if err != nil {
			response.Err(w, r, log, err)
			return
		}

		log.Info("order completed",
			slog.Int64("order_id", orderID),
			slog.Bool("force", req.Force),
		)

		response.OK(w, r, order)
	}
}
