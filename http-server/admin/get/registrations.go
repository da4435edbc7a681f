package get

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"ev-assembly/http-server/response"
	"ev-assembly/internal/storage"
)

type RegistrationsProvider interface {
	GetRegistrations(ctx context.Context, filter storage.RegistrationFilter) ([]*storage.DailyRegistration, error)
}

// Registrations lists registrations for supervisors, filtered by date,
// order and status query parameters.
func Registrations(log *slog.Logger, provider RegistrationsProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.admin.get.Registrations"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var filter storage.RegistrationFilter

		if dateStr := r.URL.Query().Get("date"); dateStr != "" {
			date, err := time.Parse("2006-01-02", dateStr)
			if err != nil {
				response.Fail(w, r, http.StatusBadRequest, "BAD_REQUEST", "date must be YYYY-MM-DD")
				return
			}
			filter.Date = &date
		}

		if orderStr := r.URL.Query().Get("order_id"); orderStr != "" {
			orderID, err := strconv.ParseInt(orderStr, 10, 64)
			if err != nil {
				response.Fail(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid order_id")
				return
			}
			filter.ProductionOrderID = orderID
		}

		filter.Status = r.URL.Query().Get("status")

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		registrations, err := provider.GetRegistrations(ctx, filter)
		if err != nil {
			response.Err(w, r, log, err)
			return
		}

		response.OK(w, r, registrations)
	}
}
