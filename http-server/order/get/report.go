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

type ReportProvider interface {
	OrderReport(ctx context.Context, orderID int64) (*storage.OrderReport, error)
}

// Report serves the per-order detail report: registrations grouped by
// day, per-worker summary and order-level statistics.
func Report(log *slog.Logger, provider ReportProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.order.get.Report"

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

		report, err := provider.OrderReport(ctx, orderID)
		if err != nil {
			response.Err(w, r, log, err)
			return
		}

		response.OK(w, r, report)
	}
}
