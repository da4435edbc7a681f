package get

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

type ReportProvider interface {
	Daily(ctx context.Context, userID int64, day time.Time) (*storage.DailyReport, error)
	Workers(ctx context.Context, day time.Time) ([]*storage.DailyReport, error)
}

func parseDay(r *http.Request) (time.Time, bool) {
	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		return time.Now(), true
	}

	day, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}

// DailyReport serves the caller's own rollup for one day.
func DailyReport(log *slog.Logger, reports ReportProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.report.get.DailyReport"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		day, ok := parseDay(r)
		if !ok {
			response.Fail(w, r, http.StatusBadRequest, "BAD_REQUEST", "date must be YYYY-MM-DD")
			return
		}

		user := auth.UserFrom(r.Context())

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		report, err := reports.Daily(ctx, user.ID, day)
		if err != nil {
			response.Err(w, r, log, err)
			return
		}

		response.OK(w, r, report)
	}
}

// WorkerReports serves the rollup of every worker for one day, for the
// admin dashboard.
func WorkerReports(log *slog.Logger, reports ReportProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.report.get.WorkerReports"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		day, ok := parseDay(r)
		if !ok {
			response.Fail(w, r, http.StatusBadRequest, "BAD_REQUEST", "date must be YYYY-MM-DD")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		workerReports, err := reports.Workers(ctx, day)
		if err != nil {
			response.Err(w, r, log, err)
			return
		}

		response.OK(w, r, workerReports)
	}
}
