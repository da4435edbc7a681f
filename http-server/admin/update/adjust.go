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
	"ev-assembly/internal/middleware/auth"
	"ev-assembly/internal/storage"
)

type AdjustRequest struct {
	AdjustedExpectedQty *int   `json:"adjusted_expected_qty"`
	Note                string `json:"note"`
}

type Adjuster interface {
	Adjust(ctx context.Context, adminID, regID int64, adjustedExpectedQty int, note string) (*storage.DailyRegistration, error)
}

// AdjustRegistration overrides the expected quantity of a registration.
// Completed registrations get their deviation and money recomputed.
func AdjustRegistration(log *slog.Logger, registrations Adjuster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.admin.update.AdjustRegistration"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		regID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			response.Fail(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid registration id")
			return
		}

		var req AdjustRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("failed to decode request", slog.String("error", err.Error()))
			response.Fail(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
			return
		}

		if req.AdjustedExpectedQty == nil || *req.AdjustedExpectedQty < 0 {
			response.Fail(w, r, http.StatusBadRequest, "BAD_REQUEST", "adjusted_expected_qty is required")
			return
		}

		admin := auth.UserFrom(r.Context())

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		reg, err := registrations.Adjust(ctx, admin.ID, regID, *req.AdjustedExpectedQty, req.Note)
		if err != nil {
			response.Err(w, r, log, err)
			return
		}

		log.Info("registration adjusted",
			slog.Int64("registration_id", regID),
			slog.Int("adjusted_expected_qty", *req.AdjustedExpectedQty),
			slog.Int64("by_admin", admin.ID),
		)

		response.OK(w, r, reg)
	}
}
