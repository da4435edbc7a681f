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

type CompleteRequest struct {
	ActualQuantity      *int   `json:"actual_quantity"`
	InterruptionMinutes int    `json:"interruption_minutes"`
	InterruptionNote    string `json:"interruption_note"`
}

type RegistrationCompleter interface {
	Complete(ctx context.Context, userID, regID int64, actualQuantity, interruptionMinutes int, interruptionNote string) (*storage.DailyRegistration, error)
}

// CompleteRegistration records the caller's actual quantity and settles
// the piece-rate outcome.
func CompleteRegistration(log *slog.Logger, registrations RegistrationCompleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.registration.update.CompleteRegistration"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		regID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			response.Fail(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid registration id")
			return
		}

		var req CompleteRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("failed to decode request", slog.String("error", err.Error()))
			response.Fail(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
			return
		}

		if req.ActualQuantity == nil || *req.ActualQuantity < 0 {
			response.Fail(w, r, http.StatusBadRequest, "BAD_REQUEST", "actual_quantity is required")
			return
		}
		if req.InterruptionMinutes < 0 {
			response.Fail(w, r, http.StatusBadRequest, "BAD_REQUEST", "interruption_minutes cannot be negative")
			return
		}

		user := auth.UserFrom(r.Context())

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		reg, err := registrations.Complete(ctx, user.ID, regID, *req.ActualQuantity, req.InterruptionMinutes, req.InterruptionNote)
		if err != nil {
			response.Err(w, r, log, err)
			return
		}

		log.Info("registration completed",
			slog.Int64("registration_id", regID),
			slog.Int("actual_quantity", *req.ActualQuantity),
			slog.Int("deviation", reg.Deviation),
		)

		response.OK(w, r, reg)
	}
}
