package save

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"ev-assembly/http-server/response"
	"ev-assembly/internal/middleware/auth"
	"ev-assembly/internal/storage"
)

type Request struct {
	OperationID int64 `json:"operation_id"`
}

type RegistrationCreator interface {
	Create(ctx context.Context, userID, operationID int64) (*storage.DailyRegistration, error)
}

// SaveRegistration registers the caller on an operation under the
// active order.
func SaveRegistration(log *slog.Logger, registrations RegistrationCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.registration.save.SaveRegistration"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("failed to decode request", slog.String("error", err.Error()))
			response.Fail(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
			return
		}

		if req.OperationID <= 0 {
			response.Fail(w, r, http.StatusBadRequest, "BAD_REQUEST", "operation_id is required")
			return
		}

		user := auth.UserFrom(r.Context())

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		reg, err := registrations.Create(ctx, user.ID, req.OperationID)
		if err != nil {
			response.Err(w, r, log, err)
			return
		}

		log.Info("worker registered",
			slog.Int64("user_id", user.ID),
			slog.Int64("operation_id", req.OperationID),
			slog.Int64("registration_id", reg.ID),
		)

		response.Created(w, r, reg)
	}
}
