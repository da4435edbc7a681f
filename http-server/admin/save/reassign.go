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
	"ev-assembly/internal/service/registration"
	"ev-assembly/internal/storage"
)

type ReassignRequest struct {
	UserID            int64  `json:"user_id"`
	OperationID       int64  `json:"operation_id"`
	ExpectedQuantity  *int   `json:"expected_quantity"`
	ReplacesUserID    *int64 `json:"replaces_user_id"`
	ReplacementReason string `json:"replacement_reason"`
}

type Reassigner interface {
	Reassign(ctx context.Context, req registration.ReassignRequest) (*storage.DailyRegistration, error)
}

// ReassignWorker creates a registration for another worker on a
// supervisor's authority, past the capacity guard.
func ReassignWorker(log *slog.Logger, registrations Reassigner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.admin.save.ReassignWorker"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req ReassignRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("failed to decode request", slog.String("error", err.Error()))
			response.Fail(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
			return
		}

		if req.UserID <= 0 || req.OperationID <= 0 {
			response.Fail(w, r, http.StatusBadRequest, "BAD_REQUEST", "user_id and operation_id are required")
			return
		}

		admin := auth.UserFrom(r.Context())

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		reg, err := registrations.Reassign(ctx, registration.ReassignRequest{
			UserID:            req.UserID,
			OperationID:       req.OperationID,
			ExpectedQuantity:  req.ExpectedQuantity,
			ReplacesUserID:    req.ReplacesUserID,
			ReplacementReason: req.ReplacementReason,
			AssignedBy:        admin.ID,
		})
		if err != nil {
			response.Err(w, r, log, err)
			return
		}

		log.Info("worker reassigned",
			slog.Int64("user_id", req.UserID),
			slog.Int64("operation_id", req.OperationID),
			slog.Int64("by_admin", admin.ID),
		)

		response.Created(w, r, reg)
	}
}
