package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"ev-assembly/internal/storage"
)

type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   *Error `json:"error,omitempty"`
}

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func OK(w http.ResponseWriter, r *http.Request, data any) {
	render.JSON(w, r, Envelope{Success: true, Data: data})
}

func Created(w http.ResponseWriter, r *http.Request, data any) {
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, Envelope{Success: true, Data: data})
}

func Fail(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	render.Status(r, status)
	render.JSON(w, r, Envelope{Error: &Error{Code: code, Message: message}})
}

// Err maps a service or storage error onto the response envelope. The
// sentinel set in internal/storage carries the business failures, the
// rest is a 500.
func Err(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	var incomplete *storage.IncompleteError
	if errors.As(err, &incomplete) {
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, Envelope{Error: &Error{
			Code:    "INCOMPLETE_PROCESSES",
			Message: incomplete.Error(),
			Details: incomplete.Processes,
		}})
		return
	}

	status, code := classify(err)
	if status == http.StatusInternalServerError {
		log.Error("request failed", slog.String("error", err.Error()))
	}

	Fail(w, r, status, code, err.Error())
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, storage.ErrNoActiveOrder):
		return http.StatusConflict, "NO_ORDER"
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, storage.ErrOperationMismatch):
		return http.StatusBadRequest, "INVALID_OP"
	case errors.Is(err, storage.ErrOperationFull):
		return http.StatusConflict, "FULL"
	case errors.Is(err, storage.ErrDuplicate):
		return http.StatusConflict, "DUPLICATE"
	case errors.Is(err, storage.ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, storage.ErrAlreadyCompleted):
		return http.StatusConflict, "COMPLETED"
	case errors.Is(err, storage.ErrShiftExists):
		return http.StatusConflict, "SHIFT_EXISTS"
	case errors.Is(err, storage.ErrNoActiveShift):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, storage.ErrInvalidStatus):
		return http.StatusBadRequest, "INVALID_STATUS"
	case errors.Is(err, storage.ErrActiveOrderExists):
		return http.StatusConflict, "ACTIVE_EXISTS"
	case errors.Is(err, storage.ErrOrderInProgress):
		return http.StatusConflict, "IN_PROGRESS"
	case errors.Is(err, storage.ErrInvalidRef):
		return http.StatusBadRequest, "INVALID_REF"
	default:
		return http.StatusInternalServerError, "INTERNAL"
	}
}
