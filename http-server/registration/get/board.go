package get

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"ev-assembly/http-server/response"
	"ev-assembly/internal/storage"
)

// ProcessBoard is one process column of the registration board.
type ProcessBoard struct {
	storage.Process
	Operations []storage.OperationSlot `json:"operations"`
}

type Board struct {
	Order     *storage.ProductionOrder `json:"order"`
	Processes []ProcessBoard           `json:"processes"`
}

type BoardProvider interface {
	GetActiveOrder(ctx context.Context) (*storage.ProductionOrder, error)
	GetActiveProcesses(ctx context.Context, vehicleTypeID int64) ([]storage.Process, error)
	GetActiveOperations(ctx context.Context, vehicleTypeID int64) ([]storage.OperationDetails, error)
	RegisteredWorkersToday(ctx context.Context, orderID int64, day time.Time) (map[int64][]storage.RegisteredWorker, error)
}

// CurrentOrderBoard serves the registration board: the active order,
// its processes and every operation with today's occupancy.
func CurrentOrderBoard(log *slog.Logger, provider BoardProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.registration.get.CurrentOrderBoard"

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

		processes, err := provider.GetActiveProcesses(ctx, order.VehicleTypeID)
		if err != nil {
			response.Err(w, r, log, err)
			return
		}

		operations, err := provider.GetActiveOperations(ctx, order.VehicleTypeID)
		if err != nil {
			response.Err(w, r, log, err)
			return
		}

		registered, err := provider.RegisteredWorkersToday(ctx, order.ID, time.Now())
		if err != nil {
			response.Err(w, r, log, err)
			return
		}

		board := Board{Order: order}
		for _, p := range processes {
			pb := ProcessBoard{Process: p, Operations: []storage.OperationSlot{}}
			for _, o := range operations {
				if o.ProcessID != p.ID {
					continue
				}

				workers := registered[o.ID]
				if workers == nil {
					workers = []storage.RegisteredWorker{}
				}

				pb.Operations = append(pb.Operations, storage.OperationSlot{
					OperationDetails: o,
					CurrentWorkers:   len(workers),
					IsAvailable:      o.MaxWorkers <= 0 || len(workers) < o.MaxWorkers,
					RegisteredBy:     workers,
				})
			}
			board.Processes = append(board.Processes, pb)
		}

		response.OK(w, r, board)
	}
}
