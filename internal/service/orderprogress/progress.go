package orderprogress

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"ev-assembly/internal/storage"
)

type Storage interface {
	GetOrder(ctx context.Context, id int64) (*storage.ProductionOrder, error)
	GetActiveProcesses(ctx context.Context, vehicleTypeID int64) ([]storage.Process, error)
	SumCompletedByProcess(ctx context.Context, orderID int64) (map[int64]int, error)
	GetOrderRegistrations(ctx context.Context, orderID int64) ([]*storage.DailyRegistration, error)
	AddCompletionCheck(ctx context.Context, check storage.CompletionCheck) error
	UpdateOrderStatus(ctx context.Context, id int64, status string) error
}

type Service struct {
	storage Storage
	now     func() time.Time
}

func New(storage Storage) *Service {
	return &Service{storage: storage, now: time.Now}
}

// shortfalls lists every process whose summed completed quantity is
// below the order quantity.
func shortfalls(order *storage.ProductionOrder, processes []storage.Process, sums map[int64]int) []storage.IncompleteProcess {
	var incomplete []storage.IncompleteProcess
	for _, p := range processes {
		completed := sums[p.ID]
		if completed < order.Quantity {
			incomplete = append(incomplete, storage.IncompleteProcess{
				ProcessID:   p.ID,
				ProcessName: p.Name,
				Required:    order.Quantity,
				Completed:   completed,
				Remaining:   order.Quantity - completed,
			})
		}
	}
	return incomplete
}

// CheckCompletion reports which processes are still short and appends an
// audit entry. It never touches the order status.
func (s *Service) CheckCompletion(ctx context.Context, orderID, checkedBy int64) (*storage.CompletionResult, error) {
	const op = "service.orderprogress.CheckCompletion"

	order, err := s.storage.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	incomplete, err := s.orderShortfalls(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := &storage.CompletionResult{
		CanComplete: len(incomplete) == 0,
		Incomplete:  incomplete,
	}

	check := storage.CompletionCheck{
		OrderID:     orderID,
		CheckedAt:   s.now(),
		CheckedBy:   checkedBy,
		CanComplete: result.CanComplete,
		Incomplete:  incomplete,
	}
	if err := s.storage.AddCompletionCheck(ctx, check); err != nil {
		return nil, fmt.Errorf("%s: audit: %w", op, err)
	}

	return result, nil
}

// CompleteOrder marks the order completed once every process reached the
// order quantity, or unconditionally with force.
func (s *Service) CompleteOrder(ctx context.Context, orderID int64, force bool) (*storage.ProductionOrder, error) {
	const op = "service.orderprogress.CompleteOrder"

	order, err := s.storage.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status != storage.OrderInProgress {
		return nil, storage.ErrInvalidStatus
	}

	incomplete, err := s.orderShortfalls(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if len(incomplete) > 0 && !force {
		return nil, &storage.IncompleteError{Processes: incomplete}
	}

	if err := s.storage.UpdateOrderStatus(ctx, orderID, storage.OrderCompleted); err != nil {
		return nil, err
	}

	return s.storage.GetOrder(ctx, orderID)
}

func (s *Service) UpdateStatus(ctx context.Context, orderID int64, status string) (*storage.ProductionOrder, error) {
	if !storage.ValidOrderStatus(status) {
		return nil, storage.ErrInvalidStatus
	}

	if err := s.storage.UpdateOrderStatus(ctx, orderID, status); err != nil {
		return nil, err
	}

	return s.storage.GetOrder(ctx, orderID)
}

// Progress builds the live per-process view of the order.
func (s *Service) Progress(ctx context.Context, orderID int64) (*storage.OrderProgress, error) {
	const op = "service.orderprogress.Progress"

	order, err := s.storage.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	var (
		processes     []storage.Process
		registrations []*storage.DailyRegistration
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		processes, err = s.storage.GetActiveProcesses(gCtx, order.VehicleTypeID)
		if err != nil {
			return fmt.Errorf("processes: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		registrations, err = s.storage.GetOrderRegistrations(gCtx, orderID)
		if err != nil {
			return fmt.Errorf("registrations: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	progress := make([]storage.ProcessProgress, 0, len(processes))
	summary := storage.ProgressSummary{TotalProcesses: len(processes)}
	percentSum := 0

	for _, p := range processes {
		pp := storage.ProcessProgress{
			ProcessID:   p.ID,
			ProcessName: p.Name,
			ProcessCode: p.Code,
			SortOrder:   p.SortOrder,
			Required:    order.Quantity,
			Status:      storage.ProgressPending,
			Workers:     []string{},
		}

		seen := make(map[string]bool)
		for _, r := range registrations {
			if r.ProcessID != p.ID {
				continue
			}
			pp.Registrations++

			name := r.UserName
			if name == "" {
				name = r.UserCode
			}
			if name != "" && !seen[name] {
				seen[name] = true
				pp.Workers = append(pp.Workers, name)
			}

			if r.Status == storage.RegistrationCompleted && r.ActualQuantity != nil {
				pp.Completed += *r.ActualQuantity
			}
		}

		if order.Quantity > 0 {
			pp.Percentage = int(math.Round(float64(pp.Completed) / float64(order.Quantity) * 100))
		}

		switch {
		case pp.Completed >= order.Quantity:
			pp.Status = storage.ProgressCompleted
			summary.CompletedProcesses++
		case pp.Completed > 0:
			pp.Status = storage.ProgressInProgress
			summary.InProgressProcesses++
		}

		percentSum += pp.Percentage
		progress = append(progress, pp)
	}

	// overall is the plain mean of the per-process percentages, not
	// weighted by quantity
	if len(processes) > 0 {
		summary.OverallPercentage = int(math.Round(float64(percentSum) / float64(len(processes))))
	}

	return &storage.OrderProgress{
		OrderID:   order.ID,
		OrderCode: order.OrderCode,
		Quantity:  order.Quantity,
		Status:    order.Status,
		Progress:  progress,
		Summary:   summary,
	}, nil
}

func (s *Service) orderShortfalls(ctx context.Context, order *storage.ProductionOrder) ([]storage.IncompleteProcess, error) {
	var (
		processes []storage.Process
		sums      map[int64]int
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		processes, err = s.storage.GetActiveProcesses(gCtx, order.VehicleTypeID)
		if err != nil {
			return fmt.Errorf("processes: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		sums, err = s.storage.SumCompletedByProcess(gCtx, order.ID)
		if err != nil {
			return fmt.Errorf("sums: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return shortfalls(order, processes, sums), nil
}
