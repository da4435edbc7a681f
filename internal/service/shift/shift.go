package shift

import (
	"context"
	"fmt"
	"math"
	"time"

	"ev-assembly/internal/storage"
)

type Storage interface {
	FindActiveShift(ctx context.Context, userID int64, day time.Time) (*storage.Shift, error)
	CreateShift(ctx context.Context, sh storage.Shift) (int64, error)
	EndShift(ctx context.Context, id int64, endTime time.Time, totalMinutes int) error
	GetShifts(ctx context.Context, userID int64, from, to *time.Time, limit, offset int) ([]storage.Shift, int, error)
}

type Service struct {
	storage Storage
	now     func() time.Time
}

func New(storage Storage) *Service {
	return &Service{storage: storage, now: time.Now}
}

func (s *Service) Start(ctx context.Context, userID int64) (*storage.Shift, error) {
	const op = "service.shift.Start"

	now := s.now()

	existing, err := s.storage.FindActiveShift(ctx, userID, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if existing != nil {
		return nil, storage.ErrShiftExists
	}

	return s.create(ctx, userID, now, op)
}

// EnsureActive resolves the worker's active shift for today, creating
// one when none exists. Both explicit shift start and registration
// creation go through this single path so a worker never ends up with
// two shifts for the same day.
func (s *Service) EnsureActive(ctx context.Context, userID int64) (*storage.Shift, error) {
	const op = "service.shift.EnsureActive"

	now := s.now()

	existing, err := s.storage.FindActiveShift(ctx, userID, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if existing != nil {
		return existing, nil
	}

	return s.create(ctx, userID, now, op)
}

func (s *Service) create(ctx context.Context, userID int64, now time.Time, op string) (*storage.Shift, error) {
	day, _ := storage.DayRange(now)

	sh := storage.Shift{
		UserID:    userID,
		Date:      day,
		StartTime: now,
		Status:    storage.ShiftActive,
	}

	id, err := s.storage.CreateShift(ctx, sh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sh.ID = id
	return &sh, nil
}

func (s *Service) End(ctx context.Context, userID int64) (*storage.Shift, error) {
	const op = "service.shift.End"

	now := s.now()

	sh, err := s.storage.FindActiveShift(ctx, userID, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if sh == nil {
		return nil, storage.ErrNoActiveShift
	}

	totalMinutes := int(math.Round(now.Sub(sh.StartTime).Minutes()))

	if err := s.storage.EndShift(ctx, sh.ID, now, totalMinutes); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sh.EndTime = &now
	sh.TotalWorkingMinutes = totalMinutes
	sh.Status = storage.ShiftCompleted

	return sh, nil
}

func (s *Service) Current(ctx context.Context, userID int64) (*storage.Shift, error) {
	const op = "service.shift.Current"

	sh, err := s.storage.FindActiveShift(ctx, userID, s.now())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return sh, nil
}

type HistoryPage struct {
	Shifts []storage.Shift `json:"data"`
	Total  int             `json:"total"`
	Page   int             `json:"page"`
	Limit  int             `json:"limit"`
	Pages  int             `json:"pages"`
}

func (s *Service) History(ctx context.Context, userID int64, from, to *time.Time, limit, page int) (*HistoryPage, error) {
	const op = "service.shift.History"

	if limit <= 0 {
		limit = 10
	}
	if page <= 0 {
		page = 1
	}

	shifts, total, err := s.storage.GetShifts(ctx, userID, from, to, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &HistoryPage{
		Shifts: shifts,
		Total:  total,
		Page:   page,
		Limit:  limit,
		Pages:  (total + limit - 1) / limit,
	}, nil
}
