package registration

import (
	"context"
	"fmt"
	"time"

	"ev-assembly/internal/storage"
)

type Storage interface {
	GetActiveOrder(ctx context.Context) (*storage.ProductionOrder, error)
	GetOrder(ctx context.Context, id int64) (*storage.ProductionOrder, error)
	GetOperationDetails(ctx context.Context, id int64) (*storage.OperationDetails, error)
	GetStandard(ctx context.Context, vehicleTypeID, operationID int64) (*storage.ProductionStandard, error)
	CountOperationRegistrations(ctx context.Context, operationID int64, day time.Time) (int, error)
	UserHasRegistration(ctx context.Context, userID, operationID, orderID int64, day time.Time) (bool, error)
	CreateRegistration(ctx context.Context, r storage.DailyRegistration, maxWorkers int) (int64, error)
	GetRegistration(ctx context.Context, id int64) (*storage.DailyRegistration, error)
	CompleteRegistration(ctx context.Context, id int64, c storage.RegistrationCompletion) error
	AdjustRegistration(ctx context.Context, id int64, a storage.RegistrationAdjustment) error
	DeleteRegistration(ctx context.Context, id int64) error
}

// ShiftProvider resolves the worker's active shift for today, creating
// one when needed.
type ShiftProvider interface {
	EnsureActive(ctx context.Context, userID int64) (*storage.Shift, error)
}

type Service struct {
	storage Storage
	shifts  ShiftProvider
	now     func() time.Time
}

func New(storage Storage, shifts ShiftProvider) *Service {
	return &Service{storage: storage, shifts: shifts, now: time.Now}
}

// Create registers the worker on an operation under the active order.
func (s *Service) Create(ctx context.Context, userID, operationID int64) (*storage.DailyRegistration, error) {
	const op = "service.registration.Create"

	order, err := s.storage.GetActiveOrder(ctx)
	if err != nil {
		return nil, err
	}

	operation, err := s.storage.GetOperationDetails(ctx, operationID)
	if err != nil {
		return nil, err
	}

	if operation.VehicleTypeID != order.VehicleTypeID {
		return nil, storage.ErrOperationMismatch
	}

	now := s.now()

	// capacity before duplicate, so a re-register on a full operation
	// reads as full; the insert transaction rechecks under the row lock
	if operation.MaxWorkers > 0 {
		taken, err := s.storage.CountOperationRegistrations(ctx, operationID, now)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if taken >= operation.MaxWorkers {
			return nil, storage.ErrOperationFull
		}
	}

	exists, err := s.storage.UserHasRegistration(ctx, userID, operationID, order.ID, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if exists {
		return nil, storage.ErrDuplicate
	}

	shift, err := s.shifts.EnsureActive(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	standard, err := s.storage.GetStandard(ctx, order.VehicleTypeID, operationID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	expectedQuantity := 0
	if standard != nil {
		expectedQuantity = standard.ExpectedQuantity
	}

	reg := storage.DailyRegistration{
		UserID:            userID,
		ShiftID:           shift.ID,
		ProductionOrderID: order.ID,
		OperationID:       operationID,
		Date:              now,
		RegisteredAt:      now,
		Status:            storage.RegistrationRegistered,
		ExpectedQuantity:  expectedQuantity,
	}

	// capacity is rechecked inside the insert transaction
	id, err := s.storage.CreateRegistration(ctx, reg, operation.MaxWorkers)
	if err != nil {
		return nil, err
	}

	return s.storage.GetRegistration(ctx, id)
}

// Complete records the actual quantity and derives deviation, bonus and
// penalty from the piece-rate standard. Only the owning worker may
// complete, and only once.
func (s *Service) Complete(ctx context.Context, userID, regID int64, actualQuantity, interruptionMinutes int, interruptionNote string) (*storage.DailyRegistration, error) {
	const op = "service.registration.Complete"

	reg, err := s.storage.GetRegistration(ctx, regID)
	if err != nil {
		return nil, err
	}

	if reg.UserID != userID {
		return nil, storage.ErrForbidden
	}
	if reg.Status == storage.RegistrationCompleted {
		return nil, storage.ErrAlreadyCompleted
	}

	standard, err := s.lookupStandard(ctx, reg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	deviation, bonus, penalty := outcome(actualQuantity, reg.EffectiveExpected(), standard)

	now := s.now()
	startTime := reg.RegisteredAt
	if reg.CheckInTime != nil {
		startTime = *reg.CheckInTime
	}

	workingMinutes := roundMinutes(now.Sub(startTime)) - interruptionMinutes
	if workingMinutes < 0 {
		workingMinutes = 0
	}

	completion := storage.RegistrationCompletion{
		ActualQuantity:      actualQuantity,
		Deviation:           deviation,
		BonusAmount:         bonus,
		PenaltyAmount:       penalty,
		InterruptionMinutes: interruptionMinutes,
		InterruptionNote:    interruptionNote,
		WorkingMinutes:      workingMinutes,
		CheckOutTime:        now,
	}

	if err := s.storage.CompleteRegistration(ctx, regID, completion); err != nil {
		return nil, err
	}

	return s.storage.GetRegistration(ctx, regID)
}

// Adjust lets a supervisor override the expected quantity. When the
// registration is already completed, deviation and bonus/penalty are
// recomputed against the existing actual quantity right away.
func (s *Service) Adjust(ctx context.Context, adminID, regID int64, adjustedExpectedQty int, note string) (*storage.DailyRegistration, error) {
	const op = "service.registration.Adjust"

	reg, err := s.storage.GetRegistration(ctx, regID)
	if err != nil {
		return nil, err
	}

	adjustment := storage.RegistrationAdjustment{
		AdjustedExpectedQty: adjustedExpectedQty,
		AdjustmentNote:      note,
		AdjustedBy:          adminID,
	}

	if reg.Status == storage.RegistrationCompleted && reg.ActualQuantity != nil {
		standard, err := s.lookupStandard(ctx, reg)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		deviation, bonus, penalty := outcome(*reg.ActualQuantity, adjustedExpectedQty, standard)
		adjustment.Recompute = true
		adjustment.Deviation = deviation
		adjustment.BonusAmount = bonus
		adjustment.PenaltyAmount = penalty
	}

	if err := s.storage.AdjustRegistration(ctx, regID, adjustment); err != nil {
		return nil, err
	}

	return s.storage.GetRegistration(ctx, regID)
}

type ReassignRequest struct {
	UserID            int64
	OperationID       int64
	ExpectedQuantity  *int
	ReplacesUserID    *int64
	ReplacementReason string
	AssignedBy        int64
}

// Reassign is a supervisor-created registration for another worker. It
// bypasses the capacity and duplicate self-checks, used to backfill
// absent workers.
func (s *Service) Reassign(ctx context.Context, req ReassignRequest) (*storage.DailyRegistration, error) {
	const op = "service.registration.Reassign"

	order, err := s.storage.GetActiveOrder(ctx)
	if err != nil {
		return nil, err
	}

	shift, err := s.shifts.EnsureActive(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	expectedQuantity := 0
	if req.ExpectedQuantity != nil {
		expectedQuantity = *req.ExpectedQuantity
	} else {
		standard, err := s.storage.GetStandard(ctx, order.VehicleTypeID, req.OperationID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if standard != nil {
			expectedQuantity = standard.ExpectedQuantity
		}
	}

	now := s.now()

	reg := storage.DailyRegistration{
		UserID:            req.UserID,
		ShiftID:           shift.ID,
		ProductionOrderID: order.ID,
		OperationID:       req.OperationID,
		Date:              now,
		RegisteredAt:      now,
		Status:            storage.RegistrationRegistered,
		ExpectedQuantity:  expectedQuantity,
		CheckInTime:       &now,
		IsReplacement:     req.ReplacesUserID != nil,
		ReplacesUserID:    req.ReplacesUserID,
		ReplacementReason: req.ReplacementReason,
		AdjustmentNote:    "assigned by supervisor",
	}

	id, err := s.storage.CreateRegistration(ctx, reg, 0)
	if err != nil {
		return nil, err
	}

	return s.storage.GetRegistration(ctx, id)
}

// Remove deletes a registration; the owning worker or an admin may do
// it, but never after completion.
func (s *Service) Remove(ctx context.Context, user *storage.User, regID int64) error {
	reg, err := s.storage.GetRegistration(ctx, regID)
	if err != nil {
		return err
	}

	if reg.UserID != user.ID && !user.IsAdmin() {
		return storage.ErrForbidden
	}
	if reg.Status == storage.RegistrationCompleted {
		return storage.ErrAlreadyCompleted
	}

	return s.storage.DeleteRegistration(ctx, regID)
}

// lookupStandard resolves the piece-rate standard through the order's
// vehicle type, the same pair used when the registration was created.
func (s *Service) lookupStandard(ctx context.Context, reg *storage.DailyRegistration) (*storage.ProductionStandard, error) {
	order, err := s.storage.GetOrder(ctx, reg.ProductionOrderID)
	if err != nil {
		return nil, err
	}

	return s.storage.GetStandard(ctx, order.VehicleTypeID, reg.OperationID)
}

func roundMinutes(d time.Duration) int {
	return int((d + 30*time.Second) / time.Minute)
}
