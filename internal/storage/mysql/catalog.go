package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ev-assembly/internal/storage"
)

func (s *Storage) GetOperationDetails(ctx context.Context, id int64) (*storage.OperationDetails, error) {
	const op = "storage.mysql.catalog.GetOperationDetails"

	stmt := `
		SELECT o.id, o.process_id, o.name, o.code, o.difficulty, o.allow_teamwork, o.max_workers,
		       o.standard_quantity, o.standard_minutes, o.working_minutes_per_shift, o.active,
		       p.name, p.code, p.sort_order, p.vehicle_type_id
		FROM operations o
		JOIN processes p ON p.id = o.process_id
		WHERE o.id = ? AND o.active = 1
	`

	var det storage.OperationDetails
	err := s.db.QueryRowContext(ctx, stmt, id).Scan(
		&det.ID, &det.ProcessID, &det.Name, &det.Code, &det.Difficulty, &det.AllowTeamwork, &det.MaxWorkers,
		&det.StandardQuantity, &det.StandardMinutes, &det.WorkingMinutesPerShift, &det.Active,
		&det.ProcessName, &det.ProcessCode, &det.ProcessOrder, &det.VehicleTypeID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &det, nil
}

func (s *Storage) GetActiveProcesses(ctx context.Context, vehicleTypeID int64) ([]storage.Process, error) {
	const op = "storage.mysql.catalog.GetActiveProcesses"

	stmt := `
		SELECT id, vehicle_type_id, name, code, sort_order, active
		FROM processes
		WHERE vehicle_type_id = ? AND active = 1
		ORDER BY sort_order
	`

	rows, err := s.db.QueryContext(ctx, stmt, vehicleTypeID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var processes []storage.Process
	for rows.Next() {
		var p storage.Process
		if err := rows.Scan(&p.ID, &p.VehicleTypeID, &p.Name, &p.Code, &p.SortOrder, &p.Active); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		processes = append(processes, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return processes, nil
}

func (s *Storage) GetActiveOperations(ctx context.Context, vehicleTypeID int64) ([]storage.OperationDetails, error) {
	const op = "storage.mysql.catalog.GetActiveOperations"

	stmt := `
		SELECT o.id, o.process_id, o.name, o.code, o.difficulty, o.allow_teamwork, o.max_workers,
		       o.standard_quantity, o.standard_minutes, o.working_minutes_per_shift, o.active,
		       p.name, p.code, p.sort_order, p.vehicle_type_id
		FROM operations o
		JOIN processes p ON p.id = o.process_id
		WHERE p.vehicle_type_id = ? AND p.active = 1 AND o.active = 1
		ORDER BY p.sort_order, o.code
	`

	rows, err := s.db.QueryContext(ctx, stmt, vehicleTypeID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var operations []storage.OperationDetails
	for rows.Next() {
		var det storage.OperationDetails
		err := rows.Scan(
			&det.ID, &det.ProcessID, &det.Name, &det.Code, &det.Difficulty, &det.AllowTeamwork, &det.MaxWorkers,
			&det.StandardQuantity, &det.StandardMinutes, &det.WorkingMinutesPerShift, &det.Active,
			&det.ProcessName, &det.ProcessCode, &det.ProcessOrder, &det.VehicleTypeID,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		operations = append(operations, det)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return operations, nil
}

// GetStandard returns nil without an error when no piece-rate standard
// exists for the pair: registering against an operation without a
// standard is allowed, the expected quantity then seeds to zero.
func (s *Storage) GetStandard(ctx context.Context, vehicleTypeID, operationID int64) (*storage.ProductionStandard, error) {
	const op = "storage.mysql.catalog.GetStandard"

	stmt := `
		SELECT id, vehicle_type_id, operation_id, expected_quantity, bonus_per_unit, penalty_per_unit
		FROM production_standards
		WHERE vehicle_type_id = ? AND operation_id = ?
	`

	var std storage.ProductionStandard
	err := s.db.QueryRowContext(ctx, stmt, vehicleTypeID, operationID).Scan(
		&std.ID, &std.VehicleTypeID, &std.OperationID,
		&std.ExpectedQuantity, &std.BonusPerUnit, &std.PenaltyPerUnit,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &std, nil
}

func (s *Storage) GetVehicleType(ctx context.Context, id int64) (*storage.VehicleType, error) {
	const op = "storage.mysql.catalog.GetVehicleType"

	stmt := `SELECT id, name, code, active FROM vehicle_types WHERE id = ? AND active = 1`

	var vt storage.VehicleType
	err := s.db.QueryRowContext(ctx, stmt, id).Scan(&vt.ID, &vt.Name, &vt.Code, &vt.Active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &vt, nil
}

func (s *Storage) GetUserByCode(ctx context.Context, code string) (*storage.User, error) {
	const op = "storage.mysql.catalog.GetUserByCode"

	stmt := `SELECT id, name, code, role, department FROM users WHERE code = ?`

	var u storage.User
	err := s.db.QueryRowContext(ctx, stmt, code).Scan(&u.ID, &u.Name, &u.Code, &u.Role, &u.Department)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &u, nil
}

// RegisteredWorkersToday lists who holds a live registration per operation
// today, for the registration board.
func (s *Storage) RegisteredWorkersToday(ctx context.Context, orderID int64, day time.Time) (map[int64][]storage.RegisteredWorker, error) {
	const op = "storage.mysql.catalog.RegisteredWorkersToday"

	start, end := storage.DayRange(day)

	stmt := `
		SELECT r.operation_id, u.id, u.name, u.code
		FROM daily_registrations r
		JOIN users u ON u.id = r.user_id
		WHERE r.production_order_id = ? AND r.date >= ? AND r.date < ? AND r.status <> ?
	`

	rows, err := s.db.QueryContext(ctx, stmt, orderID, start, end, storage.RegistrationReassigned)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	byOperation := make(map[int64][]storage.RegisteredWorker)
	for rows.Next() {
		var operationID int64
		var w storage.RegisteredWorker
		if err := rows.Scan(&operationID, &w.UserID, &w.Name, &w.Code); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		byOperation[operationID] = append(byOperation[operationID], w)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return byOperation, nil
}
