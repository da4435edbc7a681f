package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ev-assembly/internal/storage"
)

const registrationColumns = `
	r.id, r.user_id, r.shift_id, r.production_order_id, r.operation_id,
	r.date, r.registered_at, r.status,
	r.expected_quantity, r.adjusted_expected_qty, r.actual_quantity, r.deviation,
	r.bonus_amount, r.penalty_amount,
	r.interruption_minutes, r.interruption_note, r.working_minutes,
	r.check_in_time, r.check_out_time,
	r.adjusted_by, r.adjustment_note,
	r.is_replacement, r.replaces_user_id, r.replacement_reason,
	u.name, u.code, o.name, o.code, po.order_code, o.process_id
`

const registrationJoins = `
	FROM daily_registrations r
	JOIN users u ON u.id = r.user_id
	JOIN operations o ON o.id = r.operation_id
	JOIN production_orders po ON po.id = r.production_order_id
`

func scanRegistration(row interface{ Scan(...any) error }) (*storage.DailyRegistration, error) {
	var r storage.DailyRegistration
	var interruptionNote, adjustmentNote, replacementReason sql.NullString

	err := row.Scan(
		&r.ID, &r.UserID, &r.ShiftID, &r.ProductionOrderID, &r.OperationID,
		&r.Date, &r.RegisteredAt, &r.Status,
		&r.ExpectedQuantity, &r.AdjustedExpectedQty, &r.ActualQuantity, &r.Deviation,
		&r.BonusAmount, &r.PenaltyAmount,
		&r.InterruptionMinutes, &interruptionNote, &r.WorkingMinutes,
		&r.CheckInTime, &r.CheckOutTime,
		&r.AdjustedBy, &adjustmentNote,
		&r.IsReplacement, &r.ReplacesUserID, &replacementReason,
		&r.UserName, &r.UserCode, &r.OperationName, &r.OperationCode, &r.OrderCode, &r.ProcessID,
	)
	if err != nil {
		return nil, err
	}

	r.InterruptionNote = interruptionNote.String
	r.AdjustmentNote = adjustmentNote.String
	r.ReplacementReason = replacementReason.String

	return &r, nil
}

func (s *Storage) GetRegistration(ctx context.Context, id int64) (*storage.DailyRegistration, error) {
	const op = "storage.mysql.registration.GetRegistration"

	stmt := `SELECT ` + registrationColumns + registrationJoins + ` WHERE r.id = ?`

	r, err := scanRegistration(s.db.QueryRowContext(ctx, stmt, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return r, nil
}

// UserHasRegistration reports whether the worker already holds a
// non-reassigned registration for this operation and order today.
func (s *Storage) UserHasRegistration(ctx context.Context, userID, operationID, orderID int64, day time.Time) (bool, error) {
	const op = "storage.mysql.registration.UserHasRegistration"

	start, end := storage.DayRange(day)

	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM daily_registrations
		WHERE user_id = ? AND operation_id = ? AND production_order_id = ?
		  AND date >= ? AND date < ? AND status <> ?
	`, userID, operationID, orderID, start, end, storage.RegistrationReassigned).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return count > 0, nil
}

// CountOperationRegistrations counts the day's non-reassigned
// registrations on the operation.
func (s *Storage) CountOperationRegistrations(ctx context.Context, operationID int64, day time.Time) (int, error) {
	const op = "storage.mysql.registration.CountOperationRegistrations"

	start, end := storage.DayRange(day)

	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM daily_registrations
		WHERE operation_id = ? AND date >= ? AND date < ? AND status <> ?
	`, operationID, start, end, storage.RegistrationReassigned).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return count, nil
}

// CreateRegistration inserts a registration. With maxWorkers > 0 the
// per-operation capacity is rechecked inside the transaction with the
// day's rows locked, which closes the check-then-insert race on the last
// free slot. maxWorkers <= 0 skips the guard (supervisor reassignment).
func (s *Storage) CreateRegistration(ctx context.Context, r storage.DailyRegistration, maxWorkers int) (int64, error) {
	const op = "storage.mysql.registration.CreateRegistration"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	if maxWorkers > 0 {
		start, end := storage.DayRange(r.Date)

		var count int
		err := tx.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM daily_registrations
			WHERE operation_id = ? AND date >= ? AND date < ? AND status <> ?
			FOR UPDATE
		`, r.OperationID, start, end, storage.RegistrationReassigned).Scan(&count)
		if err != nil {
			return 0, fmt.Errorf("%s: count: %w", op, err)
		}

		if count >= maxWorkers {
			return 0, storage.ErrOperationFull
		}
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO daily_registrations
			(user_id, shift_id, production_order_id, operation_id, date, registered_at, status,
			 expected_quantity, check_in_time, is_replacement, replaces_user_id, replacement_reason, adjustment_note)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.UserID, r.ShiftID, r.ProductionOrderID, r.OperationID, r.Date, r.RegisteredAt, r.Status,
		r.ExpectedQuantity, r.CheckInTime, r.IsReplacement, r.ReplacesUserID, r.ReplacementReason, r.AdjustmentNote)
	if err != nil {
		return 0, fmt.Errorf("%s: insert: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: commit: %w", op, err)
	}

	return res.LastInsertId()
}

func (s *Storage) CompleteRegistration(ctx context.Context, id int64, c storage.RegistrationCompletion) error {
	const op = "storage.mysql.registration.CompleteRegistration"

	res, err := s.db.ExecContext(ctx, `
		UPDATE daily_registrations
		SET status = ?, actual_quantity = ?, deviation = ?, bonus_amount = ?, penalty_amount = ?,
		    interruption_minutes = ?, interruption_note = ?, working_minutes = ?, check_out_time = ?
		WHERE id = ?
	`, storage.RegistrationCompleted, c.ActualQuantity, c.Deviation, c.BonusAmount, c.PenaltyAmount,
		c.InterruptionMinutes, c.InterruptionNote, c.WorkingMinutes, c.CheckOutTime, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}

	return nil
}

func (s *Storage) AdjustRegistration(ctx context.Context, id int64, a storage.RegistrationAdjustment) error {
	const op = "storage.mysql.registration.AdjustRegistration"

	stmt := `
		UPDATE daily_registrations
		SET adjusted_expected_qty = ?, adjustment_note = ?, adjusted_by = ?
	`
	args := []interface{}{a.AdjustedExpectedQty, a.AdjustmentNote, a.AdjustedBy}

	if a.Recompute {
		stmt += `, deviation = ?, bonus_amount = ?, penalty_amount = ?`
		args = append(args, a.Deviation, a.BonusAmount, a.PenaltyAmount)
	}

	stmt += ` WHERE id = ?`
	args = append(args, id)

	res, err := s.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}

	return nil
}

func (s *Storage) DeleteRegistration(ctx context.Context, id int64) error {
	const op = "storage.mysql.registration.DeleteRegistration"

	res, err := s.db.ExecContext(ctx, `DELETE FROM daily_registrations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}

	return nil
}

func (s *Storage) GetUserRegistrations(ctx context.Context, userID int64, day time.Time) ([]*storage.DailyRegistration, error) {
	const op = "storage.mysql.registration.GetUserRegistrations"

	start, end := storage.DayRange(day)

	stmt := `SELECT ` + registrationColumns + registrationJoins + `
		WHERE r.user_id = ? AND r.date >= ? AND r.date < ?
		ORDER BY r.registered_at
	`

	rows, err := s.db.QueryContext(ctx, stmt, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var regs []*storage.DailyRegistration
	for rows.Next() {
		r, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		regs = append(regs, r)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return regs, nil
}

func (s *Storage) GetRegistrations(ctx context.Context, filter storage.RegistrationFilter) ([]*storage.DailyRegistration, error) {
	const op = "storage.mysql.registration.GetRegistrations"

	stmt := `SELECT ` + registrationColumns + registrationJoins + ` WHERE 1=1`
	var args []interface{}

	if filter.Date != nil {
		start, end := storage.DayRange(*filter.Date)
		stmt += " AND r.date >= ? AND r.date < ?"
		args = append(args, start, end)
	}
	if filter.ProductionOrderID != 0 {
		stmt += " AND r.production_order_id = ?"
		args = append(args, filter.ProductionOrderID)
	}
	if filter.Status != "" {
		stmt += " AND r.status = ?"
		args = append(args, filter.Status)
	}
	stmt += " ORDER BY r.registered_at DESC"

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var regs []*storage.DailyRegistration
	for rows.Next() {
		r, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		regs = append(regs, r)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return regs, nil
}

// GetOrderRegistrations returns every registration of the order with the
// operation's parent process resolved, ordered by date.
func (s *Storage) GetOrderRegistrations(ctx context.Context, orderID int64) ([]*storage.DailyRegistration, error) {
	const op = "storage.mysql.registration.GetOrderRegistrations"

	stmt := `SELECT ` + registrationColumns + registrationJoins + `
		WHERE r.production_order_id = ?
		ORDER BY r.date, r.registered_at
	`

	rows, err := s.db.QueryContext(ctx, stmt, orderID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var regs []*storage.DailyRegistration
	for rows.Next() {
		r, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		regs = append(regs, r)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return regs, nil
}

// SumCompletedByProcess sums actual quantity of completed registrations
// per process for completion checks.
func (s *Storage) SumCompletedByProcess(ctx context.Context, orderID int64) (map[int64]int, error) {
	const op = "storage.mysql.registration.SumCompletedByProcess"

	stmt := `
		SELECT o.process_id, COALESCE(SUM(r.actual_quantity), 0)
		FROM daily_registrations r
		JOIN operations o ON o.id = r.operation_id
		WHERE r.production_order_id = ? AND r.status = ?
		GROUP BY o.process_id
	`

	rows, err := s.db.QueryContext(ctx, stmt, orderID, storage.RegistrationCompleted)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	sums := make(map[int64]int)
	for rows.Next() {
		var processID int64
		var total int
		if err := rows.Scan(&processID, &total); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		sums[processID] = total
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return sums, nil
}
