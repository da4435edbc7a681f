package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ev-assembly/internal/storage"
)

const orderColumns = `
	o.id, o.order_code, o.vehicle_type_id, vt.name, vt.code, o.quantity,
	o.frame_numbers, o.engine_numbers, o.status, o.start_date, o.expected_end_date,
	o.actual_end_date, o.note, o.created_by, u.name, o.created_at
`

func scanOrder(row interface{ Scan(...any) error }) (*storage.ProductionOrder, error) {
	var o storage.ProductionOrder
	var frames, engines []byte
	var note sql.NullString

	err := row.Scan(
		&o.ID, &o.OrderCode, &o.VehicleTypeID, &o.VehicleTypeName, &o.VehicleTypeCode, &o.Quantity,
		&frames, &engines, &o.Status, &o.StartDate, &o.ExpectedEndDate,
		&o.ActualEndDate, &note, &o.CreatedBy, &o.CreatedByName, &o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if note.Valid {
		o.Note = note.String
	}
	if len(frames) > 0 {
		if err := json.Unmarshal(frames, &o.FrameNumbers); err != nil {
			return nil, fmt.Errorf("frame_numbers: %w", err)
		}
	}
	if len(engines) > 0 {
		if err := json.Unmarshal(engines, &o.EngineNumbers); err != nil {
			return nil, fmt.Errorf("engine_numbers: %w", err)
		}
	}

	return &o, nil
}

func (s *Storage) GetOrders(ctx context.Context, status string, vehicleTypeID int64) ([]*storage.ProductionOrder, error) {
	const op = "storage.mysql.order.GetOrders"

	stmt := `
		SELECT ` + orderColumns + `
		FROM production_orders o
		JOIN vehicle_types vt ON vt.id = o.vehicle_type_id
		JOIN users u ON u.id = o.created_by
		WHERE 1=1
	`
	var args []interface{}

	if status != "" {
		stmt += " AND o.status = ?"
		args = append(args, status)
	}
	if vehicleTypeID != 0 {
		stmt += " AND o.vehicle_type_id = ?"
		args = append(args, vehicleTypeID)
	}
	stmt += " ORDER BY o.created_at DESC"

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var orders []*storage.ProductionOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		orders = append(orders, o)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return orders, nil
}

func (s *Storage) GetOrder(ctx context.Context, id int64) (*storage.ProductionOrder, error) {
	const op = "storage.mysql.order.GetOrder"

	stmt := `
		SELECT ` + orderColumns + `
		FROM production_orders o
		JOIN vehicle_types vt ON vt.id = o.vehicle_type_id
		JOIN users u ON u.id = o.created_by
		WHERE o.id = ?
	`

	o, err := scanOrder(s.db.QueryRowContext(ctx, stmt, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return o, nil
}

func (s *Storage) GetActiveOrder(ctx context.Context) (*storage.ProductionOrder, error) {
	const op = "storage.mysql.order.GetActiveOrder"

	stmt := `
		SELECT ` + orderColumns + `
		FROM production_orders o
		JOIN vehicle_types vt ON vt.id = o.vehicle_type_id
		JOIN users u ON u.id = o.created_by
		WHERE o.status = ?
	`

	o, err := scanOrder(s.db.QueryRowContext(ctx, stmt, storage.OrderInProgress))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNoActiveOrder
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return o, nil
}

// CreateOrder generates the LSX-{year}-{seq} code from the per-year row
// count inside the same transaction as the insert. The unique index on
// order_code catches the rare concurrent collision.
func (s *Storage) CreateOrder(ctx context.Context, no storage.NewOrder) (int64, string, error) {
	const op = "storage.mysql.order.CreateOrder"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, "", fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	year := time.Now().Year()
	yearStart := time.Date(year, time.January, 1, 0, 0, 0, 0, time.Local)

	var count int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM production_orders WHERE created_at >= ?`, yearStart,
	).Scan(&count)
	if err != nil {
		return 0, "", fmt.Errorf("%s: count orders: %w", op, err)
	}

	orderCode := fmt.Sprintf("LSX-%d-%03d", year, count+1)

	frames, err := json.Marshal(no.FrameNumbers)
	if err != nil {
		return 0, "", fmt.Errorf("%s: %w", op, err)
	}
	engines, err := json.Marshal(no.EngineNumbers)
	if err != nil {
		return 0, "", fmt.Errorf("%s: %w", op, err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO production_orders
			(order_code, vehicle_type_id, quantity, frame_numbers, engine_numbers,
			 status, start_date, expected_end_date, note, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NOW())
	`, orderCode, no.VehicleTypeID, no.Quantity, frames, engines,
		storage.OrderPending, no.StartDate, no.ExpectedEndDate, no.Note, no.CreatedBy)
	if err != nil {
		return 0, "", fmt.Errorf("%s: insert: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, "", fmt.Errorf("%s: commit: %w", op, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, "", fmt.Errorf("%s: %w", op, err)
	}

	return id, orderCode, nil
}

func (s *Storage) UpdateOrder(ctx context.Context, id int64, upd storage.OrderUpdate) error {
	const op = "storage.mysql.order.UpdateOrder"

	stmt := "UPDATE production_orders SET id = id"
	var args []interface{}

	if upd.Quantity != nil {
		stmt += ", quantity = ?"
		args = append(args, *upd.Quantity)
	}
	if upd.FrameNumbers != nil {
		frames, err := json.Marshal(upd.FrameNumbers)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		stmt += ", frame_numbers = ?"
		args = append(args, frames)
	}
	if upd.EngineNumbers != nil {
		engines, err := json.Marshal(upd.EngineNumbers)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		stmt += ", engine_numbers = ?"
		args = append(args, engines)
	}
	if upd.StartDate != nil {
		stmt += ", start_date = ?"
		args = append(args, *upd.StartDate)
	}
	if upd.ExpectedEndDate != nil {
		stmt += ", expected_end_date = ?"
		args = append(args, *upd.ExpectedEndDate)
	}
	if upd.Note != nil {
		stmt += ", note = ?"
		args = append(args, *upd.Note)
	}

	stmt += " WHERE id = ?"
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

// UpdateOrderStatus enforces the single-active-order invariant inside a
// transaction: the in-progress row is locked before the switch, so two
// concurrent activations cannot both pass the guard.
func (s *Storage) UpdateOrderStatus(ctx context.Context, id int64, status string) error {
	const op = "storage.mysql.order.UpdateOrderStatus"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	if status == storage.OrderInProgress {
		var existing int64
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM production_orders WHERE status = ? AND id <> ? FOR UPDATE`,
			storage.OrderInProgress, id,
		).Scan(&existing)
		if err == nil {
			return storage.ErrActiveOrderExists
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%s: check active: %w", op, err)
		}
	}

	stmt := `UPDATE production_orders SET status = ?`
	args := []interface{}{status}
	if status == storage.OrderCompleted {
		stmt += `, actual_end_date = NOW()`
	}
	stmt += ` WHERE id = ?`
	args = append(args, id)

	res, err := tx.ExecContext(ctx, stmt, args...)
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

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}

	return nil
}

func (s *Storage) DeleteOrder(ctx context.Context, id int64) error {
	const op = "storage.mysql.order.DeleteOrder"

	var status string
	err := s.db.QueryRowContext(ctx, `SELECT status FROM production_orders WHERE id = ?`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if status == storage.OrderInProgress {
		return storage.ErrOrderInProgress
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM production_orders WHERE id = ?`, id)
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

func (s *Storage) AddCompletionCheck(ctx context.Context, check storage.CompletionCheck) error {
	const op = "storage.mysql.order.AddCompletionCheck"

	incomplete, err := json.Marshal(check.Incomplete)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO order_completion_checks (order_id, checked_at, checked_by, can_complete, incomplete_processes)
		VALUES (?, ?, ?, ?, ?)
	`, check.OrderID, check.CheckedAt, check.CheckedBy, check.CanComplete, incomplete)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) GetCompletionChecks(ctx context.Context, orderID int64) ([]storage.CompletionCheck, error) {
	const op = "storage.mysql.order.GetCompletionChecks"

	stmt := `
		SELECT id, order_id, checked_at, checked_by, can_complete, incomplete_processes
		FROM order_completion_checks
		WHERE order_id = ?
		ORDER BY checked_at
	`

	rows, err := s.db.QueryContext(ctx, stmt, orderID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var checks []storage.CompletionCheck
	for rows.Next() {
		var c storage.CompletionCheck
		var incomplete []byte
		if err := rows.Scan(&c.ID, &c.OrderID, &c.CheckedAt, &c.CheckedBy, &c.CanComplete, &incomplete); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if len(incomplete) > 0 {
			if err := json.Unmarshal(incomplete, &c.Incomplete); err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
		}
		checks = append(checks, c)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return checks, nil
}
