package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ev-assembly/internal/storage"
)

// FindActiveShift returns nil without an error when the worker has no
// active shift for the day.
func (s *Storage) FindActiveShift(ctx context.Context, userID int64, day time.Time) (*storage.Shift, error) {
	const op = "storage.mysql.shift.FindActiveShift"

	start, end := storage.DayRange(day)

	stmt := `
		SELECT id, user_id, date, start_time, end_time, total_working_minutes, status
		FROM shifts
		WHERE user_id = ? AND date >= ? AND date < ? AND status = ?
	`

	var sh storage.Shift
	err := s.db.QueryRowContext(ctx, stmt, userID, start, end, storage.ShiftActive).Scan(
		&sh.ID, &sh.UserID, &sh.Date, &sh.StartTime, &sh.EndTime, &sh.TotalWorkingMinutes, &sh.Status,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &sh, nil
}

func (s *Storage) CreateShift(ctx context.Context, sh storage.Shift) (int64, error) {
	const op = "storage.mysql.shift.CreateShift"

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO shifts (user_id, date, start_time, status)
		VALUES (?, ?, ?, ?)
	`, sh.UserID, sh.Date, sh.StartTime, sh.Status)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return res.LastInsertId()
}

func (s *Storage) EndShift(ctx context.Context, id int64, endTime time.Time, totalMinutes int) error {
	const op = "storage.mysql.shift.EndShift"

	res, err := s.db.ExecContext(ctx, `
		UPDATE shifts SET end_time = ?, total_working_minutes = ?, status = ?
		WHERE id = ?
	`, endTime, totalMinutes, storage.ShiftCompleted, id)
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

func (s *Storage) GetShifts(ctx context.Context, userID int64, from, to *time.Time, limit, offset int) ([]storage.Shift, int, error) {
	const op = "storage.mysql.shift.GetShifts"

	where := " WHERE user_id = ?"
	args := []interface{}{userID}

	if from != nil {
		where += " AND date >= ?"
		args = append(args, *from)
	}
	if to != nil {
		where += " AND date <= ?"
		args = append(args, *to)
	}

	var total int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM shifts"+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: count: %w", op, err)
	}

	stmt := `
		SELECT id, user_id, date, start_time, end_time, total_working_minutes, status
		FROM shifts` + where + `
		ORDER BY date DESC
		LIMIT ? OFFSET ?
	`
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var shifts []storage.Shift
	for rows.Next() {
		var sh storage.Shift
		if err := rows.Scan(&sh.ID, &sh.UserID, &sh.Date, &sh.StartTime, &sh.EndTime, &sh.TotalWorkingMinutes, &sh.Status); err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		shifts = append(shifts, sh)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	return shifts, total, nil
}
