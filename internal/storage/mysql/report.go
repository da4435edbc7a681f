package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ev-assembly/internal/storage"
)

const dailyReportColumns = `
	u.id, u.name, u.code, u.department,
	COALESCE(SUM(r.working_minutes), 0),
	COALESCE(SUM(r.actual_quantity * o.standard_minutes), 0),
	COALESCE(SUM(r.actual_quantity), 0),
	COALESCE(SUM(r.bonus_amount), 0),
	COALESCE(SUM(r.penalty_amount), 0)
`

func scanDailyReport(row interface{ Scan(...any) error }, day time.Time) (*storage.DailyReport, error) {
	var rep storage.DailyReport
	var standardMinutes float64

	err := row.Scan(
		&rep.UserID, &rep.UserName, &rep.UserCode, &rep.Department,
		&rep.TotalWorkingMinutes, &standardMinutes, &rep.TotalQuantity,
		&rep.TotalBonus, &rep.TotalPenalty,
	)
	if err != nil {
		return nil, err
	}

	rep.TotalStandardMinutes = int(standardMinutes)
	rep.Date = day

	return &rep, nil
}

// GetDailyReport aggregates one worker's completed registrations for the
// day. Returns ErrNotFound when the worker completed nothing that day.
func (s *Storage) GetDailyReport(ctx context.Context, userID int64, day time.Time) (*storage.DailyReport, error) {
	const op = "storage.mysql.report.GetDailyReport"

	start, end := storage.DayRange(day)

	stmt := `
		SELECT ` + dailyReportColumns + `
		FROM daily_registrations r
		JOIN users u ON u.id = r.user_id
		JOIN operations o ON o.id = r.operation_id
		WHERE r.user_id = ? AND r.date >= ? AND r.date < ? AND r.status = ?
		GROUP BY u.id, u.name, u.code, u.department
	`

	rep, err := scanDailyReport(
		s.db.QueryRowContext(ctx, stmt, userID, start, end, storage.RegistrationCompleted), start)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return rep, nil
}

// GetDailyWorkerReports aggregates all workers who completed
// registrations on the given day.
func (s *Storage) GetDailyWorkerReports(ctx context.Context, day time.Time) ([]*storage.DailyReport, error) {
	const op = "storage.mysql.report.GetDailyWorkerReports"

	start, end := storage.DayRange(day)

	stmt := `
		SELECT ` + dailyReportColumns + `
		FROM daily_registrations r
		JOIN users u ON u.id = r.user_id
		JOIN operations o ON o.id = r.operation_id
		WHERE r.date >= ? AND r.date < ? AND r.status = ?
		GROUP BY u.id, u.name, u.code, u.department
		ORDER BY u.code
	`

	rows, err := s.db.QueryContext(ctx, stmt, start, end, storage.RegistrationCompleted)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var reports []*storage.DailyReport
	for rows.Next() {
		rep, err := scanDailyReport(rows, start)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		reports = append(reports, rep)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return reports, nil
}
