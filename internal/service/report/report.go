package report

import (
	"context"
	"fmt"
	"math"
	"time"

	"ev-assembly/internal/storage"
)

type Storage interface {
	GetDailyReport(ctx context.Context, userID int64, day time.Time) (*storage.DailyReport, error)
	GetDailyWorkerReports(ctx context.Context, day time.Time) ([]*storage.DailyReport, error)
	GetOrder(ctx context.Context, id int64) (*storage.ProductionOrder, error)
	GetOrderRegistrations(ctx context.Context, orderID int64) ([]*storage.DailyRegistration, error)
}

type Service struct {
	storage Storage
}

func New(storage Storage) *Service {
	return &Service{storage: storage}
}

// finalize derives the fields that depend on the aggregated sums.
func finalize(rep *storage.DailyReport) {
	if rep.TotalWorkingMinutes > 0 {
		rep.EfficiencyPercent = int(math.Round(
			float64(rep.TotalStandardMinutes) / float64(rep.TotalWorkingMinutes) * 100))
	}

	switch {
	case rep.TotalBonus > rep.TotalPenalty:
		rep.FinalResult = storage.ResultBonus
	case rep.TotalPenalty > rep.TotalBonus:
		rep.FinalResult = storage.ResultPenalty
	default:
		rep.FinalResult = storage.ResultNeutral
	}
}

func (s *Service) Daily(ctx context.Context, userID int64, day time.Time) (*storage.DailyReport, error) {
	rep, err := s.storage.GetDailyReport(ctx, userID, day)
	if err != nil {
		return nil, err
	}

	finalize(rep)
	return rep, nil
}

func (s *Service) Workers(ctx context.Context, day time.Time) ([]*storage.DailyReport, error) {
	reports, err := s.storage.GetDailyWorkerReports(ctx, day)
	if err != nil {
		return nil, err
	}

	for _, rep := range reports {
		finalize(rep)
	}

	return reports, nil
}

// OrderReport groups the order's registrations by day and rolls them up
// per worker.
func (s *Service) OrderReport(ctx context.Context, orderID int64) (*storage.OrderReport, error) {
	const op = "service.report.OrderReport"

	order, err := s.storage.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	registrations, err := s.storage.GetOrderRegistrations(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	report := &storage.OrderReport{
		Order:       order,
		DailyReport: make(map[string][]storage.DailyRegistration),
	}

	workers := make(map[int64]*storage.WorkerSummary)
	var workerOrder []int64

	for _, r := range registrations {
		dateKey := r.Date.Format("2006-01-02")
		report.DailyReport[dateKey] = append(report.DailyReport[dateKey], *r)

		w := workers[r.UserID]
		if w == nil {
			w = &storage.WorkerSummary{UserID: r.UserID, Name: r.UserName, Code: r.UserCode}
			workers[r.UserID] = w
			workerOrder = append(workerOrder, r.UserID)
		}

		actual := 0
		if r.ActualQuantity != nil {
			actual = *r.ActualQuantity
		}

		w.TotalQuantity += actual
		w.TotalMinutes += r.WorkingMinutes
		w.TotalBonus += r.BonusAmount
		w.TotalPenalty += r.PenaltyAmount
		w.Operations++

		report.Statistics.TotalRegistrations++
		if r.Status == storage.RegistrationCompleted {
			report.Statistics.TotalCompleted++
		}
		report.Statistics.TotalQuantityProduced += actual
		report.Statistics.TotalWorkingMinutes += r.WorkingMinutes
		report.Statistics.TotalBonus += r.BonusAmount
		report.Statistics.TotalPenalty += r.PenaltyAmount
	}

	for _, id := range workerOrder {
		report.WorkerSummary = append(report.WorkerSummary, *workers[id])
	}

	return report, nil
}
