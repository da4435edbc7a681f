package storage

import "time"

const (
	ResultBonus   = "bonus"
	ResultPenalty = "penalty"
	ResultNeutral = "neutral"
)

// DailyReport is a per-worker daily rollup built from completed
// registrations. It is a read model, the registrations stay authoritative.
type DailyReport struct {
	UserID               int64     `json:"user_id"`
	UserName             string    `json:"user_name"`
	UserCode             string    `json:"user_code"`
	Department           string    `json:"department"`
	Date                 time.Time `json:"date"`
	TotalWorkingMinutes  int       `json:"total_working_minutes"`
	TotalStandardMinutes int       `json:"total_standard_minutes"`
	TotalQuantity        int       `json:"total_quantity"`
	EfficiencyPercent    int       `json:"efficiency_percent"`
	TotalBonus           float64   `json:"total_bonus"`
	TotalPenalty         float64   `json:"total_penalty"`
	FinalResult          string    `json:"final_result"`
}

type WorkerSummary struct {
	UserID        int64   `json:"user_id"`
	Name          string  `json:"name"`
	Code          string  `json:"code"`
	TotalQuantity int     `json:"total_quantity"`
	TotalMinutes  int     `json:"total_minutes"`
	TotalBonus    float64 `json:"total_bonus"`
	TotalPenalty  float64 `json:"total_penalty"`
	Operations    int     `json:"operations"`
}

type OrderStatistics struct {
	TotalRegistrations    int     `json:"total_registrations"`
	TotalCompleted        int     `json:"total_completed"`
	TotalQuantityProduced int     `json:"total_quantity_produced"`
	TotalWorkingMinutes   int     `json:"total_working_minutes"`
	TotalBonus            float64 `json:"total_bonus"`
	TotalPenalty          float64 `json:"total_penalty"`
}

type OrderReport struct {
	Order         *ProductionOrder               `json:"order"`
	DailyReport   map[string][]DailyRegistration `json:"daily_report"`
	WorkerSummary []WorkerSummary                `json:"worker_summary"`
	Statistics    OrderStatistics                `json:"statistics"`
}
