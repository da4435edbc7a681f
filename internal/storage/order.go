package storage

import "time"

const (
	OrderPending    = "pending"
	OrderInProgress = "in_progress"
	OrderCompleted  = "completed"
	OrderCancelled  = "cancelled"
)

func ValidOrderStatus(s string) bool {
	switch s {
	case OrderPending, OrderInProgress, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

type ProductionOrder struct {
	ID              int64      `json:"id"`
	OrderCode       string     `json:"order_code"`
	VehicleTypeID   int64      `json:"vehicle_type_id"`
	VehicleTypeName string     `json:"vehicle_type_name"`
	VehicleTypeCode string     `json:"vehicle_type_code"`
	Quantity        int        `json:"quantity"`
	FrameNumbers    []string   `json:"frame_numbers"`
	EngineNumbers   []string   `json:"engine_numbers"`
	Status          string     `json:"status"`
	StartDate       *time.Time `json:"start_date"`
	ExpectedEndDate *time.Time `json:"expected_end_date"`
	ActualEndDate   *time.Time `json:"actual_end_date"`
	Note            string     `json:"note"`
	CreatedBy       int64      `json:"created_by"`
	CreatedByName   string     `json:"created_by_name"`
	CreatedAt       time.Time  `json:"created_at"`
}

// NewOrder carries the caller-supplied fields of a production order.
type NewOrder struct {
	VehicleTypeID   int64      `json:"vehicle_type_id"`
	Quantity        int        `json:"quantity"`
	FrameNumbers    []string   `json:"frame_numbers"`
	EngineNumbers   []string   `json:"engine_numbers"`
	StartDate       *time.Time `json:"start_date"`
	ExpectedEndDate *time.Time `json:"expected_end_date"`
	Note            string     `json:"note"`
	CreatedBy       int64      `json:"-"`
}

type OrderUpdate struct {
	Quantity        *int       `json:"quantity"`
	FrameNumbers    []string   `json:"frame_numbers"`
	EngineNumbers   []string   `json:"engine_numbers"`
	StartDate       *time.Time `json:"start_date"`
	ExpectedEndDate *time.Time `json:"expected_end_date"`
	Note            *string    `json:"note"`
}

type IncompleteProcess struct {
	ProcessID   int64  `json:"process_id"`
	ProcessName string `json:"process_name"`
	Required    int    `json:"required"`
	Completed   int    `json:"completed"`
	Remaining   int    `json:"remaining"`
}

// CompletionCheck is one audit row of a completion-check attempt.
// The list grows monotonically, checks never mutate the order itself.
type CompletionCheck struct {
	ID          int64               `json:"id"`
	OrderID     int64               `json:"order_id"`
	CheckedAt   time.Time           `json:"checked_at"`
	CheckedBy   int64               `json:"checked_by"`
	CanComplete bool                `json:"can_complete"`
	Incomplete  []IncompleteProcess `json:"incomplete_processes"`
}

type CompletionResult struct {
	CanComplete bool                `json:"can_complete"`
	Incomplete  []IncompleteProcess `json:"incomplete_processes"`
}

const (
	ProgressPending    = "pending"
	ProgressInProgress = "in_progress"
	ProgressCompleted  = "completed"
)

type ProcessProgress struct {
	ProcessID     int64    `json:"process_id"`
	ProcessName   string   `json:"process_name"`
	ProcessCode   string   `json:"process_code"`
	SortOrder     int      `json:"order"`
	Required      int      `json:"required"`
	Completed     int      `json:"completed"`
	Percentage    int      `json:"percentage"`
	Status        string   `json:"status"`
	Workers       []string `json:"workers"`
	Registrations int      `json:"registrations"`
}

type ProgressSummary struct {
	TotalProcesses      int `json:"total_processes"`
	CompletedProcesses  int `json:"completed_processes"`
	InProgressProcesses int `json:"in_progress_processes"`
	OverallPercentage   int `json:"overall_percentage"`
}

type OrderProgress struct {
	OrderID   int64             `json:"order_id"`
	OrderCode string            `json:"order_code"`
	Quantity  int               `json:"quantity"`
	Status    string            `json:"status"`
	Progress  []ProcessProgress `json:"progress"`
	Summary   ProgressSummary   `json:"summary"`
}
