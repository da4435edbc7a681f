package storage

import "time"

const (
	RegistrationRegistered = "registered"
	RegistrationInProgress = "in_progress"
	RegistrationCompleted  = "completed"
	RegistrationReassigned = "reassigned"
)

// DailyRegistration is one worker's daily claim on an operation under
// the active production order.
type DailyRegistration struct {
	ID                int64     `json:"id"`
	UserID            int64     `json:"user_id"`
	ShiftID           int64     `json:"shift_id"`
	ProductionOrderID int64     `json:"production_order_id"`
	OperationID       int64     `json:"operation_id"`
	Date              time.Time `json:"date"`
	RegisteredAt      time.Time `json:"registered_at"`
	Status            string    `json:"status"`

	ExpectedQuantity    int  `json:"expected_quantity"`
	AdjustedExpectedQty *int `json:"adjusted_expected_qty"`
	ActualQuantity      *int `json:"actual_quantity"`
	Deviation           int  `json:"deviation"`

	BonusAmount   float64 `json:"bonus_amount"`
	PenaltyAmount float64 `json:"penalty_amount"`

	InterruptionMinutes int        `json:"interruption_minutes"`
	InterruptionNote    string     `json:"interruption_note"`
	WorkingMinutes      int        `json:"working_minutes"`
	CheckInTime         *time.Time `json:"check_in_time"`
	CheckOutTime        *time.Time `json:"check_out_time"`

	AdjustedBy     *int64 `json:"adjusted_by"`
	AdjustmentNote string `json:"adjustment_note"`

	IsReplacement     bool   `json:"is_replacement"`
	ReplacesUserID    *int64 `json:"replaces_user_id"`
	ReplacementReason string `json:"replacement_reason"`

	// joined for display
	UserName      string `json:"user_name,omitempty"`
	UserCode      string `json:"user_code,omitempty"`
	OperationName string `json:"operation_name,omitempty"`
	OperationCode string `json:"operation_code,omitempty"`
	OrderCode     string `json:"order_code,omitempty"`
	ProcessID     int64  `json:"process_id,omitempty"`
	ProcessName   string `json:"process_name,omitempty"`
	ProcessCode   string `json:"process_code,omitempty"`
}

// EffectiveExpected is the supervisor-adjusted expectation when set,
// otherwise the baseline copied from the production standard.
func (r *DailyRegistration) EffectiveExpected() int {
	if r.AdjustedExpectedQty != nil {
		return *r.AdjustedExpectedQty
	}
	return r.ExpectedQuantity
}

// RegistrationCompletion carries the fields written when a worker
// reports the actual quantity.
type RegistrationCompletion struct {
	ActualQuantity      int
	Deviation           int
	BonusAmount         float64
	PenaltyAmount       float64
	InterruptionMinutes int
	InterruptionNote    string
	WorkingMinutes      int
	CheckOutTime        time.Time
}

type RegistrationAdjustment struct {
	AdjustedExpectedQty int
	AdjustmentNote      string
	AdjustedBy          int64
	// recomputed when the registration is already completed
	Recompute     bool
	Deviation     int
	BonusAmount   float64
	PenaltyAmount float64
}

type RegistrationFilter struct {
	Date              *time.Time
	ProductionOrderID int64
	Status            string
}
