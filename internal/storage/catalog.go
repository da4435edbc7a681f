package storage

// Reference data. These tables are maintained by the catalog service,
// this backend only reads them.

type VehicleType struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Code   string `json:"code"`
	Active bool   `json:"active"`
}

type Process struct {
	ID            int64  `json:"id"`
	VehicleTypeID int64  `json:"vehicle_type_id"`
	Name          string `json:"name"`
	Code          string `json:"code"`
	SortOrder     int    `json:"order"`
	Active        bool   `json:"active"`
}

type Operation struct {
	ID                     int64   `json:"id"`
	ProcessID              int64   `json:"process_id"`
	Name                   string  `json:"name"`
	Code                   string  `json:"code"`
	Difficulty             int     `json:"difficulty"`
	AllowTeamwork          bool    `json:"allow_teamwork"`
	MaxWorkers             int     `json:"max_workers"`
	StandardQuantity       float64 `json:"standard_quantity"`
	StandardMinutes        float64 `json:"standard_minutes"`
	WorkingMinutesPerShift int     `json:"working_minutes_per_shift"`
	Active                 bool    `json:"active"`
}

// OperationDetails is an operation with its parent process resolved.
// Handlers and services never follow references themselves.
type OperationDetails struct {
	Operation
	ProcessName   string `json:"process_name"`
	ProcessCode   string `json:"process_code"`
	ProcessOrder  int    `json:"process_order"`
	VehicleTypeID int64  `json:"vehicle_type_id"`
}

// ProductionStandard is the piece-rate contract for one
// (vehicle type, operation) pair. Distinct from the operation's own
// throughput standard.
type ProductionStandard struct {
	ID               int64   `json:"id"`
	VehicleTypeID    int64   `json:"vehicle_type_id"`
	OperationID      int64   `json:"operation_id"`
	ExpectedQuantity int     `json:"expected_quantity"`
	BonusPerUnit     float64 `json:"bonus_per_unit"`
	PenaltyPerUnit   float64 `json:"penalty_per_unit"`
}

// OperationSlot is one row of the registration board: an operation with
// today's occupancy under the active order.
type OperationSlot struct {
	OperationDetails
	CurrentWorkers int                `json:"current_workers"`
	IsAvailable    bool               `json:"is_available"`
	RegisteredBy   []RegisteredWorker `json:"registered_by"`
}

type RegisteredWorker struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	Code   string `json:"code"`
}
