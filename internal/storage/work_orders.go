package storage

import "time"

const (
	ScanIn  = "IN"
	ScanOut = "OUT"

	WorkOrderPending    = "pending"
	WorkOrderInProgress = "in_progress"
	WorkOrderCompleted  = "completed"
	WorkOrderCancelled  = "cancelled"

	SessionOpen   = "open"
	SessionClosed = "closed"
)

type WorkOrder struct {
	ID         string    `json:"id" validate:"required,max=64"`
	LineID     string    `json:"line_id" validate:"required"`
	ProductID  string    `json:"product_id" validate:"required"`
	Quantity   int       `json:"quantity" validate:"min=1"`
	Status     string    `json:"status"`
	BreakStart string    `json:"break_start_time" validate:"omitempty,datetime=15:04"`
	BreakEnd   string    `json:"break_end_time" validate:"omitempty,datetime=15:04"`
	CreatedAt  time.Time `json:"created_at"`
}

// WorkOrderScanEvent: строка журнала сканирований, только добавление.
type WorkOrderScanEvent struct {
	ID            int64     `json:"id"`
	WorkOrderID   string    `json:"work_order_id"`
	LineID        string    `json:"line_id"`
	ProductID     string    `json:"product_id"`
	SerialBarcode string    `json:"serial_barcode"`
	EmployeeID    string    `json:"employee_id,omitempty"`
	Action        string    `json:"action"`
	Timestamp     time.Time `json:"timestamp"`
	SessionID     string    `json:"session_id"`
	CycleSeconds  *int      `json:"cycle_seconds,omitempty"`
}

type WorkOrderPauseWindow struct {
	ID          int64      `json:"id"`
	WorkOrderID string     `json:"work_order_id"`
	StartAt     time.Time  `json:"start_at"`
	EndAt       *time.Time `json:"end_at"`
	Reason      string     `json:"reason"`
}

// WorkOrderScanSession восстанавливается из пары IN/OUT с одним sessionId.
type WorkOrderScanSession struct {
	SessionID     string     `json:"session_id"`
	WorkOrderID   string     `json:"work_order_id"`
	LineID        string     `json:"line_id"`
	ProductID     string     `json:"product_id"`
	SerialBarcode string     `json:"serial_barcode"`
	EmployeeID    string     `json:"employee_id,omitempty"`
	InAt          time.Time  `json:"in_at"`
	OutAt         *time.Time `json:"out_at"`
	CycleSeconds  *int       `json:"cycle_seconds"`
	Status        string     `json:"status"`
}

type WorkOrderLiveSummary struct {
	CompletedUnits  int        `json:"completed_units"`
	InProgressUnits int        `json:"in_progress_units"`
	ActiveWorkers   int        `json:"active_workers"`
	AvgCycleSeconds float64    `json:"avg_cycle_seconds"`
	LastScanAt      *time.Time `json:"last_scan_at"`
}
