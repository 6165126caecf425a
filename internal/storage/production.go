package storage

import "time"

// ProductionReport: неизменяемый факт выпуска за смену.
type ProductionReport struct {
	ID               int64     `json:"id"`
	ReportCode       string    `json:"report_code"`
	EmployeeID       string    `json:"employee_id" validate:"required"`
	ProductID        string    `json:"product_id" validate:"required"`
	LineID           string    `json:"line_id" validate:"required"`
	Date             string    `json:"date" validate:"required,datetime=2006-01-02"`
	QuantityProduced float64   `json:"quantity_produced" validate:"gt=0"`
	QuantityWaste    float64   `json:"quantity_waste" validate:"min=0"`
	WorkersCount     int       `json:"workers_count" validate:"min=1"`
	WorkHours        float64   `json:"work_hours" validate:"gt=0"`
	CreatedAt        time.Time `json:"created_at"`
}

type Employee struct {
	ID         string  `json:"id" validate:"required,max=64"`
	Name       string  `json:"name" validate:"required"`
	Role       string  `json:"role" validate:"required,oneof=worker supervisor"`
	HourlyRate float64 `json:"hourly_rate" validate:"min=0"`
	IsActive   bool    `json:"is_active"`
}
