package storage

import "time"

const (
	CostCenterIndirect = "indirect"
	CostCenterDirect   = "direct"
)

type CostCenter struct {
	ID       string `json:"id" validate:"required,max=64"`
	Name     string `json:"name" validate:"required,max=255"`
	Type     string `json:"type" validate:"required,oneof=indirect direct"`
	IsActive bool   `json:"is_active"`
}

// CostCenterValue: месячная сумма по центру затрат, одна запись на (центр, месяц).
type CostCenterValue struct {
	CostCenterID string  `json:"cost_center_id" validate:"required"`
	Month        string  `json:"month" validate:"required,datetime=2006-01"`
	Amount       float64 `json:"amount" validate:"min=0"`
}

type LineAllocation struct {
	LineID     string  `json:"line_id"`
	Percentage float64 `json:"percentage"`
}

type CostAllocation struct {
	CostCenterID string           `json:"cost_center_id"`
	Month        string           `json:"month"`
	Allocations  []LineAllocation `json:"allocations"`
}

// CostReferences: справочные данные, нужные для распределения косвенных затрат.
type CostReferences struct {
	CostCenters      []CostCenter      `json:"cost_centers"`
	CostCenterValues []CostCenterValue `json:"cost_center_values"`
	CostAllocations  []CostAllocation  `json:"cost_allocations"`
}

type MonthlyProductionCost struct {
	ProductID           string     `json:"product_id"`
	Month               string     `json:"month"`
	TotalProducedQty    float64    `json:"total_produced_qty"`
	TotalLaborCost      float64    `json:"total_labor_cost"`
	TotalIndirectCost   float64    `json:"total_indirect_cost"`
	TotalProductionCost float64    `json:"total_production_cost"`
	AverageUnitCost     float64    `json:"average_unit_cost"`
	IsClosed            bool       `json:"is_closed"`
	CalculatedAt        time.Time  `json:"calculated_at"`
	ClosedAt            *time.Time `json:"closed_at"`
}

// MonthlyCostKey: ключ документа себестоимости: productId_month.
func MonthlyCostKey(productID, month string) string {
	return productID + "_" + month
}
