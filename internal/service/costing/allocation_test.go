package costing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"factory-erp/internal/storage"
)

func mayRefs() storage.CostReferences {
	return storage.CostReferences{
		CostCenters: []storage.CostCenter{
			{ID: "A", Name: "Аренда", Type: storage.CostCenterIndirect, IsActive: true},
			{ID: "B", Name: "Электричество", Type: storage.CostCenterIndirect, IsActive: true},
			{ID: "D", Name: "Материалы", Type: storage.CostCenterDirect, IsActive: true},
			{ID: "OFF", Name: "Отключён", Type: storage.CostCenterIndirect, IsActive: false},
		},
		CostCenterValues: []storage.CostCenterValue{
			{CostCenterID: "A", Month: "2024-05", Amount: 31000},
			{CostCenterID: "B", Month: "2024-05", Amount: 6200},
			{CostCenterID: "D", Month: "2024-05", Amount: 99999},
			{CostCenterID: "OFF", Month: "2024-05", Amount: 99999},
			{CostCenterID: "A", Month: "2024-04", Amount: 1},
		},
		CostAllocations: []storage.CostAllocation{
			{CostCenterID: "A", Month: "2024-05", Allocations: []storage.LineAllocation{{LineID: "L1", Percentage: 50}, {LineID: "L2", Percentage: 50}}},
			{CostCenterID: "B", Month: "2024-05", Allocations: []storage.LineAllocation{{LineID: "L2", Percentage: 100}}},
			{CostCenterID: "D", Month: "2024-05", Allocations: []storage.LineAllocation{{LineID: "L1", Percentage: 100}}},
			{CostCenterID: "OFF", Month: "2024-05", Allocations: []storage.LineAllocation{{LineID: "L1", Percentage: 100}}},
		},
	}
}

func TestDailyIndirectCost_SingleCenter(t *testing.T) {
	refs := storage.CostReferences{
		CostCenters:      []storage.CostCenter{{ID: "A", Type: storage.CostCenterIndirect, IsActive: true}},
		CostCenterValues: []storage.CostCenterValue{{CostCenterID: "A", Month: "2024-05", Amount: 31000}},
		CostAllocations: []storage.CostAllocation{
			{CostCenterID: "A", Month: "2024-05", Allocations: []storage.LineAllocation{{LineID: "L1", Percentage: 50}}},
		},
	}

	assert.InDelta(t, 500.0, DailyIndirectCost("L1", "2024-05", refs), 1e-9)
}

func TestDailyIndirectCost_SkipsDirectAndInactive(t *testing.T) {
	refs := mayRefs()

	// только центр A: 31000 * 0.5 / 31
	assert.InDelta(t, 500.0, DailyIndirectCost("L1", "2024-05", refs), 1e-9)
	// A + B: (15500 + 6200) / 31
	assert.InDelta(t, 700.0, DailyIndirectCost("L2", "2024-05", refs), 1e-9)
}

func TestDailyIndirectCost_ZeroWhenNothingAllocated(t *testing.T) {
	refs := mayRefs()

	assert.Equal(t, 0.0, DailyIndirectCost("L9", "2024-05", refs))
	// на апрель нет документа распределения
	assert.Equal(t, 0.0, DailyIndirectCost("L1", "2024-04", refs))
	assert.Equal(t, 0.0, DailyIndirectCost("L1", "2024-05", storage.CostReferences{}))
	assert.Equal(t, 0.0, DailyIndirectCost("L1", "bad-month", refs))
}

func TestDailyIndirectCost_MissingValueContributesZero(t *testing.T) {
	refs := storage.CostReferences{
		CostCenters: []storage.CostCenter{{ID: "A", Type: storage.CostCenterIndirect, IsActive: true}},
		CostAllocations: []storage.CostAllocation{
			{CostCenterID: "A", Month: "2024-02", Allocations: []storage.LineAllocation{{LineID: "L1", Percentage: 100}}},
		},
	}

	assert.Equal(t, 0.0, DailyIndirectCost("L1", "2024-02", refs))
}

func TestDailyIndirectCost_NeverNegative(t *testing.T) {
	refs := mayRefs()
	for _, line := range []string{"L1", "L2", "L3", ""} {
		for _, month := range []string{"2024-01", "2024-02", "2024-05", "2023-12"} {
			assert.GreaterOrEqual(t, DailyIndirectCost(line, month, refs), 0.0)
		}
	}
}

func TestDaysInMonth(t *testing.T) {
	cases := map[string]int{
		"2024-02": 29,
		"2023-02": 28,
		"2024-04": 30,
		"2024-05": 31,
		"2024-12": 31,
		"2024-13": 0,
		"":        0,
	}
	for month, want := range cases {
		assert.Equal(t, want, DaysInMonth(month), month)
	}
}

func TestMonthRange(t *testing.T) {
	from, to, err := MonthRange("2024-02")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-01", from)
	assert.Equal(t, "2024-02-29", to)

	_, _, err = MonthRange("02-2024")
	assert.ErrorIs(t, err, ErrInvalidMonth)
}

func TestValidateAllocation(t *testing.T) {
	tests := []struct {
		name    string
		alloc   storage.CostAllocation
		wantErr error
	}{
		{
			name: "exactly 100",
			alloc: storage.CostAllocation{CostCenterID: "A", Month: "2024-05", Allocations: []storage.LineAllocation{
				{LineID: "L1", Percentage: 33.3}, {LineID: "L2", Percentage: 33.3}, {LineID: "L3", Percentage: 33.4},
			}},
		},
		{
			name:  "empty list",
			alloc: storage.CostAllocation{CostCenterID: "A", Month: "2024-05"},
		},
		{
			name: "above 100",
			alloc: storage.CostAllocation{CostCenterID: "A", Month: "2024-05", Allocations: []storage.LineAllocation{
				{LineID: "L1", Percentage: 60}, {LineID: "L2", Percentage: 40.5},
			}},
			wantErr: ErrInvalidAllocation,
		},
		{
			name: "negative",
			alloc: storage.CostAllocation{CostCenterID: "A", Month: "2024-05", Allocations: []storage.LineAllocation{
				{LineID: "L1", Percentage: -10},
			}},
			wantErr: ErrInvalidAllocation,
		},
		{
			name: "duplicate line",
			alloc: storage.CostAllocation{CostCenterID: "A", Month: "2024-05", Allocations: []storage.LineAllocation{
				{LineID: "L1", Percentage: 10}, {LineID: "L1", Percentage: 10},
			}},
			wantErr: ErrInvalidAllocation,
		},
		{
			name: "empty line",
			alloc: storage.CostAllocation{CostCenterID: "A", Month: "2024-05", Allocations: []storage.LineAllocation{
				{LineID: " ", Percentage: 10},
			}},
			wantErr: ErrInvalidAllocation,
		},
		{
			name:    "no center",
			alloc:   storage.CostAllocation{Month: "2024-05"},
			wantErr: ErrInvalidAllocation,
		},
		{
			name:    "bad month",
			alloc:   storage.CostAllocation{CostCenterID: "A", Month: "May"},
			wantErr: ErrInvalidMonth,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAllocation(tt.alloc)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestValidateCostCenterValue(t *testing.T) {
	assert.NoError(t, ValidateCostCenterValue(storage.CostCenterValue{CostCenterID: "A", Month: "2024-05", Amount: 0}))
	assert.ErrorIs(t, ValidateCostCenterValue(storage.CostCenterValue{CostCenterID: "A", Month: "2024-05", Amount: -1}), ErrInvalidAmount)
	assert.ErrorIs(t, ValidateCostCenterValue(storage.CostCenterValue{CostCenterID: "A", Month: "2024/05"}), ErrInvalidMonth)
}
