package costing

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"factory-erp/internal/storage"
)

const (
	monthLayout = "2006-01"
	dateLayout  = "2006-01-02"

	maxAllocationPercent = 100.0
	percentEpsilon       = 1e-9
)

var (
	ErrInvalidMonth      = errors.New("invalid month, expected YYYY-MM")
	ErrInvalidAllocation = errors.New("invalid cost allocation")
	ErrInvalidAmount     = errors.New("invalid amount")
)

var hundred = decimal.NewFromInt(100)

func ParseMonth(month string) (time.Time, error) {
	t, err := time.Parse(monthLayout, month)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidMonth, month)
	}
	return t, nil
}

// DaysInMonth возвращает число календарных дней месяца, 0 для некорректной строки.
func DaysInMonth(month string) int {
	t, err := ParseMonth(month)
	if err != nil {
		return 0
	}
	return t.AddDate(0, 1, -1).Day()
}

// MonthRange возвращает первую и последнюю дату месяца в формате YYYY-MM-DD.
func MonthRange(month string) (string, string, error) {
	t, err := ParseMonth(month)
	if err != nil {
		return "", "", err
	}
	return t.Format(dateLayout), t.AddDate(0, 1, -1).Format(dateLayout), nil
}

// monthOfDate отрезает YYYY-MM от даты отчёта.
func monthOfDate(date, fallback string) string {
	if len(date) >= len(monthLayout) {
		return date[:len(monthLayout)]
	}
	return fallback
}

// DailyIndirectCost распределяет месячные суммы активных косвенных центров
// затрат на линию и делит результат на календарные дни месяца.
// Отсутствующие данные дают нулевой вклад.
func DailyIndirectCost(lineID, month string, refs storage.CostReferences) float64 {
	return dailyIndirectCost(lineID, month, refs).InexactFloat64()
}

func dailyIndirectCost(lineID, month string, refs storage.CostReferences) decimal.Decimal {
	days := DaysInMonth(month)
	if days == 0 {
		return decimal.Zero
	}

	amounts := make(map[string]decimal.Decimal, len(refs.CostCenterValues))
	for _, v := range refs.CostCenterValues {
		if v.Month == month {
			amounts[v.CostCenterID] = decimal.NewFromFloat(v.Amount)
		}
	}

	allocations := make(map[string]storage.CostAllocation, len(refs.CostAllocations))
	for _, a := range refs.CostAllocations {
		if a.Month == month {
			allocations[a.CostCenterID] = a
		}
	}

	monthly := decimal.Zero
	for _, cc := range refs.CostCenters {
		if cc.Type != storage.CostCenterIndirect || !cc.IsActive {
			continue
		}

		alloc, ok := allocations[cc.ID]
		if !ok {
			continue
		}

		for _, entry := range alloc.Allocations {
			if entry.LineID != lineID {
				continue
			}
			share := decimal.NewFromFloat(entry.Percentage).Div(hundred)
			monthly = monthly.Add(amounts[cc.ID].Mul(share))
			break
		}
	}

	return monthly.Div(decimal.NewFromInt(int64(days)))
}

// ValidateAllocation проверяет документ распределения перед записью:
// сумма процентов не больше 100, линии не повторяются.
func ValidateAllocation(a storage.CostAllocation) error {
	if strings.TrimSpace(a.CostCenterID) == "" {
		return fmt.Errorf("%w: cost_center_id is required", ErrInvalidAllocation)
	}
	if _, err := ParseMonth(a.Month); err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(a.Allocations))
	sum := decimal.Zero
	for i, entry := range a.Allocations {
		if strings.TrimSpace(entry.LineID) == "" {
			return fmt.Errorf("%w: allocation %d: line_id is required", ErrInvalidAllocation, i)
		}
		if entry.Percentage < 0 {
			return fmt.Errorf("%w: allocation %d: negative percentage %.2f", ErrInvalidAllocation, i, entry.Percentage)
		}
		if _, dup := seen[entry.LineID]; dup {
			return fmt.Errorf("%w: line %s is listed twice", ErrInvalidAllocation, entry.LineID)
		}
		seen[entry.LineID] = struct{}{}
		sum = sum.Add(decimal.NewFromFloat(entry.Percentage))
	}

	if sum.InexactFloat64() > maxAllocationPercent+percentEpsilon {
		return fmt.Errorf("%w: percentages sum to %s, max is 100", ErrInvalidAllocation, sum.String())
	}

	return nil
}

// ValidateCostCenterValue проверяет месячную сумму центра затрат.
func ValidateCostCenterValue(v storage.CostCenterValue) error {
	if _, err := ParseMonth(v.Month); err != nil {
		return err
	}
	if v.Amount < 0 {
		return fmt.Errorf("%w: %.2f", ErrInvalidAmount, v.Amount)
	}
	return nil
}
