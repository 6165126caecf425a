package costing

import (
	"github.com/shopspring/decimal"

	"factory-erp/internal/storage"
)

type lineDayKey struct {
	lineID string
	date   string
}

type lineDayTotals struct {
	hours decimal.Decimal
	qty   decimal.Decimal
}

// ComputeMonthlyProductionCost считает себестоимость продукта за месяц.
//
// reports: все отчёты месяца по всем продуктам: доля косвенных затрат
// линии-дня делится между отчётами пропорционально часам, а если часов на
// линии-дне нет, то пропорционально выпуску.
func ComputeMonthlyProductionCost(
	productID, month string,
	hourlyRate float64,
	reports []storage.ProductionReport,
	refs storage.CostReferences,
	supervisorRates map[string]float64,
) storage.MonthlyProductionCost {
	totals := make(map[lineDayKey]*lineDayTotals)
	for _, r := range reports {
		if r.QuantityProduced <= 0 {
			continue
		}
		key := lineDayKey{lineID: r.LineID, date: r.Date}
		t, ok := totals[key]
		if !ok {
			t = &lineDayTotals{}
			totals[key] = t
		}
		t.hours = t.hours.Add(decimal.NewFromFloat(r.WorkHours))
		t.qty = t.qty.Add(decimal.NewFromFloat(r.QuantityProduced))
	}

	// кэш действует только в пределах одного расчёта
	dailyCache := make(map[string]decimal.Decimal)
	daily := func(lineID, m string) decimal.Decimal {
		key := lineID + "|" + m
		if v, ok := dailyCache[key]; ok {
			return v
		}
		v := dailyIndirectCost(lineID, m, refs)
		dailyCache[key] = v
		return v
	}

	rate := decimal.NewFromFloat(hourlyRate)
	var labor, indirect, qty decimal.Decimal

	for _, r := range reports {
		if r.ProductID != productID || r.QuantityProduced <= 0 {
			continue
		}

		hours := decimal.NewFromFloat(r.WorkHours)
		produced := decimal.NewFromFloat(r.QuantityProduced)

		labor = labor.Add(decimal.NewFromInt(int64(r.WorkersCount)).Mul(hours).Mul(rate))

		lineDay := daily(r.LineID, monthOfDate(r.Date, month))
		if t := totals[lineDayKey{lineID: r.LineID, date: r.Date}]; t != nil {
			switch {
			case t.hours.IsPositive():
				indirect = indirect.Add(lineDay.Mul(hours).Div(t.hours))
			case t.qty.IsPositive():
				indirect = indirect.Add(lineDay.Mul(produced).Div(t.qty))
			}
		}

		if supRate, ok := supervisorRates[r.EmployeeID]; ok {
			indirect = indirect.Add(decimal.NewFromFloat(supRate).Mul(hours))
		}

		qty = qty.Add(produced)
	}

	total := labor.Add(indirect)
	avg := decimal.Zero
	if qty.IsPositive() {
		avg = total.Div(qty)
	}

	return storage.MonthlyProductionCost{
		ProductID:           productID,
		Month:               month,
		TotalProducedQty:    qty.InexactFloat64(),
		TotalLaborCost:      labor.InexactFloat64(),
		TotalIndirectCost:   indirect.InexactFloat64(),
		TotalProductionCost: total.InexactFloat64(),
		AverageUnitCost:     avg.InexactFloat64(),
	}
}
