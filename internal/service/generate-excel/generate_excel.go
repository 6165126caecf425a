package generate_excel

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"factory-erp/internal/storage"
)

type GenerateExcelStorage interface {
	GetMonthlyProductionCosts(ctx context.Context, month string) ([]storage.MonthlyProductionCost, error)
}

type GenerateExcelService struct {
	storage GenerateExcelStorage
}

func NewGenerateService(storage GenerateExcelStorage) *GenerateExcelService {
	return &GenerateExcelService{storage: storage}
}

var headers = []string{
	"Продукт", "Месяц", "Выпуск", "Труд", "Косвенные", "Себестоимость", "Цена за ед.", "Закрыт", "Рассчитано",
}

// GenerateExcel строит отчёт по себестоимости продуктов за месяц с итоговой строкой.
func (g *GenerateExcelService) GenerateExcel(ctx context.Context, month string) ([]byte, error) {
	const op = "service.generate-excel.GenerateExcel"

	costs, err := g.storage.GetMonthlyProductionCosts(ctx, month)
	if err != nil {
		return nil, fmt.Errorf("%s: fetch data: %w", op, err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Себестоимость " + month
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"E0E0E0"}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 2}},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	moneyFmt := "#,##0.00"
	moneyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFmt})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	totalStyle, err := f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Bold: true},
		Border:       []excelize.Border{{Type: "top", Color: "000000", Style: 1}},
		CustomNumFmt: &moneyFmt,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for i, name := range headers {
		f.SetCellValue(sheet, cellName(i+1, 1), name)
	}
	f.SetCellStyle(sheet, "A1", cellName(len(headers), 1), headerStyle)

	var qty, labor, indirect, total float64
	for i, c := range costs {
		row := i + 2

		f.SetCellValue(sheet, cellName(1, row), c.ProductID)
		f.SetCellValue(sheet, cellName(2, row), c.Month)
		f.SetCellValue(sheet, cellName(3, row), c.TotalProducedQty)
		f.SetCellValue(sheet, cellName(4, row), c.TotalLaborCost)
		f.SetCellValue(sheet, cellName(5, row), c.TotalIndirectCost)
		f.SetCellValue(sheet, cellName(6, row), c.TotalProductionCost)
		f.SetCellValue(sheet, cellName(7, row), c.AverageUnitCost)
		f.SetCellValue(sheet, cellName(8, row), closedLabel(c.IsClosed))
		f.SetCellValue(sheet, cellName(9, row), c.CalculatedAt.UTC().Format("2006-01-02 15:04"))

		qty += c.TotalProducedQty
		labor += c.TotalLaborCost
		indirect += c.TotalIndirectCost
		total += c.TotalProductionCost
	}

	totalRow := len(costs) + 2
	if len(costs) > 0 {
		f.SetCellStyle(sheet, cellName(4, 2), cellName(7, totalRow-1), moneyStyle)
	}

	var avg float64
	if qty > 0 {
		avg = total / qty
	}
	f.SetCellValue(sheet, cellName(1, totalRow), "Итого")
	f.SetCellValue(sheet, cellName(3, totalRow), qty)
	f.SetCellValue(sheet, cellName(4, totalRow), labor)
	f.SetCellValue(sheet, cellName(5, totalRow), indirect)
	f.SetCellValue(sheet, cellName(6, totalRow), total)
	f.SetCellValue(sheet, cellName(7, totalRow), avg)
	f.SetCellStyle(sheet, cellName(1, totalRow), cellName(len(headers), totalRow), totalStyle)

	// Закрепляем шапку
	f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
	})
	f.SetColWidth(sheet, "A", "I", 15)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return buf.Bytes(), nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func closedLabel(closed bool) string {
	if closed {
		return "да"
	}
	return "нет"
}
