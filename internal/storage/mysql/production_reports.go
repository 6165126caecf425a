package mysql

import (
	"context"
	"fmt"
	"time"

	"factory-erp/internal/storage"
)

const dateLayout = "2006-01-02"

func (s *Storage) SaveProductionReport(ctx context.Context, r storage.ProductionReport) (int64, error) {
	const op = "storage.mysql.SaveProductionReport"

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO production_reports
			(report_code, employee_id, product_id, line_id, date,
			 quantity_produced, quantity_waste, workers_count, work_hours)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		r.ReportCode, r.EmployeeID, r.ProductID, r.LineID, r.Date,
		r.QuantityProduced, r.QuantityWaste, r.WorkersCount, r.WorkHours,
	)
	if err != nil {
		if isDuplicate(err) {
			return 0, fmt.Errorf("%s: отчёт %s: %w", op, r.ReportCode, storage.ErrAlreadyExists)
		}
		return 0, fmt.Errorf("%s: ошибка сохранения отчёта %s: %w", op, r.ReportCode, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

// GetProductionReportsByDateRange возвращает отчёты с датой в [from, to] включительно.
func (s *Storage) GetProductionReportsByDateRange(ctx context.Context, from, to string) ([]storage.ProductionReport, error) {
	const op = "storage.mysql.GetProductionReportsByDateRange"

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, report_code, employee_id, product_id, line_id, date,
		       quantity_produced, quantity_waste, workers_count, work_hours, created_at
		FROM production_reports
		WHERE date BETWEEN ? AND ?
		ORDER BY date, id
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка получения отчётов %s..%s: %w", op, from, to, err)
	}
	defer rows.Close()

	reports := []storage.ProductionReport{}
	for rows.Next() {
		var (
			r    storage.ProductionReport
			date time.Time
		)
		err := rows.Scan(
			&r.ID, &r.ReportCode, &r.EmployeeID, &r.ProductID, &r.LineID, &date,
			&r.QuantityProduced, &r.QuantityWaste, &r.WorkersCount, &r.WorkHours, &r.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: ошибка сканирования строки: %w", op, err)
		}
		r.Date = date.Format(dateLayout)
		reports = append(reports, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: ошибка при итерации по строкам: %w", op, err)
	}

	return reports, nil
}
