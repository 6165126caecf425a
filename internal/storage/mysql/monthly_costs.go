package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"factory-erp/internal/storage"
)

const monthlyCostColumns = `product_id, month, total_produced_qty, total_labor_cost, total_indirect_cost,
	total_production_cost, average_unit_cost, is_closed, calculated_at, closed_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMonthlyCost(row rowScanner) (storage.MonthlyProductionCost, error) {
	var (
		c        storage.MonthlyProductionCost
		closedAt sql.NullTime
	)
	err := row.Scan(
		&c.ProductID, &c.Month, &c.TotalProducedQty, &c.TotalLaborCost, &c.TotalIndirectCost,
		&c.TotalProductionCost, &c.AverageUnitCost, &c.IsClosed, &c.CalculatedAt, &closedAt,
	)
	if err != nil {
		return storage.MonthlyProductionCost{}, err
	}
	if closedAt.Valid {
		c.ClosedAt = &closedAt.Time
	}
	return c, nil
}

func (s *Storage) GetMonthlyProductionCost(ctx context.Context, productID, month string) (*storage.MonthlyProductionCost, error) {
	const op = "storage.mysql.GetMonthlyProductionCost"

	row := s.db.QueryRowContext(ctx,
		`SELECT `+monthlyCostColumns+` FROM monthly_production_costs WHERE product_id = ? AND month = ?`,
		productID, month,
	)

	c, err := scanMonthlyCost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %s: %w", op, storage.MonthlyCostKey(productID, month), storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &c, nil
}

func (s *Storage) GetMonthlyProductionCosts(ctx context.Context, month string) ([]storage.MonthlyProductionCost, error) {
	const op = "storage.mysql.GetMonthlyProductionCosts"

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+monthlyCostColumns+` FROM monthly_production_costs WHERE month = ? ORDER BY product_id`, month)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	costs := []storage.MonthlyProductionCost{}
	for rows.Next() {
		c, err := scanMonthlyCost(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: ошибка сканирования строки: %w", op, err)
		}
		costs = append(costs, c)
	}

	return costs, rows.Err()
}

// SaveMonthlyProductionCost записывает расчёт под блокировкой строки.
// Закрытая запись не перезаписывается: возвращается storage.ErrMonthClosed.
func (s *Storage) SaveMonthlyProductionCost(ctx context.Context, c storage.MonthlyProductionCost) error {
	const op = "storage.mysql.SaveMonthlyProductionCost"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	var closed bool
	err = tx.QueryRowContext(ctx,
		`SELECT is_closed FROM monthly_production_costs WHERE product_id = ? AND month = ? FOR UPDATE`,
		c.ProductID, c.Month,
	).Scan(&closed)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, err)
	}
	if closed {
		return fmt.Errorf("%s: %s: %w", op, storage.MonthlyCostKey(c.ProductID, c.Month), storage.ErrMonthClosed)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO monthly_production_costs
			(product_id, month, total_produced_qty, total_labor_cost, total_indirect_cost,
			 total_production_cost, average_unit_cost, is_closed, calculated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, FALSE, ?)
		ON DUPLICATE KEY UPDATE
			total_produced_qty = VALUES(total_produced_qty),
			total_labor_cost = VALUES(total_labor_cost),
			total_indirect_cost = VALUES(total_indirect_cost),
			total_production_cost = VALUES(total_production_cost),
			average_unit_cost = VALUES(average_unit_cost),
			calculated_at = VALUES(calculated_at)
	`,
		c.ProductID, c.Month, c.TotalProducedQty, c.TotalLaborCost, c.TotalIndirectCost,
		c.TotalProductionCost, c.AverageUnitCost, c.CalculatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("%s: ошибка сохранения %s: %w", op, storage.MonthlyCostKey(c.ProductID, c.Month), err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit transaction: %w", op, err)
	}

	return nil
}

// CloseMonthlyProductionCost закрывает месяц только если он ещё открыт.
// false означает, что записи нет или её уже закрыли.
func (s *Storage) CloseMonthlyProductionCost(ctx context.Context, productID, month string, closedAt time.Time) (bool, error) {
	const op = "storage.mysql.CloseMonthlyProductionCost"

	res, err := s.db.ExecContext(ctx, `
		UPDATE monthly_production_costs
		SET is_closed = TRUE, closed_at = ?
		WHERE product_id = ? AND month = ? AND is_closed = FALSE
	`, closedAt.UTC(), productID, month)
	if err != nil {
		return false, fmt.Errorf("%s: ошибка закрытия %s: %w", op, storage.MonthlyCostKey(productID, month), err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return n == 1, nil
}
