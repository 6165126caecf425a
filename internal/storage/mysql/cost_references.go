package mysql

import (
	"context"
	"fmt"

	"factory-erp/internal/constants"
	"factory-erp/internal/storage"
)

func (s *Storage) CreateCostCenter(ctx context.Context, cc storage.CostCenter) error {
	const op = "storage.mysql.CreateCostCenter"

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cost_centers (id, name, type, is_active) VALUES (?, ?, ?, ?)`,
		cc.ID, cc.Name, cc.Type, cc.IsActive,
	)
	if err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("%s: центр затрат %s: %w", op, cc.ID, storage.ErrAlreadyExists)
		}
		return fmt.Errorf("%s: ошибка создания центра затрат %s: %w", op, cc.ID, err)
	}

	return nil
}

func (s *Storage) UpdateCostCenter(ctx context.Context, cc storage.CostCenter) error {
	const op = "storage.mysql.UpdateCostCenter"

	res, err := s.db.ExecContext(ctx,
		`UPDATE cost_centers SET name = ?, type = ?, is_active = ? WHERE id = ?`,
		cc.Name, cc.Type, cc.IsActive, cc.ID,
	)
	if err != nil {
		return fmt.Errorf("%s: ошибка обновления центра затрат %s: %w", op, cc.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		// MySQL не считает строку затронутой, если значения не изменились
		var exists bool
		err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM cost_centers WHERE id = ?)`, cc.ID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if !exists {
			return fmt.Errorf("%s: центр затрат %s: %w", op, cc.ID, storage.ErrNotFound)
		}
	}

	return nil
}

func (s *Storage) GetCostCenters(ctx context.Context) ([]storage.CostCenter, error) {
	const op = "storage.mysql.GetCostCenters"

	rows, err := s.db.QueryContext(ctx, `SELECT id, name, type, is_active FROM cost_centers ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка получения центров затрат: %w", op, err)
	}
	defer rows.Close()

	centers := []storage.CostCenter{}
	for rows.Next() {
		var cc storage.CostCenter
		if err := rows.Scan(&cc.ID, &cc.Name, &cc.Type, &cc.IsActive); err != nil {
			return nil, fmt.Errorf("%s: ошибка сканирования строки: %w", op, err)
		}
		centers = append(centers, cc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: ошибка при итерации по строкам: %w", op, err)
	}

	return centers, nil
}

// SaveCostCenterValue: одна сумма на (центр, месяц), повторная запись заменяет её.
func (s *Storage) SaveCostCenterValue(ctx context.Context, v storage.CostCenterValue) error {
	const op = "storage.mysql.SaveCostCenterValue"

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cost_center_values (cost_center_id, month, amount)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE amount = VALUES(amount)
	`, v.CostCenterID, v.Month, v.Amount)
	if err != nil {
		return fmt.Errorf("%s: ошибка сохранения суммы %s за %s: %w", op, v.CostCenterID, v.Month, err)
	}

	return nil
}

func (s *Storage) GetCostCenterValues(ctx context.Context, month string) ([]storage.CostCenterValue, error) {
	const op = "storage.mysql.GetCostCenterValues"

	rows, err := s.db.QueryContext(ctx,
		`SELECT cost_center_id, month, amount FROM cost_center_values WHERE month = ?`, month)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	values := []storage.CostCenterValue{}
	for rows.Next() {
		var v storage.CostCenterValue
		if err := rows.Scan(&v.CostCenterID, &v.Month, &v.Amount); err != nil {
			return nil, fmt.Errorf("%s: ошибка сканирования строки: %w", op, err)
		}
		values = append(values, v)
	}

	return values, rows.Err()
}

// SaveCostAllocation заменяет документ распределения центра за месяц целиком.
func (s *Storage) SaveCostAllocation(ctx context.Context, a storage.CostAllocation) error {
	const op = "storage.mysql.SaveCostAllocation"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`DELETE FROM cost_allocations WHERE cost_center_id = ? AND month = ?`, a.CostCenterID, a.Month)
	if err != nil {
		return fmt.Errorf("%s: ошибка удаления старого распределения %s за %s: %w", op, a.CostCenterID, a.Month, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO cost_allocations (cost_center_id, month, line_id, percentage) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("%s: ошибка подготовки запроса: %w", op, err)
	}
	defer stmt.Close()

	for _, entry := range a.Allocations {
		if _, err := stmt.ExecContext(ctx, a.CostCenterID, a.Month, entry.LineID, entry.Percentage); err != nil {
			return fmt.Errorf("%s: ошибка вставки линии %s: %w", op, entry.LineID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit transaction: %w", op, err)
	}

	return nil
}

func (s *Storage) GetCostAllocations(ctx context.Context, month string) ([]storage.CostAllocation, error) {
	const op = "storage.mysql.GetCostAllocations"

	rows, err := s.db.QueryContext(ctx, `
		SELECT cost_center_id, month, line_id, percentage
		FROM cost_allocations
		WHERE month = ?
		ORDER BY cost_center_id, line_id
	`, month)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	allocations := []storage.CostAllocation{}
	index := make(map[string]int)

	for rows.Next() {
		var (
			centerID, m string
			entry       storage.LineAllocation
		)
		if err := rows.Scan(&centerID, &m, &entry.LineID, &entry.Percentage); err != nil {
			return nil, fmt.Errorf("%s: ошибка сканирования строки: %w", op, err)
		}

		i, ok := index[centerID]
		if !ok {
			allocations = append(allocations, storage.CostAllocation{CostCenterID: centerID, Month: m})
			i = len(allocations) - 1
			index[centerID] = i
		}
		allocations[i].Allocations = append(allocations[i].Allocations, entry)
	}

	return allocations, rows.Err()
}

func (s *Storage) GetCostReferences(ctx context.Context, month string) (storage.CostReferences, error) {
	const op = "storage.mysql.GetCostReferences"

	centers, err := s.GetCostCenters(ctx)
	if err != nil {
		return storage.CostReferences{}, fmt.Errorf("%s: %w", op, err)
	}

	values, err := s.GetCostCenterValues(ctx, month)
	if err != nil {
		return storage.CostReferences{}, fmt.Errorf("%s: %w", op, err)
	}

	allocations, err := s.GetCostAllocations(ctx, month)
	if err != nil {
		return storage.CostReferences{}, fmt.Errorf("%s: %w", op, err)
	}

	return storage.CostReferences{
		CostCenters:      centers,
		CostCenterValues: values,
		CostAllocations:  allocations,
	}, nil
}

// GetSupervisorHourlyRates возвращает employee_id → ставка для активных бригадиров с ненулевой ставкой.
func (s *Storage) GetSupervisorHourlyRates(ctx context.Context) (map[string]float64, error) {
	const op = "storage.mysql.GetSupervisorHourlyRates"

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, role, hourly_rate
		FROM employees
		WHERE is_active = TRUE AND hourly_rate > 0
	`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	rates := make(map[string]float64)
	for rows.Next() {
		var (
			id, role string
			rate     float64
		)
		if err := rows.Scan(&id, &role, &rate); err != nil {
			return nil, fmt.Errorf("%s: ошибка сканирования строки: %w", op, err)
		}
		if constants.SupervisorRoles[role] {
			rates[id] = rate
		}
	}

	return rates, rows.Err()
}
