package mysql

import (
	"context"
	"fmt"

	"factory-erp/internal/storage"
)

func (s *Storage) GetEmployees(ctx context.Context) ([]storage.Employee, error) {
	const op = "storage.mysql.GetEmployees"

	rows, err := s.db.QueryContext(ctx, `SELECT id, name, role, hourly_rate, is_active FROM employees ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка получения сотрудников: %w", op, err)
	}
	defer rows.Close()

	employees := []storage.Employee{}
	for rows.Next() {
		var e storage.Employee
		if err := rows.Scan(&e.ID, &e.Name, &e.Role, &e.HourlyRate, &e.IsActive); err != nil {
			return nil, fmt.Errorf("%s: ошибка сканирования строки: %w", op, err)
		}
		employees = append(employees, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: ошибка при итерации по строкам: %w", op, err)
	}

	return employees, nil
}

// SaveEmployees создаёт или обновляет сотрудников пачкой в одной транзакции.
func (s *Storage) SaveEmployees(ctx context.Context, emps []storage.Employee) error {
	const op = "storage.mysql.SaveEmployees"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: ошибка при создании транзакции: %w", op, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO employees (id, name, role, hourly_rate, is_active)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			name = VALUES(name),
			role = VALUES(role),
			hourly_rate = VALUES(hourly_rate),
			is_active = VALUES(is_active)
	`)
	if err != nil {
		return fmt.Errorf("%s: ошибка при подготовке запроса: %w", op, err)
	}
	defer stmt.Close()

	for _, e := range emps {
		if _, err := stmt.ExecContext(ctx, e.ID, e.Name, e.Role, e.HourlyRate, e.IsActive); err != nil {
			return fmt.Errorf("%s: ошибка сохранения сотрудника id=%s: %w", op, e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: ошибка коммита транзакции: %w", op, err)
	}

	return nil
}
