package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"factory-erp/internal/storage"
)

func (s *Storage) CreateWorkOrder(ctx context.Context, wo storage.WorkOrder) error {
	const op = "storage.mysql.CreateWorkOrder"

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO work_orders (id, line_id, product_id, quantity, status, break_start, break_end)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, wo.ID, wo.LineID, wo.ProductID, wo.Quantity, wo.Status, wo.BreakStart, wo.BreakEnd)
	if err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("%s: наряд %s: %w", op, wo.ID, storage.ErrAlreadyExists)
		}
		return fmt.Errorf("%s: ошибка создания наряда %s: %w", op, wo.ID, err)
	}

	return nil
}

func (s *Storage) GetWorkOrder(ctx context.Context, id string) (*storage.WorkOrder, error) {
	const op = "storage.mysql.GetWorkOrder"

	var wo storage.WorkOrder
	err := s.db.QueryRowContext(ctx, `
		SELECT id, line_id, product_id, quantity, status, break_start, break_end, created_at
		FROM work_orders WHERE id = ?
	`, id).Scan(&wo.ID, &wo.LineID, &wo.ProductID, &wo.Quantity, &wo.Status, &wo.BreakStart, &wo.BreakEnd, &wo.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: наряд %s: %w", op, id, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &wo, nil
}

func (s *Storage) UpdateWorkOrderStatus(ctx context.Context, id, status string) error {
	const op = "storage.mysql.UpdateWorkOrderStatus"

	res, err := s.db.ExecContext(ctx, `UPDATE work_orders SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("%s: ошибка обновления статуса наряда %s: %w", op, id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		if _, err := s.GetWorkOrder(ctx, id); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	return nil
}

const scanEventColumns = `id, work_order_id, line_id, product_id, serial_barcode, employee_id,
	action, ts, session_id, cycle_seconds`

func scanScanEvent(row rowScanner) (storage.WorkOrderScanEvent, error) {
	var (
		ev    storage.WorkOrderScanEvent
		cycle sql.NullInt64
	)
	err := row.Scan(
		&ev.ID, &ev.WorkOrderID, &ev.LineID, &ev.ProductID, &ev.SerialBarcode, &ev.EmployeeID,
		&ev.Action, &ev.Timestamp, &ev.SessionID, &cycle,
	)
	if err != nil {
		return storage.WorkOrderScanEvent{}, err
	}
	if cycle.Valid {
		v := int(cycle.Int64)
		ev.CycleSeconds = &v
	}
	return ev, nil
}

func (s *Storage) SaveScanEvent(ctx context.Context, ev storage.WorkOrderScanEvent) (int64, error) {
	const op = "storage.mysql.SaveScanEvent"

	var cycle sql.NullInt64
	if ev.CycleSeconds != nil {
		cycle = sql.NullInt64{Int64: int64(*ev.CycleSeconds), Valid: true}
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO work_order_scan_events
			(work_order_id, line_id, product_id, serial_barcode, employee_id, action, ts, session_id, cycle_seconds)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		ev.WorkOrderID, ev.LineID, ev.ProductID, ev.SerialBarcode, ev.EmployeeID,
		ev.Action, ev.Timestamp.UTC(), ev.SessionID, cycle,
	)
	if err != nil {
		return 0, fmt.Errorf("%s: ошибка сохранения скана %s/%s: %w", op, ev.WorkOrderID, ev.SerialBarcode, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (s *Storage) GetLastScanEvent(ctx context.Context, workOrderID, serialBarcode string) (*storage.WorkOrderScanEvent, error) {
	const op = "storage.mysql.GetLastScanEvent"

	row := s.db.QueryRowContext(ctx, `
		SELECT `+scanEventColumns+`
		FROM work_order_scan_events
		WHERE work_order_id = ? AND serial_barcode = ?
		ORDER BY ts DESC, id DESC
		LIMIT 1
	`, workOrderID, serialBarcode)

	ev, err := scanScanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &ev, nil
}

func (s *Storage) GetScanEvents(ctx context.Context, workOrderID string) ([]storage.WorkOrderScanEvent, error) {
	const op = "storage.mysql.GetScanEvents"

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+scanEventColumns+`
		FROM work_order_scan_events
		WHERE work_order_id = ?
		ORDER BY ts, id
	`, workOrderID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	events := []storage.WorkOrderScanEvent{}
	for rows.Next() {
		ev, err := scanScanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: ошибка сканирования строки: %w", op, err)
		}
		events = append(events, ev)
	}

	return events, rows.Err()
}

func (s *Storage) SavePauseWindow(ctx context.Context, p storage.WorkOrderPauseWindow) (int64, error) {
	const op = "storage.mysql.SavePauseWindow"

	var endAt sql.NullTime
	if p.EndAt != nil {
		endAt = sql.NullTime{Time: p.EndAt.UTC(), Valid: true}
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO work_order_pause_windows (work_order_id, start_at, end_at, reason) VALUES (?, ?, ?, ?)`,
		p.WorkOrderID, p.StartAt.UTC(), endAt, p.Reason,
	)
	if err != nil {
		return 0, fmt.Errorf("%s: ошибка сохранения паузы наряда %s: %w", op, p.WorkOrderID, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (s *Storage) GetPauseWindows(ctx context.Context, workOrderID string) ([]storage.WorkOrderPauseWindow, error) {
	const op = "storage.mysql.GetPauseWindows"

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, work_order_id, start_at, end_at, reason
		FROM work_order_pause_windows
		WHERE work_order_id = ?
		ORDER BY start_at, id
	`, workOrderID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	pauses := []storage.WorkOrderPauseWindow{}
	for rows.Next() {
		var (
			p     storage.WorkOrderPauseWindow
			endAt sql.NullTime
		)
		if err := rows.Scan(&p.ID, &p.WorkOrderID, &p.StartAt, &endAt, &p.Reason); err != nil {
			return nil, fmt.Errorf("%s: ошибка сканирования строки: %w", op, err)
		}
		if endAt.Valid {
			p.EndAt = &endAt.Time
		}
		pauses = append(pauses, p)
	}

	return pauses, rows.Err()
}

// EndOpenPauseWindow закрывает открытую паузу наряда. false: открытой паузы нет.
func (s *Storage) EndOpenPauseWindow(ctx context.Context, workOrderID string, endAt time.Time) (bool, error) {
	const op = "storage.mysql.EndOpenPauseWindow"

	res, err := s.db.ExecContext(ctx, `
		UPDATE work_order_pause_windows
		SET end_at = ?
		WHERE work_order_id = ? AND end_at IS NULL
	`, endAt.UTC(), workOrderID)
	if err != nil {
		return false, fmt.Errorf("%s: ошибка закрытия паузы наряда %s: %w", op, workOrderID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return n > 0, nil
}
