package workorder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"factory-erp/internal/constants"
	"factory-erp/internal/storage"
)

var (
	ErrRepeatedScan      = errors.New("repeated fast scan")
	ErrInvalidSerial     = errors.New("serial barcode is required")
	ErrWorkOrderNotFound = errors.New("work order not found")
	ErrWorkOrderClosed   = errors.New("work order is closed")
	ErrPauseAlreadyOpen  = errors.New("work order already has an open pause")
	ErrNoOpenPause       = errors.New("work order has no open pause")
)

type ScanStorage interface {
	GetWorkOrder(ctx context.Context, id string) (*storage.WorkOrder, error)
	GetLastScanEvent(ctx context.Context, workOrderID, serialBarcode string) (*storage.WorkOrderScanEvent, error)
	SaveScanEvent(ctx context.Context, ev storage.WorkOrderScanEvent) (int64, error)
	GetScanEvents(ctx context.Context, workOrderID string) ([]storage.WorkOrderScanEvent, error)
	GetPauseWindows(ctx context.Context, workOrderID string) ([]storage.WorkOrderPauseWindow, error)
	SavePauseWindow(ctx context.Context, p storage.WorkOrderPauseWindow) (int64, error)
	EndOpenPauseWindow(ctx context.Context, workOrderID string, endAt time.Time) (bool, error)
}

type ScanConfig struct {
	BreakStart      string
	BreakEnd        string
	MinCycleSeconds int
	Location        *time.Location
}

type ScanService struct {
	log     *slog.Logger
	storage ScanStorage
	guard   ScanGuard
	cfg     ScanConfig
	now     func() time.Time
	newID   func() string
}

func NewScanService(log *slog.Logger, storage ScanStorage, guard ScanGuard, cfg ScanConfig) *ScanService {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &ScanService{
		log:     log,
		storage: storage,
		guard:   guard,
		cfg:     cfg,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

type ScanRequest struct {
	WorkOrderID   string `json:"work_order_id"`
	SerialBarcode string `json:"serial_barcode"`
	EmployeeID    string `json:"employee_id,omitempty"`
}

type LiveView struct {
	WorkOrderID string                         `json:"work_order_id"`
	Sessions    []storage.WorkOrderScanSession `json:"sessions"`
	Summary     storage.WorkOrderLiveSummary   `json:"summary"`
}

// ToggleScan переключает состояние серийника: без истории или после OUT
// открывается новая сессия (IN), после IN сессия закрывается (OUT) с расчётом цикла.
func (s *ScanService) ToggleScan(ctx context.Context, req ScanRequest) (storage.WorkOrderScanEvent, error) {
	const op = "service.workorder.ToggleScan"

	serial := strings.TrimSpace(req.SerialBarcode)
	if serial == "" {
		return storage.WorkOrderScanEvent{}, ErrInvalidSerial
	}

	allowed, err := s.guard.Allow(ctx, LockKey(req.WorkOrderID, serial))
	if err != nil {
		return storage.WorkOrderScanEvent{}, fmt.Errorf("%s: scan guard: %w", op, err)
	}
	if !allowed {
		return storage.WorkOrderScanEvent{}, ErrRepeatedScan
	}

	wo, err := s.activeWorkOrder(ctx, req.WorkOrderID)
	if err != nil {
		return storage.WorkOrderScanEvent{}, err
	}

	last, err := s.storage.GetLastScanEvent(ctx, wo.ID, serial)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return storage.WorkOrderScanEvent{}, fmt.Errorf("%s: ошибка получения последнего скана %s: %w", op, serial, err)
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	ev := storage.WorkOrderScanEvent{
		WorkOrderID:   wo.ID,
		LineID:        wo.LineID,
		ProductID:     wo.ProductID,
		SerialBarcode: serial,
		EmployeeID:    strings.TrimSpace(req.EmployeeID),
		Timestamp:     now,
	}

	if last == nil || last.Action == storage.ScanOut {
		ev.Action = storage.ScanIn
		ev.SessionID = s.newID()
	} else {
		pauses, err := s.storage.GetPauseWindows(ctx, wo.ID)
		if err != nil {
			return storage.WorkOrderScanEvent{}, fmt.Errorf("%s: ошибка получения пауз: %w", op, err)
		}

		cycle := ComputeEffectiveCycleSeconds(
			last.Timestamp.In(s.cfg.Location),
			now.In(s.cfg.Location),
			firstNonEmpty(wo.BreakStart, s.cfg.BreakStart),
			firstNonEmpty(wo.BreakEnd, s.cfg.BreakEnd),
			pauses,
			s.cfg.MinCycleSeconds,
		)

		ev.Action = storage.ScanOut
		ev.SessionID = last.SessionID
		ev.CycleSeconds = &cycle
	}

	id, err := s.storage.SaveScanEvent(ctx, ev)
	if err != nil {
		return storage.WorkOrderScanEvent{}, fmt.Errorf("%s: ошибка сохранения скана: %w", op, err)
	}
	ev.ID = id

	s.log.Debug("scan recorded",
		slog.String("op", op),
		slog.String("work_order_id", ev.WorkOrderID),
		slog.String("serial", ev.SerialBarcode),
		slog.String("action", ev.Action),
		slog.String("session_id", ev.SessionID),
	)

	return ev, nil
}

// LiveSummary пересобирает сессии и сводку из полного журнала сканов заказа.
func (s *ScanService) LiveSummary(ctx context.Context, workOrderID string) (LiveView, error) {
	const op = "service.workorder.LiveSummary"

	if _, err := s.workOrder(ctx, workOrderID); err != nil {
		return LiveView{}, err
	}

	events, err := s.storage.GetScanEvents(ctx, workOrderID)
	if err != nil {
		return LiveView{}, fmt.Errorf("%s: ошибка получения сканов: %w", op, err)
	}

	sessions := SessionsFromEvents(events)

	return LiveView{
		WorkOrderID: workOrderID,
		Sessions:    sessions,
		Summary:     SummaryFromSessions(sessions),
	}, nil
}

// StartPause открывает ручной простой. Одновременно открыт только один.
func (s *ScanService) StartPause(ctx context.Context, workOrderID, reason string) (storage.WorkOrderPauseWindow, error) {
	const op = "service.workorder.StartPause"

	wo, err := s.activeWorkOrder(ctx, workOrderID)
	if err != nil {
		return storage.WorkOrderPauseWindow{}, err
	}

	pauses, err := s.storage.GetPauseWindows(ctx, wo.ID)
	if err != nil {
		return storage.WorkOrderPauseWindow{}, fmt.Errorf("%s: ошибка получения пауз: %w", op, err)
	}
	for _, p := range pauses {
		if p.EndAt == nil {
			return storage.WorkOrderPauseWindow{}, ErrPauseAlreadyOpen
		}
	}

	pause := storage.WorkOrderPauseWindow{
		WorkOrderID: wo.ID,
		StartAt:     s.now().UTC().Truncate(time.Millisecond),
		Reason:      strings.TrimSpace(reason),
	}

	id, err := s.storage.SavePauseWindow(ctx, pause)
	if err != nil {
		return storage.WorkOrderPauseWindow{}, fmt.Errorf("%s: ошибка сохранения паузы: %w", op, err)
	}
	pause.ID = id

	return pause, nil
}

func (s *ScanService) EndPause(ctx context.Context, workOrderID string) error {
	const op = "service.workorder.EndPause"

	if _, err := s.workOrder(ctx, workOrderID); err != nil {
		return err
	}

	ended, err := s.storage.EndOpenPauseWindow(ctx, workOrderID, s.now().UTC().Truncate(time.Millisecond))
	if err != nil {
		return fmt.Errorf("%s: ошибка закрытия паузы: %w", op, err)
	}
	if !ended {
		return ErrNoOpenPause
	}

	return nil
}

func (s *ScanService) ListPauses(ctx context.Context, workOrderID string) ([]storage.WorkOrderPauseWindow, error) {
	const op = "service.workorder.ListPauses"

	pauses, err := s.storage.GetPauseWindows(ctx, workOrderID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return pauses, nil
}

func (s *ScanService) workOrder(ctx context.Context, id string) (*storage.WorkOrder, error) {
	const op = "service.workorder.workOrder"

	if strings.TrimSpace(id) == "" {
		return nil, ErrWorkOrderNotFound
	}

	wo, err := s.storage.GetWorkOrder(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrWorkOrderNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return wo, nil
}

func (s *ScanService) activeWorkOrder(ctx context.Context, id string) (*storage.WorkOrder, error) {
	wo, err := s.workOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if constants.ClosedWorkOrderStatuses[wo.Status] {
		return nil, ErrWorkOrderClosed
	}
	return wo, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
