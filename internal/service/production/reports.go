package production

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"factory-erp/internal/storage"
)

const dateLayout = "2006-01-02"

var ErrInvalidRange = errors.New("invalid date range, expected YYYY-MM-DD and from <= to")

type ReportStorage interface {
	SaveProductionReport(ctx context.Context, r storage.ProductionReport) (int64, error)
	GetProductionReportsByDateRange(ctx context.Context, from, to string) ([]storage.ProductionReport, error)
}

type ReportService struct {
	log     *slog.Logger
	storage ReportStorage
	now     func() time.Time
	newCode func(date string) string
}

func NewReportService(log *slog.Logger, storage ReportStorage) *ReportService {
	return &ReportService{
		log:     log,
		storage: storage,
		now:     time.Now,
		newCode: NewReportCode,
	}
}

// NewReportCode возвращает код вида PR-20240510-1a2b3c4d.
func NewReportCode(date string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return "PR-" + strings.ReplaceAll(date, "-", "") + "-" + suffix
}

// Create сохраняет отчёт о выпуске. Отчёты не редактируются, только добавляются.
func (s *ReportService) Create(ctx context.Context, r storage.ProductionReport) (storage.ProductionReport, error) {
	const op = "service.production.Create"

	r.ReportCode = strings.TrimSpace(r.ReportCode)
	if r.ReportCode == "" {
		r.ReportCode = s.newCode(r.Date)
	}
	r.CreatedAt = s.now().UTC().Truncate(time.Millisecond)

	id, err := s.storage.SaveProductionReport(ctx, r)
	if err != nil {
		return storage.ProductionReport{}, fmt.Errorf("%s: %w", op, err)
	}
	r.ID = id

	s.log.Info("Отчёт о выпуске сохранён",
		slog.String("op", op),
		slog.String("report_code", r.ReportCode),
		slog.String("product_id", r.ProductID),
		slog.String("line_id", r.LineID),
	)

	return r, nil
}

// List возвращает отчёты за [from, to]. Пустой from: начало текущего месяца, пустой to, сегодня.
func (s *ReportService) List(ctx context.Context, from, to string) ([]storage.ProductionReport, error) {
	const op = "service.production.List"

	now := s.now()
	fDate := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	tDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var err error
	if from != "" {
		if fDate, err = time.Parse(dateLayout, from); err != nil {
			return nil, fmt.Errorf("%w: from=%q", ErrInvalidRange, from)
		}
	}
	if to != "" {
		if tDate, err = time.Parse(dateLayout, to); err != nil {
			return nil, fmt.Errorf("%w: to=%q", ErrInvalidRange, to)
		}
	}
	if fDate.After(tDate) {
		return nil, fmt.Errorf("%w: %s > %s", ErrInvalidRange, fDate.Format(dateLayout), tDate.Format(dateLayout))
	}

	reports, err := s.storage.GetProductionReportsByDateRange(ctx, fDate.Format(dateLayout), tDate.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return reports, nil
}
