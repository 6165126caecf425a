package costing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"factory-erp/internal/storage"
)

type CostStorage interface {
	GetCostReferences(ctx context.Context, month string) (storage.CostReferences, error)
	GetSupervisorHourlyRates(ctx context.Context) (map[string]float64, error)
	GetProductionReportsByDateRange(ctx context.Context, from, to string) ([]storage.ProductionReport, error)
	GetMonthlyProductionCost(ctx context.Context, productID, month string) (*storage.MonthlyProductionCost, error)
	GetMonthlyProductionCosts(ctx context.Context, month string) ([]storage.MonthlyProductionCost, error)
	SaveMonthlyProductionCost(ctx context.Context, cost storage.MonthlyProductionCost) error
	CloseMonthlyProductionCost(ctx context.Context, productID, month string, closedAt time.Time) (bool, error)
}

type CostService struct {
	log         *slog.Logger
	storage     CostStorage
	parallelism int
	now         func() time.Time
}

func NewCostService(log *slog.Logger, storage CostStorage, parallelism int) *CostService {
	if parallelism < 1 {
		parallelism = 1
	}
	return &CostService{
		log:         log,
		storage:     storage,
		parallelism: parallelism,
		now:         time.Now,
	}
}

// DailyIndirect загружает справочники месяца и возвращает косвенные затраты линии за день.
func (s *CostService) DailyIndirect(ctx context.Context, lineID, month string) (float64, error) {
	const op = "service.costing.DailyIndirect"

	if _, err := ParseMonth(month); err != nil {
		return 0, err
	}

	refs, err := s.storage.GetCostReferences(ctx, month)
	if err != nil {
		return 0, fmt.Errorf("%s: ошибка получения справочников затрат: %w", op, err)
	}

	return DailyIndirectCost(lineID, month, refs), nil
}

// Calculate загружает справочники и ставки бригадиров параллельно и считает себестоимость продукта.
func (s *CostService) Calculate(ctx context.Context, productID, month string, hourlyRate float64) (storage.MonthlyProductionCost, error) {
	refs, rates, err := s.loadInputs(ctx, month, hourlyRate)
	if err != nil {
		return storage.MonthlyProductionCost{}, err
	}

	return s.CalculateMonthlyProductionCost(ctx, productID, month, hourlyRate, refs, rates)
}

// CalculateMonthlyProductionCost пересчитывает себестоимость продукта за месяц.
// Закрытый месяц возвращается как есть, без пересчёта.
func (s *CostService) CalculateMonthlyProductionCost(
	ctx context.Context,
	productID, month string,
	hourlyRate float64,
	refs storage.CostReferences,
	supervisorRates map[string]float64,
) (storage.MonthlyProductionCost, error) {
	const op = "service.costing.CalculateMonthlyProductionCost"

	if strings.TrimSpace(productID) == "" {
		return storage.MonthlyProductionCost{}, fmt.Errorf("%s: product_id is required", op)
	}

	from, to, err := MonthRange(month)
	if err != nil {
		return storage.MonthlyProductionCost{}, err
	}

	if closed, ok, err := s.closedCost(ctx, productID, month); err != nil {
		return storage.MonthlyProductionCost{}, fmt.Errorf("%s: %w", op, err)
	} else if ok {
		return closed, nil
	}

	reports, err := s.storage.GetProductionReportsByDateRange(ctx, from, to)
	if err != nil {
		return storage.MonthlyProductionCost{}, fmt.Errorf("%s: ошибка получения отчётов за %s: %w", op, month, err)
	}

	return s.computeAndSave(ctx, productID, month, hourlyRate, reports, refs, supervisorRates)
}

// CalculateAll считает себестоимость всех продуктов, по которым есть отчёты за месяц.
func (s *CostService) CalculateAll(ctx context.Context, month string, hourlyRate float64) ([]storage.MonthlyProductionCost, error) {
	return s.forAllProducts(ctx, month, hourlyRate, false)
}

// CloseMonth пересчитывает и закрывает месяц для продукта. Повторное закрытие ничего не меняет.
func (s *CostService) CloseMonth(ctx context.Context, productID, month string, hourlyRate float64) (storage.MonthlyProductionCost, error) {
	cost, err := s.Calculate(ctx, productID, month, hourlyRate)
	if err != nil {
		return storage.MonthlyProductionCost{}, err
	}

	return s.close(ctx, cost)
}

func (s *CostService) CloseMonthForAll(ctx context.Context, month string, hourlyRate float64) ([]storage.MonthlyProductionCost, error) {
	return s.forAllProducts(ctx, month, hourlyRate, true)
}

func (s *CostService) ListMonthlyCosts(ctx context.Context, month string) ([]storage.MonthlyProductionCost, error) {
	const op = "service.costing.ListMonthlyCosts"

	if _, err := ParseMonth(month); err != nil {
		return nil, err
	}

	costs, err := s.storage.GetMonthlyProductionCosts(ctx, month)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return costs, nil
}

func (s *CostService) forAllProducts(ctx context.Context, month string, hourlyRate float64, closeMonth bool) ([]storage.MonthlyProductionCost, error) {
	const op = "service.costing.forAllProducts"

	from, to, err := MonthRange(month)
	if err != nil {
		return nil, err
	}

	refs, rates, err := s.loadInputs(ctx, month, hourlyRate)
	if err != nil {
		return nil, err
	}

	reports, err := s.storage.GetProductionReportsByDateRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка получения отчётов за %s: %w", op, month, err)
	}

	productIDs := distinctProducts(reports)
	results := make([]storage.MonthlyProductionCost, len(productIDs))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism)

	for i, productID := range productIDs {
		g.Go(func() error {
			cost, ok, err := s.closedCost(gCtx, productID, month)
			if err != nil {
				return fmt.Errorf("%s: product %s: %w", op, productID, err)
			}
			if !ok {
				cost, err = s.computeAndSave(gCtx, productID, month, hourlyRate, reports, refs, rates)
				if err != nil {
					return err
				}
			}

			if closeMonth {
				cost, err = s.close(gCtx, cost)
				if err != nil {
					return err
				}
			}

			results[i] = cost
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.log.Info("monthly costs processed",
		slog.String("op", op),
		slog.String("month", month),
		slog.Int("products", len(results)),
		slog.Bool("close", closeMonth),
	)

	return results, nil
}

func (s *CostService) loadInputs(ctx context.Context, month string, hourlyRate float64) (storage.CostReferences, map[string]float64, error) {
	const op = "service.costing.loadInputs"

	if hourlyRate < 0 {
		return storage.CostReferences{}, nil, fmt.Errorf("%w: hourly rate %.2f", ErrInvalidAmount, hourlyRate)
	}
	if _, err := ParseMonth(month); err != nil {
		return storage.CostReferences{}, nil, err
	}

	var (
		refs  storage.CostReferences
		rates map[string]float64
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		refs, err = s.storage.GetCostReferences(gCtx, month)
		if err != nil {
			return fmt.Errorf("references: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		rates, err = s.storage.GetSupervisorHourlyRates(gCtx)
		if err != nil {
			return fmt.Errorf("supervisor rates: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return storage.CostReferences{}, nil, fmt.Errorf("%s: %w", op, err)
	}

	return refs, rates, nil
}

// closedCost возвращает сохранённую запись, если месяц по продукту уже закрыт.
func (s *CostService) closedCost(ctx context.Context, productID, month string) (storage.MonthlyProductionCost, bool, error) {
	existing, err := s.storage.GetMonthlyProductionCost(ctx, productID, month)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.MonthlyProductionCost{}, false, nil
		}
		return storage.MonthlyProductionCost{}, false, err
	}
	if existing != nil && existing.IsClosed {
		return *existing, true, nil
	}
	return storage.MonthlyProductionCost{}, false, nil
}

func (s *CostService) computeAndSave(
	ctx context.Context,
	productID, month string,
	hourlyRate float64,
	reports []storage.ProductionReport,
	refs storage.CostReferences,
	rates map[string]float64,
) (storage.MonthlyProductionCost, error) {
	const op = "service.costing.computeAndSave"

	cost := ComputeMonthlyProductionCost(productID, month, hourlyRate, reports, refs, rates)
	cost.CalculatedAt = s.now()

	err := s.storage.SaveMonthlyProductionCost(ctx, cost)
	if errors.Is(err, storage.ErrMonthClosed) {
		// месяц закрыли между чтением и записью: отдаём закрытую версию
		closed, ok, rerr := s.closedCost(ctx, productID, month)
		if rerr != nil {
			return storage.MonthlyProductionCost{}, fmt.Errorf("%s: %w", op, rerr)
		}
		if ok {
			return closed, nil
		}
	}
	if err != nil {
		return storage.MonthlyProductionCost{}, fmt.Errorf("%s: ошибка сохранения себестоимости %s: %w",
			op, storage.MonthlyCostKey(productID, month), err)
	}

	return cost, nil
}

func (s *CostService) close(ctx context.Context, cost storage.MonthlyProductionCost) (storage.MonthlyProductionCost, error) {
	const op = "service.costing.close"

	if cost.IsClosed {
		return cost, nil
	}

	closedAt := s.now()
	updated, err := s.storage.CloseMonthlyProductionCost(ctx, cost.ProductID, cost.Month, closedAt)
	if err != nil {
		return storage.MonthlyProductionCost{}, fmt.Errorf("%s: ошибка закрытия месяца %s: %w",
			op, storage.MonthlyCostKey(cost.ProductID, cost.Month), err)
	}

	if !updated {
		// закрыто параллельным вызовом: возвращаем то, что зафиксировано
		closed, ok, err := s.closedCost(ctx, cost.ProductID, cost.Month)
		if err != nil {
			return storage.MonthlyProductionCost{}, fmt.Errorf("%s: %w", op, err)
		}
		if ok {
			return closed, nil
		}
		return storage.MonthlyProductionCost{}, fmt.Errorf("%s: %s: %w", op, storage.MonthlyCostKey(cost.ProductID, cost.Month), storage.ErrNotFound)
	}

	cost.IsClosed = true
	cost.ClosedAt = &closedAt

	s.log.Info("month closed",
		slog.String("op", op),
		slog.String("product_id", cost.ProductID),
		slog.String("month", cost.Month),
		slog.Float64("total_production_cost", cost.TotalProductionCost),
	)

	return cost, nil
}

func distinctProducts(reports []storage.ProductionReport) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, r := range reports {
		if r.ProductID == "" {
			continue
		}
		if _, ok := seen[r.ProductID]; ok {
			continue
		}
		seen[r.ProductID] = struct{}{}
		ids = append(ids, r.ProductID)
	}
	sort.Strings(ids)
	return ids
}
