package save

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"factory-erp/internal/response"
	"factory-erp/internal/service/costing"
	"factory-erp/internal/storage"
)

type CostReferenceSaver interface {
	CreateCostCenter(ctx context.Context, cc storage.CostCenter) error
	SaveCostCenterValue(ctx context.Context, v storage.CostCenterValue) error
	SaveCostAllocation(ctx context.Context, a storage.CostAllocation) error
}

func CreateCostCenter(log *slog.Logger, saver CostReferenceSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.CreateCostCenter"

		var cc storage.CostCenter
		if !response.DecodeAndValidate(w, r, &cc) {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := saver.CreateCostCenter(ctx, cc); err != nil {
			response.Error(log, w, op, err)
			return
		}

		log.Info("Центр затрат создан", slog.String("op", op), slog.String("id", cc.ID))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, cc)
	}
}

func SaveCostCenterValue(log *slog.Logger, saver CostReferenceSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.SaveCostCenterValue"

		var v storage.CostCenterValue
		if !response.DecodeAndValidate(w, r, &v) {
			return
		}
		if err := costing.ValidateCostCenterValue(v); err != nil {
			response.Error(log, w, op, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := saver.SaveCostCenterValue(ctx, v); err != nil {
			response.Error(log, w, op, err)
			return
		}

		render.JSON(w, r, v)
	}
}

// SaveCostAllocation заменяет распределение центра затрат по линиям за месяц.
func SaveCostAllocation(log *slog.Logger, saver CostReferenceSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.SaveCostAllocation"

		var a storage.CostAllocation
		if err := render.DecodeJSON(r.Body, &a); err != nil {
			http.Error(w, "Некорректный JSON", http.StatusBadRequest)
			return
		}
		if err := costing.ValidateAllocation(a); err != nil {
			response.Error(log, w, op, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := saver.SaveCostAllocation(ctx, a); err != nil {
			response.Error(log, w, op, err)
			return
		}

		log.Info("Распределение сохранено",
			slog.String("op", op),
			slog.String("cost_center_id", a.CostCenterID),
			slog.String("month", a.Month),
			slog.Int("lines", len(a.Allocations)),
		)

		render.JSON(w, r, a)
	}
}
