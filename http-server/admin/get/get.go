package get

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

type CostReferenceProvider interface {
	GetCostCenters(ctx context.Context) ([]storage.CostCenter, error)
	GetCostAllocations(ctx context.Context, month string) ([]storage.CostAllocation, error)
}

func GetCostCenters(log *slog.Logger, refs CostReferenceProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.GetCostCenters"

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		centers, err := refs.GetCostCenters(ctx)
		if err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("ошибка получения центров затрат")
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, centers)
	}
}

func GetCostAllocations(log *slog.Logger, refs CostReferenceProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.GetCostAllocations"

		month := r.URL.Query().Get("month")
		if _, err := costing.ParseMonth(month); err != nil {
			response.Error(log, w, op, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		allocations, err := refs.GetCostAllocations(ctx, month)
		if err != nil {
			response.Error(log, w, op, err)
			return
		}

		render.JSON(w, r, allocations)
	}
}
