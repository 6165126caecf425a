package get

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"factory-erp/internal/response"
	"factory-erp/internal/storage"
)

type CostReader interface {
	ListMonthlyCosts(ctx context.Context, month string) ([]storage.MonthlyProductionCost, error)
	DailyIndirect(ctx context.Context, lineID, month string) (float64, error)
}

type IndirectResponse struct {
	LineID            string  `json:"line_id"`
	Month             string  `json:"month"`
	DailyIndirectCost float64 `json:"daily_indirect_cost"`
}

func GetMonthlyCosts(log *slog.Logger, costs CostReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.costs.GetMonthlyCosts"

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		list, err := costs.ListMonthlyCosts(ctx, r.URL.Query().Get("month"))
		if err != nil {
			response.Error(log, w, op, err)
			return
		}

		render.JSON(w, r, list)
	}
}

func GetDailyIndirect(log *slog.Logger, costs CostReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.costs.GetDailyIndirect"

		lineID := r.URL.Query().Get("line_id")
		month := r.URL.Query().Get("month")
		if lineID == "" {
			http.Error(w, "line_id is required", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		daily, err := costs.DailyIndirect(ctx, lineID, month)
		if err != nil {
			response.Error(log, w, op, err)
			return
		}

		render.JSON(w, r, IndirectResponse{LineID: lineID, Month: month, DailyIndirectCost: daily})
	}
}
