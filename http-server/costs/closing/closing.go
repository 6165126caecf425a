package closing

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"factory-erp/http-server/costs/calculate"
	"factory-erp/internal/response"
	"factory-erp/internal/storage"
)

type MonthCloser interface {
	CloseMonth(ctx context.Context, productID, month string, hourlyRate float64) (storage.MonthlyProductionCost, error)
	CloseMonthForAll(ctx context.Context, month string, hourlyRate float64) ([]storage.MonthlyProductionCost, error)
}

// CloseMonth пересчитывает и закрывает месяц по продукту. Повторный вызов возвращает уже закрытую запись.
func CloseMonth(log *slog.Logger, closer MonthCloser, defaultRate float64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.costs.CloseMonth"

		var req calculate.Request
		if !response.DecodeAndValidate(w, r, &req) {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		cost, err := closer.CloseMonth(ctx, req.ProductID, req.Month, calculate.Rate(req.HourlyRate, defaultRate))
		if err != nil {
			response.Error(log, w, op, err)
			return
		}

		log.Info("Месяц закрыт", slog.String("op", op), slog.String("product_id", req.ProductID), slog.String("month", req.Month))

		render.JSON(w, r, cost)
	}
}

func CloseMonthForAll(log *slog.Logger, closer MonthCloser, defaultRate float64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.costs.CloseMonthForAll"

		var req calculate.MonthRequest
		if !response.DecodeAndValidate(w, r, &req) {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
		defer cancel()

		costs, err := closer.CloseMonthForAll(ctx, req.Month, calculate.Rate(req.HourlyRate, defaultRate))
		if err != nil {
			response.Error(log, w, op, err)
			return
		}

		log.Info("Месяц закрыт по всем продуктам", slog.String("op", op), slog.String("month", req.Month), slog.Int("products", len(costs)))

		render.JSON(w, r, costs)
	}
}
