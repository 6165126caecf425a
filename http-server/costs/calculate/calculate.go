package calculate

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"factory-erp/internal/response"
	"factory-erp/internal/storage"
)

type CostCalculator interface {
	Calculate(ctx context.Context, productID, month string, hourlyRate float64) (storage.MonthlyProductionCost, error)
	CalculateAll(ctx context.Context, month string, hourlyRate float64) ([]storage.MonthlyProductionCost, error)
}

// Request: если hourly_rate не передан, берётся ставка из конфига.
type Request struct {
	ProductID  string   `json:"product_id" validate:"required"`
	Month      string   `json:"month" validate:"required,datetime=2006-01"`
	HourlyRate *float64 `json:"hourly_rate" validate:"omitempty,min=0"`
}

type MonthRequest struct {
	Month      string   `json:"month" validate:"required,datetime=2006-01"`
	HourlyRate *float64 `json:"hourly_rate" validate:"omitempty,min=0"`
}

func Rate(rate *float64, def float64) float64 {
	if rate == nil {
		return def
	}
	return *rate
}

func CalculateCost(log *slog.Logger, calc CostCalculator, defaultRate float64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.costs.CalculateCost"

		var req Request
		if !response.DecodeAndValidate(w, r, &req) {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		cost, err := calc.Calculate(ctx, req.ProductID, req.Month, Rate(req.HourlyRate, defaultRate))
		if err != nil {
			response.Error(log, w, op, err)
			return
		}

		render.JSON(w, r, cost)
	}
}

func CalculateAllCosts(log *slog.Logger, calc CostCalculator, defaultRate float64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.costs.CalculateAllCosts"

		var req MonthRequest
		if !response.DecodeAndValidate(w, r, &req) {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
		defer cancel()

		costs, err := calc.CalculateAll(ctx, req.Month, Rate(req.HourlyRate, defaultRate))
		if err != nil {
			response.Error(log, w, op, err)
			return
		}

		log.Info("Себестоимость пересчитана", slog.String("op", op), slog.String("month", req.Month), slog.Int("products", len(costs)))

		render.JSON(w, r, costs)
	}
}
