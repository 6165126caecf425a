package scan

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"factory-erp/internal/response"
	"factory-erp/internal/service/workorder"
	"factory-erp/internal/storage"
)

type Scanner interface {
	ToggleScan(ctx context.Context, req workorder.ScanRequest) (storage.WorkOrderScanEvent, error)
	LiveSummary(ctx context.Context, workOrderID string) (workorder.LiveView, error)
}

type Request struct {
	SerialBarcode string `json:"serial_barcode"`
	EmployeeID    string `json:"employee_id"`
}

// ToggleScan: скан серийника на посту: первый скан открывает сессию, следующий закрывает.
func ToggleScan(log *slog.Logger, scanner Scanner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.work-orders.ToggleScan"

		var req Request
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			http.Error(w, "Некорректный JSON", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		ev, err := scanner.ToggleScan(ctx, workorder.ScanRequest{
			WorkOrderID:   chi.URLParam(r, "id"),
			SerialBarcode: req.SerialBarcode,
			EmployeeID:    req.EmployeeID,
		})
		if err != nil {
			response.Error(log, w, op, err)
			return
		}

		render.JSON(w, r, ev)
	}
}

func LiveSummary(log *slog.Logger, scanner Scanner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.work-orders.LiveSummary"

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		view, err := scanner.LiveSummary(ctx, chi.URLParam(r, "id"))
		if err != nil {
			response.Error(log, w, op, err)
			return
		}

		render.JSON(w, r, view)
	}
}
