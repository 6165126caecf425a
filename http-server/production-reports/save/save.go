package save

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"factory-erp/internal/response"
	"factory-erp/internal/storage"
)

type ReportCreator interface {
	Create(ctx context.Context, r storage.ProductionReport) (storage.ProductionReport, error)
}

func SaveProductionReport(log *slog.Logger, reports ReportCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.production-reports.SaveProductionReport"

		var req storage.ProductionReport
		if !response.DecodeAndValidate(w, r, &req) {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		saved, err := reports.Create(ctx, req)
		if err != nil {
			response.Error(log, w, op, err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, saved)
	}
}
