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

type ReportLister interface {
	List(ctx context.Context, from, to string) ([]storage.ProductionReport, error)
}

func GetProductionReports(log *slog.Logger, reports ReportLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.production-reports.GetProductionReports"

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		list, err := reports.List(ctx, r.URL.Query().Get("from"), r.URL.Query().Get("to"))
		if err != nil {
			response.Error(log, w, op, err)
			return
		}

		render.JSON(w, r, list)
	}
}
