package get

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"factory-erp/internal/response"
	"factory-erp/internal/storage"
)

type WorkOrderProvider interface {
	GetWorkOrder(ctx context.Context, id string) (*storage.WorkOrder, error)
}

func GetWorkOrder(log *slog.Logger, provider WorkOrderProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.work-orders.GetWorkOrder"

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		wo, err := provider.GetWorkOrder(ctx, chi.URLParam(r, "id"))
		if err != nil {
			response.Error(log, w, op, err)
			return
		}

		render.JSON(w, r, wo)
	}
}
