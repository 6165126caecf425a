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

type WorkOrderCreator interface {
	CreateWorkOrder(ctx context.Context, wo storage.WorkOrder) error
}

// CreateWorkOrder заводит наряд в статусе pending. Пустые break_start_time/break_end_time
// означают перерыв по умолчанию из конфига.
func CreateWorkOrder(log *slog.Logger, creator WorkOrderCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.work-orders.CreateWorkOrder"

		var wo storage.WorkOrder
		if !response.DecodeAndValidate(w, r, &wo) {
			return
		}
		wo.Status = storage.WorkOrderPending
		wo.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := creator.CreateWorkOrder(ctx, wo); err != nil {
			response.Error(log, w, op, err)
			return
		}

		log.Info("Наряд создан", slog.String("op", op), slog.String("id", wo.ID), slog.String("line_id", wo.LineID))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, wo)
	}
}
