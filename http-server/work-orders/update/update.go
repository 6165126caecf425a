package update

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"factory-erp/internal/response"
)

type StatusUpdater interface {
	UpdateWorkOrderStatus(ctx context.Context, id, status string) error
}

type Request struct {
	Status string `json:"status" validate:"required,oneof=pending in_progress completed cancelled"`
}

func UpdateWorkOrderStatus(log *slog.Logger, updater StatusUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.work-orders.UpdateWorkOrderStatus"

		var req Request
		if !response.DecodeAndValidate(w, r, &req) {
			return
		}
		id := chi.URLParam(r, "id")

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := updater.UpdateWorkOrderStatus(ctx, id, req.Status); err != nil {
			response.Error(log, w, op, err)
			return
		}

		log.Info("Статус наряда обновлён", slog.String("op", op), slog.String("id", id), slog.String("status", req.Status))

		render.JSON(w, r, map[string]string{"id": id, "status": req.Status})
	}
}
