package update

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

type CostCenterUpdater interface {
	UpdateCostCenter(ctx context.Context, cc storage.CostCenter) error
}

// UpdateCostCenter обновляет центр затрат. id берётся из пути, а не из тела.
func UpdateCostCenter(log *slog.Logger, updater CostCenterUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.UpdateCostCenter"

		var cc storage.CostCenter
		if err := render.DecodeJSON(r.Body, &cc); err != nil {
			http.Error(w, "Некорректный JSON", http.StatusBadRequest)
			return
		}
		cc.ID = chi.URLParam(r, "id")

		if !validCostCenter(w, r, cc) {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := updater.UpdateCostCenter(ctx, cc); err != nil {
			response.Error(log, w, op, err)
			return
		}

		render.JSON(w, r, cc)
	}
}

func validCostCenter(w http.ResponseWriter, r *http.Request, cc storage.CostCenter) bool {
	if fields := response.Validate(cc); fields != nil {
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError{Detail: "Ошибка валидации", Fields: fields})
		return false
	}
	return true
}
