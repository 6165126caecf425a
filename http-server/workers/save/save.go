package save

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"factory-erp/internal/response"
	"factory-erp/internal/storage"
)

type EmployeesSaver interface {
	SaveEmployees(ctx context.Context, emps []storage.Employee) error
}

type Request struct {
	Employees []storage.Employee `json:"employees"`
}

// SaveEmployees создаёт или обновляет сотрудников пачкой. Ставка бригадира участвует в расчёте себестоимости.
func SaveEmployees(log *slog.Logger, saver EmployeesSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.workers.save.SaveEmployees"

		var req Request
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Invalid JSON", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Bad request: invalid JSON", http.StatusBadRequest)
			return
		}

		if len(req.Employees) == 0 {
			log.Warn("Пустой список сотрудников", slog.String("op", op))
			http.Error(w, "No employees provided", http.StatusBadRequest)
			return
		}

		for i, e := range req.Employees {
			if fields := response.Validate(e); fields != nil {
				render.Status(r, http.StatusUnprocessableEntity)
				render.JSON(w, r, response.ValidationError{
					Detail: fmt.Sprintf("Сотрудник %d: ошибка валидации", i),
					Fields: fields,
				})
				return
			}
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := saver.SaveEmployees(ctx, req.Employees); err != nil {
			log.Error("Ошибка сохранения сотрудников", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		log.Info("Сотрудники сохранены", slog.Int("saved_count", len(req.Employees)))

		render.JSON(w, r, map[string]interface{}{
			"status": "success",
			"saved":  len(req.Employees),
		})
	}
}
