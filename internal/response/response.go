// Package response содержит общие для хендлеров разбор запроса,
// валидацию и перевод доменных ошибок в HTTP-статусы.
package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"factory-erp/internal/service/costing"
	"factory-erp/internal/service/production"
	"factory-erp/internal/service/workorder"
	"factory-erp/internal/storage"
)

var validate = validator.New()

type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

// Validate возвращает поле → нарушенный тег, либо nil.
func Validate(v any) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	fields := make(map[string]string)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			fields[fe.Namespace()] = fe.Tag()
		}
		return fields
	}

	fields["_"] = err.Error()
	return fields
}

// DecodeAndValidate разбирает JSON тела и проверяет validate-теги.
// При false ответ уже записан.
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := render.DecodeJSON(r.Body, dst); err != nil {
		http.Error(w, "Некорректный JSON", http.StatusBadRequest)
		return false
	}

	if fields := Validate(dst); fields != nil {
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, ValidationError{Detail: "Ошибка валидации", Fields: fields})
		return false
	}

	return true
}

type mapping struct {
	err    error
	status int
}

var mappings = []mapping{
	{workorder.ErrRepeatedScan, http.StatusTooManyRequests},
	{storage.ErrNotFound, http.StatusNotFound},
	{workorder.ErrWorkOrderNotFound, http.StatusNotFound},
	{storage.ErrAlreadyExists, http.StatusConflict},
	{storage.ErrMonthClosed, http.StatusConflict},
	{workorder.ErrWorkOrderClosed, http.StatusConflict},
	{workorder.ErrPauseAlreadyOpen, http.StatusConflict},
	{workorder.ErrNoOpenPause, http.StatusConflict},
	{costing.ErrInvalidMonth, http.StatusBadRequest},
	{costing.ErrInvalidAllocation, http.StatusBadRequest},
	{costing.ErrInvalidAmount, http.StatusBadRequest},
	{workorder.ErrInvalidSerial, http.StatusBadRequest},
	{production.ErrInvalidRange, http.StatusBadRequest},
}

func match(err error) (mapping, bool) {
	for _, m := range mappings {
		if errors.Is(err, m.err) {
			return m, true
		}
	}
	return mapping{}, false
}

// Status переводит ошибку сервиса или хранилища в HTTP-статус.
func Status(err error) int {
	if m, ok := match(err); ok {
		return m.status
	}
	return http.StatusInternalServerError
}

// Error пишет ответ по ошибке. Внутренние ошибки логируются и не раскрываются клиенту.
func Error(log *slog.Logger, w http.ResponseWriter, op string, err error) {
	m, ok := match(err)
	if !ok {
		log.Error("Внутренняя ошибка", slog.String("op", op), slog.String("error", err.Error()))
		http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}

	log.Warn("Запрос отклонён", slog.String("op", op), slog.Int("status", m.status), slog.String("error", err.Error()))
	msg := m.err.Error()
	if m.status == http.StatusBadRequest {
		// ошибки валидации несут подробности для пользователя
		msg = err.Error()
	}
	http.Error(w, msg, m.status)
}
