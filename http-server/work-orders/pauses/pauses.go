package pauses

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"factory-erp/internal/response"
	"factory-erp/internal/storage"
)

type PauseManager interface {
	StartPause(ctx context.Context, workOrderID, reason string) (storage.WorkOrderPauseWindow, error)
	EndPause(ctx context.Context, workOrderID string) error
	ListPauses(ctx context.Context, workOrderID string) ([]storage.WorkOrderPauseWindow, error)
}

type Request struct {
	Reason string `json:"reason"`
}

func StartPause(log *slog.Logger, pauses PauseManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.work-orders.StartPause"

		var req Request
		// тело необязательно
		if err := render.DecodeJSON(r.Body, &req); err != nil && !errors.Is(err, io.EOF) {
			http.Error(w, "Некорректный JSON", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		pause, err := pauses.StartPause(ctx, chi.URLParam(r, "id"), req.Reason)
		if err != nil {
			response.Error(log, w, op, err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, pause)
	}
}

func EndPause(log *slog.Logger, pauses PauseManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.work-orders.EndPause"

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := pauses.EndPause(ctx, chi.URLParam(r, "id")); err != nil {
			response.Error(log, w, op, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func ListPauses(log *slog.Logger, pauses PauseManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.work-orders.ListPauses"

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		list, err := pauses.ListPauses(ctx, chi.URLParam(r, "id"))
		if err != nil {
			response.Error(log, w, op, err)
			return
		}

		render.JSON(w, r, list)
	}
}
