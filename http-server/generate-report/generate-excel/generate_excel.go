package generate_excel

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"factory-erp/internal/response"
	"factory-erp/internal/service/costing"
)

type GenerateExcelHandler interface {
	GenerateExcel(ctx context.Context, month string) ([]byte, error)
}

// GenerateCostReportExcel отдаёт xlsx с себестоимостью за месяц. Без month берётся текущий.
func GenerateCostReportExcel(log *slog.Logger, gen GenerateExcelHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.report.GenerateCostReportExcel"

		month := r.URL.Query().Get("month")
		if month == "" {
			month = time.Now().Format("2006-01")
		}
		if _, err := costing.ParseMonth(month); err != nil {
			response.Error(log, w, op, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		excelBytes, err := gen.GenerateExcel(ctx, month)
		if err != nil {
			log.Error("failed to generate excel", "op", op, "err", err)
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		fileName := fmt.Sprintf("Cost_Report_%s.xlsx", month)

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", "attachment; filename="+fileName)
		w.Write(excelBytes)
	}
}
