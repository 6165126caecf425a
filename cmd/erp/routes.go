package main

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	getadmin "factory-erp/http-server/admin/get"
	saveadmin "factory-erp/http-server/admin/save"
	updateadmin "factory-erp/http-server/admin/update"
	"factory-erp/http-server/costs/calculate"
	"factory-erp/http-server/costs/closing"
	getcosts "factory-erp/http-server/costs/get"
	generate_excel "factory-erp/http-server/generate-report/generate-excel"
	getreports "factory-erp/http-server/production-reports/get"
	savereports "factory-erp/http-server/production-reports/save"
	getworkorder "factory-erp/http-server/work-orders/get"
	"factory-erp/http-server/work-orders/pauses"
	saveworkorder "factory-erp/http-server/work-orders/save"
	"factory-erp/http-server/work-orders/scan"
	updateworkorder "factory-erp/http-server/work-orders/update"
	getworkers "factory-erp/http-server/workers/get"
	saveworkers "factory-erp/http-server/workers/save"
	"factory-erp/internal/config"
	"factory-erp/internal/middleware/auth"
	generate_excel2 "factory-erp/internal/service/generate-excel"
	"factory-erp/internal/service/costing"
	"factory-erp/internal/service/production"
	"factory-erp/internal/service/workorder"
	"factory-erp/internal/storage/mysql"
)

const frontendDir = "./frontend-dist"

type Services struct {
	Costs   *costing.CostService
	Reports *production.ReportService
	Scans   *workorder.ScanService
	Excel   *generate_excel2.GenerateExcelService
}

func routes(cfg config.Config, log *slog.Logger, storage *mysql.Storage, svc Services) *chi.Mux {
	router := chi.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	router.Use(corsHandler.Handler)

	router.Use(middleware.RequestID)
	//ip пользователя
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	rate := cfg.Costing.DefaultHourlyRate

	// справочники затрат
	router.Get("/api/cost-centers", getadmin.GetCostCenters(log, storage))
	router.Get("/api/cost-allocations", getadmin.GetCostAllocations(log, storage))

	// отчёты о выпуске
	router.Post("/api/production-reports", savereports.SaveProductionReport(log, svc.Reports))
	router.Get("/api/production-reports", getreports.GetProductionReports(log, svc.Reports))

	// себестоимость
	router.Post("/api/costs/calculate", calculate.CalculateCost(log, svc.Costs, rate))
	router.Post("/api/costs/calculate-all", calculate.CalculateAllCosts(log, svc.Costs, rate))
	router.Get("/api/costs", getcosts.GetMonthlyCosts(log, svc.Costs))
	router.Get("/api/costs/indirect", getcosts.GetDailyIndirect(log, svc.Costs))

	// наряды и сканирование на посту
	router.Get("/api/work-orders/{id}", getworkorder.GetWorkOrder(log, storage))
	router.Post("/api/work-orders/{id}/scan", scan.ToggleScan(log, svc.Scans))
	router.Get("/api/work-orders/{id}/live", scan.LiveSummary(log, svc.Scans))
	router.Get("/api/work-orders/{id}/pauses", pauses.ListPauses(log, svc.Scans))
	router.Post("/api/work-orders/{id}/pauses", pauses.StartPause(log, svc.Scans))
	router.Post("/api/work-orders/{id}/pauses/end", pauses.EndPause(log, svc.Scans))

	router.Get("/api/report/costs/excel", generate_excel.GenerateCostReportExcel(log, svc.Excel))

	adminRouter := chi.NewRouter()
	adminRouter.Use(auth.BasicAuth(cfg.AdminLogin, cfg.AdminPass))

	adminRouter.Post("/cost-centers", saveadmin.CreateCostCenter(log, storage))
	adminRouter.Put("/cost-centers/{id}", updateadmin.UpdateCostCenter(log, storage))
	adminRouter.Put("/cost-center-values", saveadmin.SaveCostCenterValue(log, storage))
	adminRouter.Put("/cost-allocations", saveadmin.SaveCostAllocation(log, storage))
	adminRouter.Get("/employees", getworkers.GetEmployees(log, storage))
	adminRouter.Put("/employees", saveworkers.SaveEmployees(log, storage))
	adminRouter.Post("/costs/close", closing.CloseMonth(log, svc.Costs, rate))
	adminRouter.Post("/costs/close-all", closing.CloseMonthForAll(log, svc.Costs, rate))
	adminRouter.Post("/work-orders", saveworkorder.CreateWorkOrder(log, storage))
	adminRouter.Put("/work-orders/{id}/status", updateworkorder.UpdateWorkOrderStatus(log, storage))

	router.Mount("/api/admin", adminRouter)

	mountFrontend(router, cfg, log)

	return router
}

// mountFrontend отдаёт собранный SPA, если папка есть рядом с бинарником.
func mountFrontend(router *chi.Mux, cfg config.Config, log *slog.Logger) {
	if _, err := os.Stat(frontendDir); os.IsNotExist(err) {
		log.Warn("Папка фронтенда не найдена, раздаём только API", "path", frontendDir)
		return
	}

	fileServer := http.StripPrefix("/", http.FileServer(http.Dir(frontendDir)))

	router.Handle("/assets/*", fileServer)
	router.Handle("/js/*", fileServer)
	router.Handle("/css/*", fileServer)
	router.Handle("/img/*", fileServer)

	router.With(auth.BasicAuth(cfg.AdminLogin, cfg.AdminPass)).Handle("/admin/*",
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.ServeFile(w, r, filepath.Join(frontendDir, "index.html"))
		}),
	)

	// SPA fallback: любой другой путь → index.html
	router.HandleFunc("/*", func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(frontendDir, r.URL.Path)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			http.ServeFile(w, r, path)
			return
		}
		http.ServeFile(w, r, filepath.Join(frontendDir, "index.html"))
	})
}
