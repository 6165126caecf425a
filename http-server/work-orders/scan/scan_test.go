package scan

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"factory-erp/internal/service/workorder"
	"factory-erp/internal/storage"
)

type MockScanner struct {
	mock.Mock
}

func (m *MockScanner) ToggleScan(ctx context.Context, req workorder.ScanRequest) (storage.WorkOrderScanEvent, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(storage.WorkOrderScanEvent), args.Error(1)
}

func (m *MockScanner) LiveSummary(ctx context.Context, workOrderID string) (workorder.LiveView, error) {
	args := m.Called(ctx, workOrderID)
	return args.Get(0).(workorder.LiveView), args.Error(1)
}

func newRouter(scanner Scanner) http.Handler {
	r := chi.NewRouter()
	r.Post("/api/work-orders/{id}/scan", ToggleScan(slog.Default(), scanner))
	r.Get("/api/work-orders/{id}/live", LiveSummary(slog.Default(), scanner))
	return r
}

func TestToggleScan_Success(t *testing.T) {
	scanner := new(MockScanner)
	scanner.On("ToggleScan", mock.Anything, workorder.ScanRequest{
		WorkOrderID: "WO-1", SerialBarcode: "SN-1", EmployeeID: "E1",
	}).Return(storage.WorkOrderScanEvent{
		ID: 1, WorkOrderID: "WO-1", SerialBarcode: "SN-1", Action: storage.ScanIn, SessionID: "s1",
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/work-orders/WO-1/scan",
		strings.NewReader(`{"serial_barcode":"SN-1","employee_id":"E1"}`))
	rr := httptest.NewRecorder()
	newRouter(scanner).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp storage.WorkOrderScanEvent
	require.NoError(t, render.DecodeJSON(strings.NewReader(rr.Body.String()), &resp))
	assert.Equal(t, storage.ScanIn, resp.Action)
	assert.Equal(t, "s1", resp.SessionID)
	scanner.AssertExpectations(t)
}

func TestToggleScan_ErrorStatuses(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"repeated", workorder.ErrRepeatedScan, http.StatusTooManyRequests},
		{"empty serial", workorder.ErrInvalidSerial, http.StatusBadRequest},
		{"unknown order", workorder.ErrWorkOrderNotFound, http.StatusNotFound},
		{"closed order", workorder.ErrWorkOrderClosed, http.StatusConflict},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			scanner := new(MockScanner)
			scanner.On("ToggleScan", mock.Anything, mock.Anything).Return(storage.WorkOrderScanEvent{}, tc.err)

			req := httptest.NewRequest(http.MethodPost, "/api/work-orders/WO-1/scan", strings.NewReader(`{"serial_barcode":"SN-1"}`))
			rr := httptest.NewRecorder()
			newRouter(scanner).ServeHTTP(rr, req)

			assert.Equal(t, tc.status, rr.Code)
		})
	}
}

func TestLiveSummary(t *testing.T) {
	last := time.Date(2024, 5, 10, 8, 1, 0, 0, time.UTC)
	scanner := new(MockScanner)
	scanner.On("LiveSummary", mock.Anything, "WO-1").Return(workorder.LiveView{
		WorkOrderID: "WO-1",
		Sessions:    []storage.WorkOrderScanSession{{SessionID: "s1", Status: storage.SessionClosed}},
		Summary:     storage.WorkOrderLiveSummary{CompletedUnits: 1, AvgCycleSeconds: 60, LastScanAt: &last},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/work-orders/WO-1/live", nil)
	rr := httptest.NewRecorder()
	newRouter(scanner).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp workorder.LiveView
	require.NoError(t, render.DecodeJSON(strings.NewReader(rr.Body.String()), &resp))
	assert.Equal(t, 1, resp.Summary.CompletedUnits)
	assert.Equal(t, 60.0, resp.Summary.AvgCycleSeconds)
	require.Len(t, resp.Sessions, 1)
}
