package save

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"factory-erp/internal/storage"
)

type MockWorkOrderCreator struct {
	mock.Mock
}

func (m *MockWorkOrderCreator) CreateWorkOrder(ctx context.Context, wo storage.WorkOrder) error {
	return m.Called(ctx, wo).Error(0)
}

func TestCreateWorkOrder_Success(t *testing.T) {
	creator := new(MockWorkOrderCreator)
	creator.On("CreateWorkOrder", mock.Anything, mock.MatchedBy(func(wo storage.WorkOrder) bool {
		return wo.ID == "WO-1" && wo.Status == storage.WorkOrderPending && wo.BreakStart == "13:00"
	})).Return(nil)

	body := `{"id":"WO-1","line_id":"L1","product_id":"P1","quantity":50,"status":"completed","break_start_time":"13:00","break_end_time":"13:30"}`
	rr := httptest.NewRecorder()
	CreateWorkOrder(slog.Default(), creator).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/admin/work-orders", strings.NewReader(body)))

	assert.Equal(t, http.StatusCreated, rr.Code)

	var resp storage.WorkOrder
	require.NoError(t, render.DecodeJSON(strings.NewReader(rr.Body.String()), &resp))
	assert.Equal(t, storage.WorkOrderPending, resp.Status)
	creator.AssertExpectations(t)
}

func TestCreateWorkOrder_BadBreakTime(t *testing.T) {
	creator := new(MockWorkOrderCreator)

	body := `{"id":"WO-1","line_id":"L1","product_id":"P1","quantity":50,"break_start_time":"1pm"}`
	rr := httptest.NewRecorder()
	CreateWorkOrder(slog.Default(), creator).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/admin/work-orders", strings.NewReader(body)))

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "WorkOrder.BreakStart")
	creator.AssertNotCalled(t, "CreateWorkOrder")
}

func TestCreateWorkOrder_Duplicate(t *testing.T) {
	creator := new(MockWorkOrderCreator)
	creator.On("CreateWorkOrder", mock.Anything, mock.Anything).Return(storage.ErrAlreadyExists)

	body := `{"id":"WO-1","line_id":"L1","product_id":"P1","quantity":50}`
	rr := httptest.NewRecorder()
	CreateWorkOrder(slog.Default(), creator).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/admin/work-orders", strings.NewReader(body)))

	assert.Equal(t, http.StatusConflict, rr.Code)
}
