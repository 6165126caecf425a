package update

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"factory-erp/internal/storage"
)

type MockCostCenterUpdater struct {
	mock.Mock
}

func (m *MockCostCenterUpdater) UpdateCostCenter(ctx context.Context, cc storage.CostCenter) error {
	return m.Called(ctx, cc).Error(0)
}

func newRouter(u CostCenterUpdater) http.Handler {
	r := chi.NewRouter()
	r.Put("/api/admin/cost-centers/{id}", UpdateCostCenter(slog.Default(), u))
	return r
}

func TestUpdateCostCenter_IDFromPath(t *testing.T) {
	updater := new(MockCostCenterUpdater)
	updater.On("UpdateCostCenter", mock.Anything, storage.CostCenter{ID: "RENT", Name: "Аренда цеха", Type: "indirect"}).Return(nil)

	body := `{"id":"OTHER","name":"Аренда цеха","type":"indirect","is_active":false}`
	rr := httptest.NewRecorder()
	newRouter(updater).ServeHTTP(rr, httptest.NewRequest(http.MethodPut, "/api/admin/cost-centers/RENT", strings.NewReader(body)))

	assert.Equal(t, http.StatusOK, rr.Code)
	updater.AssertExpectations(t)
}

func TestUpdateCostCenter_NotFound(t *testing.T) {
	updater := new(MockCostCenterUpdater)
	updater.On("UpdateCostCenter", mock.Anything, mock.Anything).Return(storage.ErrNotFound)

	body := `{"name":"Аренда цеха","type":"direct"}`
	rr := httptest.NewRecorder()
	newRouter(updater).ServeHTTP(rr, httptest.NewRequest(http.MethodPut, "/api/admin/cost-centers/NOPE", strings.NewReader(body)))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
