package save

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"factory-erp/internal/storage"
)

type MockCostReferenceSaver struct {
	mock.Mock
}

func (m *MockCostReferenceSaver) CreateCostCenter(ctx context.Context, cc storage.CostCenter) error {
	return m.Called(ctx, cc).Error(0)
}

func (m *MockCostReferenceSaver) SaveCostCenterValue(ctx context.Context, v storage.CostCenterValue) error {
	return m.Called(ctx, v).Error(0)
}

func (m *MockCostReferenceSaver) SaveCostAllocation(ctx context.Context, a storage.CostAllocation) error {
	return m.Called(ctx, a).Error(0)
}

func TestCreateCostCenter(t *testing.T) {
	saver := new(MockCostReferenceSaver)
	saver.On("CreateCostCenter", mock.Anything, storage.CostCenter{ID: "RENT", Name: "Аренда", Type: "indirect", IsActive: true}).Return(nil)

	body := `{"id":"RENT","name":"Аренда","type":"indirect","is_active":true}`
	rr := httptest.NewRecorder()
	CreateCostCenter(slog.Default(), saver).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/admin/cost-centers", strings.NewReader(body)))

	assert.Equal(t, http.StatusCreated, rr.Code)
	saver.AssertExpectations(t)
}

func TestCreateCostCenter_UnknownType(t *testing.T) {
	saver := new(MockCostReferenceSaver)

	body := `{"id":"RENT","name":"Аренда","type":"overhead"}`
	rr := httptest.NewRecorder()
	CreateCostCenter(slog.Default(), saver).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/admin/cost-centers", strings.NewReader(body)))

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "oneof")
	saver.AssertNotCalled(t, "CreateCostCenter")
}

func TestSaveCostCenterValue_NegativeAmount(t *testing.T) {
	saver := new(MockCostReferenceSaver)

	body := `{"cost_center_id":"RENT","month":"2024-05","amount":-5}`
	rr := httptest.NewRecorder()
	SaveCostCenterValue(slog.Default(), saver).ServeHTTP(rr, httptest.NewRequest(http.MethodPut, "/api/admin/cost-center-values", strings.NewReader(body)))

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	saver.AssertNotCalled(t, "SaveCostCenterValue")
}

func TestSaveCostAllocation(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		status int
	}{
		{"valid", `{"cost_center_id":"RENT","month":"2024-05","allocations":[{"line_id":"L1","percentage":60},{"line_id":"L2","percentage":40}]}`, http.StatusOK},
		{"over 100", `{"cost_center_id":"RENT","month":"2024-05","allocations":[{"line_id":"L1","percentage":60},{"line_id":"L2","percentage":50}]}`, http.StatusBadRequest},
		{"duplicate line", `{"cost_center_id":"RENT","month":"2024-05","allocations":[{"line_id":"L1","percentage":10},{"line_id":"L1","percentage":10}]}`, http.StatusBadRequest},
		{"negative", `{"cost_center_id":"RENT","month":"2024-05","allocations":[{"line_id":"L1","percentage":-1}]}`, http.StatusBadRequest},
		{"bad month", `{"cost_center_id":"RENT","month":"2024/05","allocations":[]}`, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			saver := new(MockCostReferenceSaver)
			saver.On("SaveCostAllocation", mock.Anything, mock.Anything).Return(nil)

			rr := httptest.NewRecorder()
			SaveCostAllocation(slog.Default(), saver).ServeHTTP(rr,
				httptest.NewRequest(http.MethodPut, "/api/admin/cost-allocations", strings.NewReader(tc.body)))

			assert.Equal(t, tc.status, rr.Code)
			if tc.status != http.StatusOK {
				saver.AssertNotCalled(t, "SaveCostAllocation")
			}
		})
	}
}
