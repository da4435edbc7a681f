package get

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ev-assembly/internal/storage"
)

type MockOrdersProvider struct {
	mock.Mock
}

func (m *MockOrdersProvider) GetOrders(ctx context.Context, status string, vehicleTypeID int64) ([]*storage.ProductionOrder, error) {
	args := m.Called(ctx, status, vehicleTypeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*storage.ProductionOrder), args.Error(1)
}

func (m *MockOrdersProvider) GetOrder(ctx context.Context, id int64) (*storage.ProductionOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.ProductionOrder), args.Error(1)
}

func (m *MockOrdersProvider) GetActiveOrder(ctx context.Context) (*storage.ProductionOrder, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.ProductionOrder), args.Error(1)
}

func (m *MockOrdersProvider) GetCompletionChecks(ctx context.Context, orderID int64) ([]storage.CompletionCheck, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.CompletionCheck), args.Error(1)
}

func doOrderRequest(handler http.HandlerFunc, path, orderID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", orderID)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestOrder_IncludesCompletionChecks(t *testing.T) {
	checkedAt := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	mockProvider := new(MockOrdersProvider)
	mockProvider.On("GetOrder", mock.Anything, int64(7)).
		Return(&storage.ProductionOrder{ID: 7, OrderCode: "LSX-2026-0007", Quantity: 30}, nil)
	mockProvider.On("GetCompletionChecks", mock.Anything, int64(7)).
		Return([]storage.CompletionCheck{
			{
				ID:          1,
				OrderID:     7,
				CheckedAt:   checkedAt,
				CheckedBy:   99,
				CanComplete: false,
				Incomplete: []storage.IncompleteProcess{
					{ProcessID: 2, ProcessName: "Painting", Required: 30, Completed: 20, Remaining: 10},
				},
			},
		}, nil)

	handler := Order(slog.Default(), mockProvider)
	rr := doOrderRequest(handler, "/api/orders/7", "7")

	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			ID               int64                     `json:"id"`
			OrderCode        string                    `json:"order_code"`
			CompletionChecks []storage.CompletionCheck `json:"completion_checks"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	assert.True(t, resp.Success)
	assert.Equal(t, "LSX-2026-0007", resp.Data.OrderCode)
	require.Len(t, resp.Data.CompletionChecks, 1)
	assert.Equal(t, int64(99), resp.Data.CompletionChecks[0].CheckedBy)
	assert.False(t, resp.Data.CompletionChecks[0].CanComplete)
	require.Len(t, resp.Data.CompletionChecks[0].Incomplete, 1)
	assert.Equal(t, 10, resp.Data.CompletionChecks[0].Incomplete[0].Remaining)

	mockProvider.AssertExpectations(t)
}

func TestOrder_NoChecksYieldsEmptySlice(t *testing.T) {
	mockProvider := new(MockOrdersProvider)
	mockProvider.On("GetOrder", mock.Anything, int64(3)).
		Return(&storage.ProductionOrder{ID: 3, OrderCode: "LSX-2026-0003"}, nil)
	mockProvider.On("GetCompletionChecks", mock.Anything, int64(3)).
		Return([]storage.CompletionCheck{}, nil)

	handler := Order(slog.Default(), mockProvider)
	rr := doOrderRequest(handler, "/api/orders/3", "3")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"completion_checks":[]`)
}

func TestOrder_NotFound(t *testing.T) {
	mockProvider := new(MockOrdersProvider)
	mockProvider.On("GetOrder", mock.Anything, int64(404)).
		Return(nil, storage.ErrNotFound)

	handler := Order(slog.Default(), mockProvider)
	rr := doOrderRequest(handler, "/api/orders/404", "404")

	assert.Equal(t, http.StatusNotFound, rr.Code)
	mockProvider.AssertNotCalled(t, "GetCompletionChecks", mock.Anything, mock.Anything)
}
