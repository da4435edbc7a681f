package save

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"ev-assembly/internal/middleware/auth"
	"ev-assembly/internal/storage"
)

type MockRegistrationCreator struct {
	mock.Mock
}

func (m *MockRegistrationCreator) Create(ctx context.Context, userID, operationID int64) (*storage.DailyRegistration, error) {
	args := m.Called(ctx, userID, operationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.DailyRegistration), args.Error(1)
}

func doRequest(handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/registrations", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(auth.WithUser(req.Context(), &storage.User{ID: 1, Code: "W001"}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestSaveRegistration_Success(t *testing.T) {
	mockCreator := new(MockRegistrationCreator)
	mockCreator.On("Create", mock.Anything, int64(1), int64(4)).
		Return(&storage.DailyRegistration{ID: 11, UserID: 1, OperationID: 4, ExpectedQuantity: 30}, nil)

	handler := SaveRegistration(slog.Default(), mockCreator)

	rr := doRequest(handler, `{"operation_id": 4}`)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var resp struct {
		Success bool                      `json:"success"`
		Data    storage.DailyRegistration `json:"data"`
	}
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, int64(11), resp.Data.ID)

	mockCreator.AssertExpectations(t)
}

func TestSaveRegistration_InvalidJSON(t *testing.T) {
	mockCreator := new(MockRegistrationCreator)
	handler := SaveRegistration(slog.Default(), mockCreator)

	rr := doRequest(handler, `{`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	mockCreator.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestSaveRegistration_MissingOperation(t *testing.T) {
	mockCreator := new(MockRegistrationCreator)
	handler := SaveRegistration(slog.Default(), mockCreator)

	rr := doRequest(handler, `{}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	mockCreator.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestSaveRegistration_OperationFull(t *testing.T) {
	mockCreator := new(MockRegistrationCreator)
	mockCreator.On("Create", mock.Anything, int64(1), int64(4)).
		Return(nil, storage.ErrOperationFull)

	handler := SaveRegistration(slog.Default(), mockCreator)

	rr := doRequest(handler, `{"operation_id": 4}`)

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "FULL")
}

func TestSaveRegistration_NoActiveOrder(t *testing.T) {
	mockCreator := new(MockRegistrationCreator)
	mockCreator.On("Create", mock.Anything, int64(1), int64(4)).
		Return(nil, storage.ErrNoActiveOrder)

	handler := SaveRegistration(slog.Default(), mockCreator)

	rr := doRequest(handler, `{"operation_id": 4}`)

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "NO_ORDER")
}

func TestSaveRegistration_Duplicate(t *testing.T) {
	mockCreator := new(MockRegistrationCreator)
	mockCreator.On("Create", mock.Anything, int64(1), int64(4)).
		Return(nil, storage.ErrDuplicate)

	handler := SaveRegistration(slog.Default(), mockCreator)

	rr := doRequest(handler, `{"operation_id": 4}`)

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "DUPLICATE")
}
