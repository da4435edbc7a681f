package orderprogress

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"ev-assembly/internal/storage"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) GetOrder(ctx context.Context, id int64) (*storage.ProductionOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.ProductionOrder), args.Error(1)
}

func (m *MockStorage) GetActiveProcesses(ctx context.Context, vehicleTypeID int64) ([]storage.Process, error) {
	args := m.Called(ctx, vehicleTypeID)
	return args.Get(0).([]storage.Process), args.Error(1)
}

func (m *MockStorage) SumCompletedByProcess(ctx context.Context, orderID int64) (map[int64]int, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(map[int64]int), args.Error(1)
}

func (m *MockStorage) GetOrderRegistrations(ctx context.Context, orderID int64) ([]*storage.DailyRegistration, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]*storage.DailyRegistration), args.Error(1)
}

func (m *MockStorage) AddCompletionCheck(ctx context.Context, check storage.CompletionCheck) error {
	args := m.Called(ctx, check)
	return args.Error(0)
}

func (m *MockStorage) UpdateOrderStatus(ctx context.Context, id int64, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func testOrder(status string) *storage.ProductionOrder {
	return &storage.ProductionOrder{
		ID:            7,
		OrderCode:     "LSX-2026-001",
		VehicleTypeID: 2,
		Quantity:      10,
		Status:        status,
	}
}

func testProcesses() []storage.Process {
	return []storage.Process{
		{ID: 1, Name: "Welding", Code: "WELD", SortOrder: 1},
		{ID: 2, Name: "Painting", Code: "PAINT", SortOrder: 2},
		{ID: 3, Name: "Assembly", Code: "ASSY", SortOrder: 3},
	}
}

func TestCheckCompletion_ReportsShortfalls(t *testing.T) {
	st := new(MockStorage)
	st.On("GetOrder", mock.Anything, int64(7)).Return(testOrder(storage.OrderInProgress), nil)
	st.On("GetActiveProcesses", mock.Anything, int64(2)).Return(testProcesses(), nil)
	st.On("SumCompletedByProcess", mock.Anything, int64(7)).Return(map[int64]int{1: 10, 2: 4}, nil)
	st.On("AddCompletionCheck", mock.Anything, mock.MatchedBy(func(c storage.CompletionCheck) bool {
		return c.OrderID == 7 && c.CheckedBy == 99 && !c.CanComplete && len(c.Incomplete) == 2
	})).Return(nil)

	svc := New(st)
	svc.now = func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) }

	result, err := svc.CheckCompletion(context.Background(), 7, 99)
	assert.NoError(t, err)
	assert.False(t, result.CanComplete)
	assert.Len(t, result.Incomplete, 2)
	assert.Equal(t, int64(2), result.Incomplete[0].ProcessID)
	assert.Equal(t, 6, result.Incomplete[0].Remaining)
	// process 3 has no completions at all
	assert.Equal(t, int64(3), result.Incomplete[1].ProcessID)
	assert.Equal(t, 10, result.Incomplete[1].Remaining)
	st.AssertExpectations(t)
}

func TestCheckCompletion_NeverMutatesStatus(t *testing.T) {
	st := new(MockStorage)
	st.On("GetOrder", mock.Anything, int64(7)).Return(testOrder(storage.OrderInProgress), nil)
	st.On("GetActiveProcesses", mock.Anything, int64(2)).Return(testProcesses(), nil)
	st.On("SumCompletedByProcess", mock.Anything, int64(7)).Return(map[int64]int{1: 10, 2: 10, 3: 10}, nil)
	st.On("AddCompletionCheck", mock.Anything, mock.Anything).Return(nil)

	svc := New(st)

	result, err := svc.CheckCompletion(context.Background(), 7, 99)
	assert.NoError(t, err)
	assert.True(t, result.CanComplete)
	st.AssertNotCalled(t, "UpdateOrderStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestCompleteOrder_RefusesShortfall(t *testing.T) {
	st := new(MockStorage)
	st.On("GetOrder", mock.Anything, int64(7)).Return(testOrder(storage.OrderInProgress), nil)
	st.On("GetActiveProcesses", mock.Anything, int64(2)).Return(testProcesses(), nil)
	st.On("SumCompletedByProcess", mock.Anything, int64(7)).Return(map[int64]int{1: 10, 2: 10, 3: 8}, nil)

	svc := New(st)

	_, err := svc.CompleteOrder(context.Background(), 7, false)

	var incomplete *storage.IncompleteError
	assert.ErrorAs(t, err, &incomplete)
	assert.Len(t, incomplete.Processes, 1)
	assert.Equal(t, 2, incomplete.Processes[0].Remaining)
	st.AssertNotCalled(t, "UpdateOrderStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestCompleteOrder_Force(t *testing.T) {
	st := new(MockStorage)
	st.On("GetOrder", mock.Anything, int64(7)).Return(testOrder(storage.OrderInProgress), nil).Once()
	st.On("GetActiveProcesses", mock.Anything, int64(2)).Return(testProcesses(), nil)
	st.On("SumCompletedByProcess", mock.Anything, int64(7)).Return(map[int64]int{}, nil)
	st.On("UpdateOrderStatus", mock.Anything, int64(7), storage.OrderCompleted).Return(nil)
	st.On("GetOrder", mock.Anything, int64(7)).Return(testOrder(storage.OrderCompleted), nil)

	svc := New(st)

	order, err := svc.CompleteOrder(context.Background(), 7, true)
	assert.NoError(t, err)
	assert.Equal(t, storage.OrderCompleted, order.Status)
	st.AssertExpectations(t)
}

func TestCompleteOrder_WrongStatus(t *testing.T) {
	st := new(MockStorage)
	st.On("GetOrder", mock.Anything, int64(7)).Return(testOrder(storage.OrderPending), nil)

	svc := New(st)

	_, err := svc.CompleteOrder(context.Background(), 7, false)
	assert.ErrorIs(t, err, storage.ErrInvalidStatus)
}

func TestUpdateStatus_Invalid(t *testing.T) {
	st := new(MockStorage)

	svc := New(st)

	_, err := svc.UpdateStatus(context.Background(), 7, "shipped")
	assert.ErrorIs(t, err, storage.ErrInvalidStatus)
	st.AssertNotCalled(t, "UpdateOrderStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestProgress_PercentagesAndWorkers(t *testing.T) {
	st := new(MockStorage)

	qty := func(n int) *int { return &n }
	registrations := []*storage.DailyRegistration{
		{ProcessID: 1, UserName: "Alice", Status: storage.RegistrationCompleted, ActualQuantity: qty(10)},
		{ProcessID: 2, UserName: "Bob", Status: storage.RegistrationCompleted, ActualQuantity: qty(3)},
		{ProcessID: 2, UserName: "Bob", Status: storage.RegistrationCompleted, ActualQuantity: qty(2)},
		{ProcessID: 2, UserName: "Carol", Status: storage.RegistrationRegistered},
	}

	st.On("GetOrder", mock.Anything, int64(7)).Return(testOrder(storage.OrderInProgress), nil)
	st.On("GetActiveProcesses", mock.Anything, int64(2)).Return(testProcesses(), nil)
	st.On("GetOrderRegistrations", mock.Anything, int64(7)).Return(registrations, nil)

	svc := New(st)

	progress, err := svc.Progress(context.Background(), 7)
	assert.NoError(t, err)
	assert.Len(t, progress.Progress, 3)

	welding := progress.Progress[0]
	assert.Equal(t, 10, welding.Completed)
	assert.Equal(t, 100, welding.Percentage)
	assert.Equal(t, storage.ProgressCompleted, welding.Status)
	assert.Equal(t, []string{"Alice"}, welding.Workers)

	painting := progress.Progress[1]
	assert.Equal(t, 5, painting.Completed)
	assert.Equal(t, 50, painting.Percentage)
	assert.Equal(t, storage.ProgressInProgress, painting.Status)
	// Bob counted once across two registrations, Carol still pending
	assert.Equal(t, []string{"Bob", "Carol"}, painting.Workers)
	assert.Equal(t, 3, painting.Registrations)

	assembly := progress.Progress[2]
	assert.Equal(t, 0, assembly.Percentage)
	assert.Equal(t, storage.ProgressPending, assembly.Status)
	assert.Empty(t, assembly.Workers)

	// (100 + 50 + 0) / 3
	assert.Equal(t, 50, progress.Summary.OverallPercentage)
	assert.Equal(t, 3, progress.Summary.TotalProcesses)
	assert.Equal(t, 1, progress.Summary.CompletedProcesses)
	assert.Equal(t, 1, progress.Summary.InProgressProcesses)
}
