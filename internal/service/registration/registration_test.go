package registration

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

func (m *MockStorage) GetActiveOrder(ctx context.Context) (*storage.ProductionOrder, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.ProductionOrder), args.Error(1)
}

func (m *MockStorage) GetOrder(ctx context.Context, id int64) (*storage.ProductionOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.ProductionOrder), args.Error(1)
}

func (m *MockStorage) GetOperationDetails(ctx context.Context, id int64) (*storage.OperationDetails, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.OperationDetails), args.Error(1)
}

func (m *MockStorage) GetStandard(ctx context.Context, vehicleTypeID, operationID int64) (*storage.ProductionStandard, error) {
	args := m.Called(ctx, vehicleTypeID, operationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.ProductionStandard), args.Error(1)
}

func (m *MockStorage) CountOperationRegistrations(ctx context.Context, operationID int64, day time.Time) (int, error) {
	args := m.Called(ctx, operationID, day)
	return args.Int(0), args.Error(1)
}

func (m *MockStorage) UserHasRegistration(ctx context.Context, userID, operationID, orderID int64, day time.Time) (bool, error) {
	args := m.Called(ctx, userID, operationID, orderID, day)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) CreateRegistration(ctx context.Context, r storage.DailyRegistration, maxWorkers int) (int64, error) {
	args := m.Called(ctx, r, maxWorkers)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) GetRegistration(ctx context.Context, id int64) (*storage.DailyRegistration, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.DailyRegistration), args.Error(1)
}

func (m *MockStorage) CompleteRegistration(ctx context.Context, id int64, c storage.RegistrationCompletion) error {
	args := m.Called(ctx, id, c)
	return args.Error(0)
}

func (m *MockStorage) AdjustRegistration(ctx context.Context, id int64, a storage.RegistrationAdjustment) error {
	args := m.Called(ctx, id, a)
	return args.Error(0)
}

func (m *MockStorage) DeleteRegistration(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockShifts struct {
	mock.Mock
}

func (m *MockShifts) EnsureActive(ctx context.Context, userID int64) (*storage.Shift, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Shift), args.Error(1)
}

func newTestService(st *MockStorage, sh *MockShifts, now time.Time) *Service {
	svc := New(st, sh)
	svc.now = func() time.Time { return now }
	return svc
}

var testStandard = &storage.ProductionStandard{
	VehicleTypeID:    2,
	OperationID:      4,
	ExpectedQuantity: 30,
	BonusPerUnit:     5000,
	PenaltyPerUnit:   3000,
}

func activeOrder() *storage.ProductionOrder {
	return &storage.ProductionOrder{ID: 7, VehicleTypeID: 2, Status: storage.OrderInProgress}
}

func TestCreate_SeedsExpectedFromStandard(t *testing.T) {
	st := new(MockStorage)
	sh := new(MockShifts)
	now := time.Date(2026, 3, 10, 8, 30, 0, 0, time.UTC)

	st.On("GetActiveOrder", mock.Anything).Return(activeOrder(), nil)
	st.On("GetOperationDetails", mock.Anything, int64(4)).Return(&storage.OperationDetails{
		Operation:     storage.Operation{ID: 4, MaxWorkers: 3},
		VehicleTypeID: 2,
	}, nil)
	st.On("CountOperationRegistrations", mock.Anything, int64(4), now).Return(1, nil)
	st.On("UserHasRegistration", mock.Anything, int64(1), int64(4), int64(7), now).Return(false, nil)
	sh.On("EnsureActive", mock.Anything, int64(1)).Return(&storage.Shift{ID: 5, UserID: 1}, nil)
	st.On("GetStandard", mock.Anything, int64(2), int64(4)).Return(testStandard, nil)
	st.On("CreateRegistration", mock.Anything, mock.MatchedBy(func(r storage.DailyRegistration) bool {
		return r.UserID == 1 &&
			r.ShiftID == 5 &&
			r.ProductionOrderID == 7 &&
			r.OperationID == 4 &&
			r.ExpectedQuantity == 30 &&
			r.Status == storage.RegistrationRegistered
	}), 3).Return(int64(11), nil)
	st.On("GetRegistration", mock.Anything, int64(11)).Return(&storage.DailyRegistration{ID: 11}, nil)

	svc := newTestService(st, sh, now)

	reg, err := svc.Create(context.Background(), 1, 4)
	assert.NoError(t, err)
	assert.Equal(t, int64(11), reg.ID)
	st.AssertExpectations(t)
	sh.AssertExpectations(t)
}

func TestCreate_NoActiveOrder(t *testing.T) {
	st := new(MockStorage)
	st.On("GetActiveOrder", mock.Anything).Return(nil, storage.ErrNoActiveOrder)

	svc := newTestService(st, new(MockShifts), time.Now())

	_, err := svc.Create(context.Background(), 1, 4)
	assert.ErrorIs(t, err, storage.ErrNoActiveOrder)
	st.AssertNotCalled(t, "CreateRegistration", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreate_VehicleTypeMismatch(t *testing.T) {
	st := new(MockStorage)
	st.On("GetActiveOrder", mock.Anything).Return(activeOrder(), nil)
	st.On("GetOperationDetails", mock.Anything, int64(9)).Return(&storage.OperationDetails{
		Operation:     storage.Operation{ID: 9},
		VehicleTypeID: 3, // order is vehicle type 2
	}, nil)

	svc := newTestService(st, new(MockShifts), time.Now())

	_, err := svc.Create(context.Background(), 1, 9)
	assert.ErrorIs(t, err, storage.ErrOperationMismatch)
}

func TestCreate_Duplicate(t *testing.T) {
	st := new(MockStorage)
	now := time.Now()
	st.On("GetActiveOrder", mock.Anything).Return(activeOrder(), nil)
	st.On("GetOperationDetails", mock.Anything, int64(4)).Return(&storage.OperationDetails{
		Operation:     storage.Operation{ID: 4, MaxWorkers: 2},
		VehicleTypeID: 2,
	}, nil)
	st.On("CountOperationRegistrations", mock.Anything, int64(4), now).Return(1, nil)
	st.On("UserHasRegistration", mock.Anything, int64(1), int64(4), int64(7), now).Return(true, nil)

	svc := newTestService(st, new(MockShifts), now)

	_, err := svc.Create(context.Background(), 1, 4)
	assert.ErrorIs(t, err, storage.ErrDuplicate)
}

func TestCreate_FullBeforeDuplicate(t *testing.T) {
	st := new(MockStorage)
	now := time.Now()

	st.On("GetActiveOrder", mock.Anything).Return(activeOrder(), nil)
	st.On("GetOperationDetails", mock.Anything, int64(4)).Return(&storage.OperationDetails{
		Operation:     storage.Operation{ID: 4, MaxWorkers: 1},
		VehicleTypeID: 2,
	}, nil)
	st.On("CountOperationRegistrations", mock.Anything, int64(4), now).Return(1, nil)

	svc := newTestService(st, new(MockShifts), now)

	// the worker holding the slot re-registers: full wins over duplicate
	_, err := svc.Create(context.Background(), 1, 4)
	assert.ErrorIs(t, err, storage.ErrOperationFull)
	st.AssertNotCalled(t, "UserHasRegistration",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreate_NoStandardSeedsZero(t *testing.T) {
	st := new(MockStorage)
	sh := new(MockShifts)
	now := time.Now()

	st.On("GetActiveOrder", mock.Anything).Return(activeOrder(), nil)
	st.On("GetOperationDetails", mock.Anything, int64(4)).Return(&storage.OperationDetails{
		Operation:     storage.Operation{ID: 4, MaxWorkers: 2},
		VehicleTypeID: 2,
	}, nil)
	st.On("CountOperationRegistrations", mock.Anything, int64(4), now).Return(0, nil)
	st.On("UserHasRegistration", mock.Anything, int64(1), int64(4), int64(7), now).Return(false, nil)
	sh.On("EnsureActive", mock.Anything, int64(1)).Return(&storage.Shift{ID: 5}, nil)
	st.On("GetStandard", mock.Anything, int64(2), int64(4)).Return(nil, nil)
	st.On("CreateRegistration", mock.Anything, mock.MatchedBy(func(r storage.DailyRegistration) bool {
		return r.ExpectedQuantity == 0
	}), 2).Return(int64(12), nil)
	st.On("GetRegistration", mock.Anything, int64(12)).Return(&storage.DailyRegistration{ID: 12}, nil)

	svc := newTestService(st, sh, now)

	_, err := svc.Create(context.Background(), 1, 4)
	assert.NoError(t, err)
	st.AssertExpectations(t)
}

func TestComplete_BonusAndWorkingMinutes(t *testing.T) {
	st := new(MockStorage)
	now := time.Date(2026, 3, 10, 16, 0, 0, 0, time.UTC)
	registeredAt := now.Add(-95*time.Minute - 30*time.Second)

	st.On("GetRegistration", mock.Anything, int64(11)).Return(&storage.DailyRegistration{
		ID:                11,
		UserID:            1,
		ProductionOrderID: 7,
		OperationID:       4,
		Status:            storage.RegistrationInProgress,
		ExpectedQuantity:  30,
		RegisteredAt:      registeredAt,
	}, nil).Once()
	st.On("GetOrder", mock.Anything, int64(7)).Return(activeOrder(), nil)
	st.On("GetStandard", mock.Anything, int64(2), int64(4)).Return(testStandard, nil)
	st.On("CompleteRegistration", mock.Anything, int64(11), mock.MatchedBy(func(c storage.RegistrationCompletion) bool {
		// 95m30s rounds to 96, minus 10 interruption
		return c.ActualQuantity == 35 &&
			c.Deviation == 5 &&
			c.BonusAmount == 25000 &&
			c.PenaltyAmount == 0 &&
			c.WorkingMinutes == 86 &&
			c.CheckOutTime.Equal(now)
	})).Return(nil)
	st.On("GetRegistration", mock.Anything, int64(11)).Return(&storage.DailyRegistration{
		ID:     11,
		Status: storage.RegistrationCompleted,
	}, nil)

	svc := newTestService(st, new(MockShifts), now)

	reg, err := svc.Complete(context.Background(), 1, 11, 35, 10, "line stop")
	assert.NoError(t, err)
	assert.Equal(t, storage.RegistrationCompleted, reg.Status)
	st.AssertExpectations(t)
}

func TestComplete_PenaltyAndFloor(t *testing.T) {
	st := new(MockStorage)
	now := time.Date(2026, 3, 10, 16, 0, 0, 0, time.UTC)
	checkIn := now.Add(-20 * time.Minute)

	st.On("GetRegistration", mock.Anything, int64(11)).Return(&storage.DailyRegistration{
		ID:                11,
		UserID:            1,
		ProductionOrderID: 7,
		OperationID:       4,
		Status:            storage.RegistrationInProgress,
		ExpectedQuantity:  30,
		RegisteredAt:      now.Add(-3 * time.Hour),
		CheckInTime:       &checkIn, // check-in wins over registration time
	}, nil).Once()
	st.On("GetOrder", mock.Anything, int64(7)).Return(activeOrder(), nil)
	st.On("GetStandard", mock.Anything, int64(2), int64(4)).Return(testStandard, nil)
	st.On("CompleteRegistration", mock.Anything, int64(11), mock.MatchedBy(func(c storage.RegistrationCompletion) bool {
		// 20 elapsed minus 45 interruption floors at zero
		return c.Deviation == -5 &&
			c.BonusAmount == 0 &&
			c.PenaltyAmount == 15000 &&
			c.WorkingMinutes == 0
	})).Return(nil)
	st.On("GetRegistration", mock.Anything, int64(11)).Return(&storage.DailyRegistration{ID: 11}, nil)

	svc := newTestService(st, new(MockShifts), now)

	_, err := svc.Complete(context.Background(), 1, 11, 25, 45, "")
	assert.NoError(t, err)
	st.AssertExpectations(t)
}

func TestComplete_Forbidden(t *testing.T) {
	st := new(MockStorage)
	st.On("GetRegistration", mock.Anything, int64(11)).Return(&storage.DailyRegistration{
		ID:     11,
		UserID: 2,
	}, nil)

	svc := newTestService(st, new(MockShifts), time.Now())

	_, err := svc.Complete(context.Background(), 1, 11, 35, 0, "")
	assert.ErrorIs(t, err, storage.ErrForbidden)
	st.AssertNotCalled(t, "CompleteRegistration", mock.Anything, mock.Anything, mock.Anything)
}

func TestComplete_Twice(t *testing.T) {
	st := new(MockStorage)
	st.On("GetRegistration", mock.Anything, int64(11)).Return(&storage.DailyRegistration{
		ID:     11,
		UserID: 1,
		Status: storage.RegistrationCompleted,
	}, nil)

	svc := newTestService(st, new(MockShifts), time.Now())

	_, err := svc.Complete(context.Background(), 1, 11, 35, 0, "")
	assert.ErrorIs(t, err, storage.ErrAlreadyCompleted)
}

func TestAdjust_RecomputesCompleted(t *testing.T) {
	st := new(MockStorage)
	actual := 35

	st.On("GetRegistration", mock.Anything, int64(11)).Return(&storage.DailyRegistration{
		ID:                11,
		UserID:            1,
		ProductionOrderID: 7,
		OperationID:       4,
		Status:            storage.RegistrationCompleted,
		ExpectedQuantity:  30,
		ActualQuantity:    &actual,
	}, nil).Once()
	st.On("GetOrder", mock.Anything, int64(7)).Return(activeOrder(), nil)
	st.On("GetStandard", mock.Anything, int64(2), int64(4)).Return(testStandard, nil)
	st.On("AdjustRegistration", mock.Anything, int64(11), mock.MatchedBy(func(a storage.RegistrationAdjustment) bool {
		return a.AdjustedExpectedQty == 32 &&
			a.Recompute &&
			a.Deviation == 3 &&
			a.BonusAmount == 15000 &&
			a.PenaltyAmount == 0 &&
			a.AdjustedBy == 99
	})).Return(nil)
	st.On("GetRegistration", mock.Anything, int64(11)).Return(&storage.DailyRegistration{ID: 11}, nil)

	svc := newTestService(st, new(MockShifts), time.Now())

	_, err := svc.Adjust(context.Background(), 99, 11, 32, "standard revised")
	assert.NoError(t, err)
	st.AssertExpectations(t)
}

func TestAdjust_PendingSkipsRecompute(t *testing.T) {
	st := new(MockStorage)

	st.On("GetRegistration", mock.Anything, int64(11)).Return(&storage.DailyRegistration{
		ID:               11,
		Status:           storage.RegistrationRegistered,
		ExpectedQuantity: 30,
	}, nil).Once()
	st.On("AdjustRegistration", mock.Anything, int64(11), mock.MatchedBy(func(a storage.RegistrationAdjustment) bool {
		return a.AdjustedExpectedQty == 25 && !a.Recompute
	})).Return(nil)
	st.On("GetRegistration", mock.Anything, int64(11)).Return(&storage.DailyRegistration{ID: 11}, nil)

	svc := newTestService(st, new(MockShifts), time.Now())

	_, err := svc.Adjust(context.Background(), 99, 11, 25, "")
	assert.NoError(t, err)
	st.AssertNotCalled(t, "GetStandard", mock.Anything, mock.Anything, mock.Anything)
	st.AssertExpectations(t)
}

func TestReassign_BypassesCapacity(t *testing.T) {
	st := new(MockStorage)
	sh := new(MockShifts)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	replaces := int64(3)

	st.On("GetActiveOrder", mock.Anything).Return(activeOrder(), nil)
	sh.On("EnsureActive", mock.Anything, int64(2)).Return(&storage.Shift{ID: 6}, nil)
	st.On("GetStandard", mock.Anything, int64(2), int64(4)).Return(testStandard, nil)
	st.On("CreateRegistration", mock.Anything, mock.MatchedBy(func(r storage.DailyRegistration) bool {
		return r.UserID == 2 &&
			r.ExpectedQuantity == 30 &&
			r.IsReplacement &&
			r.ReplacesUserID != nil && *r.ReplacesUserID == 3 &&
			r.CheckInTime != nil && r.CheckInTime.Equal(now)
	}), 0).Return(int64(13), nil)
	st.On("GetRegistration", mock.Anything, int64(13)).Return(&storage.DailyRegistration{ID: 13}, nil)

	svc := newTestService(st, sh, now)

	_, err := svc.Reassign(context.Background(), ReassignRequest{
		UserID:            2,
		OperationID:       4,
		ReplacesUserID:    &replaces,
		ReplacementReason: "sick leave",
		AssignedBy:        99,
	})
	assert.NoError(t, err)
	st.AssertExpectations(t)
}

func TestRemove_OwnerAndAdmin(t *testing.T) {
	st := new(MockStorage)
	st.On("GetRegistration", mock.Anything, int64(11)).Return(&storage.DailyRegistration{
		ID:     11,
		UserID: 1,
		Status: storage.RegistrationRegistered,
	}, nil)
	st.On("DeleteRegistration", mock.Anything, int64(11)).Return(nil)

	svc := newTestService(st, new(MockShifts), time.Now())

	// someone else without admin rights
	err := svc.Remove(context.Background(), &storage.User{ID: 2, Role: "worker"}, 11)
	assert.ErrorIs(t, err, storage.ErrForbidden)

	// admin may remove another worker's registration
	err = svc.Remove(context.Background(), &storage.User{ID: 2, Role: storage.RoleAdmin}, 11)
	assert.NoError(t, err)
}

func TestRemove_CompletedRefused(t *testing.T) {
	st := new(MockStorage)
	st.On("GetRegistration", mock.Anything, int64(11)).Return(&storage.DailyRegistration{
		ID:     11,
		UserID: 1,
		Status: storage.RegistrationCompleted,
	}, nil)

	svc := newTestService(st, new(MockShifts), time.Now())

	err := svc.Remove(context.Background(), &storage.User{ID: 1}, 11)
	assert.ErrorIs(t, err, storage.ErrAlreadyCompleted)
	st.AssertNotCalled(t, "DeleteRegistration", mock.Anything, mock.Anything)
}

func TestOutcome_NoStandard(t *testing.T) {
	deviation, bonus, penalty := outcome(28, 30, nil)
	assert.Equal(t, -2, deviation)
	assert.Zero(t, bonus)
	assert.Zero(t, penalty)
}
