package mock

import (
	context "context"
	reflect "reflect"
	time "time"

	models "github.com/ellavondegurechaff/gogift/gifthouse/database/models"
	bun "github.com/uptrace/bun"
	gomock "go.uber.org/mock/gomock"
)

// MockAuctionRepository is a mock of AuctionRepository interface.
type MockAuctionRepository struct {
	ctrl     *gomock.Controller
	recorder *MockAuctionRepositoryMockRecorder
	isgomock struct{}
}

// MockAuctionRepositoryMockRecorder is the mock recorder for MockAuctionRepository.
type MockAuctionRepositoryMockRecorder struct {
	mock *MockAuctionRepository
}

// NewMockAuctionRepository creates a new mock instance.
func NewMockAuctionRepository(ctrl *gomock.Controller) *MockAuctionRepository {
	mock := &MockAuctionRepository{ctrl: ctrl}
	mock.recorder = &MockAuctionRepositoryMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockAuctionRepository) EXPECT() *MockAuctionRepositoryMockRecorder {
	return m.recorder
}

// AppendWinners mocks base method.
func (m *MockAuctionRepository) AppendWinners(ctx context.Context, id string, winners []models.Winner) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "AppendWinners", ctx, id, winners)
	ret0, _ := ret[0].(error)
	return ret0
}

// AppendWinners indicates an expected call of AppendWinners.
func (mr *MockAuctionRepositoryMockRecorder) AppendWinners(ctx, id, winners any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "AppendWinners", reflect.TypeOf((*MockAuctionRepository)(nil).AppendWinners), ctx, id, winners)
}

// Create mocks base method.
func (m *MockAuctionRepository) Create(ctx context.Context, auction *models.Auction) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Create", ctx, auction)
	ret0, _ := ret[0].(error)
	return ret0
}

// Create indicates an expected call of Create.
func (mr *MockAuctionRepositoryMockRecorder) Create(ctx, auction any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Create", reflect.TypeOf((*MockAuctionRepository)(nil).Create), ctx, auction)
}

// DB mocks base method.
func (m *MockAuctionRepository) DB() *bun.DB {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "DB")
	ret0, _ := ret[0].(*bun.DB)
	return ret0
}

// DB indicates an expected call of DB.
func (mr *MockAuctionRepositoryMockRecorder) DB() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "DB", reflect.TypeOf((*MockAuctionRepository)(nil).DB))
}

// Delete mocks base method.
func (m *MockAuctionRepository) Delete(ctx context.Context, id string) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Delete", ctx, id)
	ret0, _ := ret[0].(error)
	return ret0
}

// Delete indicates an expected call of Delete.
func (mr *MockAuctionRepositoryMockRecorder) Delete(ctx, id any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Delete", reflect.TypeOf((*MockAuctionRepository)(nil).Delete), ctx, id)
}

// GetByID mocks base method.
func (m *MockAuctionRepository) GetByID(ctx context.Context, id string) (*models.Auction, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetByID", ctx, id)
	ret0, _ := ret[0].(*models.Auction)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetByID indicates an expected call of GetByID.
func (mr *MockAuctionRepositoryMockRecorder) GetByID(ctx, id any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetByID", reflect.TypeOf((*MockAuctionRepository)(nil).GetByID), ctx, id)
}

// GetByStatus mocks base method.
func (m *MockAuctionRepository) GetByStatus(ctx context.Context, status models.AuctionStatus) ([]*models.Auction, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetByStatus", ctx, status)
	ret0, _ := ret[0].([]*models.Auction)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetByStatus indicates an expected call of GetByStatus.
func (mr *MockAuctionRepositoryMockRecorder) GetByStatus(ctx, status any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetByStatus", reflect.TypeOf((*MockAuctionRepository)(nil).GetByStatus), ctx, status)
}

// MarkFinished mocks base method.
func (m *MockAuctionRepository) MarkFinished(ctx context.Context, id string, finishedAt time.Time) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "MarkFinished", ctx, id, finishedAt)
	ret0, _ := ret[0].(error)
	return ret0
}

// MarkFinished indicates an expected call of MarkFinished.
func (mr *MockAuctionRepositoryMockRecorder) MarkFinished(ctx, id, finishedAt any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "MarkFinished", reflect.TypeOf((*MockAuctionRepository)(nil).MarkFinished), ctx, id, finishedAt)
}

// SetStatus mocks base method.
func (m *MockAuctionRepository) SetStatus(ctx context.Context, id string, status models.AuctionStatus) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "SetStatus", ctx, id, status)
	ret0, _ := ret[0].(error)
	return ret0
}

// SetStatus indicates an expected call of SetStatus.
func (mr *MockAuctionRepositoryMockRecorder) SetStatus(ctx, id, status any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "SetStatus", reflect.TypeOf((*MockAuctionRepository)(nil).SetStatus), ctx, id, status)
}

// MockUserRepository is a mock of UserRepository interface.
type MockUserRepository struct {
	ctrl     *gomock.Controller
	recorder *MockUserRepositoryMockRecorder
	isgomock struct{}
}

// MockUserRepositoryMockRecorder is the mock recorder for MockUserRepository.
type MockUserRepositoryMockRecorder struct {
	mock *MockUserRepository
}

// NewMockUserRepository creates a new mock instance.
func NewMockUserRepository(ctrl *gomock.Controller) *MockUserRepository {
	mock := &MockUserRepository{ctrl: ctrl}
	mock.recorder = &MockUserRepositoryMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockUserRepository) EXPECT() *MockUserRepositoryMockRecorder {
	return m.recorder
}

// BulkCreateUsers mocks base method.
func (m *MockUserRepository) BulkCreateUsers(ctx context.Context, users []*models.User) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "BulkCreateUsers", ctx, users)
	ret0, _ := ret[0].(error)
	return ret0
}

// BulkCreateUsers indicates an expected call of BulkCreateUsers.
func (mr *MockUserRepositoryMockRecorder) BulkCreateUsers(ctx, users any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "BulkCreateUsers", reflect.TypeOf((*MockUserRepository)(nil).BulkCreateUsers), ctx, users)
}

// Create mocks base method.
func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Create", ctx, user)
	ret0, _ := ret[0].(error)
	return ret0
}

// Create indicates an expected call of Create.
func (mr *MockUserRepositoryMockRecorder) Create(ctx, user any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Create", reflect.TypeOf((*MockUserRepository)(nil).Create), ctx, user)
}

// DB mocks base method.
func (m *MockUserRepository) DB() *bun.DB {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "DB")
	ret0, _ := ret[0].(*bun.DB)
	return ret0
}

// DB indicates an expected call of DB.
func (mr *MockUserRepositoryMockRecorder) DB() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "DB", reflect.TypeOf((*MockUserRepository)(nil).DB))
}

// GetAllBotIDs mocks base method.
func (m *MockUserRepository) GetAllBotIDs(ctx context.Context) ([]string, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetAllBotIDs", ctx)
	ret0, _ := ret[0].([]string)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetAllBotIDs indicates an expected call of GetAllBotIDs.
func (mr *MockUserRepositoryMockRecorder) GetAllBotIDs(ctx any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetAllBotIDs", reflect.TypeOf((*MockUserRepository)(nil).GetAllBotIDs), ctx)
}

// GetByID mocks base method.
func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetByID", ctx, id)
	ret0, _ := ret[0].(*models.User)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetByID indicates an expected call of GetByID.
func (mr *MockUserRepositoryMockRecorder) GetByID(ctx, id any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetByID", reflect.TypeOf((*MockUserRepository)(nil).GetByID), ctx, id)
}

// LoadBalances mocks base method.
func (m *MockUserRepository) LoadBalances(ctx context.Context) ([]models.BalanceRecord, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "LoadBalances", ctx)
	ret0, _ := ret[0].([]models.BalanceRecord)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// LoadBalances indicates an expected call of LoadBalances.
func (mr *MockUserRepositoryMockRecorder) LoadBalances(ctx any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "LoadBalances", reflect.TypeOf((*MockUserRepository)(nil).LoadBalances), ctx)
}

// SaveBalances mocks base method.
func (m *MockUserRepository) SaveBalances(ctx context.Context, records []models.BalanceRecord) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "SaveBalances", ctx, records)
	ret0, _ := ret[0].(error)
	return ret0
}

// SaveBalances indicates an expected call of SaveBalances.
func (mr *MockUserRepositoryMockRecorder) SaveBalances(ctx, records any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "SaveBalances", reflect.TypeOf((*MockUserRepository)(nil).SaveBalances), ctx, records)
}

// TouchLastActive mocks base method.
func (m *MockUserRepository) TouchLastActive(ctx context.Context, id string) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "TouchLastActive", ctx, id)
	ret0, _ := ret[0].(error)
	return ret0
}

// TouchLastActive indicates an expected call of TouchLastActive.
func (mr *MockUserRepositoryMockRecorder) TouchLastActive(ctx, id any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "TouchLastActive", reflect.TypeOf((*MockUserRepository)(nil).TouchLastActive), ctx, id)
}
