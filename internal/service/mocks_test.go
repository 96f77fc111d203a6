package service

import (
	"context"

	"github.com/YusovID/barter-service/internal/domain"
	"github.com/YusovID/barter-service/internal/repository"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/mock"
)

type TransactorMock struct {
	mock.Mock
}

var _ Transactor = (*TransactorMock)(nil)

func (m *TransactorMock) BeginTx(ctx context.Context) (repository.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(repository.Tx), args.Error(1)
}

func (m *TransactorMock) Executor() sqlx.ExtContext {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}

	return args.Get(0).(sqlx.ExtContext)
}

type BarterRepositoryMock struct {
	mock.Mock
}

var _ repository.BarterRepository = (*BarterRepositoryMock)(nil)

func (m *BarterRepositoryMock) Create(ctx context.Context, ext sqlx.ExtContext, req *domain.BarterRequest) error {
	args := m.Called(ctx, ext, req)
	return args.Error(0)
}

func (m *BarterRepositoryMock) GetByID(ctx context.Context, ext sqlx.ExtContext, id string) (*domain.BarterRequest, error) {
	args := m.Called(ctx, ext, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.BarterRequest), args.Error(1)
}

func (m *BarterRepositoryMock) GetByIDForUpdate(ctx context.Context, tx repository.Tx, id string) (*domain.BarterRequest, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.BarterRequest), args.Error(1)
}

func (m *BarterRepositoryMock) Update(ctx context.Context, ext sqlx.ExtContext, req *domain.BarterRequest) error {
	args := m.Called(ctx, ext, req)
	return args.Error(0)
}

func (m *BarterRepositoryMock) ListByRequester(ctx context.Context, ext sqlx.ExtContext, userID string) ([]domain.BarterRequest, error) {
	args := m.Called(ctx, ext, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.BarterRequest), args.Error(1)
}

func (m *BarterRepositoryMock) ListByOwner(ctx context.Context, ext sqlx.ExtContext, userID string) ([]domain.BarterRequest, error) {
	args := m.Called(ctx, ext, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.BarterRequest), args.Error(1)
}

func (m *BarterRepositoryMock) ListByListing(ctx context.Context, ext sqlx.ExtContext, listingID string) ([]domain.BarterRequest, error) {
	args := m.Called(ctx, ext, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.BarterRequest), args.Error(1)
}

type ListingRepositoryMock struct {
	mock.Mock
}

var _ repository.ListingRepository = (*ListingRepositoryMock)(nil)

func (m *ListingRepositoryMock) Create(ctx context.Context, ext sqlx.ExtContext, listing *domain.Listing) error {
	args := m.Called(ctx, ext, listing)
	return args.Error(0)
}

func (m *ListingRepositoryMock) GetByID(ctx context.Context, ext sqlx.ExtContext, id string) (*domain.Listing, error) {
	args := m.Called(ctx, ext, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Listing), args.Error(1)
}

func (m *ListingRepositoryMock) GetByIDForUpdate(ctx context.Context, tx repository.Tx, id string) (*domain.Listing, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Listing), args.Error(1)
}

func (m *ListingRepositoryMock) Update(ctx context.Context, ext sqlx.ExtContext, listing *domain.Listing) error {
	args := m.Called(ctx, ext, listing)
	return args.Error(0)
}

func (m *ListingRepositoryMock) Deactivate(ctx context.Context, tx repository.Tx, id string) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

func (m *ListingRepositoryMock) ListByCommunity(ctx context.Context, ext sqlx.ExtContext, communityID string, activeOnly bool) ([]domain.Listing, error) {
	args := m.Called(ctx, ext, communityID, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.Listing), args.Error(1)
}

type UserRepositoryMock struct {
	mock.Mock
}

var _ repository.UserRepository = (*UserRepositoryMock)(nil)

func (m *UserRepositoryMock) Create(ctx context.Context, ext sqlx.ExtContext, user *domain.User) error {
	args := m.Called(ctx, ext, user)
	return args.Error(0)
}

func (m *UserRepositoryMock) GetByID(ctx context.Context, ext sqlx.ExtContext, id string) (*domain.User, error) {
	args := m.Called(ctx, ext, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *UserRepositoryMock) GetByEmail(ctx context.Context, ext sqlx.ExtContext, email string) (*domain.User, error) {
	args := m.Called(ctx, ext, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *UserRepositoryMock) GetByIDForUpdate(ctx context.Context, tx repository.Tx, id string) (*domain.User, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *UserRepositoryMock) Update(ctx context.Context, ext sqlx.ExtContext, user *domain.User) error {
	args := m.Called(ctx, ext, user)
	return args.Error(0)
}

type StatsRepositoryMock struct {
	mock.Mock
}

var _ repository.StatsRepository = (*StatsRepositoryMock)(nil)

func (m *StatsRepositoryMock) Get(ctx context.Context, ext sqlx.ExtContext, userID string) (*domain.UserStats, error) {
	args := m.Called(ctx, ext, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.UserStats), args.Error(1)
}

func (m *StatsRepositoryMock) GetForUpdate(ctx context.Context, tx repository.Tx, userID string) (*domain.UserStats, error) {
	args := m.Called(ctx, tx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.UserStats), args.Error(1)
}

func (m *StatsRepositoryMock) Save(ctx context.Context, ext sqlx.ExtContext, stats *domain.UserStats) error {
	args := m.Called(ctx, ext, stats)
	return args.Error(0)
}

type NotifierMock struct {
	mock.Mock
}

var _ Notifier = (*NotifierMock)(nil)

func (m *NotifierMock) Notify(ctx context.Context, userID string, n domain.NotificationDraft) error {
	args := m.Called(ctx, userID, n)
	return args.Error(0)
}

type BroadcasterMock struct {
	mock.Mock
}

var _ Broadcaster = (*BroadcasterMock)(nil)

func (m *BroadcasterMock) Broadcast(ctx context.Context, n *domain.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}
