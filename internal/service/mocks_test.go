package service

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"receiptbox/internal/model"
	"receiptbox/internal/repository"
)

// MockReceiptRepository is a mock implementation of ReceiptRepository.
type MockReceiptRepository struct {
	mock.Mock
}

func (m *MockReceiptRepository) Create(ctx context.Context, receipt *model.Receipt) error {
	args := m.Called(ctx, receipt)
	return args.Error(0)
}

func (m *MockReceiptRepository) Save(ctx context.Context, receipt *model.Receipt) error {
	args := m.Called(ctx, receipt)
	return args.Error(0)
}

func (m *MockReceiptRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Receipt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Receipt), args.Error(1)
}

func (m *MockReceiptRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockReceiptRepository) FindByOwner(ctx context.Context, ownerID uint, page repository.PageRequest) (repository.Page[model.Receipt], error) {
	args := m.Called(ctx, ownerID, page)
	return args.Get(0).(repository.Page[model.Receipt]), args.Error(1)
}

func (m *MockReceiptRepository) Search(ctx context.Context, ownerID uint, filter repository.ReceiptFilter, page repository.PageRequest) (repository.Page[model.Receipt], error) {
	args := m.Called(ctx, ownerID, filter, page)
	return args.Get(0).(repository.Page[model.Receipt]), args.Error(1)
}

func (m *MockReceiptRepository) FileNamesByOwner(ctx context.Context, ownerID uint) ([]string, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockReceiptRepository) DeleteByOwner(ctx context.Context, ownerID uint) error {
	args := m.Called(ctx, ownerID)
	return args.Error(0)
}

func (m *MockReceiptRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReceiptRepository) TotalSpending(ctx context.Context) (decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockReceiptRepository) CountByCategory(ctx context.Context) ([]repository.CategoryCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.CategoryCount), args.Error(1)
}

func (m *MockReceiptRepository) SumByCategory(ctx context.Context) ([]repository.CategorySum, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.CategorySum), args.Error(1)
}

func (m *MockReceiptRepository) CountByPaymentMethod(ctx context.Context) ([]repository.PaymentMethodCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.PaymentMethodCount), args.Error(1)
}

func (m *MockReceiptRepository) CountByMonth(ctx context.Context) ([]repository.MonthCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.MonthCount), args.Error(1)
}

func (m *MockReceiptRepository) SumByMonth(ctx context.Context) ([]repository.MonthSum, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.MonthSum), args.Error(1)
}

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockFileStore is a mock implementation of storage.FileStore.
type MockFileStore struct {
	mock.Mock
}

func (m *MockFileStore) Store(ctx context.Context, originalName string, content io.Reader) (string, error) {
	args := m.Called(ctx, originalName, content)
	return args.String(0), args.Error(1)
}

func (m *MockFileStore) Delete(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockFileStore) URL(name string) string {
	args := m.Called(name)
	return args.String(0)
}
