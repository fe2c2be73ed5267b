package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"receiptbox/internal/errors"
	"receiptbox/internal/model"
	"receiptbox/internal/repository"
)

func validInput() ReceiptInput {
	category := "Groceries"
	payment := "Card"
	return ReceiptInput{
		StoreName:     "Acme",
		PurchaseDate:  model.NewDate(2024, time.March, 15),
		TotalAmount:   decimal.RequireFromString("19.99"),
		Category:      &category,
		PaymentMethod: &payment,
	}
}

func newReceiptService(receiptRepo *MockReceiptRepository, userRepo *MockUserRepository, files *MockFileStore) ReceiptService {
	return NewReceiptService(receiptRepo, userRepo, files, nil)
}

func TestReceiptService_Get_OwnershipGuard(t *testing.T) {
	receiptID := uuid.New()

	tests := []struct {
		name          string
		callerID      uint
		setupMock     func(*MockReceiptRepository)
		expectedError error
	}{
		{
			name:     "owner may read",
			callerID: 1,
			setupMock: func(m *MockReceiptRepository) {
				m.On("FindByID", mock.Anything, receiptID).Return(&model.Receipt{ID: receiptID, OwnerID: 1}, nil)
			},
			expectedError: nil,
		},
		{
			name:     "other caller is forbidden",
			callerID: 2,
			setupMock: func(m *MockReceiptRepository) {
				m.On("FindByID", mock.Anything, receiptID).Return(&model.Receipt{ID: receiptID, OwnerID: 1}, nil)
			},
			expectedError: errors.ErrNotOwner,
		},
		{
			name:     "missing receipt is not found",
			callerID: 1,
			setupMock: func(m *MockReceiptRepository) {
				m.On("FindByID", mock.Anything, receiptID).Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: errors.ErrReceiptNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			receiptRepo := new(MockReceiptRepository)
			tt.setupMock(receiptRepo)
			svc := newReceiptService(receiptRepo, new(MockUserRepository), new(MockFileStore))

			receipt, err := svc.Get(context.Background(), receiptID, tt.callerID)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, receipt)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, receiptID, receipt.ID)
			}
			receiptRepo.AssertExpectations(t)
		})
	}
}

func TestReceiptService_Create(t *testing.T) {
	t.Run("persists validated fields", func(t *testing.T) {
		receiptRepo := new(MockReceiptRepository)
		userRepo := new(MockUserRepository)
		userRepo.On("FindByID", mock.Anything, uint(1)).Return(&model.User{ID: 1}, nil)
		receiptRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Receipt")).Return(nil)

		svc := newReceiptService(receiptRepo, userRepo, new(MockFileStore))
		receipt, err := svc.Create(context.Background(), 1, validInput(), nil)

		assert.NoError(t, err)
		assert.Equal(t, uint(1), receipt.OwnerID)
		assert.Equal(t, "Acme", receipt.StoreName)
		assert.Equal(t, "2024-03-15", receipt.PurchaseDate.String())
		assert.True(t, receipt.TotalAmount.Equal(decimal.RequireFromString("19.99")))
		assert.Equal(t, "Groceries", *receipt.Category)
		assert.Equal(t, "Card", *receipt.PaymentMethod)
		assert.Nil(t, receipt.FileName)
		receiptRepo.AssertExpectations(t)
	})

	t.Run("rejects non-positive amount without persisting", func(t *testing.T) {
		receiptRepo := new(MockReceiptRepository)
		svc := newReceiptService(receiptRepo, new(MockUserRepository), new(MockFileStore))

		input := validInput()
		input.TotalAmount = decimal.RequireFromString("-5.00")
		receipt, err := svc.Create(context.Background(), 1, input, nil)

		assert.ErrorIs(t, err, errors.ErrInvalidAmount)
		assert.Nil(t, receipt)
		receiptRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("rejects empty store name", func(t *testing.T) {
		svc := newReceiptService(new(MockReceiptRepository), new(MockUserRepository), new(MockFileStore))

		input := validInput()
		input.StoreName = "   "
		_, err := svc.Create(context.Background(), 1, input, nil)

		assert.ErrorIs(t, err, errors.ErrStoreNameRequired)
	})

	t.Run("attachment storage failure prevents creation", func(t *testing.T) {
		receiptRepo := new(MockReceiptRepository)
		userRepo := new(MockUserRepository)
		files := new(MockFileStore)
		userRepo.On("FindByID", mock.Anything, uint(1)).Return(&model.User{ID: 1}, nil)
		files.On("Store", mock.Anything, "scan.pdf", mock.Anything).Return("", assert.AnError)

		svc := newReceiptService(receiptRepo, userRepo, files)
		attachment := &Attachment{Filename: "scan.pdf", Content: strings.NewReader("pdf")}
		_, err := svc.Create(context.Background(), 1, validInput(), attachment)

		assert.Error(t, err)
		receiptRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("stored attachment is released when insert fails", func(t *testing.T) {
		receiptRepo := new(MockReceiptRepository)
		userRepo := new(MockUserRepository)
		files := new(MockFileStore)
		userRepo.On("FindByID", mock.Anything, uint(1)).Return(&model.User{ID: 1}, nil)
		files.On("Store", mock.Anything, "scan.pdf", mock.Anything).Return("stored-name.pdf", nil)
		receiptRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Receipt")).Return(assert.AnError)
		files.On("Delete", mock.Anything, "stored-name.pdf").Return(nil)

		svc := newReceiptService(receiptRepo, userRepo, files)
		attachment := &Attachment{Filename: "scan.pdf", Content: strings.NewReader("pdf")}
		_, err := svc.Create(context.Background(), 1, validInput(), attachment)

		assert.Error(t, err)
		files.AssertExpectations(t)
	})
}

func TestReceiptService_Update_AttachmentOrdering(t *testing.T) {
	receiptID := uuid.New()
	oldName := "old.jpg"

	receiptRepo := new(MockReceiptRepository)
	files := new(MockFileStore)

	var calls []string
	receiptRepo.On("FindByID", mock.Anything, receiptID).
		Return(&model.Receipt{ID: receiptID, OwnerID: 1, FileName: &oldName}, nil)
	files.On("Store", mock.Anything, "new.jpg", mock.Anything).
		Run(func(mock.Arguments) { calls = append(calls, "store") }).
		Return("new-stored.jpg", nil)
	receiptRepo.On("Save", mock.Anything, mock.AnythingOfType("*model.Receipt")).
		Run(func(mock.Arguments) { calls = append(calls, "save") }).
		Return(nil)
	files.On("Delete", mock.Anything, oldName).
		Run(func(mock.Arguments) { calls = append(calls, "delete-old") }).
		Return(nil)

	svc := newReceiptService(receiptRepo, new(MockUserRepository), files)
	attachment := &Attachment{Filename: "new.jpg", Content: strings.NewReader("jpg")}
	receipt, err := svc.Update(context.Background(), receiptID, 1, validInput(), attachment)

	assert.NoError(t, err)
	assert.Equal(t, "new-stored.jpg", *receipt.FileName)
	// The new file is stored and the row committed before the old file goes.
	assert.Equal(t, []string{"store", "save", "delete-old"}, calls)
	receiptRepo.AssertExpectations(t)
	files.AssertExpectations(t)
}

func TestReceiptService_Update_Forbidden(t *testing.T) {
	receiptID := uuid.New()
	receiptRepo := new(MockReceiptRepository)
	receiptRepo.On("FindByID", mock.Anything, receiptID).
		Return(&model.Receipt{ID: receiptID, OwnerID: 1}, nil)

	svc := newReceiptService(receiptRepo, new(MockUserRepository), new(MockFileStore))
	_, err := svc.Update(context.Background(), receiptID, 2, validInput(), nil)

	assert.ErrorIs(t, err, errors.ErrNotOwner)
	receiptRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestReceiptService_Delete(t *testing.T) {
	t.Run("row deletion is authoritative, file cleanup best-effort", func(t *testing.T) {
		receiptID := uuid.New()
		fileName := "scan.pdf"
		receiptRepo := new(MockReceiptRepository)
		files := new(MockFileStore)
		receiptRepo.On("FindByID", mock.Anything, receiptID).
			Return(&model.Receipt{ID: receiptID, OwnerID: 1, FileName: &fileName}, nil)
		receiptRepo.On("Delete", mock.Anything, receiptID).Return(nil)
		files.On("Delete", mock.Anything, fileName).Return(assert.AnError)

		svc := newReceiptService(receiptRepo, new(MockUserRepository), files)
		err := svc.Delete(context.Background(), receiptID, 1)

		// A failed attachment cleanup does not fail the delete.
		assert.NoError(t, err)
		receiptRepo.AssertExpectations(t)
		files.AssertExpectations(t)
	})

	t.Run("second delete reports not found", func(t *testing.T) {
		receiptID := uuid.New()
		receiptRepo := new(MockReceiptRepository)
		receiptRepo.On("FindByID", mock.Anything, receiptID).Return(nil, gorm.ErrRecordNotFound)

		svc := newReceiptService(receiptRepo, new(MockUserRepository), new(MockFileStore))
		err := svc.Delete(context.Background(), receiptID, 1)

		assert.ErrorIs(t, err, errors.ErrReceiptNotFound)
	})
}

func TestReceiptService_Search(t *testing.T) {
	t.Run("always scopes to the caller", func(t *testing.T) {
		receiptRepo := new(MockReceiptRepository)
		empty := repository.Page[model.Receipt]{Content: []model.Receipt{}}
		receiptRepo.On("Search", mock.Anything, uint(7), repository.ReceiptFilter{}, mock.Anything).
			Return(empty, nil)

		svc := newReceiptService(receiptRepo, new(MockUserRepository), new(MockFileStore))
		_, err := svc.Search(context.Background(), 7, repository.ReceiptFilter{}, repository.PageRequest{})

		assert.NoError(t, err)
		receiptRepo.AssertExpectations(t)
	})

	t.Run("rejects inverted date range", func(t *testing.T) {
		receiptRepo := new(MockReceiptRepository)
		svc := newReceiptService(receiptRepo, new(MockUserRepository), new(MockFileStore))

		start := model.NewDate(2024, time.May, 1)
		end := model.NewDate(2024, time.April, 1)
		_, err := svc.Search(context.Background(), 7, repository.ReceiptFilter{StartDate: &start, EndDate: &end}, repository.PageRequest{})

		assert.ErrorIs(t, err, errors.ErrInvalidDateRange)
		receiptRepo.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
