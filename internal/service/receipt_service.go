package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"receiptbox/internal/cache"
	"receiptbox/internal/errors"
	"receiptbox/internal/model"
	"receiptbox/internal/repository"
	"receiptbox/internal/storage"
)

// ReceiptInput is a validated field set for creating or updating a receipt.
type ReceiptInput struct {
	StoreName     string
	PurchaseDate  model.Date
	TotalAmount   decimal.Decimal
	Category      *string
	PaymentMethod *string
}

// Attachment is an optional binary file accompanying a receipt.
type Attachment struct {
	Filename string
	Content  io.Reader
}

// ReceiptService orchestrates receipt lifecycle, ownership checks and search.
// Every single-record operation takes the caller's user ID explicitly and
// refuses access to receipts the caller does not own.
type ReceiptService interface {
	Create(ctx context.Context, ownerID uint, input ReceiptInput, attachment *Attachment) (*model.Receipt, error)
	Get(ctx context.Context, receiptID uuid.UUID, callerID uint) (*model.Receipt, error)
	Update(ctx context.Context, receiptID uuid.UUID, callerID uint, input ReceiptInput, attachment *Attachment) (*model.Receipt, error)
	Delete(ctx context.Context, receiptID uuid.UUID, callerID uint) error
	List(ctx context.Context, callerID uint, page repository.PageRequest) (repository.Page[model.Receipt], error)
	Search(ctx context.Context, callerID uint, filter repository.ReceiptFilter, page repository.PageRequest) (repository.Page[model.Receipt], error)
	Owner(ctx context.Context, ownerID uint) (*model.User, error)
}

type receiptService struct {
	receiptRepo repository.ReceiptRepository
	userRepo    repository.UserRepository
	files       storage.FileStore
	cache       *cache.Client
}

// NewReceiptService creates a new receipt service.
func NewReceiptService(
	receiptRepo repository.ReceiptRepository,
	userRepo repository.UserRepository,
	files storage.FileStore,
	cache *cache.Client,
) ReceiptService {
	return &receiptService{
		receiptRepo: receiptRepo,
		userRepo:    userRepo,
		files:       files,
		cache:       cache,
	}
}

// authorize loads a receipt and verifies the caller owns it. Every
// single-record read, update and delete path goes through here.
func (s *receiptService) authorize(ctx context.Context, receiptID uuid.UUID, callerID uint) (*model.Receipt, error) {
	receipt, err := s.receiptRepo.FindByID(ctx, receiptID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrReceiptNotFound
		}
		return nil, fmt.Errorf("find receipt: %w", err)
	}
	if receipt.OwnerID != callerID {
		return nil, errors.ErrNotOwner
	}
	return receipt, nil
}

// validateInput checks the data-model invariants on a field set.
func validateInput(input *ReceiptInput) error {
	input.StoreName = strings.TrimSpace(input.StoreName)
	if input.StoreName == "" {
		return errors.ErrStoreNameRequired
	}
	if input.PurchaseDate.IsZero() {
		return errors.ErrPurchaseDateRequired
	}
	if input.TotalAmount.LessThanOrEqual(decimal.Zero) {
		return errors.ErrInvalidAmount
	}
	return nil
}

// Create persists a new receipt owned by ownerID. When an attachment is
// supplied it is stored first, so a storage failure prevents record creation.
func (s *receiptService) Create(ctx context.Context, ownerID uint, input ReceiptInput, attachment *Attachment) (*model.Receipt, error) {
	if err := validateInput(&input); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByID(ctx, ownerID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find owner: %w", err)
	}

	receipt := &model.Receipt{
		OwnerID:       ownerID,
		StoreName:     input.StoreName,
		PurchaseDate:  input.PurchaseDate,
		TotalAmount:   input.TotalAmount,
		Category:      input.Category,
		PaymentMethod: input.PaymentMethod,
	}

	if attachment != nil {
		name, err := s.files.Store(ctx, attachment.Filename, attachment.Content)
		if err != nil {
			return nil, fmt.Errorf("store attachment: %w", err)
		}
		receipt.FileName = &name
	}

	if err := s.receiptRepo.Create(ctx, receipt); err != nil {
		if receipt.FileName != nil {
			s.releaseFile(ctx, *receipt.FileName)
		}
		return nil, fmt.Errorf("create receipt: %w", err)
	}

	s.invalidateAnalytics(ctx)
	return receipt, nil
}

// Get returns a receipt after the ownership check.
func (s *receiptService) Get(ctx context.Context, receiptID uuid.UUID, callerID uint) (*model.Receipt, error) {
	return s.authorize(ctx, receiptID, callerID)
}

// Update replaces the mutable fields of an owned receipt. A new attachment is
// stored and the row committed with the new reference before the old
// attachment is released, so a mid-operation failure never leaves the record
// pointing at a deleted file.
func (s *receiptService) Update(ctx context.Context, receiptID uuid.UUID, callerID uint, input ReceiptInput, attachment *Attachment) (*model.Receipt, error) {
	receipt, err := s.authorize(ctx, receiptID, callerID)
	if err != nil {
		return nil, err
	}

	if err := validateInput(&input); err != nil {
		return nil, err
	}

	receipt.StoreName = input.StoreName
	receipt.PurchaseDate = input.PurchaseDate
	receipt.TotalAmount = input.TotalAmount
	receipt.Category = input.Category
	receipt.PaymentMethod = input.PaymentMethod

	var oldFile *string
	if attachment != nil {
		name, err := s.files.Store(ctx, attachment.Filename, attachment.Content)
		if err != nil {
			return nil, fmt.Errorf("store attachment: %w", err)
		}
		oldFile = receipt.FileName
		receipt.FileName = &name
	}

	if err := s.receiptRepo.Save(ctx, receipt); err != nil {
		if attachment != nil && receipt.FileName != nil {
			s.releaseFile(ctx, *receipt.FileName)
		}
		return nil, fmt.Errorf("update receipt: %w", err)
	}

	// Release the superseded attachment only after the row is committed.
	if oldFile != nil {
		s.releaseFile(ctx, *oldFile)
	}

	s.invalidateAnalytics(ctx)
	return receipt, nil
}

// Delete removes an owned receipt. Row deletion is the authoritative step;
// attachment cleanup afterwards is best-effort.
func (s *receiptService) Delete(ctx context.Context, receiptID uuid.UUID, callerID uint) error {
	receipt, err := s.authorize(ctx, receiptID, callerID)
	if err != nil {
		return err
	}

	if err := s.receiptRepo.Delete(ctx, receipt.ID); err != nil {
		return fmt.Errorf("delete receipt: %w", err)
	}

	if receipt.FileName != nil {
		s.releaseFile(ctx, *receipt.FileName)
	}

	s.invalidateAnalytics(ctx)
	return nil
}

// List returns one page of the caller's receipts.
func (s *receiptService) List(ctx context.Context, callerID uint, page repository.PageRequest) (repository.Page[model.Receipt], error) {
	return s.receiptRepo.FindByOwner(ctx, callerID, page)
}

// Search returns one page of the caller's receipts matching the filter.
// Results are always scoped to the caller, filters or not.
func (s *receiptService) Search(ctx context.Context, callerID uint, filter repository.ReceiptFilter, page repository.PageRequest) (repository.Page[model.Receipt], error) {
	filter.StoreName = strings.TrimSpace(filter.StoreName)
	filter.Category = strings.TrimSpace(filter.Category)
	if filter.StartDate != nil && filter.EndDate != nil && filter.StartDate.After(filter.EndDate.Time) {
		return repository.Page[model.Receipt]{}, errors.ErrInvalidDateRange
	}
	return s.receiptRepo.Search(ctx, callerID, filter, page)
}

// Owner materializes the owner summary for response shaping.
func (s *receiptService) Owner(ctx context.Context, ownerID uint) (*model.User, error) {
	owner, err := s.userRepo.FindByID(ctx, ownerID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find owner: %w", err)
	}
	return owner, nil
}

// releaseFile deletes a stored object, logging instead of failing.
func (s *receiptService) releaseFile(ctx context.Context, name string) {
	if err := s.files.Delete(ctx, name); err != nil {
		log.Printf("warn: delete attachment %s: %v", name, err)
	}
}

func (s *receiptService) invalidateAnalytics(ctx context.Context) {
	_ = s.cache.Delete(ctx, analyticsCacheKey)
}
