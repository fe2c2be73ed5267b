package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"receiptbox/internal/model"
)

// ReceiptFilter holds the optional search constraints, combined with AND.
// Zero-valued fields impose no constraint.
type ReceiptFilter struct {
	StoreName string
	Category  string
	StartDate *model.Date
	EndDate   *model.Date
}

// CategoryCount is one category aggregation row. A nil Category means the
// receipts carried no category.
type CategoryCount struct {
	Category *string
	Count    int64
}

// CategorySum is one category spending aggregation row.
type CategorySum struct {
	Category *string
	Total    decimal.Decimal
}

// PaymentMethodCount is one payment method aggregation row.
type PaymentMethodCount struct {
	PaymentMethod *string
	Count         int64
}

// MonthCount is one calendar month aggregation row, keyed "YYYY-MM".
type MonthCount struct {
	Month string
	Count int64
}

// MonthSum is one calendar month spending aggregation row, keyed "YYYY-MM".
type MonthSum struct {
	Month string
	Total decimal.Decimal
}

// ReceiptRepository defines receipt persistence and aggregation operations.
type ReceiptRepository interface {
	Create(ctx context.Context, receipt *model.Receipt) error
	Save(ctx context.Context, receipt *model.Receipt) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Receipt, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FindByOwner(ctx context.Context, ownerID uint, page PageRequest) (Page[model.Receipt], error)
	Search(ctx context.Context, ownerID uint, filter ReceiptFilter, page PageRequest) (Page[model.Receipt], error)
	FileNamesByOwner(ctx context.Context, ownerID uint) ([]string, error)
	DeleteByOwner(ctx context.Context, ownerID uint) error
	Count(ctx context.Context) (int64, error)
	TotalSpending(ctx context.Context) (decimal.Decimal, error)
	CountByCategory(ctx context.Context) ([]CategoryCount, error)
	SumByCategory(ctx context.Context) ([]CategorySum, error)
	CountByPaymentMethod(ctx context.Context) ([]PaymentMethodCount, error)
	CountByMonth(ctx context.Context) ([]MonthCount, error)
	SumByMonth(ctx context.Context) ([]MonthSum, error)
}

type receiptRepository struct {
	db *gorm.DB
}

// NewReceiptRepository creates a new receipt repository.
func NewReceiptRepository(db *gorm.DB) ReceiptRepository {
	return &receiptRepository{db: db}
}

// Create creates a new receipt record.
func (r *receiptRepository) Create(ctx context.Context, receipt *model.Receipt) error {
	return r.db.WithContext(ctx).Create(receipt).Error
}

// Save updates an existing receipt record.
func (r *receiptRepository) Save(ctx context.Context, receipt *model.Receipt) error {
	return r.db.WithContext(ctx).Save(receipt).Error
}

// FindByID finds a receipt by ID.
func (r *receiptRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Receipt, error) {
	var receipt model.Receipt
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&receipt).Error; err != nil {
		return nil, err
	}
	return &receipt, nil
}

// Delete removes a receipt row.
func (r *receiptRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Receipt{}).Error
}

// FindByOwner returns one page of the owner's receipts.
func (r *receiptRepository) FindByOwner(ctx context.Context, ownerID uint, page PageRequest) (Page[model.Receipt], error) {
	return r.findPage(r.db.WithContext(ctx).Model(&model.Receipt{}).Where("owner_id = ?", ownerID), page)
}

// Search returns one page of the owner's receipts matching the filter.
// The owner scope is applied unconditionally, before any filter.
func (r *receiptRepository) Search(ctx context.Context, ownerID uint, filter ReceiptFilter, page PageRequest) (Page[model.Receipt], error) {
	query := applyReceiptFilter(
		r.db.WithContext(ctx).Model(&model.Receipt{}).Where("owner_id = ?", ownerID),
		filter,
	)
	return r.findPage(query, page)
}

// applyReceiptFilter composes the optional search constraints onto a query.
func applyReceiptFilter(query *gorm.DB, filter ReceiptFilter) *gorm.DB {
	if filter.StoreName != "" {
		query = query.Where("LOWER(store_name) LIKE ?", "%"+strings.ToLower(filter.StoreName)+"%")
	}
	if filter.Category != "" {
		query = query.Where("LOWER(category) LIKE ?", "%"+strings.ToLower(filter.Category)+"%")
	}
	if filter.StartDate != nil {
		query = query.Where("purchase_date >= ?", filter.StartDate.Time)
	}
	if filter.EndDate != nil {
		query = query.Where("purchase_date <= ?", filter.EndDate.Time)
	}
	return query
}

// findPage counts matches, then loads the requested slice.
func (r *receiptRepository) findPage(query *gorm.DB, page PageRequest) (Page[model.Receipt], error) {
	page = page.Normalize()

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return Page[model.Receipt]{}, err
	}

	var receipts []model.Receipt
	if err := query.Order(page.OrderClause()).
		Offset(page.Offset()).
		Limit(page.Size).
		Find(&receipts).Error; err != nil {
		return Page[model.Receipt]{}, err
	}

	return NewPage(receipts, page, total), nil
}

// FileNamesByOwner lists the stored attachment names of an owner's receipts.
func (r *receiptRepository) FileNamesByOwner(ctx context.Context, ownerID uint) ([]string, error) {
	var names []string
	if err := r.db.WithContext(ctx).Model(&model.Receipt{}).
		Where("owner_id = ? AND file_name IS NOT NULL", ownerID).
		Pluck("file_name", &names).Error; err != nil {
		return nil, err
	}
	return names, nil
}

// DeleteByOwner removes all receipts owned by a user.
func (r *receiptRepository) DeleteByOwner(ctx context.Context, ownerID uint) error {
	return r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Delete(&model.Receipt{}).Error
}

// Count returns the total number of receipts across all users.
func (r *receiptRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Receipt{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// TotalSpending sums total_amount over all receipts, zero when none exist.
func (r *receiptRepository) TotalSpending(ctx context.Context) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).Model(&model.Receipt{}).
		Select("COALESCE(SUM(total_amount), 0) AS total").
		Scan(&row).Error; err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}

// CountByCategory groups receipt counts by category across all users.
func (r *receiptRepository) CountByCategory(ctx context.Context) ([]CategoryCount, error) {
	var rows []CategoryCount
	if err := r.db.WithContext(ctx).Model(&model.Receipt{}).
		Select("category, COUNT(*) AS count").
		Group("category").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// SumByCategory groups spending sums by category across all users.
func (r *receiptRepository) SumByCategory(ctx context.Context) ([]CategorySum, error) {
	var rows []CategorySum
	if err := r.db.WithContext(ctx).Model(&model.Receipt{}).
		Select("category, SUM(total_amount) AS total").
		Group("category").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CountByPaymentMethod groups receipt counts by payment method across all users.
func (r *receiptRepository) CountByPaymentMethod(ctx context.Context) ([]PaymentMethodCount, error) {
	var rows []PaymentMethodCount
	if err := r.db.WithContext(ctx).Model(&model.Receipt{}).
		Select("payment_method, COUNT(*) AS count").
		Group("payment_method").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CountByMonth groups receipt counts by purchase month, ascending by month.
func (r *receiptRepository) CountByMonth(ctx context.Context) ([]MonthCount, error) {
	var rows []MonthCount
	if err := r.db.WithContext(ctx).Model(&model.Receipt{}).
		Select("DATE_FORMAT(purchase_date, '%Y-%m') AS month, COUNT(*) AS count").
		Group("month").
		Order("month ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// SumByMonth groups spending sums by purchase month, ascending by month.
func (r *receiptRepository) SumByMonth(ctx context.Context) ([]MonthSum, error) {
	var rows []MonthSum
	if err := r.db.WithContext(ctx).Model(&model.Receipt{}).
		Select("DATE_FORMAT(purchase_date, '%Y-%m') AS month, SUM(total_amount) AS total").
		Group("month").
		Order("month ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
