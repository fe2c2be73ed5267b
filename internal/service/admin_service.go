package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"receiptbox/internal/cache"
	"receiptbox/internal/errors"
	"receiptbox/internal/model"
	"receiptbox/internal/repository"
	"receiptbox/internal/storage"
)

const (
	// UncategorizedBucket labels receipts that carry no category.
	UncategorizedBucket = "Uncategorized"
	// UnknownPaymentBucket labels receipts that carry no payment method.
	UnknownPaymentBucket = "Unknown"

	analyticsCacheKey = "analytics:report"
	analyticsCacheTTL = time.Minute
)

// AnalyticsReport is the cross-user spending breakdown. Map keys are
// unordered; monthly keys are "YYYY-MM" strings that sort chronologically.
type AnalyticsReport struct {
	TotalUsers              int64                      `json:"totalUsers"`
	TotalReceipts           int64                      `json:"totalReceipts"`
	TotalSpending           decimal.Decimal            `json:"totalSpending"`
	ReceiptsByCategory      map[string]int64           `json:"receiptsByCategory"`
	SpendingByCategory      map[string]decimal.Decimal `json:"spendingByCategory"`
	ReceiptsByPaymentMethod map[string]int64           `json:"receiptsByPaymentMethod"`
	MonthlyReceiptCount     map[string]int64           `json:"monthlyReceiptCount"`
	MonthlySpending         map[string]decimal.Decimal `json:"monthlySpending"`
}

// AdminService handles user administration and cross-user analytics.
type AdminService interface {
	ListUsers(ctx context.Context) ([]model.User, error)
	GetUser(ctx context.Context, id uint) (*model.User, error)
	DeleteUser(ctx context.Context, id uint) error
	Analytics(ctx context.Context) (*AnalyticsReport, error)
}

type adminService struct {
	userRepo    repository.UserRepository
	receiptRepo repository.ReceiptRepository
	files       storage.FileStore
	cache       *cache.Client
}

// NewAdminService creates a new admin service.
func NewAdminService(
	userRepo repository.UserRepository,
	receiptRepo repository.ReceiptRepository,
	files storage.FileStore,
	cache *cache.Client,
) AdminService {
	return &adminService{
		userRepo:    userRepo,
		receiptRepo: receiptRepo,
		files:       files,
		cache:       cache,
	}
}

// ListUsers returns all registered users.
func (s *adminService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.userRepo.List(ctx)
}

// GetUser returns a single user by id.
func (s *adminService) GetUser(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// DeleteUser removes a user and cascades to all owned receipts. Row deletion
// is authoritative; attachment cleanup afterwards is best-effort and runs
// concurrently.
func (s *adminService) DeleteUser(ctx context.Context, id uint) error {
	if _, err := s.GetUser(ctx, id); err != nil {
		return err
	}

	fileNames, err := s.receiptRepo.FileNamesByOwner(ctx, id)
	if err != nil {
		return fmt.Errorf("list attachments: %w", err)
	}

	if err := s.receiptRepo.DeleteByOwner(ctx, id); err != nil {
		return fmt.Errorf("delete receipts: %w", err)
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	s.cleanupFiles(ctx, fileNames)

	_ = s.cache.Delete(ctx, userCacheKey(id))
	_ = s.cache.Delete(ctx, analyticsCacheKey)
	return nil
}

// cleanupFiles deletes stored attachments concurrently, logging failures.
func (s *adminService) cleanupFiles(ctx context.Context, names []string) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, name := range names {
		g.Go(func() error {
			if err := s.files.Delete(gctx, name); err != nil {
				log.Printf("warn: delete attachment %s: %v", name, err)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// Analytics computes the cross-user spending report. The result is cached
// briefly; mutations invalidate the cache.
func (s *adminService) Analytics(ctx context.Context) (*AnalyticsReport, error) {
	var cached AnalyticsReport
	if s.cache.GetJSON(ctx, analyticsCacheKey, &cached) {
		return &cached, nil
	}

	report := &AnalyticsReport{
		TotalSpending:           decimal.Zero,
		ReceiptsByCategory:      map[string]int64{},
		SpendingByCategory:      map[string]decimal.Decimal{},
		ReceiptsByPaymentMethod: map[string]int64{},
		MonthlyReceiptCount:     map[string]int64{},
		MonthlySpending:         map[string]decimal.Decimal{},
	}

	var err error
	if report.TotalUsers, err = s.userRepo.Count(ctx); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if report.TotalReceipts, err = s.receiptRepo.Count(ctx); err != nil {
		return nil, fmt.Errorf("count receipts: %w", err)
	}
	if report.TotalSpending, err = s.receiptRepo.TotalSpending(ctx); err != nil {
		return nil, fmt.Errorf("sum spending: %w", err)
	}

	categoryCounts, err := s.receiptRepo.CountByCategory(ctx)
	if err != nil {
		return nil, fmt.Errorf("count by category: %w", err)
	}
	for _, row := range categoryCounts {
		report.ReceiptsByCategory[bucketLabel(row.Category, UncategorizedBucket)] += row.Count
	}

	categorySums, err := s.receiptRepo.SumByCategory(ctx)
	if err != nil {
		return nil, fmt.Errorf("sum by category: %w", err)
	}
	for _, row := range categorySums {
		label := bucketLabel(row.Category, UncategorizedBucket)
		report.SpendingByCategory[label] = report.SpendingByCategory[label].Add(row.Total)
	}

	methodCounts, err := s.receiptRepo.CountByPaymentMethod(ctx)
	if err != nil {
		return nil, fmt.Errorf("count by payment method: %w", err)
	}
	for _, row := range methodCounts {
		report.ReceiptsByPaymentMethod[bucketLabel(row.PaymentMethod, UnknownPaymentBucket)] += row.Count
	}

	monthCounts, err := s.receiptRepo.CountByMonth(ctx)
	if err != nil {
		return nil, fmt.Errorf("count by month: %w", err)
	}
	for _, row := range monthCounts {
		report.MonthlyReceiptCount[row.Month] = row.Count
	}

	monthSums, err := s.receiptRepo.SumByMonth(ctx)
	if err != nil {
		return nil, fmt.Errorf("sum by month: %w", err)
	}
	for _, row := range monthSums {
		report.MonthlySpending[row.Month] = row.Total
	}

	s.cache.SetJSON(ctx, analyticsCacheKey, report, analyticsCacheTTL)
	return report, nil
}

// bucketLabel maps a nullable aggregation label to its bucket name. Empty
// strings collapse into the fallback bucket alongside NULLs.
func bucketLabel(label *string, fallback string) string {
	if label == nil || *label == "" {
		return fallback
	}
	return *label
}
