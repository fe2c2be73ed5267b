package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Receipt represents a single purchase receipt owned by a user.
// OwnerID is immutable after creation; ownership never transfers.
type Receipt struct {
	ID            uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	OwnerID       uint            `json:"owner_id" gorm:"not null;index"`
	StoreName     string          `json:"store_name" gorm:"size:255;not null;index"`
	PurchaseDate  Date            `json:"purchase_date" gorm:"not null;index"`
	TotalAmount   decimal.Decimal `json:"total_amount" gorm:"type:decimal(10,2);not null"`
	Category      *string         `json:"category" gorm:"size:100;index"`
	PaymentMethod *string         `json:"payment_method" gorm:"size:50"`
	FileName      *string         `json:"-" gorm:"size:255"` // Opaque stored-object name
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	// Relations
	Owner User `json:"-" gorm:"foreignKey:OwnerID"`
}

// BeforeCreate sets UUID before creating the record.
func (r *Receipt) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
