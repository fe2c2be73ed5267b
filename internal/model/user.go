package model

import "time"

// Role controls access to the admin surface.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User represents a registered receipt owner.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"size:255;not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Role         Role      `json:"role" gorm:"type:varchar(20);not null;default:'USER';index"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relations
	Receipts []Receipt `json:"-" gorm:"foreignKey:OwnerID"`
}

// IsAdmin reports whether the user may access admin endpoints.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
