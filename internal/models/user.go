// internal/models/user.go
package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Username          string   `json:"username" gorm:"uniqueIndex;size:50;not null"`
	Email             string   `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash      string   `json:"-" gorm:"size:255;not null"`
	Role              UserRole `json:"role" gorm:"type:varchar(20);not null"`
	PreferredLanguage string   `json:"preferred_language" gorm:"size:10;default:'en'"`
	IsActive          bool     `json:"is_active" gorm:"default:true"`
	IsVerified        bool     `json:"is_verified" gorm:"default:false"`
	Phone             string   `json:"phone" gorm:"size:30"`
	ProfileData       JSONB    `json:"profile_data" gorm:"type:jsonb"`

	// Dentist-only attributes
	PracticeName  string `json:"practice_name,omitempty" gorm:"size:255"`
	LicenseNumber string `json:"license_number,omitempty" gorm:"size:100"`

	// Supplier-only attributes
	CompanyName          string `json:"company_name,omitempty" gorm:"size:255"`
	BusinessRegistration string `json:"business_registration,omitempty" gorm:"size:100"`

	LastLoginAt *time.Time `json:"last_login_at"`

	// Relationships
	DentistOrders  []Order `json:"dentist_orders,omitempty" gorm:"foreignKey:DentistID"`
	SupplierOrders []Order `json:"supplier_orders,omitempty" gorm:"foreignKey:SupplierID"`
	Quotes         []Quote `json:"quotes,omitempty" gorm:"foreignKey:SupplierID"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

// CanAccessOrder reports whether the user may see or act on the order.
// Admins see everything; dentists and suppliers only the orders they own
// or are assigned to.
func (u *User) CanAccessOrder(order *Order) bool {
	if u.Role == UserRoleAdmin {
		return true
	}
	if order == nil {
		return false
	}
	if u.Role == UserRoleDentist && order.DentistID == u.ID {
		return true
	}
	if u.Role == UserRoleSupplier && order.SupplierID != nil && *order.SupplierID == u.ID {
		return true
	}
	return false
}
