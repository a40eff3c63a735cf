// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// BeforeCreate assigns the UUID in the application so the same models work
// against PostgreSQL and the in-memory sqlite used by tests.
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type UserRole string

const (
	UserRoleAdmin    UserRole = "admin"
	UserRoleDentist  UserRole = "dentist"
	UserRoleSupplier UserRole = "supplier"
)

type OrderStatus string

const (
	OrderStatusQuoteAsked     OrderStatus = "quote_asked"
	OrderStatusQuoteSent      OrderStatus = "quote_sent"
	OrderStatusQuoteValidated OrderStatus = "quote_validated"
	OrderStatusInProduction   OrderStatus = "in_production"
	OrderStatusInShipping     OrderStatus = "in_shipping"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

type QuoteStatus string

const (
	QuoteStatusDraft    QuoteStatus = "draft"
	QuoteStatusSent     QuoteStatus = "sent"
	QuoteStatusAccepted QuoteStatus = "accepted"
	QuoteStatusRejected QuoteStatus = "rejected"
	QuoteStatusModified QuoteStatus = "modified"
)

type UrgencyLevel string

const (
	UrgencyStandard  UrgencyLevel = "standard"
	UrgencyUrgent    UrgencyLevel = "urgent"
	UrgencyEmergency UrgencyLevel = "emergency"
)

type MessageType string

const (
	MessageTypeText   MessageType = "text"
	MessageTypeSystem MessageType = "system"
	MessageTypeFile   MessageType = "file"
)

type FileType string

const (
	FileTypeSTL      FileType = "stl"
	FileTypePDF      FileType = "pdf"
	FileTypeImage    FileType = "image"
	FileTypeDocument FileType = "document"
	FileTypeOther    FileType = "other"
)

// PricingScopeGeneral is the wildcard value for the pricing factor scoping
// columns (category, material, urgency). A rule carrying "general" in a
// dimension matches any order on that dimension.
const PricingScopeGeneral = "general"
