// internal/models/order.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type Order struct {
	BaseModel
	OrderNumber string       `json:"order_number" gorm:"uniqueIndex;size:20;not null"`
	DentistID   uuid.UUID    `json:"dentist_id" gorm:"type:uuid;not null;index"`
	SupplierID  *uuid.UUID   `json:"supplier_id" gorm:"type:uuid;index"`
	Status      OrderStatus  `json:"status" gorm:"type:varchar(20);not null;default:'quote_asked';index"`

	// Clinical descriptors, locked once production starts
	Title          string       `json:"title" gorm:"size:255;not null"`
	Description    string       `json:"description" gorm:"type:text"`
	PatientName    string       `json:"patient_name" gorm:"size:255"`
	PatientAge     int          `json:"patient_age"`
	ProsthesisType string       `json:"prosthesis_type" gorm:"size:100;not null"`
	Material       string       `json:"material" gorm:"size:100"`
	Shade          string       `json:"shade" gorm:"size:50"`
	Urgency        UrgencyLevel `json:"urgency" gorm:"type:varchar(20);default:'standard'"`
	Notes          string       `json:"notes" gorm:"type:text"`

	// Pricing snapshot, copied from the accepted quote
	OriginalQuote *float64 `json:"original_quote"`
	AdjustedQuote *float64 `json:"adjusted_quote"`
	PricingFactor *float64 `json:"pricing_factor"`

	// Tracking
	ExpectedDeliveryDate *time.Time `json:"expected_delivery_date"`
	ActualDeliveryDate   *time.Time `json:"actual_delivery_date"`
	TrackingNumber       string     `json:"tracking_number" gorm:"size:100"`

	// Relationships
	Dentist  User          `json:"dentist,omitempty" gorm:"foreignKey:DentistID"`
	Supplier *User         `json:"supplier,omitempty" gorm:"foreignKey:SupplierID"`
	Quotes   []Quote       `json:"quotes,omitempty" gorm:"foreignKey:OrderID"`
	Messages []ChatMessage `json:"messages,omitempty" gorm:"foreignKey:OrderID"`
	Files    []File        `json:"files,omitempty" gorm:"foreignKey:OrderID"`
}

// statusTransitions is the fixed order workflow graph. delivered and
// cancelled are terminal.
var statusTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusQuoteAsked:     {OrderStatusQuoteSent, OrderStatusCancelled},
	OrderStatusQuoteSent:      {OrderStatusQuoteValidated, OrderStatusQuoteAsked, OrderStatusCancelled},
	OrderStatusQuoteValidated: {OrderStatusInProduction, OrderStatusCancelled},
	OrderStatusInProduction:   {OrderStatusInShipping, OrderStatusCancelled},
	OrderStatusInShipping:     {OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusDelivered:      {},
	OrderStatusCancelled:      {},
}

// CanTransitionTo reports whether moving the order from its current status
// to target is a legal step of the workflow graph.
func (o *Order) CanTransitionTo(target OrderStatus) bool {
	for _, s := range statusTransitions[o.Status] {
		if s == target {
			return true
		}
	}
	return false
}

// IsTerminalStatus reports whether the status has no outgoing transitions.
func IsTerminalStatus(s OrderStatus) bool {
	return len(statusTransitions[s]) == 0
}

// DetailsLocked reports whether clinical/descriptive fields are immutable.
// Locking starts when production does; cancelled orders stay editable.
func (o *Order) DetailsLocked() bool {
	switch o.Status {
	case OrderStatusInProduction, OrderStatusInShipping, OrderStatusDelivered:
		return true
	}
	return false
}
