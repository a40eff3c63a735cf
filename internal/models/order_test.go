// internal/models/order_test.go
package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestOrderStatusTransitions(t *testing.T) {
	cases := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{OrderStatusQuoteAsked, OrderStatusQuoteSent, true},
		{OrderStatusQuoteAsked, OrderStatusCancelled, true},
		{OrderStatusQuoteAsked, OrderStatusInProduction, false},
		{OrderStatusQuoteSent, OrderStatusQuoteValidated, true},
		{OrderStatusQuoteSent, OrderStatusQuoteAsked, true}, // rejection resets
		{OrderStatusQuoteSent, OrderStatusDelivered, false},
		{OrderStatusQuoteValidated, OrderStatusInProduction, true},
		{OrderStatusQuoteValidated, OrderStatusQuoteSent, false},
		{OrderStatusInProduction, OrderStatusInShipping, true},
		{OrderStatusInProduction, OrderStatusQuoteAsked, false},
		{OrderStatusInShipping, OrderStatusDelivered, true},
		{OrderStatusInShipping, OrderStatusCancelled, true},
		{OrderStatusDelivered, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusQuoteAsked, false},
	}

	for _, tc := range cases {
		order := &Order{Status: tc.from}
		assert.Equal(t, tc.allowed, order.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, IsTerminalStatus(OrderStatusDelivered))
	assert.True(t, IsTerminalStatus(OrderStatusCancelled))
	assert.False(t, IsTerminalStatus(OrderStatusQuoteAsked))
	assert.False(t, IsTerminalStatus(OrderStatusInShipping))
}

func TestDetailsLocked(t *testing.T) {
	locked := []OrderStatus{OrderStatusInProduction, OrderStatusInShipping, OrderStatusDelivered}
	for _, s := range locked {
		order := &Order{Status: s}
		assert.True(t, order.DetailsLocked(), "%s", s)
	}

	editable := []OrderStatus{OrderStatusQuoteAsked, OrderStatusQuoteSent, OrderStatusQuoteValidated, OrderStatusCancelled}
	for _, s := range editable {
		order := &Order{Status: s}
		assert.False(t, order.DetailsLocked(), "%s", s)
	}
}

func TestCanAccessOrder(t *testing.T) {
	dentistID := uuid.New()
	supplierID := uuid.New()
	order := &Order{DentistID: dentistID, SupplierID: &supplierID}

	admin := &User{Role: UserRoleAdmin}
	admin.ID = uuid.New()
	assert.True(t, admin.CanAccessOrder(order))

	dentist := &User{Role: UserRoleDentist}
	dentist.ID = dentistID
	assert.True(t, dentist.CanAccessOrder(order))

	supplier := &User{Role: UserRoleSupplier}
	supplier.ID = supplierID
	assert.True(t, supplier.CanAccessOrder(order))

	stranger := &User{Role: UserRoleDentist}
	stranger.ID = uuid.New()
	assert.False(t, stranger.CanAccessOrder(order))

	unassigned := &Order{DentistID: dentistID}
	otherSupplier := &User{Role: UserRoleSupplier}
	otherSupplier.ID = uuid.New()
	assert.False(t, otherSupplier.CanAccessOrder(unassigned))
}
