// internal/services/order_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/RomainLafont/project-g/internal/apperrors"
	"github.com/RomainLafont/project-g/internal/models"
)

func newOrderService(db *gorm.DB) *OrderService {
	return NewOrderService(db, NewChatService(db, nil))
}

func TestCreateOrderAssignsSequentialNumbers(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db)
	dentist := createTestUser(t, db, models.UserRoleDentist)
	supplier := createTestUser(t, db, models.UserRoleSupplier)

	first, err := svc.CreateOrder(dentist, &CreateOrderRequest{
		SupplierID:     supplier.ID,
		Title:          "Upper molar crown",
		ProsthesisType: "crown",
	})
	require.NoError(t, err)
	assert.Equal(t, "ORD-000001", first.OrderNumber)
	assert.Equal(t, models.OrderStatusQuoteAsked, first.Status)
	assert.Equal(t, models.UrgencyStandard, first.Urgency)

	second, err := svc.CreateOrder(dentist, &CreateOrderRequest{
		SupplierID:     supplier.ID,
		Title:          "Lower incisor bridge",
		ProsthesisType: "bridge",
	})
	require.NoError(t, err)
	assert.Equal(t, "ORD-000002", second.OrderNumber)
}

func TestCreateOrderLogsSystemMessage(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db)
	dentist := createTestUser(t, db, models.UserRoleDentist)
	supplier := createTestUser(t, db, models.UserRoleSupplier)

	order, err := svc.CreateOrder(dentist, &CreateOrderRequest{
		SupplierID:     supplier.ID,
		Title:          "Upper molar crown",
		ProsthesisType: "crown",
	})
	require.NoError(t, err)

	var messages []models.ChatMessage
	require.NoError(t, db.Where("order_id = ?", order.ID).Find(&messages).Error)
	require.Len(t, messages, 1)
	assert.Equal(t, models.MessageTypeSystem, messages[0].Type)
	assert.Nil(t, messages[0].SenderID)
	assert.Contains(t, messages[0].Content, order.OrderNumber)
}

func TestCreateOrderSupplierForbidden(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db)
	supplier := createTestUser(t, db, models.UserRoleSupplier)

	_, err := svc.CreateOrder(supplier, &CreateOrderRequest{
		SupplierID:     supplier.ID,
		Title:          "Upper molar crown",
		ProsthesisType: "crown",
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeForbidden, apperrors.From(err).Code)
}

func TestCreateOrderAdminNeedsDentist(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db)
	admin := createTestUser(t, db, models.UserRoleAdmin)
	dentist := createTestUser(t, db, models.UserRoleDentist)
	supplier := createTestUser(t, db, models.UserRoleSupplier)

	_, err := svc.CreateOrder(admin, &CreateOrderRequest{
		SupplierID:     supplier.ID,
		Title:          "Upper molar crown",
		ProsthesisType: "crown",
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidationFailed, apperrors.From(err).Code)

	order, err := svc.CreateOrder(admin, &CreateOrderRequest{
		SupplierID:     supplier.ID,
		DentistID:      &dentist.ID,
		Title:          "Upper molar crown",
		ProsthesisType: "crown",
	})
	require.NoError(t, err)
	assert.Equal(t, dentist.ID, order.DentistID)
}

func TestUpdateStatusRejectsIllegalTransition(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db)
	dentist := createTestUser(t, db, models.UserRoleDentist)
	supplier := createTestUser(t, db, models.UserRoleSupplier)
	order := createTestOrder(t, db, dentist, supplier, models.OrderStatusQuoteAsked)

	_, err := svc.UpdateStatus(supplier, order.ID, &UpdateOrderStatusRequest{
		Status: models.OrderStatusDelivered,
	})
	require.Error(t, err)

	appErr := apperrors.From(err)
	assert.Equal(t, apperrors.CodeInvalidTransition, appErr.Code)
	assert.Equal(t, 422, appErr.HTTPStatus())
}

func TestUpdateStatusFullWorkflow(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db)
	dentist := createTestUser(t, db, models.UserRoleDentist)
	supplier := createTestUser(t, db, models.UserRoleSupplier)
	order := createTestOrder(t, db, dentist, supplier, models.OrderStatusQuoteValidated)

	order2, err := svc.UpdateStatus(supplier, order.ID, &UpdateOrderStatusRequest{
		Status: models.OrderStatusInProduction,
	})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusInProduction, order2.Status)
	require.NotNil(t, order2.ExpectedDeliveryDate, "lead time estimate stamped entering production")

	order3, err := svc.UpdateStatus(supplier, order.ID, &UpdateOrderStatusRequest{
		Status:         models.OrderStatusInShipping,
		TrackingNumber: "TRK-12345",
	})
	require.NoError(t, err)
	assert.Equal(t, "TRK-12345", order3.TrackingNumber)

	order4, err := svc.UpdateStatus(supplier, order.ID, &UpdateOrderStatusRequest{
		Status: models.OrderStatusDelivered,
	})
	require.NoError(t, err)
	require.NotNil(t, order4.ActualDeliveryDate)

	// delivered is terminal
	_, err = svc.UpdateStatus(supplier, order.ID, &UpdateOrderStatusRequest{
		Status: models.OrderStatusCancelled,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidTransition, apperrors.From(err).Code)
}

func TestUpdateStatusEachChangeLogsSystemMessage(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db)
	dentist := createTestUser(t, db, models.UserRoleDentist)
	supplier := createTestUser(t, db, models.UserRoleSupplier)
	order := createTestOrder(t, db, dentist, supplier, models.OrderStatusQuoteValidated)

	_, err := svc.UpdateStatus(supplier, order.ID, &UpdateOrderStatusRequest{Status: models.OrderStatusInProduction})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(supplier, order.ID, &UpdateOrderStatusRequest{Status: models.OrderStatusInShipping})
	require.NoError(t, err)

	var count int64
	db.Model(&models.ChatMessage{}).
		Where("order_id = ? AND type = ?", order.ID, models.MessageTypeSystem).
		Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestUpdateStatusDentistCanOnlyCancel(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db)
	dentist := createTestUser(t, db, models.UserRoleDentist)
	supplier := createTestUser(t, db, models.UserRoleSupplier)
	order := createTestOrder(t, db, dentist, supplier, models.OrderStatusQuoteValidated)

	_, err := svc.UpdateStatus(dentist, order.ID, &UpdateOrderStatusRequest{
		Status: models.OrderStatusInProduction,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeForbidden, apperrors.From(err).Code)

	cancelled, err := svc.UpdateStatus(dentist, order.ID, &UpdateOrderStatusRequest{
		Status: models.OrderStatusCancelled,
	})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)
}

func TestUpdateDetailsLockedDuringProduction(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db)
	dentist := createTestUser(t, db, models.UserRoleDentist)
	supplier := createTestUser(t, db, models.UserRoleSupplier)
	order := createTestOrder(t, db, dentist, supplier, models.OrderStatusInProduction)

	title := "Changed title"
	_, err := svc.UpdateDetails(dentist, order.ID, &UpdateOrderDetailsRequest{Title: &title})
	require.Error(t, err)

	appErr := apperrors.From(err)
	assert.Equal(t, apperrors.CodeOrderLocked, appErr.Code)
	assert.Equal(t, 423, appErr.HTTPStatus())
}

func TestUpdateDetailsEditableWhileQuoting(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db)
	dentist := createTestUser(t, db, models.UserRoleDentist)
	supplier := createTestUser(t, db, models.UserRoleSupplier)
	order := createTestOrder(t, db, dentist, supplier, models.OrderStatusQuoteSent)

	shade := "A3"
	updated, err := svc.UpdateDetails(dentist, order.ID, &UpdateOrderDetailsRequest{Shade: &shade})
	require.NoError(t, err)
	assert.Equal(t, "A3", updated.Shade)
	assert.Equal(t, "Upper molar crown", updated.Title, "untouched fields survive")
}

func TestUpdateDetailsCancelledStaysEditable(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db)
	dentist := createTestUser(t, db, models.UserRoleDentist)
	supplier := createTestUser(t, db, models.UserRoleSupplier)
	order := createTestOrder(t, db, dentist, supplier, models.OrderStatusCancelled)

	notes := "archived note"
	updated, err := svc.UpdateDetails(dentist, order.ID, &UpdateOrderDetailsRequest{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, "archived note", updated.Notes)
}

func TestOrderAccessScopedByRole(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db)
	dentist := createTestUser(t, db, models.UserRoleDentist)
	otherDentist := createTestUser(t, db, models.UserRoleDentist)
	supplier := createTestUser(t, db, models.UserRoleSupplier)
	otherSupplier := createTestUser(t, db, models.UserRoleSupplier)
	admin := createTestUser(t, db, models.UserRoleAdmin)
	order := createTestOrder(t, db, dentist, supplier, models.OrderStatusQuoteAsked)

	_, err := svc.GetOrder(dentist, order.ID)
	assert.NoError(t, err)
	_, err = svc.GetOrder(supplier, order.ID)
	assert.NoError(t, err)
	_, err = svc.GetOrder(admin, order.ID)
	assert.NoError(t, err)

	_, err = svc.GetOrder(otherDentist, order.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeForbidden, apperrors.From(err).Code)

	_, err = svc.GetOrder(otherSupplier, order.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeForbidden, apperrors.From(err).Code)
}

func TestListOrdersScopedByRole(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db)
	dentist := createTestUser(t, db, models.UserRoleDentist)
	otherDentist := createTestUser(t, db, models.UserRoleDentist)
	supplier := createTestUser(t, db, models.UserRoleSupplier)
	admin := createTestUser(t, db, models.UserRoleAdmin)

	createTestOrder(t, db, dentist, supplier, models.OrderStatusQuoteAsked)
	createTestOrder(t, db, otherDentist, supplier, models.OrderStatusQuoteAsked)

	params := paginationDefaults()

	mine, total, err := svc.ListOrders(dentist, params)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, mine, 1)

	assigned, total, err := svc.ListOrders(supplier, params)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, assigned, 2)

	all, total, err := svc.ListOrders(admin, params)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, all, 2)
}
