// internal/services/order_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/RomainLafont/project-g/internal/apperrors"
	"github.com/RomainLafont/project-g/internal/database"
	"github.com/RomainLafont/project-g/internal/models"
	"github.com/RomainLafont/project-g/internal/utils"
)

// productionLeadTime is the delivery estimate stamped when production starts.
const productionLeadTime = 14 * 24 * time.Hour

type OrderService struct {
	db          *gorm.DB
	chatService *ChatService
}

func NewOrderService(db *gorm.DB, chatService *ChatService) *OrderService {
	return &OrderService{db: db, chatService: chatService}
}

type CreateOrderRequest struct {
	SupplierID     uuid.UUID           `json:"supplier_id" validate:"required"`
	DentistID      *uuid.UUID          `json:"dentist_id,omitempty"` // admin creating on behalf of a dentist
	Title          string              `json:"title" validate:"required,max=255"`
	Description    string              `json:"description,omitempty"`
	PatientName    string              `json:"patient_name,omitempty" validate:"max=255"`
	PatientAge     int                 `json:"patient_age,omitempty" validate:"omitempty,min=0,max=150"`
	ProsthesisType string              `json:"prosthesis_type" validate:"required,max=100"`
	Material       string              `json:"material,omitempty" validate:"max=100"`
	Shade          string              `json:"shade,omitempty" validate:"max=50"`
	Urgency        models.UrgencyLevel `json:"urgency,omitempty" validate:"omitempty,oneof=standard urgent emergency"`
	Notes          string              `json:"notes,omitempty"`
}

type UpdateOrderDetailsRequest struct {
	Title          *string `json:"title,omitempty" validate:"omitempty,max=255"`
	Description    *string `json:"description,omitempty"`
	PatientName    *string `json:"patient_name,omitempty" validate:"omitempty,max=255"`
	PatientAge     *int    `json:"patient_age,omitempty" validate:"omitempty,min=0,max=150"`
	ProsthesisType *string `json:"prosthesis_type,omitempty" validate:"omitempty,max=100"`
	Material       *string `json:"material,omitempty" validate:"omitempty,max=100"`
	Shade          *string `json:"shade,omitempty" validate:"omitempty,max=50"`
	Notes          *string `json:"notes,omitempty"`
}

type UpdateOrderStatusRequest struct {
	Status         models.OrderStatus `json:"status" validate:"required"`
	TrackingNumber string             `json:"tracking_number,omitempty" validate:"max=100"`
}

// CreateOrder opens a prosthesis request on behalf of a dentist. Admins may
// create for any dentist via DentistID; dentists always create their own.
func (s *OrderService) CreateOrder(user *models.User, req *CreateOrderRequest) (*models.Order, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.ValidationFailed("invalid order", utils.GetValidationErrors(err))
	}

	dentistID := user.ID
	if user.Role == models.UserRoleAdmin {
		if req.DentistID == nil {
			return nil, apperrors.ValidationFailed("dentist_id is required when an admin creates an order", nil)
		}
		dentistID = *req.DentistID
	} else if user.Role != models.UserRoleDentist {
		return nil, apperrors.Forbidden("only dentists can create orders")
	}

	var dentist models.User
	if err := s.db.First(&dentist, "id = ? AND role = ?", dentistID, models.UserRoleDentist).Error; err != nil {
		return nil, apperrors.NotFound("dentist")
	}

	var supplier models.User
	if err := s.db.First(&supplier, "id = ? AND role = ?", req.SupplierID, models.UserRoleSupplier).Error; err != nil {
		return nil, apperrors.NotFound("supplier")
	}

	urgency := req.Urgency
	if urgency == "" {
		urgency = models.UrgencyStandard
	}

	order := &models.Order{
		DentistID:      dentistID,
		SupplierID:     &req.SupplierID,
		Status:         models.OrderStatusQuoteAsked,
		Title:          req.Title,
		Description:    req.Description,
		PatientName:    req.PatientName,
		PatientAge:     req.PatientAge,
		ProsthesisType: req.ProsthesisType,
		Material:       req.Material,
		Shade:          req.Shade,
		Urgency:        urgency,
		Notes:          req.Notes,
	}

	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		number, err := nextOrderNumber(tx)
		if err != nil {
			return err
		}
		order.OrderNumber = number

		if err := tx.Create(order).Error; err != nil {
			return apperrors.Internal("failed to create order", err)
		}

		return s.chatService.PostSystemMessage(tx, order.ID,
			fmt.Sprintf("Order %s created", order.OrderNumber))
	})
	if err != nil {
		return nil, apperrors.From(err)
	}

	s.db.Preload("Dentist").Preload("Supplier").First(order, "id = ?", order.ID)
	return order, nil
}

// nextOrderNumber assigns the sequential human-readable identifier. The
// read and the insert share one transaction, which serializes assignment
// through the row lock on the latest order.
func nextOrderNumber(tx *gorm.DB) (string, error) {
	var last models.Order
	err := tx.Unscoped().Order("order_number desc").Select("order_number").First(&last).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "ORD-000001", nil
		}
		return "", apperrors.Internal("failed to read last order number", err)
	}

	var seq int
	if _, err := fmt.Sscanf(last.OrderNumber, "ORD-%06d", &seq); err != nil {
		return "", apperrors.Internal("malformed order number "+last.OrderNumber, err)
	}
	return fmt.Sprintf("ORD-%06d", seq+1), nil
}

func (s *OrderService) GetOrder(user *models.User, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := s.db.
		Preload("Dentist").Preload("Supplier").
		Preload("Quotes", func(db *gorm.DB) *gorm.DB { return db.Order("created_at desc") }).
		Preload("Files").
		First(&order, "id = ?", orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("order")
		}
		return nil, apperrors.Internal("failed to load order", err)
	}

	if !user.CanAccessOrder(&order) {
		return nil, apperrors.Forbidden("no access to this order")
	}

	return &order, nil
}

// ListOrders returns the orders visible to the user's role, filtered and
// paginated.
func (s *OrderService) ListOrders(user *models.User, params utils.PaginationParams) ([]models.Order, int64, error) {
	query := s.db.Model(&models.Order{}).Preload("Dentist").Preload("Supplier")
	query = scopeOrdersByRole(query, user, "orders")

	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.Search != "" {
		like := "%" + params.Search + "%"
		query = query.Where("order_number ILIKE ? OR title ILIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Internal("failed to count orders", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "order_number", "status"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, 0, apperrors.Internal("failed to fetch orders", err)
	}

	return orders, total, nil
}

// UpdateStatus moves the order along the workflow graph, applying the
// transition side effects and logging a system message, all in one
// transaction.
func (s *OrderService) UpdateStatus(user *models.User, orderID uuid.UUID, req *UpdateOrderStatusRequest) (*models.Order, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.ValidationFailed("invalid status update", utils.GetValidationErrors(err))
	}

	order, err := s.GetOrder(user, orderID)
	if err != nil {
		return nil, err
	}

	// Status moves come from the supplier side (or admin); dentists drive
	// the workflow through quote accept/reject and cancellation.
	if user.Role == models.UserRoleDentist && req.Status != models.OrderStatusCancelled {
		return nil, apperrors.Forbidden("dentists can only cancel orders")
	}

	if !order.CanTransitionTo(req.Status) {
		return nil, apperrors.InvalidTransition(string(order.Status), string(req.Status))
	}

	err = database.WithTransaction(s.db, func(tx *gorm.DB) error {
		order.Status = req.Status

		switch req.Status {
		case models.OrderStatusInProduction:
			if order.ExpectedDeliveryDate == nil {
				expected := time.Now().Add(productionLeadTime)
				order.ExpectedDeliveryDate = &expected
			}
		case models.OrderStatusDelivered:
			now := time.Now()
			order.ActualDeliveryDate = &now
		}

		if req.TrackingNumber != "" {
			order.TrackingNumber = req.TrackingNumber
		}

		if err := tx.Save(order).Error; err != nil {
			return apperrors.Internal("failed to update order status", err)
		}

		return s.chatService.PostSystemMessage(tx, order.ID,
			fmt.Sprintf("Order %s status changed to %s", order.OrderNumber, order.Status))
	})
	if err != nil {
		return nil, apperrors.From(err)
	}

	return order, nil
}

// UpdateDetails edits the clinical/descriptive fields. Once production has
// started the order is locked and edits fail.
func (s *OrderService) UpdateDetails(user *models.User, orderID uuid.UUID, req *UpdateOrderDetailsRequest) (*models.Order, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.ValidationFailed("invalid order update", utils.GetValidationErrors(err))
	}

	order, err := s.GetOrder(user, orderID)
	if err != nil {
		return nil, err
	}

	if user.Role == models.UserRoleSupplier {
		return nil, apperrors.Forbidden("suppliers cannot edit order details")
	}

	if order.DetailsLocked() {
		return nil, apperrors.OrderLocked("order details cannot be edited once production has started")
	}

	if req.Title != nil {
		order.Title = *req.Title
	}
	if req.Description != nil {
		order.Description = *req.Description
	}
	if req.PatientName != nil {
		order.PatientName = *req.PatientName
	}
	if req.PatientAge != nil {
		order.PatientAge = *req.PatientAge
	}
	if req.ProsthesisType != nil {
		order.ProsthesisType = *req.ProsthesisType
	}
	if req.Material != nil {
		order.Material = *req.Material
	}
	if req.Shade != nil {
		order.Shade = *req.Shade
	}
	if req.Notes != nil {
		order.Notes = *req.Notes
	}

	if err := s.db.Save(order).Error; err != nil {
		return nil, apperrors.Internal("failed to update order", err)
	}

	return order, nil
}
