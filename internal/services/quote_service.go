// internal/services/quote_service.go
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

// quoteValidity is the default window a sent quote stays acceptable.
const quoteValidity = 30 * 24 * time.Hour

type QuoteService struct {
	db             *gorm.DB
	pricingService *PricingService
	chatService    *ChatService
}

func NewQuoteService(db *gorm.DB, pricingService *PricingService, chatService *ChatService) *QuoteService {
	return &QuoteService{db: db, pricingService: pricingService, chatService: chatService}
}

type CreateQuoteRequest struct {
	BasePrice    float64    `json:"base_price" validate:"required,gt=0"`
	MaterialCost float64    `json:"material_cost" validate:"gte=0"`
	LaborCost    float64    `json:"labor_cost" validate:"gte=0"`
	ShippingCost float64    `json:"shipping_cost" validate:"gte=0"`
	TaxAmount    float64    `json:"tax_amount" validate:"gte=0"`
	ValidUntil   *time.Time `json:"valid_until,omitempty"`
	Notes        string     `json:"notes,omitempty"`
}

type RejectQuoteRequest struct {
	Reason string `json:"reason,omitempty" validate:"max=1000"`
}

// CreateQuote issues a quote against an order awaiting one. Cost components
// are summed, the pricing factor is resolved from the active rules, and the
// order moves to quote_sent in the same transaction.
func (s *QuoteService) CreateQuote(user *models.User, orderID uuid.UUID, req *CreateQuoteRequest) (*models.Quote, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.ValidationFailed("invalid quote", utils.GetValidationErrors(err))
	}

	order, err := s.loadOrder(orderID)
	if err != nil {
		return nil, err
	}

	if err := s.checkQuoteAuthor(user, order); err != nil {
		return nil, err
	}

	if order.Status != models.OrderStatusQuoteAsked {
		return nil, apperrors.InvalidState(
			fmt.Sprintf("quotes can only be issued while the order is awaiting one, current status is %s", order.Status))
	}

	quote := &models.Quote{
		OrderID:      order.ID,
		SupplierID:   *order.SupplierID,
		BasePrice:    req.BasePrice,
		MaterialCost: req.MaterialCost,
		LaborCost:    req.LaborCost,
		ShippingCost: req.ShippingCost,
		TaxAmount:    req.TaxAmount,
		Status:       models.QuoteStatusSent,
		Notes:        req.Notes,
		ValidUntil:   req.ValidUntil,
	}
	if quote.ValidUntil == nil {
		validUntil := time.Now().Add(quoteValidity)
		quote.ValidUntil = &validUntil
	}

	factor, err := s.pricingService.Resolve(
		*order.SupplierID, order.ProsthesisType, order.Material, order.Urgency,
		req.BasePrice+req.MaterialCost+req.LaborCost+req.ShippingCost+req.TaxAmount)
	if err != nil {
		return nil, err
	}
	quote.PricingFactor = factor
	quote.Recalculate()

	err = database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := tx.Create(quote).Error; err != nil {
			return apperrors.Internal("failed to create quote", err)
		}

		order.Status = models.OrderStatusQuoteSent
		if err := tx.Save(order).Error; err != nil {
			return apperrors.Internal("failed to update order status", err)
		}

		return s.chatService.PostSystemMessage(tx, order.ID,
			fmt.Sprintf("Quote sent for %.2f (adjusted %.2f)", quote.Total, quote.AdjustedPrice))
	})
	if err != nil {
		return nil, apperrors.From(err)
	}

	return quote, nil
}

// ReviseQuote replaces a pending quote's figures. Accepted quotes are
// immutable; each revision bumps the revision counter and re-resolves the
// pricing factor against the current rules.
func (s *QuoteService) ReviseQuote(user *models.User, quoteID uuid.UUID, req *CreateQuoteRequest) (*models.Quote, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.ValidationFailed("invalid quote", utils.GetValidationErrors(err))
	}

	quote, err := s.GetQuote(user, quoteID)
	if err != nil {
		return nil, err
	}

	order := &quote.Order

	if err := s.checkQuoteAuthor(user, order); err != nil {
		return nil, err
	}

	if quote.Status == models.QuoteStatusAccepted {
		return nil, apperrors.InvalidState("accepted quotes cannot be modified")
	}
	if quote.Status == models.QuoteStatusRejected {
		return nil, apperrors.InvalidState("rejected quotes cannot be modified, issue a new quote instead")
	}

	quote.BasePrice = req.BasePrice
	quote.MaterialCost = req.MaterialCost
	quote.LaborCost = req.LaborCost
	quote.ShippingCost = req.ShippingCost
	quote.TaxAmount = req.TaxAmount
	quote.Notes = req.Notes
	if req.ValidUntil != nil {
		quote.ValidUntil = req.ValidUntil
	}
	quote.Status = models.QuoteStatusModified
	quote.RevisionNumber++

	factor, err := s.pricingService.Resolve(
		quote.SupplierID, order.ProsthesisType, order.Material, order.Urgency,
		req.BasePrice+req.MaterialCost+req.LaborCost+req.ShippingCost+req.TaxAmount)
	if err != nil {
		return nil, err
	}
	quote.PricingFactor = factor
	quote.Recalculate()

	err = database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := tx.Save(quote).Error; err != nil {
			return apperrors.Internal("failed to update quote", err)
		}

		return s.chatService.PostSystemMessage(tx, order.ID,
			fmt.Sprintf("Quote revised to %.2f (adjusted %.2f), revision %d",
				quote.Total, quote.AdjustedPrice, quote.RevisionNumber))
	})
	if err != nil {
		return nil, apperrors.From(err)
	}

	return quote, nil
}

// AcceptQuote validates a pending quote on behalf of the dentist. The
// accepted figures are snapshotted onto the order and the order moves to
// quote_validated.
func (s *QuoteService) AcceptQuote(user *models.User, quoteID uuid.UUID) (*models.Quote, error) {
	quote, err := s.GetQuote(user, quoteID)
	if err != nil {
		return nil, err
	}

	order := &quote.Order

	if user.Role == models.UserRoleSupplier {
		return nil, apperrors.Forbidden("suppliers cannot accept their own quotes")
	}
	if user.Role == models.UserRoleDentist && order.DentistID != user.ID {
		return nil, apperrors.Forbidden("no access to this order")
	}

	if quote.Status != models.QuoteStatusSent && quote.Status != models.QuoteStatusModified {
		return nil, apperrors.InvalidState(
			fmt.Sprintf("only pending quotes can be accepted, current status is %s", quote.Status))
	}
	if quote.ValidUntil != nil && quote.ValidUntil.Before(time.Now()) {
		return nil, apperrors.InvalidState("quote has expired")
	}
	if !order.CanTransitionTo(models.OrderStatusQuoteValidated) {
		return nil, apperrors.InvalidTransition(string(order.Status), string(models.OrderStatusQuoteValidated))
	}

	now := time.Now()
	quote.Status = models.QuoteStatusAccepted
	quote.AcceptedAt = &now
	quote.AcceptedBy = &user.ID

	order.Status = models.OrderStatusQuoteValidated
	order.OriginalQuote = &quote.Total
	order.AdjustedQuote = &quote.AdjustedPrice
	order.PricingFactor = &quote.PricingFactor

	err = database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := tx.Save(quote).Error; err != nil {
			return apperrors.Internal("failed to accept quote", err)
		}
		if err := tx.Save(order).Error; err != nil {
			return apperrors.Internal("failed to update order", err)
		}

		return s.chatService.PostSystemMessage(tx, order.ID,
			fmt.Sprintf("Quote accepted at %.2f", quote.AdjustedPrice))
	})
	if err != nil {
		return nil, apperrors.From(err)
	}

	return quote, nil
}

// RejectQuote declines a pending quote and resets the order to quote_asked
// so the supplier can issue a new one.
func (s *QuoteService) RejectQuote(user *models.User, quoteID uuid.UUID, req *RejectQuoteRequest) (*models.Quote, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.ValidationFailed("invalid rejection", utils.GetValidationErrors(err))
	}

	quote, err := s.GetQuote(user, quoteID)
	if err != nil {
		return nil, err
	}

	order := &quote.Order

	if user.Role == models.UserRoleSupplier {
		return nil, apperrors.Forbidden("suppliers cannot reject their own quotes")
	}
	if user.Role == models.UserRoleDentist && order.DentistID != user.ID {
		return nil, apperrors.Forbidden("no access to this order")
	}

	if quote.Status != models.QuoteStatusSent && quote.Status != models.QuoteStatusModified {
		return nil, apperrors.InvalidState(
			fmt.Sprintf("only pending quotes can be rejected, current status is %s", quote.Status))
	}

	quote.Status = models.QuoteStatusRejected
	quote.RejectionReason = req.Reason

	err = database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := tx.Save(quote).Error; err != nil {
			return apperrors.Internal("failed to reject quote", err)
		}

		if order.Status == models.OrderStatusQuoteSent {
			order.Status = models.OrderStatusQuoteAsked
			if err := tx.Save(order).Error; err != nil {
				return apperrors.Internal("failed to reset order status", err)
			}
		}

		content := "Quote rejected"
		if req.Reason != "" {
			content = "Quote rejected: " + req.Reason
		}
		return s.chatService.PostSystemMessage(tx, order.ID, content)
	})
	if err != nil {
		return nil, apperrors.From(err)
	}

	return quote, nil
}

func (s *QuoteService) GetQuote(user *models.User, quoteID uuid.UUID) (*models.Quote, error) {
	var quote models.Quote
	err := s.db.Preload("Order").Preload("Supplier").First(&quote, "id = ?", quoteID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("quote")
		}
		return nil, apperrors.Internal("failed to load quote", err)
	}

	if !user.CanAccessOrder(&quote.Order) {
		return nil, apperrors.Forbidden("no access to this order")
	}

	return &quote, nil
}

// ListQuotes returns the quote history of one order, newest first.
func (s *QuoteService) ListQuotes(user *models.User, orderID uuid.UUID) ([]models.Quote, error) {
	order, err := s.loadOrder(orderID)
	if err != nil {
		return nil, err
	}
	if !user.CanAccessOrder(order) {
		return nil, apperrors.Forbidden("no access to this order")
	}

	var quotes []models.Quote
	if err := s.db.Where("order_id = ?", orderID).
		Order("created_at desc").
		Find(&quotes).Error; err != nil {
		return nil, apperrors.Internal("failed to fetch quotes", err)
	}
	return quotes, nil
}

// checkQuoteAuthor permits the order's assigned supplier or an admin to
// issue and revise quotes.
func (s *QuoteService) checkQuoteAuthor(user *models.User, order *models.Order) error {
	if order.SupplierID == nil {
		return apperrors.InvalidState("order has no assigned supplier")
	}
	switch user.Role {
	case models.UserRoleAdmin:
		return nil
	case models.UserRoleSupplier:
		if *order.SupplierID == user.ID {
			return nil
		}
	}
	return apperrors.Forbidden("only the assigned supplier can quote this order")
}

func (s *QuoteService) loadOrder(orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := s.db.First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("order")
		}
		return nil, apperrors.Internal("failed to load order", err)
	}
	return &order, nil
}
