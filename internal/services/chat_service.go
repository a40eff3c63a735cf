// internal/services/chat_service.go
package services

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/RomainLafont/project-g/internal/apperrors"
	"github.com/RomainLafont/project-g/internal/models"
	"github.com/RomainLafont/project-g/internal/utils"
)

type ChatService struct {
	db         *gorm.DB
	translator Translator
}

func NewChatService(db *gorm.DB, translator Translator) *ChatService {
	if translator == nil {
		translator = NewPassthroughTranslator()
	}
	return &ChatService{db: db, translator: translator}
}

type PostMessageRequest struct {
	Content   string     `json:"content" validate:"required"`
	FileID    *uuid.UUID `json:"file_id,omitempty"`
	ReplyToID *uuid.UUID `json:"reply_to_id,omitempty"`
}

// MessageView is a ChatMessage with its content resolved for the viewer's
// display language.
type MessageView struct {
	models.ChatMessage
	DisplayText string `json:"display_text"`
}

// PostMessage appends a user message to the order conversation, tagged
// with the author's preferred language.
func (s *ChatService) PostMessage(user *models.User, orderID uuid.UUID, req *PostMessageRequest) (*models.ChatMessage, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.ValidationFailed("invalid message", utils.GetValidationErrors(err))
	}

	order, err := s.loadOrder(orderID)
	if err != nil {
		return nil, err
	}
	if !user.CanAccessOrder(order) {
		return nil, apperrors.Forbidden("no access to this order")
	}

	if req.ReplyToID != nil {
		var parent models.ChatMessage
		if err := s.db.First(&parent, "id = ? AND order_id = ?", *req.ReplyToID, orderID).Error; err != nil {
			return nil, apperrors.NotFound("message")
		}
	}

	msgType := models.MessageTypeText
	if req.FileID != nil {
		var file models.File
		if err := s.db.First(&file, "id = ? AND order_id = ?", *req.FileID, orderID).Error; err != nil {
			return nil, apperrors.NotFound("file")
		}
		msgType = models.MessageTypeFile
	}

	lang := user.PreferredLanguage
	if lang == "" {
		lang = "en"
	}

	message := &models.ChatMessage{
		OrderID:          orderID,
		SenderID:         &user.ID,
		Type:             msgType,
		Content:          req.Content,
		OriginalLanguage: lang,
		FileID:           req.FileID,
		ReplyToID:        req.ReplyToID,
	}

	if err := s.db.Create(message).Error; err != nil {
		return nil, apperrors.Internal("failed to create message", err)
	}

	s.db.Preload("Sender").Preload("File").First(message, "id = ?", message.ID)
	return message, nil
}

// PostSystemMessage records a platform-generated event on the order
// conversation. Callers inside a transaction pass their tx handle so the
// message participates in the primary mutation.
func (s *ChatService) PostSystemMessage(tx *gorm.DB, orderID uuid.UUID, content string) error {
	if tx == nil {
		tx = s.db
	}
	message := &models.ChatMessage{
		OrderID:          orderID,
		Type:             models.MessageTypeSystem,
		Content:          content,
		OriginalLanguage: "en",
	}
	if err := tx.Create(message).Error; err != nil {
		return apperrors.Internal("failed to create system message", err)
	}
	return nil
}

// ListMessages returns the order conversation oldest-first, with each
// message resolved for the viewer's display language.
func (s *ChatService) ListMessages(user *models.User, orderID uuid.UUID, params utils.PaginationParams) ([]MessageView, int64, error) {
	order, err := s.loadOrder(orderID)
	if err != nil {
		return nil, 0, err
	}
	if !user.CanAccessOrder(order) {
		return nil, 0, apperrors.Forbidden("no access to this order")
	}

	query := s.db.Model(&models.ChatMessage{}).Where("order_id = ?", orderID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Internal("failed to count messages", err)
	}

	var messages []models.ChatMessage
	if err := query.
		Preload("Sender").Preload("File").
		Order("created_at asc").
		Offset((params.Page - 1) * params.Limit).Limit(params.Limit).
		Find(&messages).Error; err != nil {
		return nil, 0, apperrors.Internal("failed to fetch messages", err)
	}

	views := make([]MessageView, 0, len(messages))
	for _, m := range messages {
		views = append(views, MessageView{
			ChatMessage: m,
			DisplayText: s.DisplayMessage(&m, user.PreferredLanguage),
		})
	}

	return views, total, nil
}

// DisplayMessage resolves the text shown to a viewer. The stored fallback
// chain lives on the model (DisplayContent); this layers the live translator
// on top when the viewer needs a language no stored translation covers. The
// passthrough implementation makes that an explicit no-op rather than a
// silent drop.
func (s *ChatService) DisplayMessage(message *models.ChatMessage, viewerLanguage string) string {
	if viewerLanguage != "" && message.OriginalLanguage != viewerLanguage &&
		(message.TranslatedContent == "" || message.TranslatedLanguage != viewerLanguage) {
		translated, err := s.translator.Translate(message.Content, message.OriginalLanguage, viewerLanguage)
		if err == nil && translated != "" {
			return translated
		}
	}
	return message.DisplayContent(viewerLanguage)
}

// MarkRead flips the read flag on every message in the order that the
// reader did not author. Calling it twice is a no-op the second time.
func (s *ChatService) MarkRead(user *models.User, orderID uuid.UUID) error {
	order, err := s.loadOrder(orderID)
	if err != nil {
		return err
	}
	if !user.CanAccessOrder(order) {
		return apperrors.Forbidden("no access to this order")
	}

	err = s.db.Model(&models.ChatMessage{}).
		Where("order_id = ? AND is_read = ?", orderID, false).
		Where("sender_id IS NULL OR sender_id != ?", user.ID).
		Update("is_read", true).Error
	if err != nil {
		return apperrors.Internal("failed to mark messages read", err)
	}
	return nil
}

// UnreadCount counts unread messages across every order the user can see.
func (s *ChatService) UnreadCount(user *models.User) (int64, error) {
	query := s.db.Model(&models.ChatMessage{}).
		Joins("JOIN orders ON orders.id = chat_messages.order_id").
		Where("chat_messages.is_read = ?", false).
		Where("chat_messages.sender_id IS NULL OR chat_messages.sender_id != ?", user.ID)

	query = scopeOrdersByRole(query, user, "orders")

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, apperrors.Internal("failed to count unread messages", err)
	}
	return count, nil
}

// ConversationSummary is one row of the conversation list.
type ConversationSummary struct {
	OrderID     uuid.UUID           `json:"order_id"`
	OrderNumber string              `json:"order_number"`
	UnreadCount int64               `json:"unread_count"`
	LastMessage *models.ChatMessage `json:"last_message,omitempty"`
}

// ListConversations returns a summary per order visible to the user,
// newest activity first.
func (s *ChatService) ListConversations(user *models.User, params utils.PaginationParams) ([]ConversationSummary, error) {
	query := s.db.Model(&models.Order{})
	query = scopeOrdersByRole(query, user, "orders")

	var orders []models.Order
	if err := query.
		Order("updated_at desc").
		Offset((params.Page - 1) * params.Limit).Limit(params.Limit).
		Find(&orders).Error; err != nil {
		return nil, apperrors.Internal("failed to fetch conversations", err)
	}

	summaries := make([]ConversationSummary, 0, len(orders))
	for _, order := range orders {
		summary := ConversationSummary{
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
		}

		s.db.Model(&models.ChatMessage{}).
			Where("order_id = ? AND is_read = ?", order.ID, false).
			Where("sender_id IS NULL OR sender_id != ?", user.ID).
			Count(&summary.UnreadCount)

		var last models.ChatMessage
		if err := s.db.Where("order_id = ?", order.ID).
			Order("created_at desc").
			Preload("Sender").
			First(&last).Error; err == nil {
			summary.LastMessage = &last
		}

		summaries = append(summaries, summary)
	}

	return summaries, nil
}

// DeleteMessage removes a user message. System messages are undeletable;
// user messages only by their author.
func (s *ChatService) DeleteMessage(user *models.User, messageID uuid.UUID) error {
	var message models.ChatMessage
	if err := s.db.First(&message, "id = ?", messageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("message")
		}
		return apperrors.Internal("failed to load message", err)
	}

	if message.IsSystem() {
		return apperrors.Forbidden("system messages cannot be deleted")
	}
	if message.SenderID == nil || *message.SenderID != user.ID {
		return apperrors.Forbidden("only the author can delete a message")
	}

	if err := s.db.Unscoped().Delete(&message).Error; err != nil {
		return apperrors.Internal("failed to delete message", err)
	}
	return nil
}

func (s *ChatService) loadOrder(orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := s.db.First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("order")
		}
		return nil, apperrors.Internal("failed to load order", err)
	}
	return &order, nil
}

// scopeOrdersByRole narrows an order-joined query to what the user's role
// can see: dentists their own orders, suppliers their assigned orders,
// admins everything.
func scopeOrdersByRole(query *gorm.DB, user *models.User, table string) *gorm.DB {
	switch user.Role {
	case models.UserRoleDentist:
		return query.Where(table+".dentist_id = ?", user.ID)
	case models.UserRoleSupplier:
		return query.Where(table+".supplier_id = ?", user.ID)
	default:
		return query
	}
}
