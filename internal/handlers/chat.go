// internal/handlers/chat.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/RomainLafont/project-g/internal/i18n"
	"github.com/RomainLafont/project-g/internal/middleware"
	"github.com/RomainLafont/project-g/internal/services"
	"github.com/RomainLafont/project-g/internal/utils"
)

type ChatHandler struct {
	chatService *services.ChatService
}

func NewChatHandler(chatService *services.ChatService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
	}
}

// POST /orders/:id/messages
func (h *ChatHandler) PostMessage(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid order ID", nil)
		return
	}

	var req services.PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	message, err := h.chatService.PostMessage(user, orderID, &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyMessagePosted),
		"data":    message,
	})
}

// GET /orders/:id/messages
func (h *ChatHandler) ListMessages(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid order ID", nil)
		return
	}

	params := utils.GetPaginationParams(c)

	messages, total, err := h.chatService.ListMessages(user, orderID, params)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(messages, total, params))
}

// POST /orders/:id/messages/read
func (h *ChatHandler) MarkRead(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid order ID", nil)
		return
	}

	if err := h.chatService.MarkRead(user, orderID); err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyMessagesRead),
	})
}

// GET /conversations
func (h *ChatHandler) ListConversations(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	params := utils.GetPaginationParams(c)

	conversations, err := h.chatService.ListConversations(user, params)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"conversations": conversations,
	})
}

// GET /conversations/unread-count
func (h *ChatHandler) UnreadCount(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	count, err := h.chatService.UnreadCount(user)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"unread_count": count,
	})
}

// DELETE /messages/:id
func (h *ChatHandler) DeleteMessage(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	messageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid message ID", nil)
		return
	}

	if err := h.chatService.DeleteMessage(user, messageID); err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyMessageDeleted),
	})
}
