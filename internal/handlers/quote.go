// internal/handlers/quote.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/RomainLafont/project-g/internal/i18n"
	"github.com/RomainLafont/project-g/internal/middleware"
	"github.com/RomainLafont/project-g/internal/services"
	"github.com/RomainLafont/project-g/internal/utils"
)

type QuoteHandler struct {
	quoteService *services.QuoteService
}

func NewQuoteHandler(quoteService *services.QuoteService) *QuoteHandler {
	return &QuoteHandler{
		quoteService: quoteService,
	}
}

// POST /orders/:id/quotes
func (h *QuoteHandler) CreateQuote(c *gin.Context) {
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

	var req services.CreateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	quote, err := h.quoteService.CreateQuote(user, orderID, &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyQuoteCreated),
		"quote":   quote,
	})
}

// GET /orders/:id/quotes
func (h *QuoteHandler) ListQuotes(c *gin.Context) {
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

	quotes, err := h.quoteService.ListQuotes(user, orderID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"quotes": quotes,
	})
}

// GET /quotes/:id
func (h *QuoteHandler) GetQuote(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	quoteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid quote ID", nil)
		return
	}

	quote, err := h.quoteService.GetQuote(user, quoteID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"quote": quote,
	})
}

// PUT /quotes/:id
func (h *QuoteHandler) ReviseQuote(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	quoteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid quote ID", nil)
		return
	}

	var req services.CreateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	quote, err := h.quoteService.ReviseQuote(user, quoteID, &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyQuoteUpdated),
		"quote":   quote,
	})
}

// POST /quotes/:id/accept
func (h *QuoteHandler) AcceptQuote(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	quoteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid quote ID", nil)
		return
	}

	quote, err := h.quoteService.AcceptQuote(user, quoteID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyQuoteAccepted),
		"quote":   quote,
	})
}

// POST /quotes/:id/reject
func (h *QuoteHandler) RejectQuote(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	quoteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid quote ID", nil)
		return
	}

	var req services.RejectQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	quote, err := h.quoteService.RejectQuote(user, quoteID, &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyQuoteRejected),
		"quote":   quote,
	})
}
