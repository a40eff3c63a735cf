// internal/handlers/file.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/RomainLafont/project-g/internal/i18n"
	"github.com/RomainLafont/project-g/internal/middleware"
	"github.com/RomainLafont/project-g/internal/services"
	"github.com/RomainLafont/project-g/internal/utils"
)

type FileHandler struct {
	fileService *services.FileService
}

func NewFileHandler(fileService *services.FileService) *FileHandler {
	return &FileHandler{
		fileService: fileService,
	}
}

// POST /orders/:id/files
func (h *FileHandler) Upload(c *gin.Context) {
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

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationRequired, "file"), nil)
		return
	}
	defer file.Close()

	category := c.DefaultPostForm("category", "attachments")

	record, err := h.fileService.Upload(user, orderID, file, header, category)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyFileUploaded),
		"file":    record,
	})
}

// GET /orders/:id/files
func (h *FileHandler) ListFiles(c *gin.Context) {
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

	files, err := h.fileService.ListFiles(user, orderID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"files": files,
	})
}

// GET /files/:id/download
func (h *FileHandler) Download(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	fileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid file ID", nil)
		return
	}

	target, err := h.fileService.Download(user, fileID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	h.serve(c, target)
}

// GET /public/files/:id?token=...
// Tokenized access for recipients without a session, e.g. links pasted
// into external lab software.
func (h *FileHandler) DownloadByToken(c *gin.Context) {
	fileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid file ID", nil)
		return
	}

	token := c.Query("token")

	target, err := h.fileService.DownloadByToken(fileID, token)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	h.serve(c, target)
}

// POST /files/:id/token
func (h *FileHandler) IssueToken(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	fileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid file ID", nil)
		return
	}

	file, err := h.fileService.IssueAccessToken(user, fileID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":    i18n.T(lang, i18n.KeyFileTokenNew),
		"file_id":    file.ID,
		"expires_at": file.TokenExpiresAt,
		"url":        "/api/v1/public/files/" + file.ID.String() + "?token=" + file.AccessToken,
	})
}

// DELETE /files/:id
func (h *FileHandler) Delete(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	fileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid file ID", nil)
		return
	}

	if err := h.fileService.Delete(user, fileID); err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyFileDeleted),
	})
}

func (h *FileHandler) serve(c *gin.Context, target *services.DownloadTarget) {
	if target.URL != "" {
		c.Redirect(http.StatusFound, target.URL)
		return
	}

	contentType := target.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", `attachment; filename="`+target.Name+`"`)
	c.Data(http.StatusOK, contentType, target.Data)
}
