// internal/services/file_service.go
package services

import (
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/RomainLafont/project-g/internal/apperrors"
	"github.com/RomainLafont/project-g/internal/database"
	"github.com/RomainLafont/project-g/internal/models"
	"github.com/RomainLafont/project-g/internal/utils"
)

type FileService struct {
	db          *gorm.DB
	storage     *StorageService
	chatService *ChatService
	tokenTTL    time.Duration
}

func NewFileService(db *gorm.DB, storage *StorageService, chatService *ChatService, tokenTTLHours int) *FileService {
	if tokenTTLHours <= 0 {
		tokenTTLHours = 24
	}
	return &FileService{
		db:          db,
		storage:     storage,
		chatService: chatService,
		tokenTTL:    time.Duration(tokenTTLHours) * time.Hour,
	}
}

// DownloadTarget tells the handler how to serve the file: redirect to URL
// when set, otherwise stream Data.
type DownloadTarget struct {
	URL      string
	Data     []byte
	Name     string
	MimeType string
}

// Upload stores the bytes, records the metadata with a fresh access token
// and logs a system message on the order conversation.
func (s *FileService) Upload(user *models.User, orderID uuid.UUID, file multipart.File, header *multipart.FileHeader, category string) (*models.File, error) {
	order, err := s.loadOrder(orderID)
	if err != nil {
		return nil, err
	}
	if !user.CanAccessOrder(order) {
		return nil, apperrors.Forbidden("no access to this order")
	}

	options := s.storage.GetDefaultUploadOptions(category)
	result, err := s.storage.UploadFile(file, header, options)
	if err != nil {
		return nil, apperrors.ValidationFailed(err.Error(), nil)
	}

	token, err := utils.GenerateFileAccessToken()
	if err != nil {
		return nil, apperrors.Internal("failed to generate access token", err)
	}
	expires := time.Now().Add(s.tokenTTL)

	record := &models.File{
		OrderID:        orderID,
		UploaderID:     user.ID,
		OriginalName:   header.Filename,
		StoredPath:     result.Key,
		FileURL:        result.URL,
		MimeType:       result.MimeType,
		FileType:       models.ClassifyFileType(header.Filename),
		SizeBytes:      result.Size,
		AccessToken:    token,
		TokenExpiresAt: &expires,
		IsPublic:       options.IsPublic,
	}

	err = database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := tx.Create(record).Error; err != nil {
			return apperrors.Internal("failed to save file record", err)
		}

		return s.chatService.PostSystemMessage(tx, orderID,
			fmt.Sprintf("File %s uploaded", record.OriginalName))
	})
	if err != nil {
		// best effort cleanup of the orphaned object
		s.storage.DeleteFile(result.Key)
		return nil, apperrors.From(err)
	}

	return record, nil
}

func (s *FileService) GetFile(user *models.User, fileID uuid.UUID) (*models.File, error) {
	file, err := s.loadFile(fileID)
	if err != nil {
		return nil, err
	}

	var order models.Order
	if err := s.db.First(&order, "id = ?", file.OrderID).Error; err != nil {
		return nil, apperrors.Internal("failed to load order", err)
	}
	if !user.CanAccessOrder(&order) {
		return nil, apperrors.Forbidden("no access to this file")
	}

	return file, nil
}

// ListFiles returns the attachments of one order, newest first.
func (s *FileService) ListFiles(user *models.User, orderID uuid.UUID) ([]models.File, error) {
	order, err := s.loadOrder(orderID)
	if err != nil {
		return nil, err
	}
	if !user.CanAccessOrder(order) {
		return nil, apperrors.Forbidden("no access to this order")
	}

	var files []models.File
	if err := s.db.Where("order_id = ?", orderID).
		Preload("Uploader").
		Order("created_at desc").
		Find(&files).Error; err != nil {
		return nil, apperrors.Internal("failed to fetch files", err)
	}
	return files, nil
}

// Download serves a file to an authenticated order participant and records
// the access.
func (s *FileService) Download(user *models.User, fileID uuid.UUID) (*DownloadTarget, error) {
	file, err := s.GetFile(user, fileID)
	if err != nil {
		return nil, err
	}
	return s.serve(file)
}

// DownloadByToken serves a file through a tokenized link without a session.
// Public files are served as-is; private files need a matching, unexpired
// token.
func (s *FileService) DownloadByToken(fileID uuid.UUID, token string) (*DownloadTarget, error) {
	file, err := s.loadFile(fileID)
	if err != nil {
		return nil, err
	}

	if !file.IsAccessible() {
		return nil, apperrors.Forbidden("download link has expired")
	}
	if !file.IsPublic && !file.TokenValid(token) {
		return nil, apperrors.Forbidden("invalid or expired file token")
	}

	return s.serve(file)
}

func (s *FileService) serve(file *models.File) (*DownloadTarget, error) {
	target := &DownloadTarget{
		Name:     file.OriginalName,
		MimeType: file.MimeType,
	}

	if s.storage.IsLocal() {
		data, err := s.storage.ReadLocalFile(file.StoredPath)
		if err != nil {
			return nil, apperrors.Internal("failed to read file", err)
		}
		target.Data = data
	} else {
		url, err := s.storage.GeneratePresignedURL(file.StoredPath, 15*time.Minute)
		if err != nil {
			return nil, apperrors.Internal("failed to generate download link", err)
		}
		target.URL = url
	}

	now := time.Now()
	err := s.db.Model(file).Updates(map[string]interface{}{
		"download_count":     gorm.Expr("download_count + 1"),
		"last_downloaded_at": now,
	}).Error
	if err != nil {
		logrus.WithError(err).WithField("file_id", file.ID).Warn("Failed to record file download")
	}

	return target, nil
}

// IssueAccessToken rotates the tokenized download link for a file.
func (s *FileService) IssueAccessToken(user *models.User, fileID uuid.UUID) (*models.File, error) {
	file, err := s.GetFile(user, fileID)
	if err != nil {
		return nil, err
	}

	token, err := utils.GenerateFileAccessToken()
	if err != nil {
		return nil, apperrors.Internal("failed to generate access token", err)
	}

	expires := time.Now().Add(s.tokenTTL)
	file.AccessToken = token
	file.TokenExpiresAt = &expires

	if err := s.db.Save(file).Error; err != nil {
		return nil, apperrors.Internal("failed to save access token", err)
	}

	return file, nil
}

// Delete removes the metadata and the stored object. Any party with order
// access may delete an attachment.
func (s *FileService) Delete(user *models.User, fileID uuid.UUID) error {
	file, err := s.GetFile(user, fileID)
	if err != nil {
		return err
	}

	if err := s.db.Unscoped().Delete(file).Error; err != nil {
		return apperrors.Internal("failed to delete file record", err)
	}

	if err := s.storage.DeleteFile(file.StoredPath); err != nil {
		// metadata row is already gone; the orphaned object is logged
		// by the storage layer and cleaned up out of band
		return nil
	}

	return nil
}

func (s *FileService) loadFile(fileID uuid.UUID) (*models.File, error) {
	var file models.File
	if err := s.db.First(&file, "id = ?", fileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("file")
		}
		return nil, apperrors.Internal("failed to load file", err)
	}
	return &file, nil
}

func (s *FileService) loadOrder(orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := s.db.First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("order")
		}
		return nil, apperrors.Internal("failed to load order", err)
	}
	return &order, nil
}
