// internal/models/file.go
package models

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// File is the metadata record for an uploaded artifact tied to an order.
// The bytes themselves live in S3 (or local storage in development).
type File struct {
	BaseModel
	OrderID    uuid.UUID `json:"order_id" gorm:"type:uuid;not null;index"`
	UploaderID uuid.UUID `json:"uploader_id" gorm:"type:uuid;not null;index"`

	OriginalName string   `json:"original_name" gorm:"size:255;not null"`
	StoredPath   string   `json:"stored_path" gorm:"size:512;not null"`
	FileURL      string   `json:"file_url" gorm:"size:1024"`
	MimeType     string   `json:"mime_type" gorm:"size:100"`
	FileType     FileType `json:"file_type" gorm:"type:varchar(10);not null;default:'other'"`
	SizeBytes    int64    `json:"size_bytes"`

	AccessToken      string     `json:"-" gorm:"size:64;index"`
	TokenExpiresAt   *time.Time `json:"token_expires_at"`
	IsPublic         bool       `json:"is_public" gorm:"default:false"`
	DownloadCount    int        `json:"download_count" gorm:"default:0"`
	LastDownloadedAt *time.Time `json:"last_downloaded_at"`

	// Relationships
	Order    Order `json:"order,omitempty" gorm:"foreignKey:OrderID"`
	Uploader User  `json:"uploader,omitempty" gorm:"foreignKey:UploaderID"`
}

// ClassifyFileType derives the coarse file category from the declared name.
func ClassifyFileType(filename string) FileType {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".stl", ".obj", ".ply":
		return FileTypeSTL
	case ".pdf":
		return FileTypePDF
	case ".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp":
		return FileTypeImage
	case ".doc", ".docx", ".txt", ".rtf", ".odt":
		return FileTypeDocument
	default:
		return FileTypeOther
	}
}

// IsAccessible reports whether the file can currently be served: public
// files always, otherwise only while the access token has not expired.
func (f *File) IsAccessible() bool {
	if f.IsPublic {
		return true
	}
	if f.TokenExpiresAt != nil && f.TokenExpiresAt.Before(time.Now()) {
		return false
	}
	return true
}

// TokenValid reports whether the presented token matches and is unexpired.
func (f *File) TokenValid(token string) bool {
	if token == "" || f.AccessToken == "" || token != f.AccessToken {
		return false
	}
	if f.TokenExpiresAt != nil && f.TokenExpiresAt.Before(time.Now()) {
		return false
	}
	return true
}
