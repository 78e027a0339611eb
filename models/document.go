package models

import (
	"time"

	"github.com/google/uuid"
)

// Document lifecycle statuses.
const (
	DocumentStatusUploaded   = "uploaded"
	DocumentStatusProcessing = "processing"
	DocumentStatusProcessed  = "processed"
	DocumentStatusError      = "error"
)

type Document struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User         User      `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	Filename     string    `gorm:"size:255;not null" json:"filename"`
	OriginalName string    `gorm:"size:255;not null" json:"original_name"`
	MimeType     string    `gorm:"size:100;not null" json:"mime_type"`
	Size         int64     `json:"size"` // bytes
	StoragePath  string    `gorm:"type:text;not null" json:"storage_path"`
	// Content is the parsed plain text. It is set only when status is
	// "processed"; a failed parse leaves it untouched.
	Content   *string   `gorm:"type:text" json:"content"`
	Status    string    `gorm:"size:30;default:'uploaded'" json:"status"` // uploaded|processing|processed|error
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
