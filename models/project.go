package models

import (
	"time"

	"github.com/google/uuid"
)

type Project struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User        User      `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description *string   `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// ProjectDocument links a document into a project. Pure join row: no
// attributes beyond the pair of ids.
type ProjectDocument struct {
	ProjectID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"project_id"`
	DocumentID uuid.UUID `gorm:"type:uuid;primaryKey" json:"document_id"`
	Project    Project   `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	Document   Document  `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
}
