package models

import (
	"time"

	"github.com/google/uuid"
)

// Podcast lifecycle statuses. A failed generation deletes the row instead of
// recording an error status, so there is no "error" value here.
const (
	PodcastStatusPending    = "pending"
	PodcastStatusProcessing = "processing"
	PodcastStatusCompleted  = "completed"
)

type Podcast struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User        User       `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	ProjectID   *uuid.UUID `gorm:"type:uuid;index" json:"project_id"`
	Name        string     `gorm:"size:255;not null" json:"name"`
	Description *string    `gorm:"type:text" json:"description"`
	AudioURL    *string    `gorm:"type:text" json:"audio_url"`
	Duration    *int       `json:"duration"` // seconds, estimated from transcript
	Transcript  *string    `gorm:"type:text" json:"transcript"`
	Status      string     `gorm:"size:30;default:'pending'" json:"status"` // pending|processing|completed
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// PodcastDocument records which documents contributed to a generated script.
type PodcastDocument struct {
	PodcastID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"podcast_id"`
	DocumentID uuid.UUID `gorm:"type:uuid;primaryKey" json:"document_id"`
	Podcast    Podcast   `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	Document   Document  `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
}
