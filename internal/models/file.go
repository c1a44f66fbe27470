package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StoredFile is the metadata row for an uploaded attachment kept on
// local disk under the configured storage directory.
type StoredFile struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	UserID       *string   `gorm:"size:36;index" json:"user_id,omitempty"`
	CategoryID   *string   `gorm:"size:36;index" json:"category_id,omitempty"`
	OriginalName string    `gorm:"size:255;not null" json:"original_name"`
	StoredName   string    `gorm:"size:255;uniqueIndex;not null" json:"stored_name"`
	MimeType     string    `gorm:"size:128" json:"mime_type"`
	Size         int64     `gorm:"not null" json:"size"`
	Description  string    `gorm:"size:255" json:"description"`
	CreatedAt    time.Time `json:"created_at"`
}

func (f *StoredFile) BeforeCreate(_ *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
