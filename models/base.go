package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Document is embedded by every persisted entity. IDs are uuid strings so
// records keep the shape of the documents the front end already consumes.
type Document struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}
