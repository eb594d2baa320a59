package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification types.
const (
	NotificationInterventionAssigned = "intervention_assigned"
	NotificationInterventionStatus   = "intervention_status"
	NotificationBlockageCreated      = "blockage_created"
	NotificationBlockageResolved     = "blockage_resolved"
	NotificationLowStock             = "low_stock"
	NotificationInfo                 = "info"
)

// Notification is a per-user message.
type Notification struct {
	Document

	UserID          string         `gorm:"type:varchar(36);not null;index" json:"userId"`
	EstablishmentID string         `gorm:"type:varchar(36);index" json:"establishmentId,omitempty"`
	Type            string         `gorm:"size:40" json:"type"`
	Title           string         `gorm:"size:255" json:"title"`
	Message         string         `gorm:"type:text" json:"message"`
	Priority        string         `gorm:"size:20;default:medium" json:"priority"`
	Link            string         `gorm:"size:255" json:"link,omitempty"`
	Data            datatypes.JSON `json:"data,omitempty"`
	Read            bool           `gorm:"column:is_read;default:false;index" json:"read"`
	ReadAt          *time.Time     `json:"readAt,omitempty"`
}
