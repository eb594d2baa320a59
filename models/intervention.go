package models

import (
	"time"

	"gorm.io/datatypes"
)

// Intervention priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Intervention statuses.
const (
	InterventionPending    = "pending"
	InterventionAssigned   = "assigned"
	InterventionInProgress = "in_progress"
	InterventionOnHold     = "on_hold"
	InterventionCompleted  = "completed"
	InterventionValidated  = "validated"
	InterventionCancelled  = "cancelled"
)

// Intervention is a maintenance work order, optionally blocking a room.
type Intervention struct {
	Document

	EstablishmentID   string                      `gorm:"type:varchar(36);not null;index" json:"establishmentId"`
	Title             string                      `gorm:"size:255;not null" json:"title"`
	Description       string                      `gorm:"type:text" json:"description"`
	Type              string                      `gorm:"size:80;index" json:"type"`
	Priority          string                      `gorm:"size:20;default:medium" json:"priority"`
	Status            string                      `gorm:"size:20;default:pending;index" json:"status"`
	RoomID            *string                     `gorm:"type:varchar(36);index" json:"roomId,omitempty"`
	RoomNumber        string                      `gorm:"size:50" json:"roomNumber,omitempty"`
	Location          string                      `gorm:"size:255" json:"location"`
	BlocksRoom        bool                        `json:"blocksRoom"`
	AssignedTo        *string                     `gorm:"type:varchar(36);index" json:"assignedTo,omitempty"`
	AssignedToName    string                      `gorm:"size:255" json:"assignedToName,omitempty"`
	CreatedBy         string                      `gorm:"type:varchar(36)" json:"createdBy"`
	CreatedByName     string                      `gorm:"size:255" json:"createdByName"`
	EstimatedDuration *float64                    `json:"estimatedDuration,omitempty"`
	StartedAt         *time.Time                  `json:"startedAt,omitempty"`
	CompletedAt       *time.Time                  `json:"completedAt,omitempty"`
	Photos            datatypes.JSONSlice[string] `json:"photos"`
	TemplateID        *string                     `gorm:"type:varchar(36)" json:"templateId,omitempty"`
}

// IsValidPriority reports whether p is a known intervention priority.
func IsValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// IsValidInterventionStatus reports whether s is a known intervention status.
func IsValidInterventionStatus(s string) bool {
	switch s {
	case InterventionPending, InterventionAssigned, InterventionInProgress, InterventionOnHold,
		InterventionCompleted, InterventionValidated, InterventionCancelled:
		return true
	}
	return false
}

// InterventionComment is a note left on an intervention.
type InterventionComment struct {
	Document

	InterventionID  string `gorm:"type:varchar(36);not null;index" json:"interventionId"`
	EstablishmentID string `gorm:"type:varchar(36);not null;index" json:"establishmentId"`
	UserID          string `gorm:"type:varchar(36)" json:"userId"`
	UserName        string `gorm:"size:255" json:"userName"`
	Content         string `gorm:"type:text;not null" json:"content"`
}

func (InterventionComment) TableName() string { return "comments" }
