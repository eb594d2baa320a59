package models

import "gorm.io/datatypes"

// InterventionTemplate pre-fills recurring interventions.
type InterventionTemplate struct {
	Document

	EstablishmentID   string                      `gorm:"type:varchar(36);not null;index" json:"establishmentId"`
	Name              string                      `gorm:"size:255;not null" json:"name"`
	Description       string                      `gorm:"type:text" json:"description"`
	Type              string                      `gorm:"size:80" json:"type"`
	Priority          string                      `gorm:"size:20;default:medium" json:"priority"`
	EstimatedDuration *float64                    `json:"estimatedDuration,omitempty"`
	BlocksRoom        bool                        `json:"blocksRoom"`
	Checklist         datatypes.JSONSlice[string] `json:"checklist"`
	IsActive          bool                        `gorm:"default:true" json:"isActive"`
	UsageCount        int                         `gorm:"default:0" json:"usageCount"`
}

func (InterventionTemplate) TableName() string { return "intervention_templates" }
