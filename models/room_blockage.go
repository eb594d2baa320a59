package models

import "time"

// Blockage urgencies.
const (
	UrgencyLow      = "low"
	UrgencyMedium   = "medium"
	UrgencyHigh     = "high"
	UrgencyCritical = "critical"
)

// RoomBlockage is a period during which a room is unusable. Duration fields,
// IsOverdue and EstimatedRevenueLoss are derived; see services.RefreshDerived.
type RoomBlockage struct {
	Document

	EstablishmentID   string  `gorm:"type:varchar(36);not null;index" json:"establishmentId"`
	RoomID            string  `gorm:"type:varchar(36);not null;index" json:"roomId"`
	RoomNumber        string  `gorm:"size:50" json:"roomNumber"`
	RoomPricePerNight float64 `json:"roomPricePerNight"`
	InterventionID    *string `gorm:"type:varchar(36);index" json:"interventionId"`
	InterventionType  string  `gorm:"size:80" json:"interventionType,omitempty"`
	Reason            string  `gorm:"type:text" json:"reason"`
	Urgency           string  `gorm:"size:20;default:medium" json:"urgency"`
	Notes             string  `gorm:"type:text" json:"notes,omitempty"`
	BlockedBy         string  `gorm:"type:varchar(36)" json:"blockedBy,omitempty"`
	ResolvedBy        string  `gorm:"type:varchar(36)" json:"resolvedBy,omitempty"`

	BlockedAt            time.Time  `gorm:"not null;index" json:"blockedAt"`
	EstimatedUnblockDate *time.Time `json:"estimatedUnblockDate,omitempty"`
	ActualUnblockDate    *time.Time `json:"actualUnblockDate,omitempty"`

	DurationDays         int     `json:"durationDays"`
	DurationHours        int     `json:"durationHours"`
	DurationMinutes      int     `json:"durationMinutes"`
	EstimatedRevenueLoss float64 `json:"estimatedRevenueLoss"`

	IsActive  bool `gorm:"index" json:"isActive"`
	IsOverdue bool `json:"isOverdue"`
}

func (RoomBlockage) TableName() string { return "room_blockages" }

// IsValidUrgency reports whether u is a known blockage urgency.
func IsValidUrgency(u string) bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical:
		return true
	}
	return false
}
