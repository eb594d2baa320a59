package models

import "gorm.io/datatypes"

// Establishment is a tenant: a hotel or property owning its rooms,
// interventions, inventory and suppliers.
type Establishment struct {
	Document

	Name       string         `gorm:"size:255;not null" json:"name"`
	Type       string         `gorm:"size:50" json:"type"`
	Address    string         `gorm:"type:text" json:"address"`
	City       string         `gorm:"size:120" json:"city"`
	Phone      string         `gorm:"size:50" json:"phone"`
	Email      string         `gorm:"size:150" json:"email"`
	Website    string         `gorm:"size:255" json:"website"`
	Logo       string         `gorm:"size:255" json:"logo"`
	Currency   string         `gorm:"size:8;default:EUR" json:"currency"`
	TotalRooms int            `json:"totalRooms"`
	OwnerID    string         `gorm:"type:varchar(36);index" json:"ownerId"`
	Settings   datatypes.JSON `json:"settings,omitempty"`
	IsActive   bool           `gorm:"default:true" json:"isActive"`
}
