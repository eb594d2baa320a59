package models

// Supplier is a vendor an establishment buys from.
type Supplier struct {
	Document

	EstablishmentID string `gorm:"type:varchar(36);not null;index" json:"establishmentId"`
	Name            string `gorm:"size:255;not null" json:"name"`
	ContactName     string `gorm:"size:255" json:"contactName,omitempty"`
	Email           string `gorm:"size:150" json:"email,omitempty"`
	Phone           string `gorm:"size:50" json:"phone,omitempty"`
	Address         string `gorm:"type:text" json:"address,omitempty"`
	Category        string `gorm:"size:80;index" json:"category,omitempty"`
	Website         string `gorm:"size:255" json:"website,omitempty"`
	Notes           string `gorm:"type:text" json:"notes,omitempty"`
	IsActive        bool   `gorm:"default:true" json:"isActive"`
}
