package models

import "time"

// User is a staff account. The password hash is never serialized.
type User struct {
	Document

	Email        string     `gorm:"uniqueIndex;size:150;not null" json:"email"`
	DisplayName  string     `gorm:"size:255" json:"displayName"`
	Phone        string     `gorm:"size:50" json:"phone"`
	PasswordHash string     `gorm:"size:255" json:"-"`
	IsActive     bool       `gorm:"default:true" json:"isActive"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
}

// Member roles within an establishment.
const (
	RoleOwner      = "owner"
	RoleManager    = "manager"
	RoleTechnician = "technician"
	RoleReception  = "reception"
	RoleStaff      = "staff"
)

// EstablishmentMember links a user to an establishment with a role.
type EstablishmentMember struct {
	Document

	EstablishmentID string `gorm:"type:varchar(36);not null;index:idx_member,unique" json:"establishmentId"`
	UserID          string `gorm:"type:varchar(36);not null;index:idx_member,unique" json:"userId"`
	Role            string `gorm:"size:30;not null" json:"role"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// IsValidRole reports whether role is a known member role.
func IsValidRole(role string) bool {
	switch role {
	case RoleOwner, RoleManager, RoleTechnician, RoleReception, RoleStaff:
		return true
	}
	return false
}
