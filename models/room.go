package models

// Room statuses.
const (
	RoomStatusAvailable   = "available"
	RoomStatusBlocked     = "blocked"
	RoomStatusMaintenance = "maintenance"
	RoomStatusCleaning    = "cleaning"
)

// Room is a physical unit of an establishment. Status and IsBlocked must
// agree with the open RoomBlockage records of the room.
type Room struct {
	Document

	EstablishmentID string  `gorm:"type:varchar(36);not null;uniqueIndex:idx_room_number" json:"establishmentId"`
	Number          string  `gorm:"type:varchar(50);not null;uniqueIndex:idx_room_number" json:"number"`
	Floor           string  `gorm:"type:varchar(10)" json:"floor"`
	Type            string  `gorm:"type:varchar(50)" json:"type"`
	PricePerNight   float64 `json:"pricePerNight"`
	Capacity        int     `json:"capacity"`
	Description     string  `gorm:"type:text" json:"description"`
	Status          string  `gorm:"type:varchar(20);default:available;index" json:"status"`
	IsBlocked       bool    `gorm:"default:false" json:"isBlocked"`
}

// IsValidRoomStatus reports whether status is a known room status.
func IsValidRoomStatus(status string) bool {
	switch status {
	case RoomStatusAvailable, RoomStatusBlocked, RoomStatusMaintenance, RoomStatusCleaning:
		return true
	}
	return false
}
