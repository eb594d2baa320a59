package models

import "gorm.io/datatypes"

// Well-known reference list keys.
const (
	ListInterventionTypes   = "interventionTypes"
	ListInterventionLabels  = "interventionPriorities"
	ListInventoryCategories = "inventoryCategories"
	ListSupplierCategories  = "supplierCategories"
	ListRoomTypes           = "roomTypes"
	ListBlockageReasons     = "blockageReasons"
)

// ReferenceItem is one choice of a reference list.
type ReferenceItem struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Color    string `json:"color,omitempty"`
	Order    int    `json:"order"`
	IsActive bool   `json:"isActive"`
}

// ReferenceList is an establishment-configurable enumeration used to fill
// form choices.
type ReferenceList struct {
	Document

	EstablishmentID string                             `gorm:"type:varchar(36);not null;uniqueIndex:idx_reference_key" json:"establishmentId"`
	Key             string                             `gorm:"column:list_key;size:80;not null;uniqueIndex:idx_reference_key" json:"key"`
	Label           string                             `gorm:"size:255" json:"label"`
	Items           datatypes.JSONSlice[ReferenceItem] `json:"items"`
}
