package models

import "time"

// EquipmentStatus describes equipment availability.
type EquipmentStatus string

const (
	EquipmentAvailable   EquipmentStatus = "AVAILABLE"
	EquipmentInUse       EquipmentStatus = "IN_USE"
	EquipmentMaintenance EquipmentStatus = "MAINTENANCE"
	EquipmentBroken      EquipmentStatus = "BROKEN"
)

// Equipment represents a reservable lab instrument.
type Equipment struct {
	ID              string          `db:"id" json:"id"`
	Name            string          `db:"name" json:"name"`
	InventoryNumber string          `db:"inventory_number" json:"inventory_number"`
	Status          EquipmentStatus `db:"status" json:"status"`
	LabID           *string         `db:"lab_id" json:"lab_id,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// EquipmentFilter captures filtering criteria for equipment listings.
type EquipmentFilter struct {
	LabID  string
	Status EquipmentStatus
}
