package dto

import "github.com/unilab/lab-reservation-api/internal/models"

// CreateLabRequest is the payload for registering a lab.
type CreateLabRequest struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Location    string  `json:"location" validate:"required,max=255"`
	Capacity    int     `json:"capacity" validate:"required,min=1"`
	Description *string `json:"description" validate:"omitempty,max=255"`
}

// UpdateLabRequest is the payload for updating a lab.
type UpdateLabRequest struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Location    string  `json:"location" validate:"required,max=255"`
	Capacity    int     `json:"capacity" validate:"required,min=1"`
	Description *string `json:"description" validate:"omitempty,max=255"`
}

// CreateEquipmentRequest is the payload for registering equipment.
type CreateEquipmentRequest struct {
	Name            string                 `json:"name" validate:"required,max=255"`
	InventoryNumber string                 `json:"inventory_number" validate:"required,max=64"`
	Status          models.EquipmentStatus `json:"status" validate:"omitempty"`
	LabID           *string                `json:"lab_id" validate:"omitempty,uuid4"`
}

// UpdateEquipmentRequest is the payload for updating equipment.
type UpdateEquipmentRequest struct {
	Name            string                 `json:"name" validate:"required,max=255"`
	InventoryNumber string                 `json:"inventory_number" validate:"required,max=64"`
	Status          models.EquipmentStatus `json:"status" validate:"required"`
	LabID           *string                `json:"lab_id" validate:"omitempty,uuid4"`
}

// CreateLabWorkRequest is the payload for creating a lab work.
type CreateLabWorkRequest struct {
	Title        string   `json:"title" validate:"required,max=255"`
	Description  *string  `json:"description" validate:"omitempty,max=1000"`
	EquipmentIDs []string `json:"equipment_ids" validate:"omitempty,dive,uuid4"`
}

// UpdateLabWorkRequest is the payload for updating a lab work.
type UpdateLabWorkRequest struct {
	Title        string               `json:"title" validate:"required,max=255"`
	Description  *string              `json:"description" validate:"omitempty,max=1000"`
	Status       models.LabWorkStatus `json:"status" validate:"required"`
	EquipmentIDs []string             `json:"equipment_ids" validate:"omitempty,dive,uuid4"`
}
