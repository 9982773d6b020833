package models

import "time"

// LabWorkStatus describes the publication state of a lab work.
type LabWorkStatus string

const (
	LabWorkDraft     LabWorkStatus = "DRAFT"
	LabWorkPublished LabWorkStatus = "PUBLISHED"
	LabWorkArchived  LabWorkStatus = "ARCHIVED"
)

// LabWork is an academic assignment a reservation may be associated with.
type LabWork struct {
	ID                string        `db:"id" json:"id"`
	Title             string        `db:"title" json:"title"`
	Description       *string       `db:"description" json:"description,omitempty"`
	AuthorID          string        `db:"author_id" json:"author_id"`
	Status            LabWorkStatus `db:"status" json:"status"`
	RequiredEquipment []Equipment   `db:"-" json:"required_equipment"`
	CreatedAt         time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time     `db:"updated_at" json:"updated_at"`
}
