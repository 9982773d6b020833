package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/unilab/lab-reservation-api/internal/models"
)

const labColumns = `id, name, location, capacity, description, created_at, updated_at`

// LabRepository persists laboratory records.
type LabRepository struct {
	db *sqlx.DB
}

// NewLabRepository constructs the repository.
func NewLabRepository(db *sqlx.DB) *LabRepository {
	return &LabRepository{db: db}
}

// Create inserts a new lab row.
func (r *LabRepository) Create(ctx context.Context, lab *models.Lab) error {
	if lab.ID == "" {
		lab.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	lab.CreatedAt = now
	lab.UpdatedAt = now

	const query = `INSERT INTO labs (id, name, location, capacity, description, created_at, updated_at)
	VALUES (:id, :name, :location, :capacity, :description, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, lab); err != nil {
		return fmt.Errorf("create lab: %w", err)
	}
	return nil
}

// FindByID fetches a lab by identifier.
func (r *LabRepository) FindByID(ctx context.Context, id string) (*models.Lab, error) {
	query := fmt.Sprintf(`SELECT %s FROM labs WHERE id = $1`, labColumns)
	var lab models.Lab
	if err := r.db.GetContext(ctx, &lab, query, id); err != nil {
		return nil, err
	}
	return &lab, nil
}

// ExistsByID reports whether a lab exists.
func (r *LabRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM labs WHERE id = $1)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, id); err != nil {
		return false, fmt.Errorf("check lab exists: %w", err)
	}
	return exists, nil
}

// List returns all labs ordered by name.
func (r *LabRepository) List(ctx context.Context) ([]models.Lab, error) {
	query := fmt.Sprintf(`SELECT %s FROM labs ORDER BY name ASC`, labColumns)
	var labs []models.Lab
	if err := r.db.SelectContext(ctx, &labs, query); err != nil {
		return nil, fmt.Errorf("list labs: %w", err)
	}
	return labs, nil
}

// Update persists mutable lab columns.
func (r *LabRepository) Update(ctx context.Context, lab *models.Lab) error {
	lab.UpdatedAt = time.Now().UTC()
	const query = `UPDATE labs SET name = :name, location = :location, capacity = :capacity,
	description = :description, updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, lab)
	if err != nil {
		return fmt.Errorf("update lab: %w", err)
	}
	return requireRows(result, "update lab")
}

// DeleteByID removes a lab row.
func (r *LabRepository) DeleteByID(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM labs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete lab: %w", err)
	}
	return requireRows(result, "delete lab")
}

// Count returns the total number of labs.
func (r *LabRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM labs`); err != nil {
		return 0, fmt.Errorf("count labs: %w", err)
	}
	return count, nil
}
