package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/unilab/lab-reservation-api/internal/models"
)

const equipmentColumns = `id, name, inventory_number, status, lab_id, created_at, updated_at`

// EquipmentRepository persists lab equipment records.
type EquipmentRepository struct {
	db *sqlx.DB
}

// NewEquipmentRepository constructs the repository.
func NewEquipmentRepository(db *sqlx.DB) *EquipmentRepository {
	return &EquipmentRepository{db: db}
}

// Create inserts a new equipment row.
func (r *EquipmentRepository) Create(ctx context.Context, equipment *models.Equipment) error {
	if equipment.ID == "" {
		equipment.ID = uuid.NewString()
	}
	if equipment.Status == "" {
		equipment.Status = models.EquipmentAvailable
	}
	now := time.Now().UTC()
	equipment.CreatedAt = now
	equipment.UpdatedAt = now

	const query = `INSERT INTO equipment (id, name, inventory_number, status, lab_id, created_at, updated_at)
	VALUES (:id, :name, :inventory_number, :status, :lab_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, equipment); err != nil {
		return fmt.Errorf("create equipment: %w", err)
	}
	return nil
}

// FindByID fetches equipment by identifier.
func (r *EquipmentRepository) FindByID(ctx context.Context, id string) (*models.Equipment, error) {
	query := fmt.Sprintf(`SELECT %s FROM equipment WHERE id = $1`, equipmentColumns)
	var equipment models.Equipment
	if err := r.db.GetContext(ctx, &equipment, query, id); err != nil {
		return nil, err
	}
	return &equipment, nil
}

// FindAllByID resolves the given ids best effort: ids without a matching row
// are silently omitted from the result.
func (r *EquipmentRepository) FindAllByID(ctx context.Context, ids []string) ([]models.Equipment, error) {
	if len(ids) == 0 {
		return []models.Equipment{}, nil
	}
	args := make([]interface{}, 0, len(ids))
	placeholders := make([]string, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
	}
	query := fmt.Sprintf(`SELECT %s FROM equipment WHERE id IN (%s) ORDER BY name ASC`,
		equipmentColumns, strings.Join(placeholders, ","))

	var items []models.Equipment
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("find equipment by ids: %w", err)
	}
	return items, nil
}

// ExistsByInventoryNumber reports whether an inventory number is already registered.
func (r *EquipmentRepository) ExistsByInventoryNumber(ctx context.Context, inventoryNumber, excludeID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM equipment WHERE inventory_number = $1 AND id <> $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, inventoryNumber, excludeID); err != nil {
		return false, fmt.Errorf("check inventory number exists: %w", err)
	}
	return exists, nil
}

// List returns equipment matching the filter.
func (r *EquipmentRepository) List(ctx context.Context, filter models.EquipmentFilter) ([]models.Equipment, error) {
	builder := strings.Builder{}
	fmt.Fprintf(&builder, `SELECT %s FROM equipment`, equipmentColumns)

	args := make([]interface{}, 0, 2)
	conditions := make([]string, 0, 2)
	if filter.LabID != "" {
		args = append(args, filter.LabID)
		conditions = append(conditions, fmt.Sprintf("lab_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY name ASC")

	var items []models.Equipment
	if err := r.db.SelectContext(ctx, &items, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list equipment: %w", err)
	}
	return items, nil
}

// Update persists mutable equipment columns.
func (r *EquipmentRepository) Update(ctx context.Context, equipment *models.Equipment) error {
	equipment.UpdatedAt = time.Now().UTC()
	const query = `UPDATE equipment SET name = :name, inventory_number = :inventory_number,
	status = :status, lab_id = :lab_id, updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, equipment)
	if err != nil {
		return fmt.Errorf("update equipment: %w", err)
	}
	return requireRows(result, "update equipment")
}

// DeleteByID removes an equipment row.
func (r *EquipmentRepository) DeleteByID(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM equipment WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete equipment: %w", err)
	}
	return requireRows(result, "delete equipment")
}

// Count returns the total number of equipment rows.
func (r *EquipmentRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM equipment`); err != nil {
		return 0, fmt.Errorf("count equipment: %w", err)
	}
	return count, nil
}
