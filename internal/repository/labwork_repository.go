package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/unilab/lab-reservation-api/internal/models"
)

const labWorkColumns = `id, title, description, author_id, status, created_at, updated_at`

// LabWorkRepository persists lab works and their required equipment links.
type LabWorkRepository struct {
	db *sqlx.DB
}

// NewLabWorkRepository constructs the repository.
func NewLabWorkRepository(db *sqlx.DB) *LabWorkRepository {
	return &LabWorkRepository{db: db}
}

// Create inserts a lab work together with its required equipment links.
func (r *LabWorkRepository) Create(ctx context.Context, labWork *models.LabWork) error {
	if labWork.ID == "" {
		labWork.ID = uuid.NewString()
	}
	if labWork.Status == "" {
		labWork.Status = models.LabWorkDraft
	}
	now := time.Now().UTC()
	labWork.CreatedAt = now
	labWork.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create lab work: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const query = `INSERT INTO lab_works (id, title, description, author_id, status, created_at, updated_at)
	VALUES (:id, :title, :description, :author_id, :status, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, query, labWork); err != nil {
		return fmt.Errorf("create lab work: %w", err)
	}
	if err := r.replaceEquipmentLinks(ctx, tx, labWork.ID, labWork.RequiredEquipment); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create lab work: %w", err)
	}
	return nil
}

// FindByID fetches a lab work and hydrates its required equipment.
func (r *LabWorkRepository) FindByID(ctx context.Context, id string) (*models.LabWork, error) {
	query := fmt.Sprintf(`SELECT %s FROM lab_works WHERE id = $1`, labWorkColumns)
	var labWork models.LabWork
	if err := r.db.GetContext(ctx, &labWork, query, id); err != nil {
		return nil, err
	}
	items := []models.LabWork{labWork}
	if err := r.hydrateEquipment(ctx, items); err != nil {
		return nil, err
	}
	return &items[0], nil
}

// ExistsByID reports whether a lab work exists.
func (r *LabWorkRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM lab_works WHERE id = $1)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, id); err != nil {
		return false, fmt.Errorf("check lab work exists: %w", err)
	}
	return exists, nil
}

// List returns lab works, optionally filtered by status, newest first.
func (r *LabWorkRepository) List(ctx context.Context, status models.LabWorkStatus) ([]models.LabWork, error) {
	builder := strings.Builder{}
	fmt.Fprintf(&builder, `SELECT %s FROM lab_works`, labWorkColumns)

	args := make([]interface{}, 0, 1)
	if status != "" {
		args = append(args, status)
		builder.WriteString(" WHERE status = $1")
	}
	builder.WriteString(" ORDER BY created_at DESC")

	var items []models.LabWork
	if err := r.db.SelectContext(ctx, &items, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list lab works: %w", err)
	}
	if err := r.hydrateEquipment(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// Update persists mutable lab work columns and rewrites the equipment links.
func (r *LabWorkRepository) Update(ctx context.Context, labWork *models.LabWork) error {
	labWork.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update lab work: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const query = `UPDATE lab_works SET title = :title, description = :description,
	status = :status, updated_at = :updated_at WHERE id = :id`
	result, err := tx.NamedExecContext(ctx, query, labWork)
	if err != nil {
		return fmt.Errorf("update lab work: %w", err)
	}
	if err := requireRows(result, "update lab work"); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM labwork_equipment WHERE lab_work_id = $1`, labWork.ID); err != nil {
		return fmt.Errorf("clear lab work equipment: %w", err)
	}
	if err := r.replaceEquipmentLinks(ctx, tx, labWork.ID, labWork.RequiredEquipment); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update lab work: %w", err)
	}
	return nil
}

// DeleteByID removes a lab work. Link rows go with it via ON DELETE CASCADE.
func (r *LabWorkRepository) DeleteByID(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM lab_works WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete lab work: %w", err)
	}
	return requireRows(result, "delete lab work")
}

// Count returns the total number of lab works.
func (r *LabWorkRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM lab_works`); err != nil {
		return 0, fmt.Errorf("count lab works: %w", err)
	}
	return count, nil
}

func (r *LabWorkRepository) replaceEquipmentLinks(ctx context.Context, tx *sqlx.Tx, labWorkID string, equipment []models.Equipment) error {
	for _, item := range equipment {
		const link = `INSERT INTO labwork_equipment (lab_work_id, equipment_id) VALUES ($1, $2)`
		if _, err := tx.ExecContext(ctx, link, labWorkID, item.ID); err != nil {
			return fmt.Errorf("link lab work equipment: %w", err)
		}
	}
	return nil
}

type labWorkEquipmentRow struct {
	LabWorkID string `db:"lab_work_id"`
	models.Equipment
}

func (r *LabWorkRepository) hydrateEquipment(ctx context.Context, items []models.LabWork) error {
	if len(items) == 0 {
		return nil
	}
	args := make([]interface{}, 0, len(items))
	placeholders := make([]string, 0, len(items))
	for _, item := range items {
		args = append(args, item.ID)
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
	}
	query := fmt.Sprintf(`SELECT le.lab_work_id, e.id, e.name, e.inventory_number, e.status, e.lab_id, e.created_at, e.updated_at
	FROM labwork_equipment le
	JOIN equipment e ON e.id = le.equipment_id
	WHERE le.lab_work_id IN (%s)
	ORDER BY e.name ASC`, strings.Join(placeholders, ","))

	var rows []labWorkEquipmentRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil
		}
		return fmt.Errorf("hydrate lab work equipment: %w", err)
	}

	byLabWork := make(map[string][]models.Equipment, len(items))
	for _, row := range rows {
		byLabWork[row.LabWorkID] = append(byLabWork[row.LabWorkID], row.Equipment)
	}
	for i := range items {
		equipment := byLabWork[items[i].ID]
		if equipment == nil {
			equipment = []models.Equipment{}
		}
		items[i].RequiredEquipment = equipment
	}
	return nil
}
