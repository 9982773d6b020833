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

const reservationColumns = `r.id, r.lab_id, r.user_id, u.username AS username, r.labwork_id,
       r.start_time, r.end_time, r.status, r.purpose, r.approved_by, r.approved_at,
       r.created_at, r.updated_at`

// ReservationRepository persists reservation records and their equipment links.
type ReservationRepository struct {
	db *sqlx.DB
}

// NewReservationRepository constructs the repository.
func NewReservationRepository(db *sqlx.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

// Create inserts a reservation row plus its equipment join rows in one transaction.
func (r *ReservationRepository) Create(ctx context.Context, reservation *models.Reservation) (err error) {
	if reservation.ID == "" {
		reservation.ID = uuid.NewString()
	}
	if reservation.Status == "" {
		reservation.Status = models.ReservationPending
	}
	now := time.Now().UTC()
	reservation.CreatedAt = now
	reservation.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reservation transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insertQuery = `INSERT INTO reservations
	(id, lab_id, user_id, labwork_id, start_time, end_time, status, purpose, approved_by, approved_at, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	if _, err = tx.ExecContext(ctx, insertQuery,
		reservation.ID,
		reservation.LabID,
		reservation.UserID,
		reservation.LabWorkID,
		reservation.StartTime,
		reservation.EndTime,
		reservation.Status,
		reservation.Purpose,
		reservation.ApprovedBy,
		reservation.ApprovedAt,
		reservation.CreatedAt,
		reservation.UpdatedAt,
	); err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}

	const linkQuery = `INSERT INTO reservation_equipment (reservation_id, equipment_id) VALUES ($1, $2)`
	for _, item := range reservation.Equipment {
		if _, err = tx.ExecContext(ctx, linkQuery, reservation.ID, item.ID); err != nil {
			return fmt.Errorf("link reservation equipment: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit reservation: %w", err)
	}
	return nil
}

// FindByID fetches a reservation with its equipment hydrated.
func (r *ReservationRepository) FindByID(ctx context.Context, id string) (*models.Reservation, error) {
	query := fmt.Sprintf(`SELECT %s FROM reservations r JOIN users u ON u.id = r.user_id WHERE r.id = $1`, reservationColumns)
	var reservation models.Reservation
	if err := r.db.GetContext(ctx, &reservation, query, id); err != nil {
		return nil, err
	}
	if err := r.hydrateEquipment(ctx, []*models.Reservation{&reservation}); err != nil {
		return nil, err
	}
	return &reservation, nil
}

// List returns reservations matching the filter (store iteration order, latest first).
func (r *ReservationRepository) List(ctx context.Context, filter models.ReservationFilter) ([]models.Reservation, error) {
	builder := strings.Builder{}
	fmt.Fprintf(&builder, `SELECT %s FROM reservations r JOIN users u ON u.id = r.user_id`, reservationColumns)

	args := make([]interface{}, 0, 2)
	conditions := make([]string, 0, 2)
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		conditions = append(conditions, fmt.Sprintf("r.user_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("r.status = $%d", len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY r.created_at DESC")

	var reservations []models.Reservation
	if err := r.db.SelectContext(ctx, &reservations, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}

	refs := make([]*models.Reservation, len(reservations))
	for i := range reservations {
		refs[i] = &reservations[i]
	}
	if err := r.hydrateEquipment(ctx, refs); err != nil {
		return nil, err
	}
	return reservations, nil
}

// DecisionParams groups the columns written by an approve/reject decision.
type DecisionParams struct {
	ID         string
	Status     models.ReservationStatus
	ApprovedBy string
	ApprovedAt time.Time
}

// UpdateDecision persists an approval decision. The update only applies while
// the stored status is still PENDING; sql.ErrNoRows signals a lost race or a
// reservation that was already decided.
func (r *ReservationRepository) UpdateDecision(ctx context.Context, params DecisionParams) error {
	const query = `UPDATE reservations
	SET status = $1, approved_by = $2, approved_at = $3, updated_at = $4
	WHERE id = $5 AND status = 'PENDING'`
	result, err := r.db.ExecContext(ctx, query, params.Status, params.ApprovedBy, params.ApprovedAt, time.Now().UTC(), params.ID)
	if err != nil {
		return fmt.Errorf("update reservation decision: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check reservation decision rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateStatus overwrites the status unconditionally regardless of current state.
func (r *ReservationRepository) UpdateStatus(ctx context.Context, id string, status models.ReservationStatus) error {
	const query = `UPDATE reservations SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update reservation status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check reservation status rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ExistsByID reports whether a reservation row exists.
func (r *ReservationRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM reservations WHERE id = $1)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, id); err != nil {
		return false, fmt.Errorf("check reservation exists: %w", err)
	}
	return exists, nil
}

// DeleteByID removes a reservation row; the join rows cascade.
func (r *ReservationRepository) DeleteByID(ctx context.Context, id string) error {
	const query = `DELETE FROM reservations WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete reservation: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check reservation delete rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

type reservationEquipmentRow struct {
	ReservationID string `db:"reservation_id"`
	models.Equipment
}

func (r *ReservationRepository) hydrateEquipment(ctx context.Context, reservations []*models.Reservation) error {
	if len(reservations) == 0 {
		return nil
	}
	args := make([]interface{}, 0, len(reservations))
	placeholders := make([]string, 0, len(reservations))
	byID := make(map[string]*models.Reservation, len(reservations))
	for _, reservation := range reservations {
		reservation.Equipment = []models.Equipment{}
		args = append(args, reservation.ID)
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
		byID[reservation.ID] = reservation
	}

	query := fmt.Sprintf(`SELECT re.reservation_id, e.id, e.name, e.inventory_number, e.status, e.lab_id, e.created_at, e.updated_at
	FROM reservation_equipment re
	JOIN equipment e ON e.id = re.equipment_id
	WHERE re.reservation_id IN (%s)
	ORDER BY e.name ASC`, strings.Join(placeholders, ","))

	var rows []reservationEquipmentRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return fmt.Errorf("hydrate reservation equipment: %w", err)
	}
	for _, row := range rows {
		if reservation, ok := byID[row.ReservationID]; ok {
			reservation.Equipment = append(reservation.Equipment, row.Equipment)
		}
	}
	return nil
}
