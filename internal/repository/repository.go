package repository

import (
	"database/sql"
	"fmt"
)

// requireRows converts a zero-row result into sql.ErrNoRows so services can
// translate it into a NotFound error.
func requireRows(result sql.Result, op string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows: %w", op, err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
