package audit

import (
	"context"
	"database/sql"
)

// PostgresRepo assumes a table:
//
//	auth_audit (id PK, type, user_id, message, created_at)
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Append(ctx context.Context, e Event) error {
	const q = `
INSERT INTO auth_audit (id, type, user_id, message, created_at)
VALUES ($1, $2, $3, $4, $5)
`
	_, err := r.db.ExecContext(ctx, q, e.ID, e.Type, e.UserID, e.Message, e.CreatedAt)
	return err
}
