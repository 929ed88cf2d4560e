package users

import (
	"context"
	"database/sql"
	"errors"

	"user-auth-server/pkg/utils"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresStore assumes the following tables exist:
//
//	users (id PK, username UNIQUE, name, email UNIQUE, email_confirmed,
//	       password_hash, created_at, updated_at)
//	user_roles (user_id REFERENCES users ON DELETE CASCADE, role,
//	            UNIQUE (user_id, role))
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const uniqueViolation = "23505"

func (s *PostgresStore) Create(ctx context.Context, u User) error {
	const q = `
INSERT INTO users (id, username, name, email, email_confirmed, password_hash, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`
	_, err := s.db.ExecContext(ctx, q,
		u.ID, u.Username, u.Name, u.Email, u.EmailConfirmed, u.PasswordHash, u.CreatedAt, u.UpdatedAt,
	)
	return mapUniqueViolation(err)
}

func (s *PostgresStore) ByID(ctx context.Context, id string) (User, error) {
	return s.one(ctx, `WHERE id = $1`, id)
}

func (s *PostgresStore) ByUsername(ctx context.Context, username string) (User, error) {
	return s.one(ctx, `WHERE username = $1`, username)
}

func (s *PostgresStore) ByEmail(ctx context.Context, email string) (User, error) {
	return s.one(ctx, `WHERE email = $1`, email)
}

const selectUser = `
SELECT id, username, name, email, email_confirmed, password_hash, created_at, updated_at
FROM users
`

func (s *PostgresStore) one(ctx context.Context, where string, arg any) (User, error) {
	var u User
	err := s.db.QueryRowContext(ctx, selectUser+where, arg).Scan(
		&u.ID, &u.Username, &u.Name, &u.Email, &u.EmailConfirmed, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, selectUser+`ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(
			&u.ID, &u.Username, &u.Name, &u.Email, &u.EmailConfirmed, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Update(ctx context.Context, u User) error {
	const q = `
UPDATE users
SET name = $2, email = $3, email_confirmed = $4, updated_at = $5
WHERE id = $1
`
	res, err := s.db.ExecContext(ctx, q, u.ID, u.Name, u.Email, u.EmailConfirmed, u.UpdatedAt)
	if err != nil {
		return mapUniqueViolation(err)
	}
	return requireRow(res)
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	return utils.WithTx(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM user_roles WHERE user_id = $1`, id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			return err
		}
		return requireRow(res)
	})
}

func (s *PostgresStore) Roles(ctx context.Context, userID string) ([]string, error) {
	// Verify the user exists so an unknown id reads as ErrNotFound rather
	// than an empty role set.
	if _, err := s.ByID(ctx, userID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT role FROM user_roles WHERE user_id = $1 ORDER BY role`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var r string
		if err := rows.Scan(&r); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) AddRole(ctx context.Context, userID, role string) error {
	const q = `
INSERT INTO user_roles (user_id, role)
VALUES ($1, $2)
ON CONFLICT (user_id, role) DO NOTHING
`
	_, err := s.db.ExecContext(ctx, q, userID, role)
	return err
}

func (s *PostgresStore) SetPasswordHash(ctx context.Context, userID, hash string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`, userID, hash)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *PostgresStore) ConfirmEmail(ctx context.Context, userID string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET email_confirmed = TRUE, updated_at = now() WHERE id = $1`, userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch pgErr.ConstraintName {
		case "users_email_key":
			return ErrEmailTaken
		default:
			return ErrUsernameTaken
		}
	}
	return err
}
