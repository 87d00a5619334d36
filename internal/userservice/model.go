package userservice

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sushihentaime/quill/internal/common"
)

const emailConstraint = "users_email_key"

func NewUserModel(db *sql.DB) *DBModel {
	return &DBModel{db: db}
}

// FindAll returns users newest first. Nil limit and offset default to 100 and 0.
func (m *DBModel) FindAll(ctx context.Context, limit, offset *int) ([]*User, error) {
	l, o := DefaultLimit, DefaultOffset
	if limit != nil {
		l = *limit
	}
	if offset != nil {
		o = *offset
	}

	query := `
		SELECT id, name, email, created_at, updated_at
		FROM users
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := m.db.QueryContext(ctx, query, l, o)
	if err != nil {
		return nil, common.NewStoreError("users.find_all", err)
	}
	defer rows.Close()

	users := []*User{}
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, common.NewStoreError("users.find_all", err)
		}
		users = append(users, &u)
	}

	if err := rows.Err(); err != nil {
		return nil, common.NewStoreError("users.find_all", err)
	}

	return users, nil
}

func (m *DBModel) FindByID(ctx context.Context, id string) (*User, error) {
	query := `
		SELECT id, name, email, created_at, updated_at
		FROM users
		WHERE id = $1`

	return m.findOne(ctx, "users.find_by_id", query, id)
}

func (m *DBModel) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, name, email, created_at, updated_at
		FROM users
		WHERE email = $1`

	return m.findOne(ctx, "users.find_by_email", query, email)
}

func (m *DBModel) findOne(ctx context.Context, op, query string, arg any) (*User, error) {
	var u User

	err := m.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, common.ErrNotFound
		default:
			return nil, common.NewStoreError(op, err)
		}
	}

	return &u, nil
}

func (m *DBModel) Insert(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (id, name, email, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := m.db.ExecContext(ctx, query, u.ID, u.Name, u.Email, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		switch {
		case common.UniqueViolation(err, emailConstraint):
			return common.ErrConflict
		default:
			return common.NewStoreError("users.insert", err)
		}
	}

	return nil
}

// Update changes only the supplied fields and always refreshes updated_at, never
// letting it fall behind created_at. The current row is read back afterwards.
func (m *DBModel) Update(ctx context.Context, id string, name, email *string) (*User, error) {
	query := `
		UPDATE users
		SET name = COALESCE($1, name), email = COALESCE($2, email), updated_at = GREATEST(created_at, $3)
		WHERE id = $4`

	args := []any{
		nullString(name),
		nullString(email),
		time.Now().UTC().Truncate(time.Microsecond),
		id,
	}

	res, err := m.db.ExecContext(ctx, query, args...)
	if err != nil {
		switch {
		case common.UniqueViolation(err, emailConstraint):
			return nil, common.ErrConflict
		default:
			return nil, common.NewStoreError("users.update", err)
		}
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return nil, common.NewStoreError("users.update", err)
	}
	if rows == 0 {
		return nil, common.ErrNotFound
	}

	return m.FindByID(ctx, id)
}

func (m *DBModel) Delete(ctx context.Context, id string) error {
	query := `
		DELETE FROM users
		WHERE id = $1`

	res, err := m.db.ExecContext(ctx, query, id)
	if err != nil {
		return common.NewStoreError("users.delete", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return common.NewStoreError("users.delete", err)
	}
	if rows == 0 {
		return common.ErrNotFound
	}

	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
