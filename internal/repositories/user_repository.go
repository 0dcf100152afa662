package repositories

import (
	"context"
	"fmt"
	"strings"

	"urbancabz/internal/db"
	"urbancabz/internal/domain/models"
)

const userColumns = `id, email, password_hash, name, phone, role, created_at`

type UserRepository struct {
	DB db.DBTX
}

func (r UserRepository) Create(ctx context.Context, u *models.User) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO users (email, password_hash, name, phone, role)
		VALUES (?, ?, ?, ?, ?)`,
		u.Email, u.PasswordHash, u.Name, u.Phone, u.Role,
	)
	if err != nil {
		return 0, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("user insert id: %w", err)
	}
	u.ID = id
	return id, nil
}

func (r UserRepository) GetByID(ctx context.Context, id int64) (models.User, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r UserRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users WHERE email = ? LIMIT 1`, email)
	return scanUser(row)
}

// GetByPhone matches the raw input, the normalized E.164 form, or the bare
// digits with a plus, since stored phones are not canonicalized.
func (r UserRepository) GetByPhone(ctx context.Context, raw, normalized, plusDigits string) (models.User, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE phone IN (?, ?, ?)
		LIMIT 1`, raw, normalized, plusDigits)
	return scanUser(row)
}

// ListByIDs loads users for a set of ids, keyed by id.
func (r UserRepository) ListByIDs(ctx context.Context, ids []int64) (map[int64]models.User, error) {
	out := make(map[int64]models.User)
	if len(ids) == 0 {
		return out, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("list users by ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out[u.ID] = u
	}
	return out, rows.Err()
}

func (r UserRepository) CountByEmail(ctx context.Context, email string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE email = ?`, email).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count users by email: %w", err)
	}
	return n, nil
}

func (r UserRepository) UpdateProfile(ctx context.Context, id int64, name, phone, email string) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE users SET name = ?, phone = ?, email = ? WHERE id = ?`,
		name, phone, email, id)
	if err != nil {
		return fmt.Errorf("update user profile: %w", err)
	}
	return nil
}

func (r UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE users SET password_hash = ? WHERE id = ?`, passwordHash, id)
	if err != nil {
		return fmt.Errorf("update user password: %w", err)
	}
	return nil
}

func scanUser(row rowScanner) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Phone, &u.Role, &u.CreatedAt)
	return u, err
}
