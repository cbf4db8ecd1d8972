package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/parleychat/parley/internal/identity/domain"
	"github.com/parleychat/parley/internal/identity/store"
)

type usersRepo struct {
	db dbtx
}

const userColumns = `id, email, full_name, role, phone, address, password_hash,
	is_blocked, blocked_until, is_email_confirmed, confirmation_code,
	confirmation_expires_at, created_at, updated_at`

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (
			id, email, full_name, role, phone, address, password_hash,
			is_blocked, blocked_until, is_email_confirmed,
			confirmation_code, confirmation_expires_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID,
		u.Email,
		u.FullName,
		u.Role,
		mapStringNull(u.Phone),
		mapStringNull(u.Address),
		u.PasswordHash,
		u.IsBlocked,
		mapOptionalTime(u.BlockedUntil),
		u.IsEmailConfirmed,
		mapOptionalString(u.ConfirmationCode),
		mapOptionalTime(u.ConfirmationExpiresAt),
		u.CreatedAt,
		u.UpdatedAt,
	)
	return mapConflict(err)
}

func (r *usersRepo) UpdateUser(ctx context.Context, id string, upd store.UserUpdate) error {
	if upd.IsEmpty() {
		return nil
	}

	sets := make([]string, 0, 7)
	args := make([]any, 0, 8)

	if upd.FullName != nil {
		sets = append(sets, "full_name = ?")
		args = append(args, *upd.FullName)
	}
	if upd.Role != nil {
		sets = append(sets, "role = ?")
		args = append(args, *upd.Role)
	}
	if upd.Phone != nil {
		sets = append(sets, "phone = ?")
		args = append(args, mapStringNull(*upd.Phone))
	}
	if upd.Address != nil {
		sets = append(sets, "address = ?")
		args = append(args, mapStringNull(*upd.Address))
	}
	if upd.IsBlocked != nil {
		sets = append(sets, "is_blocked = ?", "blocked_until = ?")
		args = append(args, *upd.IsBlocked, mapOptionalTime(upd.BlockedUntil))
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC(), id)

	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return mapConflict(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ConfirmEmail flips the confirmed flag and clears the code and its
// expiry in a single statement, so a confirmed-but-code-present state
// can never be observed.
func (r *usersRepo) ConfirmEmail(ctx context.Context, email string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET is_email_confirmed = 1,
		    confirmation_code = NULL,
		    confirmation_expires_at = NULL,
		    updated_at = ?
		WHERE email = ? AND is_email_confirmed = 0`,
		time.Now().UTC(), email)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListUsers never selects password_hash; the redaction is enforced here
// at the storage boundary, not left to callers.
func (r *usersRepo) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, email, full_name, role, phone, address,
		       is_blocked, blocked_until, is_email_confirmed,
		       created_at, updated_at
		FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var (
			u            domain.User
			phone        sql.NullString
			address      sql.NullString
			blockedUntil sql.NullTime
		)
		if err := rows.Scan(
			&u.ID, &u.Email, &u.FullName, &u.Role, &phone, &address,
			&u.IsBlocked, &blockedUntil, &u.IsEmailConfirmed,
			&u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, err
		}
		u.Phone = mapNullString(phone)
		u.Address = mapNullString(address)
		u.BlockedUntil = mapNullTimePtr(blockedUntil)
		users = append(users, u)
	}
	return users, rows.Err()
}

func scanUser(row *sql.Row) (domain.User, error) {
	var (
		u             domain.User
		phone         sql.NullString
		address       sql.NullString
		blockedUntil  sql.NullTime
		code          sql.NullString
		codeExpiresAt sql.NullTime
	)
	err := row.Scan(
		&u.ID, &u.Email, &u.FullName, &u.Role, &phone, &address,
		&u.PasswordHash, &u.IsBlocked, &blockedUntil, &u.IsEmailConfirmed,
		&code, &codeExpiresAt, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.Phone = mapNullString(phone)
	u.Address = mapNullString(address)
	u.BlockedUntil = mapNullTimePtr(blockedUntil)
	u.ConfirmationCode = mapNullStringPtr(code)
	u.ConfirmationExpiresAt = mapNullTimePtr(codeExpiresAt)
	return u, nil
}

func mapNullString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func mapStringNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func mapNullStringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	val := ns.String
	return &val
}

func mapOptionalString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func mapNullTimePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	val := nt.Time
	return &val
}

func mapOptionalTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
