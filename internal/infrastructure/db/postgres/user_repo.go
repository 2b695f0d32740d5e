package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/baechuer/go-api-starter/internal/domain"
)

const userColumns = `id, email, username, password_hash, full_name, bio, avatar_file_id, role, active, email_verified, created_at, updated_at`

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// ---------- helpers ----------

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(s rowScanner) (userRow, error) {
	var ur userRow
	err := s.Scan(
		&ur.ID,
		&ur.Email,
		&ur.Username,
		&ur.PasswordHash,
		&ur.FullName,
		&ur.Bio,
		&ur.AvatarFileID,
		&ur.Role,
		&ur.Active,
		&ur.EmailVerified,
		&ur.CreatedAt,
		&ur.UpdatedAt,
	)
	return ur, err
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// conflictErr maps a unique violation on the users table to the right
// domain conflict, or returns nil when err is something else.
func conflictErr(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return nil
	}
	if strings.Contains(pgErr.ConstraintName, "username") {
		return domain.ErrUsernameAlreadyExists()
	}
	return domain.ErrEmailAlreadyExists()
}

// ---------- lookups ----------

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}

	const q = `
SELECT ` + userColumns + `
FROM users
WHERE email = $1
LIMIT 1;
`
	ur, err := scanUser(r.db.QueryRowContext(ctx, q, email))
	if err != nil {
		if isNoRows(err) {
			return domain.User{}, domain.ErrUserNotFound()
		}
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	return toDomainUser(ur), nil
}

// GetByIdentifier resolves a login identifier that may be a username or
// an email. Emails are stored lowercased, usernames match as typed.
func (r *UserRepo) GetByIdentifier(ctx context.Context, identifier string) (domain.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return domain.User{}, domain.ErrMissingField("identifier")
	}

	const q = `
SELECT ` + userColumns + `
FROM users
WHERE email = LOWER($1) OR username = $1
LIMIT 1;
`
	ur, err := scanUser(r.db.QueryRowContext(ctx, q, identifier))
	if err != nil {
		if isNoRows(err) {
			return domain.User{}, domain.ErrUserNotFound()
		}
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	return toDomainUser(ur), nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.User{}, domain.ErrMissingField("id")
	}

	const q = `
SELECT ` + userColumns + `
FROM users
WHERE id = $1
LIMIT 1;
`
	ur, err := scanUser(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if isNoRows(err) {
			return domain.User{}, domain.ErrUserNotFound()
		}
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	return toDomainUser(ur), nil
}

func (r *UserRepo) List(ctx context.Context, offset, limit int) ([]domain.User, int, error) {
	const qCount = `SELECT COUNT(1) FROM users;`

	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, 0, domain.ErrDBUnavailable(err)
	}

	const q = `
SELECT ` + userColumns + `
FROM users
ORDER BY created_at, id
LIMIT $1 OFFSET $2;
`
	rows, err := r.db.QueryContext(ctx, q, limit, offset)
	if err != nil {
		return nil, 0, domain.ErrDBUnavailable(err)
	}
	defer rows.Close()

	out := make([]domain.User, 0, limit)
	for rows.Next() {
		ur, err := scanUser(rows)
		if err != nil {
			return nil, 0, domain.ErrDBUnavailable(err)
		}
		out = append(out, toDomainUser(ur))
	}
	if err := rows.Err(); err != nil {
		return nil, 0, domain.ErrDBUnavailable(err)
	}
	return out, total, nil
}

// ---------- writes ----------

func (r *UserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	u.Email = normalizeEmail(u.Email)
	if u.ID == "" {
		return domain.User{}, domain.ErrMissingField("id")
	}
	if u.Email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}
	if u.Username == "" {
		return domain.User{}, domain.ErrMissingField("username")
	}
	if u.PasswordHash == "" {
		return domain.User{}, domain.ErrMissingField("password_hash")
	}
	if u.Role == "" {
		u.Role = domain.RoleUser
	}

	const q = `
INSERT INTO users (id, email, username, password_hash, full_name, bio, avatar_file_id, role, active, email_verified)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
RETURNING ` + userColumns + `;
`
	ur, err := scanUser(r.db.QueryRowContext(ctx, q,
		u.ID, u.Email, u.Username, u.PasswordHash, u.FullName, u.Bio, u.AvatarFileID, u.Role, u.Active, u.EmailVerified,
	))
	if err != nil {
		if conflict := conflictErr(err); conflict != nil {
			return domain.User{}, conflict
		}
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	return toDomainUser(ur), nil
}

// Update persists the mutable profile fields. Role changes go through
// SetRole; created_at never moves.
func (r *UserRepo) Update(ctx context.Context, u domain.User) (domain.User, error) {
	u.Email = normalizeEmail(u.Email)
	if u.ID == "" {
		return domain.User{}, domain.ErrMissingField("id")
	}

	const q = `
UPDATE users
SET email = $2,
    username = $3,
    password_hash = $4,
    full_name = $5,
    bio = $6,
    avatar_file_id = $7,
    active = $8,
    email_verified = $9,
    updated_at = NOW()
WHERE id = $1
RETURNING ` + userColumns + `;
`
	ur, err := scanUser(r.db.QueryRowContext(ctx, q,
		u.ID, u.Email, u.Username, u.PasswordHash, u.FullName, u.Bio, u.AvatarFileID, u.Active, u.EmailVerified,
	))
	if err != nil {
		if isNoRows(err) {
			return domain.User{}, domain.ErrUserNotFound()
		}
		if conflict := conflictErr(err); conflict != nil {
			return domain.User{}, conflict
		}
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	return toDomainUser(ur), nil
}

func (r *UserRepo) UpdatePasswordHash(ctx context.Context, userID string, newHash string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.ErrMissingField("user_id")
	}
	if newHash == "" {
		return domain.ErrMissingField("password_hash")
	}

	const q = `
UPDATE users
SET password_hash = $2,
    updated_at = NOW()
WHERE id = $1;
`
	res, err := r.db.ExecContext(ctx, q, userID, newHash)
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.ErrUserNotFound()
	}
	return nil
}

func (r *UserRepo) SetEmailVerified(ctx context.Context, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.ErrMissingField("user_id")
	}

	const q = `
UPDATE users
SET email_verified = TRUE,
    updated_at = NOW()
WHERE id = $1;
`
	res, err := r.db.ExecContext(ctx, q, userID)
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.ErrUserNotFound()
	}
	return nil
}

func (r *UserRepo) SetRole(ctx context.Context, userID string, role string) error {
	userID = strings.TrimSpace(userID)
	role = strings.TrimSpace(role)

	if userID == "" {
		return domain.ErrMissingField("user_id")
	}
	if !domain.IsValidRole(role) {
		return domain.ErrInvalidRole(role)
	}

	const q = `
UPDATE users
SET role = $2,
    updated_at = NOW()
WHERE id = $1;
`
	res, err := r.db.ExecContext(ctx, q, userID, role)
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.ErrUserNotFound()
	}
	return nil
}

func (r *UserRepo) Delete(ctx context.Context, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.ErrMissingField("user_id")
	}

	const q = `DELETE FROM users WHERE id = $1;`

	res, err := r.db.ExecContext(ctx, q, userID)
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.ErrUserNotFound()
	}
	return nil
}

func (r *UserRepo) CountByRole(ctx context.Context, role string) (int, error) {
	role = strings.TrimSpace(role)
	if role == "" {
		return 0, domain.ErrMissingField("role")
	}
	if !domain.IsValidRole(role) {
		return 0, domain.ErrInvalidRole(role)
	}

	const q = `SELECT COUNT(1) FROM users WHERE role = $1;`

	var n int
	if err := r.db.QueryRowContext(ctx, q, role).Scan(&n); err != nil {
		return 0, domain.ErrDBUnavailable(err)
	}
	return n, nil
}
