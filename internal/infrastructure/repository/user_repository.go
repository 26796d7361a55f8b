package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/sonirghv/Gemini-backend/internal/domain"
	"github.com/sonirghv/Gemini-backend/internal/infrastructure/database"
	"go.uber.org/zap"
)

type UserRepository struct {
	db     *database.Postgres
	logger *zap.Logger
}

func NewUserRepository(db *database.Postgres, logger *zap.Logger) *UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

const userColumns = `id, email, username, hashed_password, full_name, is_active, is_admin, is_verified, created_at, updated_at, last_login`

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	return r.db.Exec(ctx, `
		INSERT INTO users (id, email, username, hashed_password, full_name, is_active, is_admin, is_verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, user.ID.String(), user.Email, user.Username, user.Password, user.FullName,
		user.IsActive, user.IsAdmin, user.IsVerified, user.CreatedAt, user.UpdatedAt)
}

func (r *UserRepository) FindByID(ctx context.Context, id ulid.ULID) (*domain.User, error) {
	return r.scanOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id.String())
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.scanOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	return exists, err
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists)
	return exists, err
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	return r.db.Exec(ctx, `
		UPDATE users
		SET email = $1, username = $2, full_name = $3, is_active = $4, is_admin = $5, is_verified = $6, updated_at = $7
		WHERE id = $8
	`, user.Email, user.Username, user.FullName, user.IsActive, user.IsAdmin, user.IsVerified, time.Now(), user.ID.String())
}

func (r *UserRepository) UpdatePassword(ctx context.Context, userID ulid.ULID, hashedPassword string) error {
	return r.db.Exec(ctx, `
		UPDATE users SET hashed_password = $1, updated_at = $2 WHERE id = $3
	`, hashedPassword, time.Now(), userID.String())
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, userID ulid.ULID, at time.Time) error {
	return r.db.Exec(ctx, `UPDATE users SET last_login = $1 WHERE id = $2`, at, userID.String())
}

func (r *UserRepository) MarkVerified(ctx context.Context, email string) error {
	return r.db.Exec(ctx, `
		UPDATE users SET is_verified = TRUE, updated_at = $1 WHERE email = $2
	`, time.Now(), email)
}

func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

func (r *UserRepository) CountActiveSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE last_login >= $1`, since).Scan(&count)
	return count, err
}

func (r *UserRepository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE created_at >= $1`, since).Scan(&count)
	return count, err
}

func (r *UserRepository) scanOne(ctx context.Context, sql string, args ...interface{}) (*domain.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		r.logger.Error("failed to scan user", zap.Error(err))
		return nil, domain.ErrInternal
	}
	return user, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	user := &domain.User{}
	var id string
	err := row.Scan(&id, &user.Email, &user.Username, &user.Password, &user.FullName,
		&user.IsActive, &user.IsAdmin, &user.IsVerified, &user.CreatedAt, &user.UpdatedAt, &user.LastLogin)
	if err != nil {
		return nil, err
	}
	parsed, err := domain.ParseULID(id)
	if err != nil {
		return nil, err
	}
	user.ID = parsed
	return user, nil
}
