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

type ChatRepository struct {
	db     *database.Postgres
	logger *zap.Logger
}

func NewChatRepository(db *database.Postgres, logger *zap.Logger) *ChatRepository {
	return &ChatRepository{
		db:     db,
		logger: logger,
	}
}

func (r *ChatRepository) Create(ctx context.Context, chat *domain.Chat) error {
	return r.db.Exec(ctx, `
		INSERT INTO chats (id, title, user_id, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, chat.ID.String(), chat.Title, chat.UserID.String(), chat.IsActive, chat.CreatedAt, chat.UpdatedAt)
}

func (r *ChatRepository) FindByID(ctx context.Context, id, userID ulid.ULID) (*domain.Chat, error) {
	chat, err := scanChat(r.db.QueryRow(ctx, `
		SELECT id, title, user_id, is_active, created_at, updated_at
		FROM chats
		WHERE id = $1 AND user_id = $2
	`, id.String(), userID.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrChatNotFound
		}
		r.logger.Error("failed to scan chat", zap.Error(err))
		return nil, domain.ErrInternal
	}
	return chat, nil
}

func (r *ChatRepository) ListByUser(ctx context.Context, userID ulid.ULID) ([]*domain.Chat, error) {
	rows, err := r.db.Query(ctx, `
		SELECT c.id, c.title, c.user_id, c.is_active, c.created_at, c.updated_at,
		       (SELECT COUNT(*) FROM messages m WHERE m.chat_id = c.id) AS message_count
		FROM chats c
		WHERE c.user_id = $1 AND c.is_active = TRUE
		ORDER BY c.updated_at DESC
	`, userID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chats []*domain.Chat
	for rows.Next() {
		chat := &domain.Chat{}
		var id, uid string
		if err := rows.Scan(&id, &chat.Title, &uid, &chat.IsActive,
			&chat.CreatedAt, &chat.UpdatedAt, &chat.MessageCount); err != nil {
			return nil, err
		}
		if chat.ID, err = domain.ParseULID(id); err != nil {
			return nil, err
		}
		if chat.UserID, err = domain.ParseULID(uid); err != nil {
			return nil, err
		}
		chats = append(chats, chat)
	}
	return chats, rows.Err()
}

func (r *ChatRepository) Update(ctx context.Context, chat *domain.Chat) error {
	return r.db.Exec(ctx, `
		UPDATE chats SET title = $1, is_active = $2, updated_at = $3 WHERE id = $4
	`, chat.Title, chat.IsActive, time.Now(), chat.ID.String())
}

func (r *ChatRepository) Touch(ctx context.Context, id ulid.ULID, at time.Time) error {
	return r.db.Exec(ctx, `UPDATE chats SET updated_at = $1 WHERE id = $2`, at, id.String())
}

func (r *ChatRepository) Deactivate(ctx context.Context, id, userID ulid.ULID) error {
	return r.db.Exec(ctx, `
		UPDATE chats SET is_active = FALSE, updated_at = $1 WHERE id = $2 AND user_id = $3
	`, time.Now(), id.String(), userID.String())
}

func (r *ChatRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM chats`).Scan(&count)
	return count, err
}

func (r *ChatRepository) CountByUser(ctx context.Context, userID ulid.ULID) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM chats WHERE user_id = $1`, userID.String()).Scan(&count)
	return count, err
}

func scanChat(row rowScanner) (*domain.Chat, error) {
	chat := &domain.Chat{}
	var id, userID string
	err := row.Scan(&id, &chat.Title, &userID, &chat.IsActive, &chat.CreatedAt, &chat.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if chat.ID, err = domain.ParseULID(id); err != nil {
		return nil, err
	}
	if chat.UserID, err = domain.ParseULID(userID); err != nil {
		return nil, err
	}
	return chat, nil
}
