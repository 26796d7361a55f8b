package repository

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/sonirghv/Gemini-backend/internal/domain"
	"github.com/sonirghv/Gemini-backend/internal/infrastructure/database"
	"go.uber.org/zap"
)

type MessageRepository struct {
	db     *database.Postgres
	logger *zap.Logger
}

func NewMessageRepository(db *database.Postgres, logger *zap.Logger) *MessageRepository {
	return &MessageRepository{
		db:     db,
		logger: logger,
	}
}

func (r *MessageRepository) Create(ctx context.Context, message *domain.Message) error {
	return r.db.Exec(ctx, `
		INSERT INTO messages (id, content, role, chat_id, user_id, image_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, message.ID.String(), message.Content, message.Role, message.ChatID.String(),
		message.UserID.String(), message.ImageURL, message.CreatedAt)
}

func (r *MessageRepository) ListByChat(ctx context.Context, chatID ulid.ULID) ([]*domain.Message, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, content, role, chat_id, user_id, image_url, created_at
		FROM messages
		WHERE chat_id = $1
		ORDER BY created_at ASC
	`, chatID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMessages(rows)
}

// ListRecent returns the most recent messages for a chat, newest first.
func (r *MessageRepository) ListRecent(ctx context.Context, chatID ulid.ULID, limit int) ([]*domain.Message, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, content, role, chat_id, user_id, image_url, created_at
		FROM messages
		WHERE chat_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, chatID.String(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMessages(rows)
}

func (r *MessageRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM messages`).Scan(&count)
	return count, err
}

func (r *MessageRepository) CountByChat(ctx context.Context, chatID ulid.ULID) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM messages WHERE chat_id = $1`, chatID.String()).Scan(&count)
	return count, err
}

func (r *MessageRepository) CountByUser(ctx context.Context, userID ulid.ULID) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM messages WHERE user_id = $1`, userID.String()).Scan(&count)
	return count, err
}

type messageRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func collectMessages(rows messageRows) ([]*domain.Message, error) {
	var messages []*domain.Message
	for rows.Next() {
		msg := &domain.Message{}
		var id, chatID, userID string
		err := rows.Scan(&id, &msg.Content, &msg.Role, &chatID, &userID, &msg.ImageURL, &msg.CreatedAt)
		if err != nil {
			return nil, err
		}
		if msg.ID, err = domain.ParseULID(id); err != nil {
			return nil, err
		}
		if msg.ChatID, err = domain.ParseULID(chatID); err != nil {
			return nil, err
		}
		if msg.UserID, err = domain.ParseULID(userID); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}
