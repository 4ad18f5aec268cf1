package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/consogab/backend/internal/domain"
)

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

// Create inserts the message and bumps the parent conversation's
// last_activity in the same transaction.
func (r *MessageRepo) Create(ctx context.Context, msg *domain.Message) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO messages (id, conversation_id, sender_id, content, type, attachment_url, latitude, longitude, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		msg.ID, msg.ConversationID, msg.SenderID, msg.Content, msg.Type,
		msg.AttachmentURL, msg.Latitude, msg.Longitude, msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting message: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE conversations SET last_activity = $1 WHERE id = $2 AND last_activity < $1`,
		msg.CreatedAt, msg.ConversationID,
	)
	if err != nil {
		return fmt.Errorf("bumping conversation activity: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *MessageRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	query := `
		SELECT m.id, m.conversation_id, m.sender_id, m.content, m.type,
			m.attachment_url, m.latitude, m.longitude,
			m.edited_at, m.deleted_at, m.created_at, u.display_name, u.avatar_url
		FROM messages m
		JOIN users u ON m.sender_id = u.id
		WHERE m.id = $1`
	var msg domain.Message
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&msg.ID, &msg.ConversationID, &msg.SenderID, &msg.Content, &msg.Type,
		&msg.AttachmentURL, &msg.Latitude, &msg.Longitude,
		&msg.EditedAt, &msg.DeletedAt, &msg.CreatedAt,
		&msg.SenderDisplayName, &msg.SenderAvatarURL,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &msg, err
}

// ListPage returns one ascending window of the conversation history.
// Ordering is (created_at, id) so concurrent inserts with equal timestamps
// still page deterministically.
func (r *MessageRepo) ListPage(ctx context.Context, conversationID uuid.UUID, page, size int) ([]domain.Message, error) {
	query := `
		SELECT m.id, m.conversation_id, m.sender_id, m.content, m.type,
			m.attachment_url, m.latitude, m.longitude,
			m.edited_at, m.deleted_at, m.created_at, u.display_name, u.avatar_url
		FROM messages m
		JOIN users u ON m.sender_id = u.id
		WHERE m.conversation_id = $1
		ORDER BY m.created_at ASC, m.id ASC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, conversationID, size, page*size)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(
			&msg.ID, &msg.ConversationID, &msg.SenderID, &msg.Content, &msg.Type,
			&msg.AttachmentURL, &msg.Latitude, &msg.Longitude,
			&msg.EditedAt, &msg.DeletedAt, &msg.CreatedAt,
			&msg.SenderDisplayName, &msg.SenderAvatarURL,
		); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

func (r *MessageRepo) Update(ctx context.Context, msg *domain.Message) error {
	query := `UPDATE messages SET content = $1, edited_at = now() WHERE id = $2`
	_, err := r.pool.Exec(ctx, query, msg.Content, msg.ID)
	return err
}

// SoftDelete replaces the message with a tombstone: content cleared, type
// switched to system. The row itself stays for ordering and audit.
func (r *MessageRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE messages
		SET deleted_at = now(), content = NULL, type = 'system', attachment_url = NULL
		WHERE id = $1`, id)
	return err
}
