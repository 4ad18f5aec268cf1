package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/consogab/backend/internal/domain"
)

type ConversationRepo struct {
	pool *pgxpool.Pool
}

func NewConversationRepo(pool *pgxpool.Pool) *ConversationRepo {
	return &ConversationRepo{pool: pool}
}

// GetOrCreateBusiness finds or creates the single conversation for a
// (business, customer) pair. The insert is keyed on the partial unique index
// over (business_id, customer_id) so two concurrent callers converge on one
// row; the no-op DO UPDATE makes RETURNING yield the winning id either way.
// Participant inserts are idempotent, so redundant calls are safe.
func (r *ConversationRepo) GetOrCreateBusiness(ctx context.Context, businessID, customerID, ownerID uuid.UUID) (uuid.UUID, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	var id uuid.UUID
	err = tx.QueryRow(ctx, `
		INSERT INTO conversations (id, type, business_id, customer_id, created_at, last_activity)
		VALUES ($1, 'business', $2, $3, $4, $4)
		ON CONFLICT (business_id, customer_id) WHERE type = 'business'
		DO UPDATE SET business_id = EXCLUDED.business_id
		RETURNING id`,
		uuid.New(), businessID, customerID, now,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("upserting business conversation: %w", err)
	}

	if err := insertParticipant(ctx, tx, id, customerID, domain.RoleMember, now); err != nil {
		return uuid.Nil, err
	}
	if err := insertParticipant(ctx, tx, id, ownerID, domain.RoleOwner, now); err != nil {
		return uuid.Nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// GetOrCreateDirect expects the canonical pair (user1 < user2) and is keyed
// on the partial unique index over (user1_id, user2_id).
func (r *ConversationRepo) GetOrCreateDirect(ctx context.Context, user1ID, user2ID uuid.UUID) (uuid.UUID, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	var id uuid.UUID
	err = tx.QueryRow(ctx, `
		INSERT INTO conversations (id, type, user1_id, user2_id, created_at, last_activity)
		VALUES ($1, 'direct', $2, $3, $4, $4)
		ON CONFLICT (user1_id, user2_id) WHERE type = 'direct'
		DO UPDATE SET user1_id = EXCLUDED.user1_id
		RETURNING id`,
		uuid.New(), user1ID, user2ID, now,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("upserting direct conversation: %w", err)
	}

	if err := insertParticipant(ctx, tx, id, user1ID, domain.RoleMember, now); err != nil {
		return uuid.Nil, err
	}
	if err := insertParticipant(ctx, tx, id, user2ID, domain.RoleMember, now); err != nil {
		return uuid.Nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func insertParticipant(ctx context.Context, tx pgx.Tx, conversationID, userID uuid.UUID, role string, now time.Time) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO conversation_participants (conversation_id, user_id, role, joined_at, last_read_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (conversation_id, user_id) DO NOTHING`,
		conversationID, userID, role, now,
	)
	if err != nil {
		return fmt.Errorf("inserting participant: %w", err)
	}
	return nil
}

const conversationSelect = `
	SELECT c.id, c.type, c.business_id, c.customer_id, c.user1_id, c.user2_id,
		c.created_at, c.last_activity,
		p.last_read_at,
		b.name, b.logo_url,
		ou.id, ou.display_name, ou.avatar_url,
		lm.id, lm.content, lm.type, lm.sender_id, lm.created_at,
		(SELECT count(*) FROM messages m
			WHERE m.conversation_id = c.id
				AND m.created_at > p.last_read_at
				AND m.sender_id <> p.user_id
				AND m.deleted_at IS NULL) AS unread_count
	FROM conversations c
	JOIN conversation_participants p
		ON p.conversation_id = c.id AND p.user_id = $1 AND p.left_at IS NULL
	LEFT JOIN businesses b ON b.id = c.business_id
	LEFT JOIN users ou ON ou.id = CASE
		WHEN c.type = 'direct' AND c.user1_id = $1 THEN c.user2_id
		WHEN c.type = 'direct' THEN c.user1_id
		WHEN c.type = 'business' AND c.customer_id <> $1 THEN c.customer_id
	END
	LEFT JOIN LATERAL (
		SELECT m.id, m.content, m.type, m.sender_id, m.created_at
		FROM messages m
		WHERE m.conversation_id = c.id AND m.deleted_at IS NULL
		ORDER BY m.created_at DESC, m.id DESC
		LIMIT 1
	) lm ON true`

// ListForUser returns every conversation the user still participates in,
// enriched with last message, counterparty and unread count in one query.
func (r *ConversationRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.Conversation, error) {
	rows, err := r.pool.Query(ctx, conversationSelect+`
		ORDER BY c.last_activity DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convs []domain.Conversation
	for rows.Next() {
		conv, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		convs = append(convs, *conv)
	}
	return convs, rows.Err()
}

func (r *ConversationRepo) GetByID(ctx context.Context, id, viewerID uuid.UUID) (*domain.Conversation, error) {
	rows, err := r.pool.Query(ctx, conversationSelect+`
		WHERE c.id = $2`, viewerID, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanConversation(rows)
}

func scanConversation(rows pgx.Rows) (*domain.Conversation, error) {
	var (
		conv      domain.Conversation
		lmID      *uuid.UUID
		lmContent *string
		lmType    *string
		lmSender  *uuid.UUID
		lmCreated *time.Time
		bName     *string
		ouName    *string
	)
	if err := rows.Scan(
		&conv.ID, &conv.Type, &conv.BusinessID, &conv.CustomerID,
		&conv.User1ID, &conv.User2ID, &conv.CreatedAt, &conv.LastActivity,
		&conv.LastReadAt,
		&bName, &conv.BusinessLogoURL,
		&conv.OtherUserID, &ouName, &conv.OtherAvatarURL,
		&lmID, &lmContent, &lmType, &lmSender, &lmCreated,
		&conv.UnreadCount,
	); err != nil {
		return nil, err
	}
	if bName != nil {
		conv.BusinessName = *bName
	}
	if ouName != nil {
		conv.OtherDisplayName = *ouName
	}
	if lmID != nil {
		conv.LastMessage = &domain.MessageSummary{
			ID:        *lmID,
			Content:   lmContent,
			Type:      *lmType,
			SenderID:  *lmSender,
			CreatedAt: *lmCreated,
		}
	}
	return &conv, nil
}

func (r *ConversationRepo) GetParticipant(ctx context.Context, conversationID, userID uuid.UUID) (*domain.Participant, error) {
	query := `
		SELECT conversation_id, user_id, role, joined_at, last_read_at, left_at
		FROM conversation_participants
		WHERE conversation_id = $1 AND user_id = $2 AND left_at IS NULL`
	var p domain.Participant
	err := r.pool.QueryRow(ctx, query, conversationID, userID).Scan(
		&p.ConversationID, &p.UserID, &p.Role, &p.JoinedAt, &p.LastReadAt, &p.LeftAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &p, err
}

func (r *ConversationRepo) ListParticipants(ctx context.Context, conversationID uuid.UUID) ([]domain.Participant, error) {
	query := `
		SELECT p.conversation_id, p.user_id, p.role, p.joined_at, p.last_read_at, p.left_at,
			u.display_name, u.avatar_url
		FROM conversation_participants p
		JOIN users u ON u.id = p.user_id
		WHERE p.conversation_id = $1 AND p.left_at IS NULL
		ORDER BY p.joined_at`
	rows, err := r.pool.Query(ctx, query, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var participants []domain.Participant
	for rows.Next() {
		var p domain.Participant
		if err := rows.Scan(
			&p.ConversationID, &p.UserID, &p.Role, &p.JoinedAt, &p.LastReadAt, &p.LeftAt,
			&p.DisplayName, &p.AvatarURL,
		); err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

func (r *ConversationRepo) MarkRead(ctx context.Context, conversationID, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE conversation_participants
		SET last_read_at = $1
		WHERE conversation_id = $2 AND user_id = $3`,
		time.Now(), conversationID, userID,
	)
	return err
}

// Leave archives the conversation for one participant. Rows are never hard
// deleted.
func (r *ConversationRepo) Leave(ctx context.Context, conversationID, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE conversation_participants
		SET left_at = $1
		WHERE conversation_id = $2 AND user_id = $3 AND left_at IS NULL`,
		time.Now(), conversationID, userID,
	)
	return err
}
