package pg

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/foodbridge-dev/foodbridge/internal/domain"
	"github.com/foodbridge-dev/foodbridge/internal/live"
)

// =========================================================================
// Public Methods (satisfy the service storage interfaces)
// =========================================================================

// SaveMessage persists a chat message with the current timestamp.
func (s *Storage) SaveMessage(msg domain.Message) (domain.MsgId, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var id domain.MsgId
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		id, err = s.saveMessage(tx, msg)
		return err
	})
	if err == nil {
		s.notify(live.TableMessages)
	}
	return id, err
}

// Conversation returns all messages exchanged between the two users, in
// either direction, ordered by send time ascending.
func (s *Storage) Conversation(userId, otherId domain.UserId) ([]domain.Message, error) {
	return s.conversation(s.db, userId, otherId)
}

// DeleteConversation bulk-deletes the whole conversation between two users.
func (s *Storage) DeleteConversation(userId, otherId domain.UserId) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			DELETE FROM messages
			WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)`,
			userId, otherId,
		)
		if err != nil {
			return fmt.Errorf("failed to delete conversation: %w", err)
		}
		return nil
	})
	if err == nil {
		s.notify(live.TableMessages)
	}
	return err
}

// =========================================================================
// Internal Methods (Core Database Logic)
// =========================================================================

func (s *Storage) saveMessage(q Querier, msg domain.Message) (domain.MsgId, error) {
	var id domain.MsgId
	err := q.QueryRow(`
		INSERT INTO messages(sender_id, receiver_id, content)
		VALUES($1, $2, $3) RETURNING id`,
		msg.SenderId, msg.ReceiverId, msg.Content,
	).Scan(&id)
	if err != nil {
		return -1, fmt.Errorf("failed to insert message: %w", err)
	}
	return id, nil
}

func (s *Storage) conversation(q Querier, userId, otherId domain.UserId) ([]domain.Message, error) {
	rows, err := q.Query(`
		SELECT id, sender_id, receiver_id, content, (sent_at AT TIME ZONE 'utc')
		FROM messages
		WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY sent_at ASC, id ASC`,
		userId, otherId,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversation: %w", err)
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(&msg.Id, &msg.SenderId, &msg.ReceiverId, &msg.Content, &msg.SentAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}
	return messages, nil
}
