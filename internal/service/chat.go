package service

import (
	"context"

	"github.com/foodbridge-dev/foodbridge/internal/domain"
	"github.com/foodbridge-dev/foodbridge/internal/errors"
	"github.com/foodbridge-dev/foodbridge/internal/live"
	"github.com/foodbridge-dev/foodbridge/internal/logger"
)

type ChatService interface {
	Send(senderId, receiverId domain.UserId, content string) (domain.MsgId, error)
	Conversation(userId, otherId domain.UserId) ([]domain.Message, error)
	DeleteConversation(userId, otherId domain.UserId) error
	WatchConversation(ctx context.Context, userId, otherId domain.UserId) <-chan []domain.Message
}

type Chat struct {
	storage   ChatStorage
	validator ContentValidator
	broker    *live.Broker
}

type ChatStorage interface {
	SaveMessage(msg domain.Message) (domain.MsgId, error)
	Conversation(userId, otherId domain.UserId) ([]domain.Message, error)
	DeleteConversation(userId, otherId domain.UserId) error
	IsUserBlocked(id domain.UserId) (bool, error)
}

type ContentValidator interface {
	Content(content string) (string, error)
}

func NewChat(storage ChatStorage, validator ContentValidator, broker *live.Broker) *Chat {
	return &Chat{storage, validator, broker}
}

// Send persists a message after validating content and checking that neither
// participant is blocked. The blocked check lives here, not in clients.
func (c *Chat) Send(senderId, receiverId domain.UserId, content string) (domain.MsgId, error) {
	sanitized, err := c.validator.Content(content)
	if err != nil {
		return 0, err
	}
	for _, id := range []domain.UserId{senderId, receiverId} {
		blocked, err := c.storage.IsUserBlocked(id)
		if err != nil {
			return 0, err
		}
		if blocked {
			return 0, errors.Blocked()
		}
	}

	id, err := c.storage.SaveMessage(domain.Message{
		SenderId:   senderId,
		ReceiverId: receiverId,
		Content:    sanitized,
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Conversation returns the full bidirectional history, oldest first.
func (c *Chat) Conversation(userId, otherId domain.UserId) ([]domain.Message, error) {
	return c.storage.Conversation(userId, otherId)
}

// DeleteConversation wipes the whole history between two users. Irreversible.
func (c *Chat) DeleteConversation(userId, otherId domain.UserId) error {
	if err := c.storage.DeleteConversation(userId, otherId); err != nil {
		return err
	}
	logger.Log.Info("conversation deleted", "user_id", userId, "other_id", otherId)
	return nil
}

// WatchConversation streams a fresh conversation whenever the messages table
// changes. The channel closes when ctx is cancelled.
func (c *Chat) WatchConversation(ctx context.Context, userId, otherId domain.UserId) <-chan []domain.Message {
	out := make(chan []domain.Message, 1)
	ticks := c.broker.Subscribe(ctx, live.TableMessages)

	go func() {
		defer close(out)
		emit := func() {
			messages, err := c.storage.Conversation(userId, otherId)
			if err != nil {
				logger.Log.Error("conversation live query failed", "error", err)
				return
			}
			select {
			case out <- messages:
			case <-ctx.Done():
			}
		}
		emit()
		for {
			select {
			case _, ok := <-ticks:
				if !ok {
					return
				}
				emit()
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}
