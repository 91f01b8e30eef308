package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/foodbridge-dev/foodbridge/internal/domain"
	internal_errors "github.com/foodbridge-dev/foodbridge/internal/errors"
	"github.com/foodbridge-dev/foodbridge/internal/live"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockChatStorage struct {
	SaveMessageFunc        func(msg domain.Message) (domain.MsgId, error)
	ConversationFunc       func(userId, otherId domain.UserId) ([]domain.Message, error)
	DeleteConversationFunc func(userId, otherId domain.UserId) error
	IsUserBlockedFunc      func(id domain.UserId) (bool, error)
}

func (m *MockChatStorage) SaveMessage(msg domain.Message) (domain.MsgId, error) {
	if m.SaveMessageFunc != nil {
		return m.SaveMessageFunc(msg)
	}
	return 1, nil
}

func (m *MockChatStorage) Conversation(userId, otherId domain.UserId) ([]domain.Message, error) {
	if m.ConversationFunc != nil {
		return m.ConversationFunc(userId, otherId)
	}
	return nil, nil
}

func (m *MockChatStorage) DeleteConversation(userId, otherId domain.UserId) error {
	if m.DeleteConversationFunc != nil {
		return m.DeleteConversationFunc(userId, otherId)
	}
	return nil
}

func (m *MockChatStorage) IsUserBlocked(id domain.UserId) (bool, error) {
	if m.IsUserBlockedFunc != nil {
		return m.IsUserBlockedFunc(id)
	}
	return false, nil
}

type MockContentValidator struct {
	ContentFunc func(content string) (string, error)
}

func (m *MockContentValidator) Content(content string) (string, error) {
	if m.ContentFunc != nil {
		return m.ContentFunc(content)
	}
	return content, nil
}

// --- Tests ---

func TestSend(t *testing.T) {
	storage := &MockChatStorage{}
	validator := &MockContentValidator{}
	service := NewChat(storage, validator, live.NewBroker())

	t.Run("Successful send stores sanitized content", func(t *testing.T) {
		// Arrange
		validator.ContentFunc = func(content string) (string, error) { return "clean", nil }
		storage.SaveMessageFunc = func(msg domain.Message) (domain.MsgId, error) {
			assert.Equal(t, domain.UserId(1), msg.SenderId)
			assert.Equal(t, domain.UserId(2), msg.ReceiverId)
			assert.Equal(t, "clean", msg.Content)
			return 5, nil
		}
		defer func() {
			validator.ContentFunc = nil
			storage.SaveMessageFunc = nil
		}()

		// Act
		id, err := service.Send(1, 2, "<b>dirty</b>")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, domain.MsgId(5), id)
	})

	t.Run("Validator error", func(t *testing.T) {
		// Arrange
		validator.ContentFunc = func(content string) (string, error) { return "", internal_errors.EmptyContent() }
		defer func() { validator.ContentFunc = nil }()

		// Act
		_, err := service.Send(1, 2, "   ")

		// Assert
		require.Error(t, err)
		assert.True(t, internal_errors.HasCode(err, internal_errors.CodeEmptyContent))
	})

	t.Run("Blocked sender rejected", func(t *testing.T) {
		// Arrange
		storage.IsUserBlockedFunc = func(id domain.UserId) (bool, error) { return id == 1, nil }
		defer func() { storage.IsUserBlockedFunc = nil }()

		// Act
		_, err := service.Send(1, 2, "hello")

		// Assert
		require.Error(t, err)
		assert.True(t, internal_errors.HasCode(err, internal_errors.CodeBlocked))
	})

	t.Run("Blocked receiver rejected", func(t *testing.T) {
		// Arrange
		storage.IsUserBlockedFunc = func(id domain.UserId) (bool, error) { return id == 2, nil }
		defer func() { storage.IsUserBlockedFunc = nil }()

		// Act
		_, err := service.Send(1, 2, "hello")

		// Assert
		require.Error(t, err)
		assert.True(t, internal_errors.HasCode(err, internal_errors.CodeBlocked))
	})

	t.Run("storage.SaveMessage error", func(t *testing.T) {
		// Arrange
		mockError := errors.New("mock SaveMessage error")
		storage.SaveMessageFunc = func(msg domain.Message) (domain.MsgId, error) { return 0, mockError }
		defer func() { storage.SaveMessageFunc = nil }()

		// Act
		_, err := service.Send(1, 2, "hello")

		// Assert
		require.Error(t, err)
		assert.True(t, errors.Is(err, mockError))
	})
}

func TestDeleteConversation(t *testing.T) {
	storage := &MockChatStorage{}
	service := NewChat(storage, &MockContentValidator{}, live.NewBroker())

	deleted := false
	storage.DeleteConversationFunc = func(userId, otherId domain.UserId) error {
		deleted = true
		assert.Equal(t, domain.UserId(1), userId)
		assert.Equal(t, domain.UserId(2), otherId)
		return nil
	}

	require.NoError(t, service.DeleteConversation(1, 2))
	assert.True(t, deleted)
}

func TestWatchConversation(t *testing.T) {
	storage := &MockChatStorage{}
	broker := live.NewBroker()
	service := NewChat(storage, &MockContentValidator{}, broker)

	history := []domain.Message{{Id: 1, SenderId: 1, ReceiverId: 2, Content: "hi"}}
	storage.ConversationFunc = func(userId, otherId domain.UserId) ([]domain.Message, error) { return history, nil }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := service.WatchConversation(ctx, 1, 2)

	select {
	case messages := <-out:
		require.Len(t, messages, 1)
		assert.Equal(t, "hi", messages[0].Content)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for initial snapshot")
	}

	broker.Publish(live.TableMessages)
	select {
	case <-out:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for update")
	}
}
