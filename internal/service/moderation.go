package service

import (
	"context"

	"github.com/foodbridge-dev/foodbridge/internal/domain"
	"github.com/foodbridge-dev/foodbridge/internal/live"
	"github.com/foodbridge-dev/foodbridge/internal/logger"
)

type ModerationService interface {
	ApproveUser(id domain.UserId) error
	ToggleBlock(id domain.UserId) (bool, error)
	PendingUsers() ([]domain.User, error)
	AllUsers() ([]domain.User, error)
	WatchPendingUsers(ctx context.Context) <-chan []domain.User
	WatchAllUsers(ctx context.Context) <-chan []domain.User
	RefreshBlockedCache() error
}

type Moderation struct {
	storage      ModerationStorage
	blockedCache *BlockedCache
	broker       *live.Broker
}

type ModerationStorage interface {
	SetVerified(id domain.UserId) error
	ToggleBlocked(id domain.UserId) (bool, error)
	PendingUsers() ([]domain.User, error)
	AllUsers() ([]domain.User, error)
}

func NewModeration(storage ModerationStorage, blockedCache *BlockedCache, broker *live.Broker) *Moderation {
	return &Moderation{storage, blockedCache, broker}
}

// ApproveUser marks an account verified so it can authenticate. Re-approving
// an already verified account is a no-op.
func (m *Moderation) ApproveUser(id domain.UserId) error {
	if err := m.storage.SetVerified(id); err != nil {
		return err
	}
	logger.Log.Info("user approved", "user_id", id)
	return nil
}

// ToggleBlock flips the blocked flag and returns the new state. The blocked
// cache is refreshed immediately so middleware and services reject the user
// on their next call, not just at next login.
func (m *Moderation) ToggleBlock(id domain.UserId) (bool, error) {
	blocked, err := m.storage.ToggleBlocked(id)
	if err != nil {
		return false, err
	}
	if err := m.blockedCache.Update(); err != nil {
		logger.Log.Warn("block toggled but cache update failed", "user_id", id, "error", err)
		// Don't fail the request - cache will update on next background tick
	}
	logger.Log.Info("user block toggled", "user_id", id, "blocked", blocked)
	return blocked, nil
}

func (m *Moderation) PendingUsers() ([]domain.User, error) {
	return m.storage.PendingUsers()
}

func (m *Moderation) AllUsers() ([]domain.User, error) {
	return m.storage.AllUsers()
}

// WatchPendingUsers streams a fresh pending list whenever the users table
// changes. The channel closes when ctx is cancelled.
func (m *Moderation) WatchPendingUsers(ctx context.Context) <-chan []domain.User {
	return m.watchUsers(ctx, m.storage.PendingUsers, "pending users")
}

// WatchAllUsers streams the full user list for the admin overview, refreshed
// on every users table change.
func (m *Moderation) WatchAllUsers(ctx context.Context) <-chan []domain.User {
	return m.watchUsers(ctx, m.storage.AllUsers, "all users")
}

func (m *Moderation) watchUsers(ctx context.Context, query func() ([]domain.User, error), what string) <-chan []domain.User {
	out := make(chan []domain.User, 1)
	ticks := m.broker.Subscribe(ctx, live.TableUsers)

	go func() {
		defer close(out)
		emit := func() {
			users, err := query()
			if err != nil {
				logger.Log.Error(what+" live query failed", "error", err)
				return
			}
			select {
			case out <- users:
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

func (m *Moderation) RefreshBlockedCache() error {
	return m.blockedCache.Update()
}
