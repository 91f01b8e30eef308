// Package live implements change notification for live queries.
//
// Storage publishes a table name after every committed mutation. Interested
// readers subscribe to one or more tables and receive a tick whenever one of
// them changes, then re-run their query for a fresh result set. Ticks are
// coalesced: a slow subscriber sees at most one pending tick per subscription,
// never a backlog. Cancelling the subscription context unregisters the
// subscriber and releases its channel.
package live

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/foodbridge-dev/foodbridge/internal/logger"
)

type Table string

const (
	TableUsers    Table = "users"
	TablePosts    Table = "food_posts"
	TableRequests Table = "donation_requests"
	TableMessages Table = "messages"
)

type subscription struct {
	tables map[Table]bool
	ch     chan Table
}

type Broker struct {
	mu   sync.RWMutex
	subs map[string]*subscription
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[string]*subscription)}
}

// Publish notifies every subscription watching the given table. It never
// blocks: if a subscriber has an undelivered tick the new one is dropped,
// which is safe because subscribers re-query on each tick anyway.
func (b *Broker) Publish(table Table) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		if !sub.tables[table] {
			continue
		}
		select {
		case sub.ch <- table:
		default:
		}
	}
}

// Subscribe registers interest in the given tables. The returned channel
// delivers a tick per coalesced change until ctx is cancelled, then closes.
func (b *Broker) Subscribe(ctx context.Context, tables ...Table) <-chan Table {
	sub := &subscription{
		tables: make(map[Table]bool, len(tables)),
		ch:     make(chan Table, 1),
	}
	for _, t := range tables {
		sub.tables[t] = true
	}

	id := uuid.NewString()
	b.mu.Lock()
	b.subs[id] = sub
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
		close(sub.ch)
		logger.Log.Debug("live subscription released", "subscription_id", id)
	}()

	return sub.ch
}

// SubscriberCount is used by tests and the health endpoint.
func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
