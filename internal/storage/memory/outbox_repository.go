package memory

import (
	"sort"
	"time"

	"github.com/bmaxtar/storefront/internal/domain"
)

type outboxRepositoryInMemory struct {
	store *Store
}

// NewOutboxRepository создаёт in-memory реализацию OutboxRepository.
func NewOutboxRepository(store *Store) domain.OutboxRepository {
	return &outboxRepositoryInMemory{store: store}
}

func (r *outboxRepositoryInMemory) PullPending(limit int) ([]domain.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	pending := make([]domain.OutboxMessage, 0)
	for _, msg := range r.store.outbox {
		if msg.PublishedAt == nil {
			pending = append(pending, msg)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		if !pending[i].CreatedAt.Equal(pending[j].CreatedAt) {
			return pending[i].CreatedAt.Before(pending[j].CreatedAt)
		}
		return pending[i].ID < pending[j].ID
	})
	if len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

func (r *outboxRepositoryInMemory) MarkPublished(id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for i := range r.store.outbox {
		if r.store.outbox[i].ID == id && r.store.outbox[i].PublishedAt == nil {
			now := time.Now().UTC()
			r.store.outbox[i].PublishedAt = &now
			return nil
		}
	}
	return nil
}

var _ domain.OutboxRepository = (*outboxRepositoryInMemory)(nil)
