package domain

import "time"

// OutboxMessage хранит событие, записанное в одной транзакции с бизнес-данными.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
	CreatedAt     time.Time
	PublishedAt   *time.Time
}

// OutboxPublisher публикует события из transactional outbox.
type OutboxPublisher interface {
	// Publish передаёт событие наружу; должен быть идемпотентным.
	Publish(event OutboxMessage) error
}

// OutboxRepository позволяет дочитывать и помечать события для публикации.
type OutboxRepository interface {
	// PullPending возвращает неопубликованные события в порядке создания.
	PullPending(limit int) ([]OutboxMessage, error)
	// MarkPublished помечает событие опубликованным.
	MarkPublished(id string) error
}
