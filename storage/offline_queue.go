// Package storage buffers messages for registered-but-offline recipients.
package storage

import (
	"log/slog"
	"sync"

	"github.com/SergioBarbosa7/socket-chat/domain"
)

// OfflineQueue keeps a strictly FIFO buffer per recipient. Enqueue and
// DrainAll share one lock, so a drain removes exactly the entries present at
// its start and a concurrent enqueue lands either fully before or fully
// after it, never inside. No upper bound is imposed.
type OfflineQueue struct {
	mu      sync.Mutex
	pending map[string][]domain.Message
	log     *slog.Logger
}

func NewOfflineQueue(log *slog.Logger) *OfflineQueue {
	return &OfflineQueue{
		pending: make(map[string][]domain.Message),
		log:     log,
	}
}

// Enqueue appends to the recipient's buffer, creating it on first use.
func (q *OfflineQueue) Enqueue(username string, message domain.Message) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.pending[username] = append(q.pending[username], message)
	q.log.Debug("Message queued for offline user", "user", username, "pending", len(q.pending[username]))
}

// DrainAll removes and returns the whole buffer in arrival order. The buffer
// entry itself is deleted, two concurrent drains can never return the same
// message twice.
func (q *OfflineQueue) DrainAll(username string) []domain.Message {
	q.mu.Lock()
	defer q.mu.Unlock()

	messages := q.pending[username]
	delete(q.pending, username)
	return messages
}

func (q *OfflineQueue) HasPending(username string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	_, ok := q.pending[username]
	return ok
}
