package storage

import (
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"github.com/SergioBarbosa7/socket-chat/domain"
)

func TestOfflineQueue_FIFOOrder(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	queue := NewOfflineQueue(log)

	m1 := domain.NewMessage(domain.TypePrivateMessage, "alice", "bob", "first")
	m2 := domain.NewMessage(domain.TypePrivateMessage, "alice", "bob", "second")
	queue.Enqueue("bob", m1)
	queue.Enqueue("bob", m2)

	drained := queue.DrainAll("bob")

	req.Len(drained, 2)
	req.Equal("first", drained[0].Content)
	req.Equal("second", drained[1].Content)
}

func TestOfflineQueue_DrainDeletesBuffer(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	queue := NewOfflineQueue(log)
	queue.Enqueue("bob", domain.NewMessage(domain.TypePrivateMessage, "alice", "bob", "hi"))

	req.True(queue.HasPending("bob"))
	req.Len(queue.DrainAll("bob"), 1)

	req.False(queue.HasPending("bob"))
	req.Empty(queue.DrainAll("bob"))
}

func TestOfflineQueue_DrainUnknownUser(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	queue := NewOfflineQueue(log)

	req.Empty(queue.DrainAll("ghost"))
	req.False(queue.HasPending("ghost"))
}

func TestOfflineQueue_ConcurrentEnqueueAndDrain_NoLossNoDuplicate(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	queue := NewOfflineQueue(log)

	const producers = 8
	const perProducer = 50

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				content := fmt.Sprintf("%d-%d", p, i)
				queue.Enqueue("bob", domain.NewMessage(domain.TypePrivateMessage, "alice", "bob", content))
			}
		}(p)
	}

	// Drain concurrently with the producers, then once more after they stop.
	seen := make(map[string]int)
	var drains sync.WaitGroup
	var mu sync.Mutex
	for d := 0; d < 4; d++ {
		drains.Add(1)
		go func() {
			defer drains.Done()
			for _, m := range queue.DrainAll("bob") {
				mu.Lock()
				seen[m.Content]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	drains.Wait()
	for _, m := range queue.DrainAll("bob") {
		seen[m.Content]++
	}

	// Every message delivered exactly once
	req.Len(seen, producers*perProducer)
	for content, count := range seen {
		req.Equalf(1, count, "message %s delivered %d times", content, count)
	}
}
