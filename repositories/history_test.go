package repositories

import (
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"github.com/SergioBarbosa7/socket-chat/domain"
)

// SetupTestDB initializes a temporary Badger instance for testing
func SetupTestDB(t *testing.T) (*badger.DB, func()) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	require.NoError(t, err)

	return db, func() {
		db.Close()
	}
}

func TestHistoryRepository_StoreAndGet(t *testing.T) {
	req := require.New(t)
	db, cleanup := SetupTestDB(t)
	defer cleanup()

	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	repo := NewHistoryRepository(db, log, nil)

	// Given two deliveries to bob, one hour apart, plus unrelated traffic
	t1 := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	t2 := time.Date(2026, 8, 1, 11, 0, 0, 0, time.UTC)

	older := DeliveredMessage{ID: uuid.New(), Type: domain.TypePrivateMessage, Sender: "alice", Recipient: "bob", Content: "first", At: t1}
	newer := DeliveredMessage{ID: uuid.New(), Type: domain.TypePrivateMessage, Sender: "alice", Recipient: "bob", Content: "second", At: t2}
	other := DeliveredMessage{ID: uuid.New(), Type: domain.TypePrivateMessage, Sender: "alice", Recipient: "carol", Content: "noise", At: t1}

	req.NoError(repo.StoreDelivery(older))
	req.NoError(repo.StoreDelivery(newer))
	req.NoError(repo.StoreDelivery(other))

	// Then bob's history comes back newest first, carol's entry excluded
	entries, _, err := repo.GetDeliveries("bob", nil)
	req.NoError(err)
	req.Len(entries, 2)
	req.Equal("second", entries[0].Content)
	req.Equal("first", entries[1].Content)
	req.Equal(newer.ID, entries[0].ID)
}

func TestHistoryRepository_LimitAndCursor(t *testing.T) {
	req := require.New(t)
	db, cleanup := SetupTestDB(t)
	defer cleanup()

	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	limit := 2
	repo := NewHistoryRepository(db, log, &limit)

	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		entry := DeliveredMessage{
			ID:        uuid.New(),
			Type:      domain.TypePrivateMessage,
			Sender:    "alice",
			Recipient: "bob",
			Content:   fmt.Sprintf("m%d", i),
			At:        base.Add(time.Duration(i) * time.Minute),
		}
		req.NoError(repo.StoreDelivery(entry))
	}

	// First page: the two newest entries
	page1, cursor, err := repo.GetDeliveries("bob", nil)
	req.NoError(err)
	req.Len(page1, 2)
	req.Equal("m4", page1[0].Content)
	req.Equal("m3", page1[1].Content)
	req.NotNil(cursor)

	// Second page resumes where the first one stopped
	page2, cursor, err := repo.GetDeliveries("bob", cursor)
	req.NoError(err)
	req.Len(page2, 2)
	req.Equal("m2", page2[0].Content)
	req.Equal("m1", page2[1].Content)

	// Last page holds the remainder
	page3, _, err := repo.GetDeliveries("bob", cursor)
	req.NoError(err)
	req.Len(page3, 1)
	req.Equal("m0", page3[0].Content)
}

func TestHistoryRepository_UnknownRecipient(t *testing.T) {
	req := require.New(t)
	db, cleanup := SetupTestDB(t)
	defer cleanup()

	repo := NewHistoryRepository(db, logs.GetLoggerFromLevel(slog.LevelDebug), nil)

	entries, _, err := repo.GetDeliveries("ghost", nil)
	req.NoError(err)
	req.Empty(entries)
}

func TestHistoryRepository_FromMessage(t *testing.T) {
	req := require.New(t)

	message := domain.NewMessage(domain.TypeGroupMessage, "alice@g", "bob", "hello")
	entry := FromMessage(message, "bob")

	req.Equal(message.ID, entry.ID)
	req.Equal(domain.TypeGroupMessage, entry.Type)
	req.Equal("alice@g", entry.Sender)
	req.Equal("bob", entry.Recipient)
	req.Equal("hello", entry.Content)
	req.Equal(message.Timestamp, entry.At)
}
