//go:generate go run go.uber.org/mock/mockgen -source=history.go -destination=../mocks/mock_history_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/SergioBarbosa7/socket-chat/domain"
)

type IHistoryRepository interface {
	StoreDelivery(entry DeliveredMessage) error
	GetDeliveries(recipient string, cursor *string) ([]DeliveredMessage, *string, error)
}

// HistoryRepository appends every delivered message to BadgerDB. The log is
// an audit trail of traffic that already reached its recipient, routing
// state itself stays in memory.
type HistoryRepository struct {
	db           *badger.DB
	log          *slog.Logger
	limitEntries *int
}

func NewHistoryRepository(db *badger.DB, log *slog.Logger, limitEntries *int) HistoryRepository {
	return HistoryRepository{db: db, log: log, limitEntries: limitEntries}
}

type DeliveredMessage struct {
	ID        uuid.UUID          `json:"id"`
	Type      domain.MessageType `json:"type"`
	Sender    string             `json:"sender"`
	Recipient string             `json:"recipient"`
	Content   string             `json:"content"`
	At        time.Time          `json:"at"`
}

// StoreDelivery persists one delivery record.
// The key is formatted as "msg:{recipient}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding (lexicographical order).
//  2. Prevent data loss by using UUID as a collision disconnector if two messages
//     arrive at the same nanosecond.
func (h HistoryRepository) StoreDelivery(entry DeliveredMessage) error {
	key := fmt.Sprintf("msg:%s:%019d:%s",
		entry.Recipient,
		entry.At.UnixNano(),
		entry.ID,
	)
	bytes, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return h.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
}

// GetDeliveries retrieves delivery records for one recipient using a prefix
// scan, newest first. Thanks to the padded timestamp in the key, entries are
// naturally sorted by time. Collection stops once the configured
// limitEntries is reached; the returned cursor resumes the scan.
func (h HistoryRepository) GetDeliveries(recipient string, cursor *string) ([]DeliveredMessage, *string, error) {
	var rawEntries [][]byte
	var lastKey string
	err := h.db.View(func(txn *badger.Txn) error {
		prefixStr := fmt.Sprintf("msg:%s:", recipient)
		prefix := []byte(prefixStr)
		prefixLen := len(prefixStr)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		var seekKey []byte
		switch cursor {
		case nil:
			// Seek past the newest possible key for this recipient, then
			// walk backwards.
			seekKey = append(prefix, []byte("9999999999999999999")...)
		default:
			seekKey = append(prefix, []byte(*cursor)...)
		}

		it.Seek(seekKey)

		if cursor != nil && it.ValidForPrefix(prefix) {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			if h.limitEntries != nil && len(rawEntries) == *h.limitEntries {
				h.log.Debug(fmt.Sprintf("Maximum of %d history entries reached", *h.limitEntries))
				break
			}
			item := it.Item()
			// Memorize cursor part of the actual key
			lastKey = string(item.Key()[prefixLen:])
			err := item.Value(func(value []byte) error {
				rawEntries = append(rawEntries, append([]byte(nil), value...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	entries := make([]DeliveredMessage, 0, len(rawEntries))
	for _, b := range rawEntries {
		var entry DeliveredMessage
		if err = json.Unmarshal(b, &entry); err != nil {
			return nil, nil, err
		}
		entries = append(entries, entry)
	}
	return entries, &lastKey, nil
}

// FromMessage maps a routed message to its history record.
func FromMessage(message domain.Message, recipient string) DeliveredMessage {
	return DeliveredMessage{
		ID:        message.ID,
		Type:      message.Type,
		Sender:    message.From,
		Recipient: recipient,
		Content:   message.Content,
		At:        message.Timestamp,
	}
}
