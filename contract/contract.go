//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"github.com/SergioBarbosa7/socket-chat/domain"
)

// Connection is the send capability owned by exactly one session entry.
// Send is fire-and-forget from the router's perspective: errors are surfaced
// to the caller, never retried. After unregister the capability is dead and
// Send must fail.
type Connection interface {
	Send(message domain.Message) error
}

type IUserDirectory interface {
	EnsureRegistered(username string)
	SetOnline(username string, online bool)
	Exists(username string) bool
	List() []domain.User
}

type ISessionManager interface {
	Register(username string, conn Connection) error
	Unregister(username string)
	GetConnection(username string) (Connection, bool)
	IsOnline(username string) (bool, error)
	Users() []domain.User
}

type IGroupRegistry interface {
	Create(name, creator string) error
	Join(name, username string) error
	Leave(name, username string) error
	FindWithMember(name, username string) (*domain.Group, error)
	List() []*domain.Group
}

type IOfflineQueue interface {
	Enqueue(username string, message domain.Message)
	DrainAll(username string) []domain.Message
	HasPending(username string) bool
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
