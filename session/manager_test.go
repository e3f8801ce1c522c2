package session

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"github.com/SergioBarbosa7/socket-chat/domain"
	"github.com/SergioBarbosa7/socket-chat/errors"
)

type stubConn struct {
	id string
}

func (c stubConn) Send(domain.Message) error { return nil }

func TestManager_Register_SingleSessionPerUser(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	manager := NewManager(NewUserDirectory(), log)

	// Given alice has a live session
	first := stubConn{id: "first"}
	req.NoError(manager.Register("alice", first))

	// When a second registration for alice arrives
	err := manager.Register("alice", stubConn{id: "second"})

	// Then it fails and the existing session is unaffected
	req.ErrorIs(err, errors.ErrAlreadyConnected)
	conn, ok := manager.GetConnection("alice")
	req.True(ok)
	req.Equal(first, conn)
}

func TestManager_Register_MarksUserOnline(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	directory := NewUserDirectory()
	manager := NewManager(directory, log)

	req.NoError(manager.Register("alice", stubConn{}))

	online, err := manager.IsOnline("alice")
	req.NoError(err)
	req.True(online)
}

func TestManager_Unregister_MarksOfflineAndDropsCapability(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	manager := NewManager(NewUserDirectory(), log)
	req.NoError(manager.Register("alice", stubConn{}))

	manager.Unregister("alice")

	_, ok := manager.GetConnection("alice")
	req.False(ok)
	online, err := manager.IsOnline("alice")
	req.NoError(err)
	req.False(online)

	// A second unregister is a no-op, cleanup paths may run twice
	manager.Unregister("alice")
}

func TestManager_IsOnline_UnknownUser(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	manager := NewManager(NewUserDirectory(), log)

	_, err := manager.IsOnline("ghost")

	req.ErrorIs(err, errors.ErrUnknownUser)
}

func TestManager_Register_ConcurrentSameUsername_OneWinner(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	manager := NewManager(NewUserDirectory(), log)

	const attempts = 32
	var successes atomic.Int32
	var failures atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := manager.Register("alice", stubConn{}); err != nil {
				req.ErrorIs(err, errors.ErrAlreadyConnected)
				failures.Add(1)
				return
			}
			successes.Add(1)
		}()
	}
	wg.Wait()

	req.EqualValues(1, successes.Load())
	req.EqualValues(attempts-1, failures.Load())
}
