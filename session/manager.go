package session

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/SergioBarbosa7/socket-chat/contract"
	"github.com/SergioBarbosa7/socket-chat/domain"
	"github.com/SergioBarbosa7/socket-chat/errors"
)

// Manager maps an online username to its connection capability and enforces
// the single-active-session rule. Register and Unregister perform their
// check-then-act under one lock, so two workers racing on the same username
// can never both win.
type Manager struct {
	mu        sync.RWMutex
	sessions  map[string]contract.Connection
	directory contract.IUserDirectory
	log       *slog.Logger
}

func NewManager(directory contract.IUserDirectory, log *slog.Logger) *Manager {
	return &Manager{
		sessions:  make(map[string]contract.Connection),
		directory: directory,
		log:       log,
	}
}

// Register installs the connection as the single live session for username.
// The user is created in the directory on its first login ever and flipped
// online. A second live session for the same name is refused.
func (m *Manager) Register(username string, conn contract.Connection) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[username]; ok {
		return fmt.Errorf("%w: %s", errors.ErrAlreadyConnected, username)
	}
	m.directory.EnsureRegistered(username)
	m.directory.SetOnline(username, true)
	m.sessions[username] = conn

	m.log.Info("Session registered", "user", username)
	return nil
}

// Unregister drops the session entry and marks the user offline. Calling it
// for a username without a live session is a no-op, cleanup paths may run
// more than once.
func (m *Manager) Unregister(username string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[username]; !ok {
		return
	}
	delete(m.sessions, username)
	m.directory.SetOnline(username, false)

	m.log.Info("Session unregistered", "user", username)
}

func (m *Manager) GetConnection(username string) (contract.Connection, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	conn, ok := m.sessions[username]
	return conn, ok
}

// IsOnline reports whether a known user currently holds a live session.
// A username the directory has never seen is an error, not "offline".
func (m *Manager) IsOnline(username string) (bool, error) {
	if !m.directory.Exists(username) {
		return false, fmt.Errorf("%w: %s", errors.ErrUnknownUser, username)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.sessions[username]
	return ok, nil
}

// Users exposes the directory snapshot for the users-list request.
func (m *Manager) Users() []domain.User {
	return m.directory.List()
}
