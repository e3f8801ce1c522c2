// Package session tracks known users and their live connections.
package session

import (
	"sync"

	"github.com/samber/lo"

	"github.com/SergioBarbosa7/socket-chat/domain"
)

// UserDirectory remembers every username the server has ever seen, together
// with its online flag and last-seen time. Records are never deleted.
type UserDirectory struct {
	mu    sync.RWMutex
	users map[string]*domain.User
}

func NewUserDirectory() *UserDirectory {
	return &UserDirectory{users: make(map[string]*domain.User)}
}

// EnsureRegistered creates an offline record on first sight of a username.
// Idempotent: an existing record is left untouched, the online flag is driven
// by session transitions, not here.
func (d *UserDirectory) EnsureRegistered(username string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.users[username]; !ok {
		d.users[username] = domain.NewUser(username)
	}
}

// SetOnline updates the online flag of a known user. Unknown usernames are
// ignored so that a late unregister cannot invent directory records.
func (d *UserDirectory) SetOnline(username string, online bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if user, ok := d.users[username]; ok {
		user.SetOnline(online)
	}
}

func (d *UserDirectory) Exists(username string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	_, ok := d.users[username]
	return ok
}

// List returns a value snapshot of every record, order unspecified.
func (d *UserDirectory) List() []domain.User {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return lo.MapToSlice(d.users, func(_ string, user *domain.User) domain.User {
		return *user
	})
}
