// Package domain contains core concepts of the chat system.
// This file defines User records tracked by the directory.
package domain

import (
	"fmt"
	"time"
)

// User is a directory record for a username ever seen by the server.
// Records are created offline and never deleted.
type User struct {
	Username string
	Online   bool
	LastSeen time.Time
}

func NewUser(username string) *User {
	return &User{
		Username: username,
		Online:   false,
		LastSeen: time.Now(),
	}
}

// SetOnline flips the online flag. Going offline stamps the last-seen time.
func (u *User) SetOnline(online bool) {
	u.Online = online
	if !online {
		u.LastSeen = time.Now()
	}
}

func (u *User) String() string {
	if u.Online {
		return u.Username + " (online)"
	}
	return fmt.Sprintf("%s (offline) - last seen: %s", u.Username, u.LastSeen.Format(time.RFC3339))
}
