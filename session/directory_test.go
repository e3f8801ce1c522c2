package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestUserDirectory_EnsureRegistered_Idempotent(t *testing.T) {
	req := require.New(t)
	directory := NewUserDirectory()

	// Given a first sight of alice
	directory.EnsureRegistered("alice")
	req.True(directory.Exists("alice"))

	// When flipped online and registered again
	directory.SetOnline("alice", true)
	directory.EnsureRegistered("alice")

	// Then the record is untouched, not reset offline
	users := directory.List()
	req.Len(users, 1)
	req.True(users[0].Online)
}

func TestUserDirectory_SetOnline_StampsLastSeen(t *testing.T) {
	req := require.New(t)
	directory := NewUserDirectory()
	directory.EnsureRegistered("bob")

	directory.SetOnline("bob", true)
	before := time.Now()
	directory.SetOnline("bob", false)

	users := directory.List()
	req.Len(users, 1)
	req.False(users[0].Online)
	req.False(users[0].LastSeen.Before(before))
}

func TestUserDirectory_SetOnline_UnknownUserIsIgnored(t *testing.T) {
	req := require.New(t)
	directory := NewUserDirectory()

	// A late unregister must not invent directory records
	directory.SetOnline("ghost", false)

	req.False(directory.Exists("ghost"))
	req.Empty(directory.List())
}

func TestUserDirectory_List_IsASnapshot(t *testing.T) {
	req := require.New(t)
	directory := NewUserDirectory()
	directory.EnsureRegistered("alice")

	users := directory.List()
	users[0].Online = true

	// Mutating the snapshot leaves the directory record untouched
	req.False(directory.List()[0].Online)
}

func TestUserDirectory_CaseSensitiveUsernames(t *testing.T) {
	req := require.New(t)
	directory := NewUserDirectory()

	directory.EnsureRegistered("Alice")

	req.True(directory.Exists("Alice"))
	req.False(directory.Exists("alice"))
}
