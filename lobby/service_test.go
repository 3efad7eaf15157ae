package lobby

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snakeduel-backend/models"
)

func player(id, username string) *models.Player {
	return &models.Player{ID: id, Username: username, Send: make(chan []byte, 1)}
}

func TestAddAndRemove(t *testing.T) {
	s := NewService()

	assert.True(t, s.Add(player("1", "alice")))
	assert.False(t, s.Add(player("1", "alice")), "duplicate id is rejected")
	assert.True(t, s.Add(player("2", "bob")))
	assert.Equal(t, 2, s.Len())

	got, ok := s.Get("1")
	require.True(t, ok)
	assert.Equal(t, "alice", got.Username)

	s.Remove("1")
	_, ok = s.Get("1")
	assert.False(t, ok)
	assert.Equal(t, 1, s.Len())

	s.Remove("1") // removing twice is harmless
	assert.Equal(t, 1, s.Len())
}

func TestSnapshotKeepsConnectionOrder(t *testing.T) {
	s := NewService()
	s.Add(player("1", "alice"))
	s.Add(player("2", "bob"))
	s.Add(player("3", "carol"))
	s.Remove("2")

	snapshot := s.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, "1", snapshot[0].ID)
	assert.Equal(t, "3", snapshot[1].ID)

	assert.Equal(t, []string{"alice", "carol"}, s.Usernames())
}
