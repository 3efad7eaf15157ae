package game

import (
	"crypto/rand"
	"math/big"
	"sync"

	"snakeduel-backend/constants"
	"snakeduel-backend/models"
)

type JoinResult int

const (
	JoinOK JoinResult = iota
	JoinAlreadyMember
	JoinRoomFull
	JoinRoomNotFound
)

type Room struct {
	ID      string
	Members []string // join order
}

// Registry owns the room membership map. All access goes through its
// mutex; nothing else holds Room pointers.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]*Room)}
}

const roomCodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func generateRoomCode() string {
	code := make([]byte, 6)
	for i := range code {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(roomCodeCharset))))
		if err != nil {
			// crypto/rand failing means the process is in far worse
			// trouble than room creation
			panic(err)
		}
		code[i] = roomCodeCharset[num.Int64()]
	}
	return string(code)
}

// Create inserts a fresh empty room and returns its shareable code.
func (r *Registry) Create() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	for {
		code := generateRoomCode()
		if _, exists := r.rooms[code]; exists {
			continue
		}
		r.rooms[code] = &Room{ID: code, Members: make([]string, 0, constants.ROOM_CAPACITY)}
		return code
	}
}

func (r *Registry) Join(roomID, connID string) JoinResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, exists := r.rooms[roomID]
	if !exists {
		return JoinRoomNotFound
	}
	for _, id := range room.Members {
		if id == connID {
			return JoinAlreadyMember
		}
	}
	if len(room.Members) >= constants.ROOM_CAPACITY {
		return JoinRoomFull
	}
	room.Members = append(room.Members, connID)
	return JoinOK
}

// Leave removes the connection from the room. It reports the members
// left behind, whether the connection was actually a member, and whether
// the now-empty room was destroyed.
func (r *Registry) Leave(roomID, connID string) (remaining []string, left bool, destroyed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, exists := r.rooms[roomID]
	if !exists {
		return nil, false, false
	}
	for i, id := range room.Members {
		if id == connID {
			room.Members = append(room.Members[:i], room.Members[i+1:]...)
			left = true
			break
		}
	}
	if !left {
		return nil, false, false
	}
	if len(room.Members) == 0 {
		delete(r.rooms, roomID)
		return nil, true, true
	}
	remaining = append(remaining, room.Members...)
	return remaining, true, false
}

// Destroy removes the room outright and reports who was still in it.
// Used for disconnect teardown, where the room does not outlive the
// interrupted game.
func (r *Registry) Destroy(roomID string) ([]string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, exists := r.rooms[roomID]
	if !exists {
		return nil, false
	}
	members := append([]string(nil), room.Members...)
	delete(r.rooms, roomID)
	return members, true
}

func (r *Registry) Members(roomID string) ([]string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, exists := r.rooms[roomID]
	if !exists {
		return nil, false
	}
	members := append([]string(nil), room.Members...)
	return members, true
}

// RoomsOf returns every room the connection belongs to. A connection is
// expected to sit in at most one room, but disconnect cleanup must not
// rely on that.
func (r *Registry) RoomsOf(connID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ids []string
	for roomID, room := range r.rooms {
		for _, id := range room.Members {
			if id == connID {
				ids = append(ids, roomID)
				break
			}
		}
	}
	return ids
}

// List snapshots the discovery list for the lobby UI.
func (r *Registry) List() []models.RoomInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]models.RoomInfo, 0, len(r.rooms))
	for roomID, room := range r.rooms {
		list = append(list, models.RoomInfo{RoomID: roomID, PlayersCount: len(room.Members)})
	}
	return list
}
