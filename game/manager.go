package game

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"snakeduel-backend/constants"
	"snakeduel-backend/lobby"
	"snakeduel-backend/models"
)

// Manager is the gateway between player intents and the room registry /
// game sessions. It owns the fan-out of every broadcast.
type Manager struct {
	Lobby *lobby.Service
	Rooms *Registry

	mu       sync.RWMutex
	sessions map[string]*Session
	watchers map[string]map[string]*models.Player
}

func NewManager() *Manager {
	return &Manager{
		Lobby:    lobby.NewService(),
		Rooms:    NewRegistry(),
		sessions: make(map[string]*Session),
		watchers: make(map[string]map[string]*models.Player),
	}
}

// HandleMessage processes an incoming intent from a player connection.
func (gm *Manager) HandleMessage(player *models.Player, msgType string, msg map[string]any) {
	switch msgType {
	case constants.MSG_SET_USERNAME:
		username, _ := msg["username"].(string)
		gm.SetUsername(player, username)
	case constants.MSG_CHAT:
		if text, ok := msg["text"].(string); ok {
			gm.Chat(player, text)
		}
	case constants.MSG_CREATE_ROOM:
		gm.CreateRoom(player)
	case constants.MSG_JOIN_ROOM:
		if roomID, ok := msg["roomId"].(string); ok {
			gm.JoinRoom(player, roomID)
		}
	case constants.MSG_LEAVE_ROOM:
		if roomID, ok := msg["roomId"].(string); ok {
			gm.LeaveRoom(player, roomID)
		}
	case constants.MSG_SPECTATE_ROOM:
		if roomID, ok := msg["roomId"].(string); ok {
			gm.Spectate(player, roomID)
		}
	case constants.MSG_PLAYER_READY:
		if roomID, ok := msg["roomId"].(string); ok {
			gm.PlayerReady(player, roomID)
		}
	case constants.MSG_CHANGE_DIRECTION:
		roomID, ok := msg["roomId"].(string)
		if !ok {
			break
		}
		direction, ok := msg["direction"].(string)
		if !ok {
			break
		}
		gm.ChangeDirection(player, roomID, models.Direction(direction))
	}
}

func (gm *Manager) SetUsername(player *models.Player, username string) {
	username = strings.TrimSpace(username)
	if username == "" {
		username = "Anonymous"
	}
	player.Username = username
	log.Printf("Player %s set username %q", player.ID, username)
	gm.BroadcastUserList()
}

func (gm *Manager) Chat(player *models.Player, text string) {
	gm.broadcastAll(constants.MSG_NEW_MESSAGE, map[string]any{
		"username":  player.Username,
		"text":      text,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (gm *Manager) CreateRoom(player *models.Player) {
	roomID := gm.Rooms.Create()
	log.Printf("Room %s created by %s", roomID, player.ID)
	// the creator learns the id from the same list broadcast as everyone else
	gm.BroadcastRoomList()
}

func (gm *Manager) JoinRoom(player *models.Player, roomID string) {
	switch gm.Rooms.Join(roomID, player.ID) {
	case JoinRoomNotFound:
		gm.sendMessage(player, constants.MSG_ROOM_ERROR, map[string]any{
			"message": fmt.Sprintf("Room %q does not exist.", roomID),
		})
	case JoinRoomFull:
		gm.sendMessage(player, constants.MSG_ROOM_ERROR, map[string]any{
			"message": fmt.Sprintf("Room %q is already full.", roomID),
		})
	case JoinAlreadyMember:
		// reconnect-without-state-loss: ack again and resend whatever
		// the client needs for the current phase
		gm.sendMessage(player, constants.MSG_ROOM_JOINED, map[string]any{"roomId": roomID})
		gm.resync(player, roomID)
	case JoinOK:
		log.Printf("Player %s (%s) joined room %s", player.ID, player.Username, roomID)
		gm.sendMessage(player, constants.MSG_ROOM_JOINED, map[string]any{"roomId": roomID})
		gm.BroadcastRoomList()

		members, ok := gm.Rooms.Members(roomID)
		if !ok || len(members) != constants.ROOM_CAPACITY {
			return
		}
		gm.mu.Lock()
		if _, exists := gm.sessions[roomID]; exists {
			gm.mu.Unlock()
			return
		}
		gm.sessions[roomID] = NewSession(roomID, members[0], members[1])
		gm.mu.Unlock()
		gm.broadcastRoom(roomID, constants.MSG_SHOW_READY, map[string]any{"roomId": roomID})
	}
}

func (gm *Manager) resync(player *models.Player, roomID string) {
	session := gm.session(roomID)
	if session == nil {
		return
	}
	phase, snapshot := session.Resync()
	if phase == PhasePlaying {
		gm.sendMessage(player, constants.MSG_GAME_STATE, map[string]any{
			"snakes": snapshot.Snakes,
			"food":   snapshot.Food,
		})
		return
	}
	gm.sendMessage(player, constants.MSG_SHOW_READY, map[string]any{"roomId": roomID})
}

func (gm *Manager) LeaveRoom(player *models.Player, roomID string) {
	remaining, left, destroyed := gm.Rooms.Leave(roomID, player.ID)
	if !left {
		return
	}
	log.Printf("Player %s (%s) left room %s", player.ID, player.Username, roomID)
	gm.teardownSession(roomID, remaining, destroyed)
	if destroyed {
		log.Printf("Room %s destroyed (empty)", roomID)
	}
	gm.BroadcastRoomList()
}

// teardownSession cancels the room's session, if any, and awards the
// win by forfeit to the member left behind when a round was running.
// The audience is captured up front because the registry may no longer
// list the room.
func (gm *Manager) teardownSession(roomID string, remaining []string, roomGone bool) {
	gm.mu.Lock()
	session := gm.sessions[roomID]
	delete(gm.sessions, roomID)
	audience := make([]*models.Player, 0, len(remaining)+len(gm.watchers[roomID]))
	for _, watcher := range gm.watchers[roomID] {
		audience = append(audience, watcher)
	}
	if roomGone {
		delete(gm.watchers, roomID)
	}
	gm.mu.Unlock()

	for _, id := range remaining {
		if player, ok := gm.Lobby.Get(id); ok {
			audience = append(audience, player)
		}
	}

	if session != nil && session.Forfeit() && len(remaining) > 0 {
		for _, player := range audience {
			gm.sendMessage(player, constants.MSG_GAME_OVER, map[string]any{"winnerId": remaining[0]})
		}
	}
}

func (gm *Manager) Spectate(player *models.Player, roomID string) {
	members, ok := gm.Rooms.Members(roomID)
	if !ok {
		gm.sendMessage(player, constants.MSG_ROOM_ERROR, map[string]any{
			"message": fmt.Sprintf("Room %q does not exist.", roomID),
		})
		return
	}
	for _, id := range members {
		if id == player.ID {
			gm.sendMessage(player, constants.MSG_ROOM_ERROR, map[string]any{
				"message": "You are already a player in this room.",
			})
			return
		}
	}

	gm.mu.Lock()
	if gm.watchers[roomID] == nil {
		gm.watchers[roomID] = make(map[string]*models.Player)
	}
	gm.watchers[roomID][player.ID] = player
	gm.mu.Unlock()

	log.Printf("Player %s (%s) is watching room %s", player.ID, player.Username, roomID)
	gm.resync(player, roomID)
}

func (gm *Manager) PlayerReady(player *models.Player, roomID string) {
	session := gm.session(roomID)
	if session == nil {
		return
	}
	bothReady, readyReset := session.Ready(player.ID)
	if readyReset {
		// rematch: the finished round was reset, prompt the room again
		gm.broadcastRoom(roomID, constants.MSG_SHOW_READY, map[string]any{"roomId": roomID})
	}
	if !bothReady {
		return
	}
	gm.broadcastRoom(roomID, constants.MSG_ROOM_READY, map[string]any{
		"roomId":    roomID,
		"countdown": int(constants.COUNTDOWN / time.Second),
	})
	go gm.runGame(roomID, session)
}

func (gm *Manager) ChangeDirection(player *models.Player, roomID string, direction models.Direction) {
	session := gm.session(roomID)
	if session == nil {
		return
	}
	session.ChangeDirection(player.ID, direction)
}

// runGame waits out the pre-game countdown, then drives the tick loop
// and fans each result out to the room until the round ends.
func (gm *Manager) runGame(roomID string, session *Session) {
	done := session.Done()
	select {
	case <-time.After(constants.COUNTDOWN):
	case <-done:
		return
	}

	tickC, ok := session.BeginPlaying()
	if !ok {
		return
	}
	log.Printf("Game loop started for room %s", roomID)

	_, snapshot := session.Resync()
	gm.broadcastSnapshot(roomID, snapshot)

	for {
		select {
		case <-tickC:
		case <-done:
			return
		}

		res := session.Tick()
		if res.Snapshot != nil {
			gm.broadcastSnapshot(roomID, res.Snapshot)
		}
		if res.GridFull {
			log.Printf("No free cell for food in room %s, ending round as draw", roomID)
		}
		if res.Over != nil {
			if res.Over.Draw {
				gm.broadcastRoom(roomID, constants.MSG_GAME_OVER, map[string]any{"result": "draw"})
			} else {
				gm.broadcastRoom(roomID, constants.MSG_GAME_OVER, map[string]any{"winnerId": res.Over.WinnerID})
			}
			log.Printf("Game over in room %s", roomID)
			return
		}
	}
}

// DisconnectPlayer applies the implicit leave for a dropped connection.
// Unlike an explicit leave, the interrupted room does not outlive the
// disconnect: any remaining member gets the forfeit win and the room
// disappears from the discovery list.
func (gm *Manager) DisconnectPlayer(playerID string) {
	gm.Lobby.Remove(playerID)

	gm.mu.Lock()
	for _, watching := range gm.watchers {
		delete(watching, playerID)
	}
	gm.mu.Unlock()

	roomsChanged := false
	for _, roomID := range gm.Rooms.RoomsOf(playerID) {
		members, ok := gm.Rooms.Destroy(roomID)
		if !ok {
			continue
		}
		remaining := make([]string, 0, len(members))
		for _, id := range members {
			if id != playerID {
				remaining = append(remaining, id)
			}
		}
		gm.teardownSession(roomID, remaining, true)
		log.Printf("Room %s destroyed after %s disconnected", roomID, playerID)
		roomsChanged = true
	}

	gm.BroadcastUserList()
	if roomsChanged {
		gm.BroadcastRoomList()
	}
}

func (gm *Manager) session(roomID string) *Session {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	return gm.sessions[roomID]
}

func (gm *Manager) broadcastSnapshot(roomID string, snapshot *Snapshot) {
	gm.broadcastRoom(roomID, constants.MSG_GAME_STATE, map[string]any{
		"snakes": snapshot.Snakes,
		"food":   snapshot.Food,
	})
}

// broadcastRoom fans a message out to the room's current members and
// anyone watching it.
func (gm *Manager) broadcastRoom(roomID, msgType string, data map[string]any) {
	members, _ := gm.Rooms.Members(roomID)
	for _, id := range members {
		if player, ok := gm.Lobby.Get(id); ok {
			gm.sendMessage(player, msgType, data)
		}
	}

	gm.mu.RLock()
	watching := make([]*models.Player, 0, len(gm.watchers[roomID]))
	for _, player := range gm.watchers[roomID] {
		watching = append(watching, player)
	}
	gm.mu.RUnlock()
	for _, player := range watching {
		gm.sendMessage(player, msgType, data)
	}
}

func (gm *Manager) broadcastAll(msgType string, data map[string]any) {
	for _, player := range gm.Lobby.Snapshot() {
		gm.sendMessage(player, msgType, data)
	}
}

func (gm *Manager) BroadcastRoomList() {
	gm.broadcastAll(constants.MSG_ROOM_LIST, map[string]any{"rooms": gm.Rooms.List()})
}

func (gm *Manager) BroadcastUserList() {
	gm.broadcastAll(constants.MSG_USER_LIST, map[string]any{"users": gm.Lobby.Usernames()})
}

// SendRoomList pushes the current discovery list to one player, used
// right after connect.
func (gm *Manager) SendRoomList(player *models.Player) {
	gm.sendMessage(player, constants.MSG_ROOM_LIST, map[string]any{"rooms": gm.Rooms.List()})
}

func (gm *Manager) sendMessage(player *models.Player, msgType string, data map[string]any) {
	message := map[string]any{"type": msgType}
	for k, v := range data {
		message[k] = v
	}

	jsonData, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling %s message: %v", msgType, err)
		return
	}

	select {
	case player.Send <- jsonData:
	default:
		log.Printf("Send buffer full for player %s (%s), dropping %s", player.ID, player.Username, msgType)
	}
}
