package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"snakeduel-backend/auth"
	"snakeduel-backend/game"
	"snakeduel-backend/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development
	},
}

type WebSocketHandler struct {
	gameManager *game.Manager
}

func NewWebSocketHandler(gameManager *game.Manager) *WebSocketHandler {
	return &WebSocketHandler{gameManager: gameManager}
}

func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	playerID, username := h.resolveIdentity(r)
	if _, connected := h.gameManager.Lobby.Get(playerID); connected {
		log.Printf("Player %s is already connected, closing duplicate connection", playerID)
		conn.Close()
		return
	}

	player := &models.Player{
		ID:       playerID,
		Username: username,
		Send:     make(chan []byte, 256),
		JoinedAt: time.Now(),
	}

	// Fresh token in the ack so any client can reconnect with this id.
	token, err := auth.GenerateToken(player.ID, player.Username)
	if err != nil {
		log.Printf("Failed to generate token for %s: %v", player.ID, err)
	}

	h.gameManager.Lobby.Add(player)

	go h.writePump(player, conn)

	h.send(player, map[string]any{
		"type": "connected",
		"player": map[string]any{
			"id":       player.ID,
			"username": player.Username,
		},
		"token": token,
	})
	h.gameManager.SendRoomList(player)
	h.gameManager.BroadcastUserList()

	h.readPump(player, conn)
}

// resolveIdentity prefers a guest token (stable id across reconnects)
// and falls back to a fresh id with the username query parameter.
func (h *WebSocketHandler) resolveIdentity(r *http.Request) (playerID, username string) {
	if token := r.URL.Query().Get("token"); token != "" {
		if claims, err := auth.ValidateToken(token); err == nil {
			return claims.PlayerID, claims.Username
		} else {
			log.Printf("Token validation error: %v", err)
		}
	}

	playerID = uuid.New().String()
	username = r.URL.Query().Get("username")
	if username == "" {
		username = "player_" + playerID[:8]
	}
	return playerID, username
}

func (h *WebSocketHandler) send(player *models.Player, message map[string]any) {
	jsonData, _ := json.Marshal(message)
	select {
	case player.Send <- jsonData:
	default:
		log.Printf("Failed to send message to player %s", player.Username)
	}
}

func (h *WebSocketHandler) readPump(player *models.Player, conn *websocket.Conn) {
	defer func() {
		h.gameManager.DisconnectPlayer(player.ID)
		conn.Close()
		log.Printf("Player %s (%s) disconnected", player.ID, player.Username)
	}()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetReadLimit(maxMessageSize)
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error for %s: %v", player.Username, err)
			}
			break
		}

		var msgData map[string]any
		if err := json.Unmarshal(message, &msgData); err != nil {
			log.Printf("Error unmarshaling message from %s: %v", player.Username, err)
			continue
		}

		msgType, ok := msgData["type"].(string)
		if !ok {
			log.Printf("Message from %s missing type field", player.Username)
			continue
		}

		h.gameManager.HandleMessage(player, msgType, msgData)
	}
}

func (h *WebSocketHandler) writePump(player *models.Player, conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case message, ok := <-player.Send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages
			n := len(player.Send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-player.Send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
