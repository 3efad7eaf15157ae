package auth

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type guestRequest struct {
	Username string `json:"username"`
}

type guestResponse struct {
	Token    string `json:"token"`
	PlayerID string `json:"player_id"`
	Username string `json:"username"`
}

// GuestHandler mints a fresh player id and a token binding it, so a
// client can keep a stable identity across reconnects.
func GuestHandler(w http.ResponseWriter, r *http.Request) {
	var req guestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	username := strings.TrimSpace(req.Username)
	playerID := uuid.New().String()
	if username == "" {
		username = "player_" + playerID[:8]
	}

	token, err := GenerateToken(playerID, username)
	if err != nil {
		log.Printf("Failed to generate guest token: %v", err)
		http.Error(w, "failed to generate token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(guestResponse{
		Token:    token,
		PlayerID: playerID,
		Username: username,
	})
}
