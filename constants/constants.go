package constants

import "time"

const (
	// Game constants
	GRID_COLS = 20
	GRID_ROWS = 20

	TICK_RATE     = 200 * time.Millisecond
	COUNTDOWN     = 3 * time.Second
	ROOM_CAPACITY = 2

	// Client -> server message types
	MSG_SET_USERNAME     = "lobby:setUsername"
	MSG_CHAT             = "lobby:chat"
	MSG_CREATE_ROOM      = "lobby:createRoom"
	MSG_JOIN_ROOM        = "lobby:joinRoom"
	MSG_LEAVE_ROOM       = "lobby:leaveRoom"
	MSG_SPECTATE_ROOM    = "room:spectate"
	MSG_PLAYER_READY     = "player:ready"
	MSG_CHANGE_DIRECTION = "game:changeDirection"

	// Server -> client message types
	MSG_CONNECTED   = "connected"
	MSG_ROOM_LIST   = "lobby:roomList"
	MSG_USER_LIST   = "lobby:userList"
	MSG_NEW_MESSAGE = "lobby:newMessage"
	MSG_ROOM_JOINED = "lobby:roomJoined"
	MSG_ROOM_ERROR  = "lobby:roomError"
	MSG_SHOW_READY  = "room:showReady"
	MSG_ROOM_READY  = "room:ready"
	MSG_GAME_STATE  = "game:state"
	MSG_GAME_OVER   = "game:over"
)
