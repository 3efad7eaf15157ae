package models

import "time"

type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type Direction string

const (
	Up    Direction = "up"
	Down  Direction = "down"
	Left  Direction = "left"
	Right Direction = "right"
)

// Opposite returns the reverse heading. Opposite(Opposite(d)) == d.
func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	case Right:
		return Left
	}
	return d
}

func (d Direction) Valid() bool {
	switch d {
	case Up, Down, Left, Right:
		return true
	}
	return false
}

type Snake struct {
	Body      []Cell    `json:"body"`
	Direction Direction `json:"direction"`
	NextDir   Direction `json:"-"`
	Alive     bool      `json:"alive"`
	Score     int       `json:"score"`
}

type Player struct {
	ID       string      `json:"id"`
	Username string      `json:"username"`
	Send     chan []byte `json:"-"` // Used for WebSocket
	JoinedAt time.Time   `json:"joined_at"`
}

type RoomInfo struct {
	RoomID       string `json:"roomId"`
	PlayersCount int    `json:"playersCount"`
}
