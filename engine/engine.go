package engine

import (
	"errors"
	"math/rand"

	"snakeduel-backend/constants"
	"snakeduel-backend/models"
)

// ErrGridFull is returned by PlaceFood when no free cell remains.
var ErrGridFull = errors.New("no free cell left for food")

// NextHead returns the cell the snake's head moves into. The result is
// not clamped; out-of-range cells are what wall collision checks look for.
func NextHead(s *models.Snake) models.Cell {
	head := s.Body[0]
	switch s.Direction {
	case models.Up:
		return models.Cell{X: head.X, Y: head.Y - 1}
	case models.Down:
		return models.Cell{X: head.X, Y: head.Y + 1}
	case models.Left:
		return models.Cell{X: head.X - 1, Y: head.Y}
	default:
		return models.Cell{X: head.X + 1, Y: head.Y}
	}
}

func InBounds(c models.Cell, cols, rows int) bool {
	return c.X >= 0 && c.X < cols && c.Y >= 0 && c.Y < rows
}

// Advance moves every live snake one step and returns the ids that ate
// the food this step. Each snake's staged NextDir becomes its heading
// before it moves. A snake whose next head leaves the grid dies in place:
// its body is not touched, so the stale body still appears in the next
// broadcast. Every head is checked against the same food cell, so the
// outcome does not depend on iteration order.
func Advance(snakes map[string]*models.Snake, food models.Cell, cols, rows int) []string {
	for _, s := range snakes {
		if s.Alive {
			s.Direction = s.NextDir
		}
	}

	var ate []string
	for id, s := range snakes {
		if !s.Alive {
			continue
		}

		head := NextHead(s)
		if !InBounds(head, cols, rows) {
			s.Alive = false
			continue
		}

		s.Body = append([]models.Cell{head}, s.Body...)
		if head == food {
			s.Score++
			ate = append(ate, id)
		} else {
			s.Body = s.Body[:len(s.Body)-1]
		}
	}
	return ate
}

// ResolveCollisions runs the second pass over the post-move bodies: a
// snake dies if its new head sits on one of its own later segments or on
// any segment of another snake, head included. Dead snakes' bodies still
// count as obstacles, and a simultaneous head-to-head kills both sides.
func ResolveCollisions(snakes map[string]*models.Snake) {
	dead := make([]*models.Snake, 0, len(snakes))
	for id, s := range snakes {
		if !s.Alive {
			continue
		}
		head := s.Body[0]

		for _, seg := range s.Body[1:] {
			if seg == head {
				dead = append(dead, s)
				break
			}
		}

		for otherID, other := range snakes {
			if otherID == id {
				continue
			}
			for _, seg := range other.Body {
				if seg == head {
					dead = append(dead, s)
				}
			}
		}
	}
	for _, s := range dead {
		s.Alive = false
	}
}

// AliveIDs returns the ids of snakes still alive.
func AliveIDs(snakes map[string]*models.Snake) []string {
	var alive []string
	for id, s := range snakes {
		if s.Alive {
			alive = append(alive, id)
		}
	}
	return alive
}

// PlaceFood picks a cell not covered by any snake segment. It samples
// randomly a bounded number of times, then falls back to scanning the
// grid so it always terminates. ErrGridFull means the board is covered,
// which a 20x20 grid with two snakes never reaches in practice.
func PlaceFood(snakes map[string]*models.Snake, cols, rows int) (models.Cell, error) {
	occupied := make(map[models.Cell]bool)
	for _, s := range snakes {
		for _, seg := range s.Body {
			occupied[seg] = true
		}
	}

	for i := 0; i < cols*rows; i++ {
		c := models.Cell{X: rand.Intn(cols), Y: rand.Intn(rows)}
		if !occupied[c] {
			return c, nil
		}
	}

	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			c := models.Cell{X: x, Y: y}
			if !occupied[c] {
				return c, nil
			}
		}
	}
	return models.Cell{}, ErrGridFull
}

// NewRoundSnakes builds the deterministic opposite-corner starting pair:
// the first id at (2,2) heading right, the second at (cols-3, rows-3)
// heading left.
func NewRoundSnakes(firstID, secondID string) map[string]*models.Snake {
	return map[string]*models.Snake{
		firstID: {
			Body:      []models.Cell{{X: 2, Y: 2}},
			Direction: models.Right,
			NextDir:   models.Right,
			Alive:     true,
		},
		secondID: {
			Body:      []models.Cell{{X: constants.GRID_COLS - 3, Y: constants.GRID_ROWS - 3}},
			Direction: models.Left,
			NextDir:   models.Left,
			Alive:     true,
		},
	}
}
