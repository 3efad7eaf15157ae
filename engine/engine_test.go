package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snakeduel-backend/constants"
	"snakeduel-backend/models"
)

func snakeAt(cells []models.Cell, dir models.Direction) *models.Snake {
	return &models.Snake{
		Body:      cells,
		Direction: dir,
		NextDir:   dir,
		Alive:     true,
	}
}

func TestOppositeIsInvolution(t *testing.T) {
	for _, d := range []models.Direction{models.Up, models.Down, models.Left, models.Right} {
		assert.Equal(t, d, d.Opposite().Opposite(), "opposite(opposite(%s))", d)
		assert.NotEqual(t, d, d.Opposite())
	}
}

func TestNextHead(t *testing.T) {
	cases := []struct {
		dir  models.Direction
		want models.Cell
	}{
		{models.Up, models.Cell{X: 5, Y: 4}},
		{models.Down, models.Cell{X: 5, Y: 6}},
		{models.Left, models.Cell{X: 4, Y: 5}},
		{models.Right, models.Cell{X: 6, Y: 5}},
	}
	for _, tc := range cases {
		s := snakeAt([]models.Cell{{X: 5, Y: 5}}, tc.dir)
		assert.Equal(t, tc.want, NextHead(s), "direction %s", tc.dir)
	}
}

func TestAdvanceGrowsOnlyOnFood(t *testing.T) {
	snakes := map[string]*models.Snake{
		"a": snakeAt([]models.Cell{{X: 2, Y: 2}, {X: 1, Y: 2}}, models.Right),
		"b": snakeAt([]models.Cell{{X: 10, Y: 10}}, models.Left),
	}

	// Food directly in front of a, nowhere near b.
	ate := Advance(snakes, models.Cell{X: 3, Y: 2}, constants.GRID_COLS, constants.GRID_ROWS)

	require.Equal(t, []string{"a"}, ate)
	assert.Len(t, snakes["a"].Body, 3, "eater grows by one")
	assert.Equal(t, models.Cell{X: 3, Y: 2}, snakes["a"].Body[0])
	assert.Equal(t, 1, snakes["a"].Score)

	assert.Len(t, snakes["b"].Body, 1, "non-eater keeps its length")
	assert.Equal(t, models.Cell{X: 9, Y: 10}, snakes["b"].Body[0])
	assert.Equal(t, 0, snakes["b"].Score)
}

func TestAdvanceAppliesStagedDirection(t *testing.T) {
	s := snakeAt([]models.Cell{{X: 5, Y: 5}}, models.Right)
	s.NextDir = models.Up
	snakes := map[string]*models.Snake{"a": s}

	Advance(snakes, models.Cell{X: 0, Y: 0}, constants.GRID_COLS, constants.GRID_ROWS)

	assert.Equal(t, models.Up, s.Direction)
	assert.Equal(t, models.Cell{X: 5, Y: 4}, s.Body[0])
}

func TestWallCollisionKillsWithoutMoving(t *testing.T) {
	cases := []struct {
		name string
		head models.Cell
		dir  models.Direction
	}{
		{"left wall", models.Cell{X: 0, Y: 5}, models.Left},
		{"right wall", models.Cell{X: constants.GRID_COLS - 1, Y: 5}, models.Right},
		{"top wall", models.Cell{X: 5, Y: 0}, models.Up},
		{"bottom wall", models.Cell{X: 5, Y: constants.GRID_ROWS - 1}, models.Down},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := snakeAt([]models.Cell{tc.head}, tc.dir)
			snakes := map[string]*models.Snake{"a": s}

			Advance(snakes, models.Cell{X: 10, Y: 10}, constants.GRID_COLS, constants.GRID_ROWS)

			assert.False(t, s.Alive)
			assert.Equal(t, []models.Cell{tc.head}, s.Body, "dead snake's body is left for the final frame")
		})
	}
}

func TestSelfCollision(t *testing.T) {
	// Head curls back into the snake's own fourth segment.
	s := snakeAt([]models.Cell{
		{X: 5, Y: 5}, {X: 5, Y: 6}, {X: 6, Y: 6}, {X: 6, Y: 5}, {X: 6, Y: 4},
	}, models.Right)
	s.Body[0] = s.Body[3] // post-move head already on its own body
	snakes := map[string]*models.Snake{"a": s}

	ResolveCollisions(snakes)

	assert.False(t, s.Alive)
}

func TestBodyCollisionKillsOnlyTheRunner(t *testing.T) {
	// Scenario: a moved onto b's body while b stayed clear.
	a := snakeAt([]models.Cell{{X: 5, Y: 5}, {X: 4, Y: 5}}, models.Right)
	b := snakeAt([]models.Cell{{X: 5, Y: 4}, {X: 5, Y: 5}, {X: 5, Y: 6}}, models.Up)
	snakes := map[string]*models.Snake{"a": a, "b": b}

	ResolveCollisions(snakes)

	assert.False(t, a.Alive, "a ran into b's body")
	assert.True(t, b.Alive)
	assert.Equal(t, []string{"b"}, AliveIDs(snakes))
}

func TestHeadToHeadKillsBoth(t *testing.T) {
	a := snakeAt([]models.Cell{{X: 5, Y: 5}, {X: 4, Y: 5}}, models.Right)
	b := snakeAt([]models.Cell{{X: 5, Y: 5}, {X: 6, Y: 5}}, models.Left)
	snakes := map[string]*models.Snake{"a": a, "b": b}

	ResolveCollisions(snakes)

	assert.False(t, a.Alive)
	assert.False(t, b.Alive)
	assert.Empty(t, AliveIDs(snakes))
}

// Moving then resolving must not depend on which snake the map hands out
// first. Go randomizes map iteration, so repeating the same one-tick
// scenario exercises both orders.
func TestTickOutcomeIsOrderIndependent(t *testing.T) {
	for i := 0; i < 100; i++ {
		a := snakeAt([]models.Cell{{X: 4, Y: 5}, {X: 3, Y: 5}}, models.Right)
		b := snakeAt([]models.Cell{{X: 6, Y: 5}, {X: 7, Y: 5}}, models.Left)
		snakes := map[string]*models.Snake{"a": a, "b": b}

		Advance(snakes, models.Cell{X: 0, Y: 0}, constants.GRID_COLS, constants.GRID_ROWS)
		ResolveCollisions(snakes)

		// Both heads land on (5,5): always a mutual kill.
		assert.False(t, a.Alive, "iteration %d", i)
		assert.False(t, b.Alive, "iteration %d", i)
		assert.Equal(t, models.Cell{X: 5, Y: 5}, a.Body[0])
		assert.Equal(t, models.Cell{X: 5, Y: 5}, b.Body[0])
	}
}

func TestPlaceFoodAvoidsBodies(t *testing.T) {
	snakes := map[string]*models.Snake{
		"a": snakeAt([]models.Cell{{X: 2, Y: 2}, {X: 1, Y: 2}, {X: 0, Y: 2}}, models.Right),
		"b": snakeAt([]models.Cell{{X: 17, Y: 17}}, models.Left),
	}

	for i := 0; i < 50; i++ {
		food, err := PlaceFood(snakes, constants.GRID_COLS, constants.GRID_ROWS)
		require.NoError(t, err)
		for id, s := range snakes {
			for _, seg := range s.Body {
				assert.NotEqual(t, seg, food, "food on snake %s", id)
			}
		}
	}
}

func TestPlaceFoodFullGrid(t *testing.T) {
	cols, rows := 3, 3
	body := make([]models.Cell, 0, cols*rows)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			body = append(body, models.Cell{X: x, Y: y})
		}
	}
	snakes := map[string]*models.Snake{"a": snakeAt(body, models.Right)}

	_, err := PlaceFood(snakes, cols, rows)
	assert.ErrorIs(t, err, ErrGridFull)

	// One free cell must still be found deterministically.
	snakes["a"].Body = body[1:]
	food, err := PlaceFood(snakes, cols, rows)
	require.NoError(t, err)
	assert.Equal(t, body[0], food)
}

func TestNewRoundSnakes(t *testing.T) {
	snakes := NewRoundSnakes("first", "second")
	require.Len(t, snakes, 2)

	first := snakes["first"]
	assert.Equal(t, []models.Cell{{X: 2, Y: 2}}, first.Body)
	assert.Equal(t, models.Right, first.Direction)
	assert.True(t, first.Alive)
	assert.Equal(t, 0, first.Score)

	second := snakes["second"]
	assert.Equal(t, []models.Cell{{X: constants.GRID_COLS - 3, Y: constants.GRID_ROWS - 3}}, second.Body)
	assert.Equal(t, models.Left, second.Direction)
	assert.True(t, second.Alive)
	assert.Equal(t, 0, second.Score)
}
