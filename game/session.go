package game

import (
	"sync"
	"time"

	"snakeduel-backend/constants"
	"snakeduel-backend/engine"
	"snakeduel-backend/models"
)

type Phase string

const (
	PhaseWaiting  Phase = "waiting"
	PhasePlaying  Phase = "playing"
	PhaseFinished Phase = "finished"
)

// Snapshot is the per-tick broadcast payload: deep copies, safe to
// marshal after the session mutex is released.
type Snapshot struct {
	Snakes map[string]models.Snake `json:"snakes"`
	Food   models.Cell             `json:"food"`
}

type Outcome struct {
	Draw     bool
	WinnerID string
}

type TickResult struct {
	Snapshot *Snapshot
	Over     *Outcome
	GridFull bool
}

// Session is the authoritative state machine for one room's game. All
// mutation happens under its mutex, so a tick and a concurrent
// direction change can never interleave partway through a step.
type Session struct {
	mu     sync.Mutex
	roomID string

	// member ids in join order; determines which corner each snake starts in
	first  string
	second string

	snakes map[string]*models.Snake
	food   models.Cell
	phase  Phase
	ready  map[string]bool

	// per-round tick ownership, nil outside playing/countdown
	ticker *time.Ticker
	quit   chan struct{}
}

func NewSession(roomID, firstID, secondID string) *Session {
	s := &Session{roomID: roomID, first: firstID, second: secondID}
	s.mu.Lock()
	s.startRoundLocked()
	s.mu.Unlock()
	return s
}

// StartRound resets snakes, food, scores and votes and returns the
// session to waiting. Any running round is cancelled first.
func (s *Session) StartRound() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startRoundLocked()
}

func (s *Session) startRoundLocked() {
	s.endRoundLocked()
	s.snakes = engine.NewRoundSnakes(s.first, s.second)
	// a fresh board with two single-cell snakes always has a free cell
	s.food, _ = engine.PlaceFood(s.snakes, constants.GRID_COLS, constants.GRID_ROWS)
	s.ready = make(map[string]bool)
	s.phase = PhaseWaiting
	s.quit = make(chan struct{})
}

// endRoundLocked cancels the round's timer exactly once; calling it
// again is a no-op.
func (s *Session) endRoundLocked() {
	if s.ticker != nil {
		s.ticker.Stop()
		s.ticker = nil
	}
	if s.quit != nil {
		close(s.quit)
		s.quit = nil
	}
}

// Stop tears the session down. Safe to call any number of times and
// concurrently with a running tick.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endRoundLocked()
	s.phase = PhaseFinished
}

func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Done returns the current round's cancellation channel. It is closed
// when the round ends for any reason.
func (s *Session) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quit
}

// Ready records a member's ready vote. Duplicate votes are no-ops. A
// vote arriving after a finished round first resets the round (the
// rematch path), which readyReset reports so the gateway can re-prompt
// the other player. bothReady fires once per round, with votes cleared.
func (s *Session) Ready(connID string) (bothReady, readyReset bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if connID != s.first && connID != s.second {
		return false, false
	}
	if s.phase == PhaseFinished {
		s.startRoundLocked()
		readyReset = true
	}
	if s.phase != PhaseWaiting {
		return false, readyReset
	}
	s.ready[connID] = true
	if s.ready[s.first] && s.ready[s.second] {
		s.ready = make(map[string]bool)
		return true, readyReset
	}
	return false, readyReset
}

// BeginPlaying flips waiting to playing and arms the tick timer. It
// fails if the round was cancelled while the countdown ran.
func (s *Session) BeginPlaying() (<-chan time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseWaiting || s.quit == nil {
		return nil, false
	}
	s.phase = PhasePlaying
	s.ticker = time.NewTicker(constants.TICK_RATE)
	return s.ticker.C, true
}

// ChangeDirection stages a heading for the next tick. Reversals onto
// the snake's own neck and inputs outside playing are silently dropped.
func (s *Session) ChangeDirection(connID string, dir models.Direction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhasePlaying || !dir.Valid() {
		return
	}
	snake, ok := s.snakes[connID]
	if !ok || !snake.Alive {
		return
	}
	if dir == snake.Direction.Opposite() {
		return
	}
	snake.NextDir = dir
}

// Tick advances the simulation one step: move every live snake, then
// resolve collisions against the post-move bodies. A tick that fires
// after cancellation sees the phase has moved on and does nothing.
func (s *Session) Tick() TickResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhasePlaying {
		return TickResult{}
	}

	ate := engine.Advance(s.snakes, s.food, constants.GRID_COLS, constants.GRID_ROWS)
	if len(ate) > 0 {
		food, err := engine.PlaceFood(s.snakes, constants.GRID_COLS, constants.GRID_ROWS)
		if err != nil {
			// board covered: end the round as a draw instead of spinning
			s.endRoundLocked()
			s.phase = PhaseFinished
			return TickResult{Snapshot: s.snapshotLocked(), Over: &Outcome{Draw: true}, GridFull: true}
		}
		s.food = food
	}

	engine.ResolveCollisions(s.snakes)

	res := TickResult{Snapshot: s.snapshotLocked()}
	alive := engine.AliveIDs(s.snakes)
	switch len(alive) {
	case 0:
		res.Over = &Outcome{Draw: true}
	case 1:
		res.Over = &Outcome{WinnerID: alive[0]}
	default:
		return res
	}
	s.endRoundLocked()
	s.phase = PhaseFinished
	return res
}

// Forfeit ends a round when a member leaves mid-game. It reports
// whether a round was actually in progress, so a natural finish racing
// a disconnect produces exactly one game-over.
func (s *Session) Forfeit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhasePlaying {
		// a countdown may still be pending; cancel it either way
		s.endRoundLocked()
		s.phase = PhaseFinished
		return false
	}
	s.endRoundLocked()
	s.phase = PhaseFinished
	return true
}

// Resync reports the phase and current state for a member rejoining the
// room on a fresh connection.
func (s *Session) Resync() (Phase, *Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase, s.snapshotLocked()
}

func (s *Session) snapshotLocked() *Snapshot {
	snakes := make(map[string]models.Snake, len(s.snakes))
	for id, snake := range s.snakes {
		copied := *snake
		copied.Body = append([]models.Cell(nil), snake.Body...)
		snakes[id] = copied
	}
	return &Snapshot{Snakes: snakes, Food: s.food}
}
