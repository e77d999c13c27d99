package game

// GameState is the unit of synchronization between peers.
//
// INVARIANT: GameOver is true iff Winner != WinnerNone.
type GameState struct {
	Board         Board
	CurrentPlayer Cell
	Winner        Winner
	GameOver      bool
}

// NewState returns the standard opening with Black to move.
func NewState() GameState {
	return GameState{
		Board:         OpeningBoard(),
		CurrentPlayer: Black,
		Winner:        WinnerNone,
		GameOver:      false,
	}
}

// Engine owns one GameState and applies the rules to it.
//
// Engine is not safe for concurrent use; the sync coordinator serializes
// access behind its lock.
type Engine struct {
	state GameState

	// extraTurn records that the last move left the opponent without a
	// reply. It is local bookkeeping and is never serialized.
	extraTurn bool
}

// New creates an Engine at the opening position.
func New() *Engine {
	e := &Engine{}
	e.Reset()
	return e
}

// Reset returns the engine to the opening position.
func (e *Engine) Reset() {
	e.state = NewState()
	e.extraTurn = false
}

// ComputeCaptures returns the cells player would flip by placing at
// (row, col). It never mutates the engine.
func (e *Engine) ComputeCaptures(row, col int, player Cell) ([]Pos, error) {
	if !InBounds(row, col) {
		return nil, NewInvalidCoordinateError(row, col)
	}
	if !player.IsPlayer() {
		return nil, newInvalidPlayerError(player)
	}
	return e.state.Board.Captures(row, col, player), nil
}

// HasAnyValidMove reports whether player could place anywhere.
func (e *Engine) HasAnyValidMove(player Cell) bool {
	return e.state.Board.HasMove(player)
}

// ValidMoves lists the legal placements for player.
func (e *Engine) ValidMoves(player Cell) []Pos {
	return e.state.Board.ValidMoves(player)
}

// ApplyMove plays the current player at (row, col). It returns false,
// leaving the state untouched, when the move is rejected.
func (e *Engine) ApplyMove(row, col int) bool {
	return e.TryMove(row, col) == nil
}

// TryMove is ApplyMove reporting why a move was rejected.
func (e *Engine) TryMove(row, col int) error {
	if e.state.GameOver {
		return newGameOverError(e.state.Winner)
	}
	player := e.state.CurrentPlayer
	captures, err := e.ComputeCaptures(row, col, player)
	if err != nil {
		return err
	}
	if len(captures) == 0 {
		return NewInvalidMoveError(row, col, player)
	}

	e.state.Board[row][col] = player
	for _, p := range captures {
		e.state.Board[p.Row][p.Col] = player
	}

	e.advanceTurn()
	return nil
}

// advanceTurn runs the turn state machine for the player who just moved.
func (e *Engine) advanceTurn() {
	mover := e.state.CurrentPlayer
	next := mover.Opponent()
	e.extraTurn = false

	switch {
	case e.state.Board.HasMove(next):
		e.state.CurrentPlayer = next
	case e.state.Board.HasMove(mover):
		e.extraTurn = true
	default:
		e.finish()
	}

	// A full board ends the game even if a turn was just handed out.
	if !e.state.GameOver && e.state.Board.Full() {
		e.extraTurn = false
		e.finish()
	}
}

func (e *Engine) finish() {
	e.state.GameOver = true
	e.state.Winner = tally(e.state.Board)
}

// tally decides the winner by piece count.
func tally(b Board) Winner {
	black, white, _ := b.Count()
	switch {
	case black > white:
		return WinnerBlack
	case white > black:
		return WinnerWhite
	default:
		return WinnerDraw
	}
}

// State returns a snapshot of the game. The snapshot shares no memory
// with the engine.
func (e *Engine) State() GameState {
	return e.state
}

// LoadState replaces the entire engine state without validation. The
// caller is trusted to supply a state produced by an identical rule set.
func (e *Engine) LoadState(s GameState) {
	e.state = s
	e.extraTurn = false
}

// CurrentPlayer returns the colour to move.
func (e *Engine) CurrentPlayer() Cell { return e.state.CurrentPlayer }

// GameOver reports whether the game has ended.
func (e *Engine) GameOver() bool { return e.state.GameOver }

// Winner returns the outcome, WinnerNone while the game is running.
func (e *Engine) Winner() Winner { return e.state.Winner }

// ExtraTurn reports whether the last move granted the mover another turn
// because the opponent had no reply.
func (e *Engine) ExtraTurn() bool { return e.extraTurn }

// Cell returns the occupant of (row, col).
func (e *Engine) Cell(row, col int) (Cell, error) {
	if !InBounds(row, col) {
		return Empty, NewInvalidCoordinateError(row, col)
	}
	return e.state.Board[row][col], nil
}

// Counts tallies the current board.
func (e *Engine) Counts() (black, white, empty int) {
	return e.state.Board.Count()
}
