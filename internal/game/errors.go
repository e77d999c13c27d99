package game

import (
	"errors"
	"fmt"
)

// Error represents a rejected engine operation.
//
// Engine errors are always recoverable: the engine state is untouched
// when one is returned.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Row and Col locate the offending cell when relevant.
	Row int
	Col int
}

// ErrorCode categorizes engine errors.
type ErrorCode string

const (
	// ErrCodeInvalidCoordinate indicates a row or column outside the board.
	ErrCodeInvalidCoordinate ErrorCode = "INVALID_COORDINATE"

	// ErrCodeInvalidMove indicates a placement with no captures.
	ErrCodeInvalidMove ErrorCode = "INVALID_MOVE"

	// ErrCodeGameOver indicates a move attempted after the game ended.
	ErrCodeGameOver ErrorCode = "GAME_OVER"

	// ErrCodeInvalidPlayer indicates a colour that is neither black nor white.
	ErrCodeInvalidPlayer ErrorCode = "INVALID_PLAYER"
)

// Error implements the error interface.
func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeInvalidCoordinate, ErrCodeInvalidMove:
		return fmt.Sprintf("%s: %s (row=%d, col=%d)", e.Code, e.Message, e.Row, e.Col)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

func hasCode(err error, code ErrorCode) bool {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Code == code
	}
	return false
}

// IsInvalidMove returns true if err rejects a move that captures nothing.
// Uses errors.As to handle wrapped errors.
func IsInvalidMove(err error) bool { return hasCode(err, ErrCodeInvalidMove) }

// IsInvalidCoordinate returns true if err reports an off-board coordinate.
func IsInvalidCoordinate(err error) bool { return hasCode(err, ErrCodeInvalidCoordinate) }

// IsGameOver returns true if err rejects a move on a finished game.
func IsGameOver(err error) bool { return hasCode(err, ErrCodeGameOver) }

// NewInvalidCoordinateError creates an Error for an off-board coordinate.
func NewInvalidCoordinateError(row, col int) *Error {
	return &Error{
		Code:    ErrCodeInvalidCoordinate,
		Message: fmt.Sprintf("coordinate outside %dx%d board", Size, Size),
		Row:     row,
		Col:     col,
	}
}

// NewInvalidMoveError creates an Error for a placement that captures nothing.
func NewInvalidMoveError(row, col int, player Cell) *Error {
	return &Error{
		Code:    ErrCodeInvalidMove,
		Message: fmt.Sprintf("%s captures nothing", player),
		Row:     row,
		Col:     col,
	}
}

func newGameOverError(w Winner) *Error {
	return &Error{
		Code:    ErrCodeGameOver,
		Message: fmt.Sprintf("game already over (winner=%s)", w),
	}
}

func newInvalidPlayerError(p Cell) *Error {
	return &Error{
		Code:    ErrCodeInvalidPlayer,
		Message: fmt.Sprintf("%s is not a player", p),
	}
}
