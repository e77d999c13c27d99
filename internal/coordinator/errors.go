package coordinator

import (
	"errors"
	"fmt"
)

// SyncError reports why a coordinator operation did not change the game.
//
// Sync errors are never fatal. The engine and the lock are left as they
// were before the call.
type SyncError struct {
	// Code identifies the error category.
	Code SyncErrorCode

	// Message is a human-readable description.
	Message string

	// Key is the property involved, when any.
	Key string

	// Err is the underlying cause, when any.
	Err error
}

// SyncErrorCode categorizes sync errors.
type SyncErrorCode string

const (
	// ErrCodeBusy indicates a local action arrived while the lock was held.
	ErrCodeBusy SyncErrorCode = "BUSY"

	// ErrCodeGameOver indicates a move on a finished game.
	ErrCodeGameOver SyncErrorCode = "GAME_OVER"

	// ErrCodeInvalidMove indicates the engine rejected a move.
	ErrCodeInvalidMove SyncErrorCode = "INVALID_MOVE"

	// ErrCodeDeserialization indicates a stored snapshot could not be parsed.
	ErrCodeDeserialization SyncErrorCode = "DESERIALIZATION_FAILURE"

	// ErrCodeNotReady indicates the local identity never became known.
	ErrCodeNotReady SyncErrorCode = "NOT_READY"

	// ErrCodeReadFailure indicates the store could not be read.
	ErrCodeReadFailure SyncErrorCode = "READ_FAILURE"
)

var (
	// ErrBusy rejects a local action while another update is in progress.
	ErrBusy = &SyncError{Code: ErrCodeBusy, Message: "update in progress"}

	// ErrGameOver rejects a move once the game has ended.
	ErrGameOver = &SyncError{Code: ErrCodeGameOver, Message: "game is over"}

	// ErrNotReady is returned when the local participant is not identified
	// within the readiness timeout. Callers may retry.
	ErrNotReady = &SyncError{Code: ErrCodeNotReady, Message: "local participant not identified"}
)

// Error implements the error interface.
func (e *SyncError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Key != "" {
		msg += fmt.Sprintf(" (key=%s)", e.Key)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *SyncError) Unwrap() error { return e.Err }

func hasCode(err error, code SyncErrorCode) bool {
	var se *SyncError
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}

// IsBusy returns true if err rejected an action because the lock was held.
// Uses errors.As to handle wrapped errors.
func IsBusy(err error) bool { return hasCode(err, ErrCodeBusy) }

// IsGameOver returns true if err rejected a move on a finished game.
func IsGameOver(err error) bool { return hasCode(err, ErrCodeGameOver) }

// IsInvalidMove returns true if the engine refused the move.
func IsInvalidMove(err error) bool { return hasCode(err, ErrCodeInvalidMove) }

// IsDeserializationFailure returns true if a stored snapshot was malformed.
func IsDeserializationFailure(err error) bool { return hasCode(err, ErrCodeDeserialization) }

// IsNotReady returns true if the readiness wait timed out.
func IsNotReady(err error) bool { return hasCode(err, ErrCodeNotReady) }

// IsReadFailure returns true if the store read failed.
func IsReadFailure(err error) bool { return hasCode(err, ErrCodeReadFailure) }

func newInvalidMoveError(row, col int, cause error) *SyncError {
	return &SyncError{
		Code:    ErrCodeInvalidMove,
		Message: fmt.Sprintf("move (%d,%d) rejected", row, col),
		Err:     cause,
	}
}

func newDeserializationError(key string, cause error) *SyncError {
	return &SyncError{
		Code:    ErrCodeDeserialization,
		Message: "stored game state is malformed",
		Key:     key,
		Err:     cause,
	}
}

func newReadFailureError(key string, cause error) *SyncError {
	return &SyncError{
		Code:    ErrCodeReadFailure,
		Message: "reading game state failed",
		Key:     key,
		Err:     cause,
	}
}
