package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrWrongPhase is returned when an action is not legal in the current phase.
	ErrWrongPhase = errors.New("action not allowed in current phase")
	// ErrEmptyDeck is returned when drawing from an empty deck.
	ErrEmptyDeck = errors.New("deck is empty")
	// ErrInvalidBoard is returned when the board is not made of valid combinations.
	ErrInvalidBoard = errors.New("board does not contain only valid combinations")
	// ErrOpeningTooLow matches any *OpeningTooLowError.
	ErrOpeningTooLow = errors.New("opening value too low")
	// ErrGameOver is returned for any action after the game was won.
	ErrGameOver = errors.New("game is already over")
)

// OpeningTooLowError reports an opening placement below the threshold.
type OpeningTooLowError struct {
	Value     int
	Threshold int
}

func (e *OpeningTooLowError) Error() string {
	return fmt.Sprintf("opening must be worth at least %d points, current value %d", e.Threshold, e.Value)
}

// Is makes errors.Is(err, ErrOpeningTooLow) true.
func (e *OpeningTooLowError) Is(target error) bool { return target == ErrOpeningTooLow }
