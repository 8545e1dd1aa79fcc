// internal/game/actions.go
package game

import (
	"errors"
	"fmt"

	engine "github.com/jason-s-yu/rummikube/engine"
	"github.com/sirupsen/logrus"
)

// ErrNoGame is returned when an action arrives before a game was dealt.
var ErrNoGame = errors.New("no game in progress")

// Player-facing status lines.
const (
	msgPlaying      = "You are playing. Validate your move or draw at the end."
	msgDeckEmpty    = "The deck is empty!"
	msgAlreadyDrawn = "You have drawn. Your turn is over. Start the next turn."
	msgInvalidBoard = "The board does not contain only valid combinations."
	msgWon          = "You won the game!"
	msgGameOver     = "The game is over. Start a new game."
	msgNoGame       = "No game in progress. Start a new game."
	msgNewTurn      = "New turn. Place tiles or validate to draw."
)

func msgStarted(threshold int) string {
	return fmt.Sprintf("Game started. Your first placement must be worth %d points.", threshold)
}

func msgDrawn(deck int) string {
	return fmt.Sprintf("Tile drawn. Your turn is over. Tiles left in deck: %d.", deck)
}

func msgOpeningTooLow(threshold, value int) string {
	return fmt.Sprintf("Invalid opening. The first placement must be worth at least %d points. Current value: %d.", threshold, value)
}

func msgAccepted(deck int) string {
	return fmt.Sprintf("Turn accepted! Tiles left in deck: %d.", deck)
}

// ErrorMessage maps an action error to the status line shown to the player.
func ErrorMessage(err error, kind engine.ActionKind) string {
	var low *engine.OpeningTooLowError
	switch {
	case errors.As(err, &low):
		return msgOpeningTooLow(low.Threshold, low.Value)
	case errors.Is(err, engine.ErrInvalidBoard):
		return msgInvalidBoard
	case errors.Is(err, engine.ErrEmptyDeck):
		return msgDeckEmpty
	case errors.Is(err, engine.ErrGameOver):
		return msgGameOver
	case errors.Is(err, ErrNoGame):
		return msgNoGame
	case errors.Is(err, engine.ErrWrongPhase):
		if kind == engine.ActionDraw {
			return msgPlaying
		}
		return msgAlreadyDrawn
	default:
		return err.Error()
	}
}

// MoveTile moves a tile between the hand and the board. Illegal moves are
// ignored and reported as false, no event is sent for them.
func (s *Session) MoveTile(from, to engine.Zone, index int) bool {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.moveTile(from, to, index)
}

// DrawTile draws one tile and ends the turn.
func (s *Session) DrawTile() error {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.drawTile()
}

// ValidateTurn checks and commits the current placement.
func (s *Session) ValidateTurn() (engine.Outcome, error) {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.validateTurn()
}

// NextTurn starts the next turn after a draw or pass.
func (s *Session) NextTurn() error {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.nextTurn()
}

// Apply runs a single engine action through the session.
func (s *Session) Apply(a engine.Action) (engine.Outcome, error) {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.apply(a)
}

func (s *Session) apply(a engine.Action) (engine.Outcome, error) {
	switch a.Kind {
	case engine.ActionMove:
		if s.moveTile(a.From, a.To, a.Index) {
			return engine.OutcomeMoved, nil
		}
		return engine.OutcomeNone, nil
	case engine.ActionDraw:
		if err := s.drawTile(); err != nil {
			return engine.OutcomeNone, err
		}
		return engine.OutcomeDrawn, nil
	case engine.ActionValidate:
		return s.validateTurn()
	case engine.ActionNextTurn:
		if err := s.nextTurn(); err != nil {
			return engine.OutcomeNone, err
		}
		return engine.OutcomeNewTurn, nil
	default:
		return engine.OutcomeNone, fmt.Errorf("unhandled action kind %d", a.Kind)
	}
}

func (s *Session) moveTile(from, to engine.Zone, index int) bool {
	if s.Engine == nil {
		return false
	}
	var src []engine.Tile
	if from == engine.ZoneBoard {
		src = s.Engine.Board()
	} else {
		src = s.Engine.Hand()
	}
	if !s.Engine.MoveTile(from, to, index) {
		s.log.WithFields(logrus.Fields{"action": "move", "from": from, "to": to, "index": index}).Debug("Move ignored.")
		return false
	}
	tile := src[index]

	s.logAction("move", map[string]interface{}{
		"tileId": tile.ID,
		"from":   from.String(),
		"to":     to.String(),
		"index":  index,
	})
	s.fireEvent(GameEvent{
		Type: EventPlayerMove,
		Tile: &tile,
		Move: &EventMove{From: from, To: to, Index: index},
	})
	s.persist()
	return true
}

func (s *Session) drawTile() error {
	if s.Engine == nil {
		return s.fail(engine.ActionDraw, ErrNoGame)
	}
	before := make(map[string]struct{}, len(s.Engine.Hand()))
	for _, t := range s.Engine.Hand() {
		before[t.ID] = struct{}{}
	}
	if err := s.Engine.DrawTile(); err != nil {
		return s.fail(engine.ActionDraw, err)
	}

	var drawn *engine.Tile
	for _, t := range s.Engine.Hand() {
		if _, ok := before[t.ID]; !ok {
			t := t
			drawn = &t
			break
		}
	}
	payload := map[string]interface{}{"deck": s.Engine.DeckCount()}
	if drawn != nil {
		payload["tileId"] = drawn.ID
	}

	s.log.WithFields(logrus.Fields{"action": "draw", "deck": s.Engine.DeckCount()}).Debug("Tile drawn.")
	s.logAction("draw", payload)
	s.fireEvent(GameEvent{
		Type:    EventPlayerDraw,
		Message: msgDrawn(s.Engine.DeckCount()),
		Tile:    drawn,
	})
	s.persist()
	return nil
}

func (s *Session) validateTurn() (engine.Outcome, error) {
	if s.Engine == nil {
		return engine.OutcomeNone, s.fail(engine.ActionValidate, ErrNoGame)
	}
	value := s.Engine.PendingValue()

	outcome, err := s.Engine.ValidateTurn()
	if err != nil {
		var low *engine.OpeningTooLowError
		switch {
		case errors.As(err, &low):
			s.reject("opening_too_low", value, err)
		case errors.Is(err, engine.ErrInvalidBoard):
			s.reject("invalid_board", value, err)
		default:
			return outcome, s.fail(engine.ActionValidate, err)
		}
		return outcome, err
	}

	s.log.WithFields(logrus.Fields{"action": "validate", "outcome": outcome.String(), "value": value}).Info("Turn validated.")
	s.logAction("validate", map[string]interface{}{"outcome": outcome.String(), "value": value})
	s.recordTurn(outcome.String(), "", value)

	switch outcome {
	case engine.OutcomePassed:
		s.fireEvent(GameEvent{Type: EventTurnPassed, Message: msgAlreadyDrawn})
	default:
		s.fireEvent(GameEvent{Type: EventTurnAccepted, Message: msgAccepted(s.Engine.DeckCount())})
	}
	s.persist()

	if outcome == engine.OutcomeWon {
		s.endGame()
	}
	return outcome, nil
}

func (s *Session) nextTurn() error {
	if s.Engine == nil {
		return s.fail(engine.ActionNextTurn, ErrNoGame)
	}
	if err := s.Engine.NextTurn(); err != nil {
		return s.fail(engine.ActionNextTurn, err)
	}
	s.logAction("next_turn", nil)
	s.fireEvent(GameEvent{Type: EventNewTurn, Message: msgNewTurn})
	s.persist()
	return nil
}

// reject reports a validation the rules refused. The placement stays on
// the board.
func (s *Session) reject(reason string, value int, err error) {
	s.log.WithFields(logrus.Fields{"action": "validate", "reason": reason, "value": value}).Info("Turn rejected.")
	s.logAction("validate_rejected", map[string]interface{}{"reason": reason, "value": value})
	s.recordTurn("rejected", reason, value)
	s.fireEvent(GameEvent{
		Type:    EventTurnRejected,
		Message: ErrorMessage(err, engine.ActionValidate),
		Payload: map[string]interface{}{"reason": reason, "value": value},
	})
}

// fail reports a refused action to the player and returns err unchanged.
func (s *Session) fail(kind engine.ActionKind, err error) error {
	s.log.WithField("action", kind.String()).WithError(err).Debug("Action refused.")
	s.fireEvent(GameEvent{
		Type:    EventActionFail,
		Message: ErrorMessage(err, kind),
		Payload: map[string]interface{}{"action": kind.String(), "error": err.Error()},
	})
	return err
}
