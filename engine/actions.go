package engine

import "fmt"

// ApplyAction applies a single action. Moves that violate their
// preconditions are ignored and report OutcomeNone with a nil error.
func (g *Game) ApplyAction(a Action) (Outcome, error) {
	switch a.Kind {
	case ActionMove:
		if g.MoveTile(a.From, a.To, a.Index) {
			return OutcomeMoved, nil
		}
		return OutcomeNone, nil
	case ActionDraw:
		if err := g.DrawTile(); err != nil {
			return OutcomeNone, err
		}
		return OutcomeDrawn, nil
	case ActionValidate:
		return g.ValidateTurn()
	case ActionNextTurn:
		if err := g.NextTurn(); err != nil {
			return OutcomeNone, err
		}
		return OutcomeNewTurn, nil
	default:
		return OutcomeNone, fmt.Errorf("unhandled action kind %d", a.Kind)
	}
}

// zone returns a pointer to the slice backing z.
func (g *Game) zone(z Zone) *[]Tile {
	if z == ZoneBoard {
		return &g.board
	}
	return &g.hand
}

// canMove reports whether MoveTile(from, to, index) would move a tile.
func (g *Game) canMove(from, to Zone, index int) bool {
	if g.won || g.phase != PhasePlaying {
		return false
	}
	if (from != ZoneHand && from != ZoneBoard) || (to != ZoneHand && to != ZoneBoard) {
		return false
	}
	src := *g.zone(from)
	if index < 0 || index >= len(src) {
		return false
	}
	if from == ZoneBoard && to == ZoneHand && src[index].IsFixed {
		return false
	}
	return true
}

// MoveTile moves the tile at index in from to the end of to. It reports
// whether the tile moved; an illegal move is silently ignored.
//
// A tile placed on the board is marked IsNew. A tile taken back into the hand
// loses the mark. Tiles committed by an earlier turn cannot leave the board
// but may be moved within it.
func (g *Game) MoveTile(from, to Zone, index int) bool {
	if !g.canMove(from, to, index) {
		return false
	}
	src := g.zone(from)
	t := (*src)[index]
	*src = append((*src)[:index], (*src)[index+1:]...)

	switch to {
	case ZoneBoard:
		// Rearranging a committed tile does not make it part of this turn.
		t.IsNew = !t.IsFixed
		g.board = append(g.board, t)
	case ZoneHand:
		t.IsNew = false
		g.hand = append(g.hand, t)
		sortHand(g.hand)
	}
	return true
}

// DrawTile moves the top deck tile into the hand and ends the turn.
// It is only legal in PhaseDrawing before anything was drawn.
func (g *Game) DrawTile() error {
	if g.won {
		return ErrGameOver
	}
	if g.phase != PhaseDrawing || g.hasDrawn {
		return ErrWrongPhase
	}
	if len(g.deck) == 0 {
		return ErrEmptyDeck
	}

	g.hand = append(g.hand, g.popDeck())
	sortHand(g.hand)
	g.hasDrawn = true
	g.phase = PhaseEndTurn
	return nil
}

// ValidateTurn checks the current placement and commits it.
//
// In PhaseDrawing the turn is already finished: the game moves to
// PhaseEndTurn and OutcomePassed is returned without running any check.
// In PhasePlaying the opening rule (until the first accepted turn) and the
// board combination check run in that order. A rejected turn leaves the
// state untouched, including the placed tiles.
func (g *Game) ValidateTurn() (Outcome, error) {
	if g.won {
		return OutcomeNone, ErrGameOver
	}
	switch g.phase {
	case PhaseDrawing:
		g.phase = PhaseEndTurn
		return OutcomePassed, nil
	case PhasePlaying:
	default:
		return OutcomeNone, ErrWrongPhase
	}

	if !g.initialMoveMade {
		value := CalculateTilesValue(g.NewTilesOnBoard())
		if value < g.rules.OpeningThreshold {
			return OutcomeNone, &OpeningTooLowError{Value: value, Threshold: g.rules.OpeningThreshold}
		}
	}

	if !g.BoardValid() {
		return OutcomeNone, ErrInvalidBoard
	}

	// Every tile on an accepted board is committed for good.
	for i := range g.board {
		g.board[i].IsFixed = true
		g.board[i].IsNew = false
	}
	g.initialMoveMade = true
	g.phase = PhaseDrawing
	g.hasDrawn = false
	g.turnNumber++

	if len(g.hand) == 0 {
		g.won = true
		return OutcomeWon, nil
	}
	return OutcomeAccepted, nil
}

// NextTurn leaves PhaseEndTurn and starts a new turn in PhasePlaying.
func (g *Game) NextTurn() error {
	if g.won {
		return ErrGameOver
	}
	if g.phase != PhaseEndTurn {
		return ErrWrongPhase
	}
	g.phase = PhasePlaying
	g.hasDrawn = false
	return nil
}

// BoardValid reports whether the board passes the configured combination
// check. An empty board is always valid.
func (g *Game) BoardValid() bool {
	if len(g.board) == 0 {
		return true
	}
	switch g.rules.BoardCheck {
	case BoardPartition:
		_, ok := PartitionBoard(g.board, g.rules.RunColorRule)
		return ok
	default:
		return IsRunWith(g.board, g.rules.RunColorRule) || IsSet(g.board)
	}
}
