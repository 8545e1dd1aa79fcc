package engine

// CanPlay reports whether tiles may currently be moved.
func (g *Game) CanPlay() bool { return !g.won && g.phase == PhasePlaying }

// CanDraw reports whether DrawTile's phase preconditions hold. The deck may
// still be empty.
func (g *Game) CanDraw() bool { return !g.won && g.phase == PhaseDrawing && !g.hasDrawn }

// CanValidate reports whether the validate control is enabled. Validating in
// PhaseDrawing is accepted as a pass but is not offered as a control.
func (g *Game) CanValidate() bool { return !g.won && g.phase == PhasePlaying }

// CanNextTurn reports whether a new turn can be started.
func (g *Game) CanNextTurn() bool { return !g.won && g.phase == PhaseEndTurn }

// LegalActions returns every action that would change the state right now.
// Moves are listed hand-to-board first, then board-to-hand.
func (g *Game) LegalActions() []Action {
	var actions []Action
	if g.won {
		return actions
	}

	switch g.phase {
	case PhasePlaying:
		for i := range g.hand {
			actions = append(actions, Move(ZoneHand, ZoneBoard, i))
		}
		for i := range g.board {
			if g.canMove(ZoneBoard, ZoneHand, i) {
				actions = append(actions, Move(ZoneBoard, ZoneHand, i))
			}
		}
		actions = append(actions, Action{Kind: ActionValidate})

	case PhaseDrawing:
		if !g.hasDrawn && len(g.deck) > 0 {
			actions = append(actions, Action{Kind: ActionDraw})
		}
		actions = append(actions, Action{Kind: ActionValidate})

	case PhaseEndTurn:
		actions = append(actions, Action{Kind: ActionNextTurn})
	}
	return actions
}
