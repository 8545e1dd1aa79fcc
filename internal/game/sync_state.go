// internal/game/sync_state.go
package game

import (
	"github.com/google/uuid"
	engine "github.com/jason-s-yu/rummikube/engine"
)

// Controls mirrors which buttons the client should enable.
type Controls struct {
	CanPlay     bool `json:"canPlay"`
	CanDraw     bool `json:"canDraw"`
	CanValidate bool `json:"canValidate"`
	CanNextTurn bool `json:"canNextTurn"`
}

// StateView is the read-only state sent to the client for rendering.
type StateView struct {
	GameID          uuid.UUID         `json:"gameId"`
	Started         bool              `json:"started"`
	Phase           engine.Phase      `json:"phase"`
	HasDrawn        bool              `json:"hasDrawn"`
	InitialMoveMade bool              `json:"initialMoveMade"`
	Won             bool              `json:"won"`
	Turn            int               `json:"turn"`
	DeckCount       int               `json:"deckCount"`
	Hand            []engine.Tile     `json:"hand"` // Sorted by value, then color.
	Board           []engine.Tile     `json:"board"`
	PendingValue    int               `json:"pendingValue"` // Value of the tiles placed this turn.
	Controls        Controls          `json:"controls"`
	HouseRules      engine.HouseRules `json:"houseRules"`
}

// State returns the current view of the session.
func (s *Session) State() StateView {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.stateView()
}

// Sync sends the current state to the player.
func (s *Session) Sync() {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	s.fireEvent(GameEvent{Type: EventSyncState})
}

// stateView builds the view from the engine. This function assumes the
// lock is HELD by the caller.
func (s *Session) stateView() StateView {
	view := StateView{
		GameID:     s.ID,
		HouseRules: s.Rules,
		Hand:       []engine.Tile{},
		Board:      []engine.Tile{},
	}
	if s.Engine == nil {
		return view
	}
	g := s.Engine
	view.Started = true
	view.Phase = g.Phase()
	view.HasDrawn = g.HasDrawn()
	view.InitialMoveMade = g.InitialMoveMade()
	view.Won = g.Won()
	view.Turn = int(g.TurnNumber())
	view.DeckCount = g.DeckCount()
	view.Hand = g.Hand()
	view.Board = g.Board()
	view.PendingValue = g.PendingValue()
	view.HouseRules = g.Rules()
	view.Controls = Controls{
		CanPlay:     g.CanPlay(),
		CanDraw:     g.CanDraw(),
		CanValidate: g.CanValidate(),
		CanNextTurn: g.CanNextTurn(),
	}
	return view
}
