package engine

import (
	"math/rand"
	"testing"
)

func hasAction(actions []Action, want Action) bool {
	for _, a := range actions {
		if a == want {
			return true
		}
	}
	return false
}

// TestLegalActionsPerPhase verifies which actions are offered in each phase.
func TestLegalActionsPerPhase(t *testing.T) {
	g := newTestGame(t, DefaultHouseRules(), tl(ColorRed, 10), tl(ColorBlue, 10), tl(ColorYellow, 10), tl(ColorBlack, 4))

	actions := g.LegalActions()
	if len(actions) != 5 {
		t.Fatalf("PLAYING: %d actions, want 4 moves + validate", len(actions))
	}
	if !hasAction(actions, Action{Kind: ActionValidate}) || hasAction(actions, Action{Kind: ActionDraw}) {
		t.Error("PLAYING should offer validate and not draw")
	}
	if !g.CanPlay() || !g.CanValidate() || g.CanDraw() || g.CanNextTurn() {
		t.Error("PLAYING control flags are wrong")
	}

	placeAll(t, g, "red-10-a", "blue-10-a", "yellow-10-a")
	if _, err := g.ValidateTurn(); err != nil {
		t.Fatalf("ValidateTurn: %v", err)
	}

	actions = g.LegalActions()
	if !hasAction(actions, Action{Kind: ActionDraw}) || !hasAction(actions, Action{Kind: ActionValidate}) {
		t.Errorf("DRAWING: actions = %v, want draw and validate", actions)
	}
	if g.CanPlay() || g.CanValidate() || !g.CanDraw() {
		t.Error("DRAWING control flags are wrong")
	}

	if err := g.DrawTile(); err != nil {
		t.Fatalf("DrawTile: %v", err)
	}
	actions = g.LegalActions()
	if len(actions) != 1 || actions[0].Kind != ActionNextTurn {
		t.Errorf("END_TURN: actions = %v, want only next_turn", actions)
	}
	if !g.CanNextTurn() || g.CanDraw() {
		t.Error("END_TURN control flags are wrong")
	}
}

// TestLegalActionsSkipFixed verifies fixed tiles are never offered back to the hand.
func TestLegalActionsSkipFixed(t *testing.T) {
	g := newTestGame(t, DefaultHouseRules(), tl(ColorRed, 10), tl(ColorBlue, 10), tl(ColorYellow, 10), tl(ColorBlack, 4))
	placeAll(t, g, "red-10-a", "blue-10-a", "yellow-10-a")
	g.ValidateTurn()
	g.ValidateTurn()
	g.NextTurn()

	for _, a := range g.LegalActions() {
		if a.Kind == ActionMove && a.From == ZoneBoard {
			t.Errorf("fixed tile offered: %+v", a)
		}
	}
}

// TestRandomPlayInvariants plays random legal actions and checks the tile
// count and flag invariants after each one.
func TestRandomPlayInvariants(t *testing.T) {
	for _, rules := range []HouseRules{
		DefaultHouseRules(),
		{HandSize: 14, OpeningThreshold: 30, RunColorRule: RunColorsSame, BoardCheck: BoardPartition},
	} {
		for seed := uint64(1); seed <= 25; seed++ {
			g := NewGame(seed, rules)
			rng := rand.New(rand.NewSource(int64(seed)))

			for step := 0; step < 400 && !g.Won(); step++ {
				actions := g.LegalActions()
				if len(actions) == 0 {
					break
				}
				a := actions[rng.Intn(len(actions))]
				before := g.Save()

				_, err := g.ApplyAction(a)
				if n := g.TileCount(); n != DeckSize {
					t.Fatalf("seed %d step %d: tile count %d after %+v", seed, step, n, a)
				}
				if err != nil {
					after := g.Save()
					if after.Phase != before.Phase || len(after.Board) != len(before.Board) || after.InitialMoveMade != before.InitialMoveMade {
						t.Fatalf("seed %d step %d: rejected %+v changed state", seed, step, a)
					}
				}
				checkFlags(t, g)
			}
		}
	}
}

func checkFlags(t *testing.T, g *Game) {
	t.Helper()
	for _, h := range g.Hand() {
		if h.IsNew || h.IsFixed {
			t.Fatalf("hand tile %s carries board flags", h.ID)
		}
	}
	for _, b := range g.Board() {
		if b.IsNew && b.IsFixed {
			t.Fatalf("board tile %s is both new and fixed", b.ID)
		}
	}
	if g.Phase() == PhasePlaying && g.HasDrawn() {
		t.Fatal("hasDrawn set while PLAYING")
	}
}
