package engine

import (
	"testing"
)

// newTestGame builds a game in PhasePlaying whose hand is exactly the given
// tiles. The remaining tiles of the full set form the deck, so the 106-tile
// invariant holds.
func newTestGame(t *testing.T, rules HouseRules, hand ...Tile) *Game {
	t.Helper()
	inHand := make(map[string]bool, len(hand))
	for _, h := range hand {
		if inHand[h.ID] {
			t.Fatalf("duplicate tile %s in test hand", h.ID)
		}
		inHand[h.ID] = true
	}
	var deck []Tile
	for _, d := range NewDeck() {
		if !inHand[d.ID] {
			deck = append(deck, d)
		}
	}
	if len(deck)+len(hand) != DeckSize {
		t.Fatalf("test hand contains tiles outside the set")
	}
	return FromSnapshot(Snapshot{
		Deck:  deck,
		Hand:  hand,
		Phase: PhasePlaying,
		RNG:   1,
		Rules: rules,
	})
}

// tl and tl2 build the two copies of a tile.
func tl(c Color, v int) Tile  { return NewTile(c, v, 'a') }
func tl2(c Color, v int) Tile { return NewTile(c, v, 'b') }

// TestNewDeck verifies the full set has 106 unique tiles with the expected makeup.
func TestNewDeck(t *testing.T) {
	deck := NewDeck()
	if len(deck) != DeckSize {
		t.Fatalf("len(deck) = %d, want %d", len(deck), DeckSize)
	}

	seen := make(map[string]bool)
	counts := make(map[Color]int)
	for _, tile := range deck {
		if seen[tile.ID] {
			t.Errorf("duplicate tile id %s", tile.ID)
		}
		seen[tile.ID] = true
		counts[tile.Color]++
		if tile.IsJoker() {
			if tile.Value != 0 {
				t.Errorf("joker %s has value %d, want 0", tile.ID, tile.Value)
			}
			continue
		}
		if tile.Value < MinValue || tile.Value > MaxValue {
			t.Errorf("tile %s value %d out of range", tile.ID, tile.Value)
		}
	}
	for c := Color(0); c < NumSuitColors; c++ {
		if counts[c] != 26 {
			t.Errorf("color %s count = %d, want 26", c, counts[c])
		}
	}
	if counts[ColorJoker] != 2 {
		t.Errorf("joker count = %d, want 2", counts[ColorJoker])
	}
	if !seen["red-1-a"] || !seen["black-13-b"] || !seen["j1"] || !seen["j2"] {
		t.Error("expected reference tile ids to be present")
	}
}

// TestNewGameDeal verifies a new game deals 14 tiles and resets state.
func TestNewGameDeal(t *testing.T) {
	g := NewGame(42, DefaultHouseRules())

	if got := len(g.Hand()); got != 14 {
		t.Errorf("hand size = %d, want 14", got)
	}
	if g.DeckCount() != 92 {
		t.Errorf("DeckCount = %d, want 92", g.DeckCount())
	}
	if len(g.Board()) != 0 {
		t.Errorf("board size = %d, want 0", len(g.Board()))
	}
	if g.Phase() != PhasePlaying {
		t.Errorf("Phase = %s, want PLAYING", g.Phase())
	}
	if g.HasDrawn() || g.InitialMoveMade() || g.Won() {
		t.Error("flags should be reset on a new game")
	}
	if g.TileCount() != DeckSize {
		t.Errorf("TileCount = %d, want %d", g.TileCount(), DeckSize)
	}
}

// TestNewGameSeedZero verifies that seed 0 is corrected to 1.
func TestNewGameSeedZero(t *testing.T) {
	g0 := NewGame(0, DefaultHouseRules())
	g1 := NewGame(1, DefaultHouseRules())
	h0, h1 := g0.Hand(), g1.Hand()
	for i := range h0 {
		if h0[i].ID != h1[i].ID {
			t.Fatalf("seed 0 and seed 1 hands differ at %d: %s vs %s", i, h0[i].ID, h1[i].ID)
		}
	}
}

// TestNewGameDeterministic verifies that the same seed yields the same deal.
func TestNewGameDeterministic(t *testing.T) {
	a := NewGame(99, DefaultHouseRules()).Save()
	b := NewGame(99, DefaultHouseRules()).Save()
	for i := range a.Deck {
		if a.Deck[i].ID != b.Deck[i].ID {
			t.Fatalf("deck differs at %d", i)
		}
	}

	c := NewGame(100, DefaultHouseRules()).Save()
	same := true
	for i := range a.Deck {
		if a.Deck[i].ID != c.Deck[i].ID {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical decks")
	}
}

// TestShuffleIsPermutation verifies that the shuffle neither loses nor duplicates tiles.
func TestShuffleIsPermutation(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		g := NewGame(seed, DefaultHouseRules())
		seen := make(map[string]bool)
		for _, tiles := range [][]Tile{g.Hand(), g.Board(), g.Save().Deck} {
			for _, tile := range tiles {
				if seen[tile.ID] {
					t.Fatalf("seed %d: duplicate tile %s", seed, tile.ID)
				}
				seen[tile.ID] = true
			}
		}
		if len(seen) != DeckSize {
			t.Fatalf("seed %d: %d distinct tiles, want %d", seed, len(seen), DeckSize)
		}
	}
}

// TestResetReplacesSession verifies that Reset starts over from any state.
func TestResetReplacesSession(t *testing.T) {
	g := newTestGame(t, DefaultHouseRules(), tl(ColorRed, 10), tl(ColorBlue, 10), tl(ColorBlack, 10), tl(ColorYellow, 1))
	for i := 0; i < 3; i++ {
		g.MoveTile(ZoneHand, ZoneBoard, 1)
	}
	if _, err := g.ValidateTurn(); err != nil {
		t.Fatalf("ValidateTurn: %v", err)
	}

	g.Reset(7)
	if len(g.Board()) != 0 || len(g.Hand()) != 14 || g.DeckCount() != 92 {
		t.Errorf("after Reset: board=%d hand=%d deck=%d", len(g.Board()), len(g.Hand()), g.DeckCount())
	}
	if g.Phase() != PhasePlaying || g.InitialMoveMade() || g.HasDrawn() {
		t.Error("Reset should restore the start-of-game flags")
	}
	for _, tile := range g.Hand() {
		if tile.IsFixed || tile.IsNew {
			t.Errorf("tile %s carries placement flags after Reset", tile.ID)
		}
	}
}

// TestHandSorted verifies the hand stays sorted by value, then color name.
func TestHandSorted(t *testing.T) {
	g := NewGame(5, DefaultHouseRules())
	assertSorted := func() {
		t.Helper()
		h := g.Hand()
		for i := 1; i < len(h); i++ {
			a, b := h[i-1], h[i]
			if a.Value > b.Value || (a.Value == b.Value && a.Color.String() > b.Color.String()) {
				t.Fatalf("hand not sorted at %d: %v before %v", i, a, b)
			}
		}
	}
	assertSorted()

	g.MoveTile(ZoneHand, ZoneBoard, 3)
	g.MoveTile(ZoneHand, ZoneBoard, 0)
	g.MoveTile(ZoneBoard, ZoneHand, 0)
	assertSorted()
}

// TestSaveRestore verifies that Restore undoes subsequent changes.
func TestSaveRestore(t *testing.T) {
	g := NewGame(3, DefaultHouseRules())
	snap := g.Save()

	g.MoveTile(ZoneHand, ZoneBoard, 0)
	g.MoveTile(ZoneHand, ZoneBoard, 0)
	if len(g.Board()) != 2 {
		t.Fatalf("board = %d, want 2", len(g.Board()))
	}

	g.Restore(snap)
	if len(g.Board()) != 0 || len(g.Hand()) != 14 {
		t.Errorf("after Restore: board=%d hand=%d", len(g.Board()), len(g.Hand()))
	}

	// The snapshot must not alias the live game.
	g.MoveTile(ZoneHand, ZoneBoard, 0)
	if len(snap.Board) != 0 || len(snap.Hand) != 14 {
		t.Error("snapshot was mutated by later moves")
	}
}

// TestColorTextRoundTrip verifies color names decode to the same color.
func TestColorTextRoundTrip(t *testing.T) {
	for c := ColorRed; c <= ColorJoker; c++ {
		b, _ := c.MarshalText()
		var got Color
		if err := got.UnmarshalText(b); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", b, err)
		}
		if got != c {
			t.Errorf("round trip %s -> %s", c, got)
		}
	}
	if _, err := ParseColor("green"); err == nil {
		t.Error("ParseColor(green) should fail")
	}
}
