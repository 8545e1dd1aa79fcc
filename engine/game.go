// Package engine implements the rules of a single-player Rummikube-style
// tile game.
//
// The engine owns deck, hand and board, moves tiles between them, and gates
// each turn on the opening-value rule and the run/set classifiers. It does no
// I/O and is not safe for concurrent use; callers serialise access.
package engine

const (
	NumCopies = 2
	NumJokers = 2
	DeckSize  = NumSuitColors*MaxValue*NumCopies + NumJokers // 106
)

// Game holds the complete state of one game session.
type Game struct {
	deck            []Tile
	hand            []Tile
	board           []Tile
	phase           Phase
	hasDrawn        bool
	initialMoveMade bool
	won             bool
	turnNumber      uint16
	rng             uint64
	rules           HouseRules
}

// ---------------------------------------------------------------------------
// xorshift64 RNG
// ---------------------------------------------------------------------------

func (g *Game) nextRand() uint64 {
	x := g.rng
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	g.rng = x
	return x
}

// randN returns a random number in [0, n).
func (g *Game) randN(n uint64) uint64 {
	return g.nextRand() % n
}

// ---------------------------------------------------------------------------
// NewGame and deck
// ---------------------------------------------------------------------------

// NewDeck returns the ordered 106-tile set: every color×value pair twice,
// then two jokers.
func NewDeck() []Tile {
	deck := make([]Tile, 0, DeckSize)
	for c := Color(0); c < NumSuitColors; c++ {
		for v := MinValue; v <= MaxValue; v++ {
			deck = append(deck, NewTile(c, v, 'a'), NewTile(c, v, 'b'))
		}
	}
	for j := 1; j <= NumJokers; j++ {
		deck = append(deck, NewJoker(j))
	}
	return deck
}

// NewGame creates a game with the given seed and rules and starts it.
func NewGame(seed uint64, rules HouseRules) *Game {
	g := &Game{rules: rules}
	g.Reset(seed)
	return g
}

// Reset discards the current session and starts a new one: rebuilds and
// shuffles the full tile set, deals a hand, and empties the board.
func (g *Game) Reset(seed uint64) {
	g.rng = seed
	if g.rng == 0 {
		g.rng = 1 // xorshift can't start at 0
	}
	g.deck = NewDeck()
	g.shuffle()

	n := g.rules.handSize()
	if n > len(g.deck) {
		n = len(g.deck)
	}
	g.hand = make([]Tile, 0, n+16)
	for i := 0; i < n; i++ {
		g.hand = append(g.hand, g.popDeck())
	}
	sortHand(g.hand)

	g.board = make([]Tile, 0, DeckSize)
	g.phase = PhasePlaying
	g.hasDrawn = false
	g.initialMoveMade = false
	g.won = false
	g.turnNumber = 0
}

// shuffle is a Fisher-Yates shuffle of the deck.
func (g *Game) shuffle() {
	for i := len(g.deck) - 1; i > 0; i-- {
		j := int(g.randN(uint64(i + 1)))
		g.deck[i], g.deck[j] = g.deck[j], g.deck[i]
	}
}

// popDeck removes and returns the last deck tile. The deck must be non-empty.
func (g *Game) popDeck() Tile {
	last := len(g.deck) - 1
	t := g.deck[last]
	g.deck = g.deck[:last]
	return t
}

// ---------------------------------------------------------------------------
// Query methods
// ---------------------------------------------------------------------------

// Rules returns the rules the game was created with.
func (g *Game) Rules() HouseRules { return g.rules }

// Phase returns the current turn phase.
func (g *Game) Phase() Phase { return g.phase }

// HasDrawn reports whether a tile was drawn this round.
func (g *Game) HasDrawn() bool { return g.hasDrawn }

// InitialMoveMade reports whether the opening rule has been satisfied.
func (g *Game) InitialMoveMade() bool { return g.initialMoveMade }

// Won reports whether the game reached its terminal win state.
func (g *Game) Won() bool { return g.won }

// IsTerminal is an alias of Won; a win is the only terminal state.
func (g *Game) IsTerminal() bool { return g.won }

// TurnNumber counts validated turns.
func (g *Game) TurnNumber() uint16 { return g.turnNumber }

// DeckCount returns the number of tiles left to draw.
func (g *Game) DeckCount() int { return len(g.deck) }

// TileCount returns deck+hand+board; always DeckSize within a game.
func (g *Game) TileCount() int { return len(g.deck) + len(g.hand) + len(g.board) }

// Hand returns a copy of the hand, sorted by value then color.
func (g *Game) Hand() []Tile { return cloneTiles(g.hand) }

// Board returns a copy of the board in placement order.
func (g *Game) Board() []Tile { return cloneTiles(g.board) }

// NewTilesOnBoard returns the board tiles placed this turn.
func (g *Game) NewTilesOnBoard() []Tile {
	var out []Tile
	for _, t := range g.board {
		if t.IsNew {
			out = append(out, t)
		}
	}
	return out
}

func cloneTiles(tiles []Tile) []Tile {
	out := make([]Tile, len(tiles))
	copy(out, tiles)
	return out
}

// ---------------------------------------------------------------------------
// Snapshot Undo (Save / Restore)
// ---------------------------------------------------------------------------

// Snapshot is a deep copy of a Game. Its exported fields make it the
// serialised form of a session.
type Snapshot struct {
	Deck            []Tile     `json:"deck"`
	Hand            []Tile     `json:"hand"`
	Board           []Tile     `json:"board"`
	Phase           Phase      `json:"phase"`
	HasDrawn        bool       `json:"hasDrawn"`
	InitialMoveMade bool       `json:"initialMoveMade"`
	Won             bool       `json:"won"`
	TurnNumber      uint16     `json:"turnNumber"`
	RNG             uint64     `json:"rng"`
	Rules           HouseRules `json:"rules"`
}

// Save returns a snapshot of the current game state.
func (g *Game) Save() Snapshot {
	return Snapshot{
		Deck:            cloneTiles(g.deck),
		Hand:            cloneTiles(g.hand),
		Board:           cloneTiles(g.board),
		Phase:           g.phase,
		HasDrawn:        g.hasDrawn,
		InitialMoveMade: g.initialMoveMade,
		Won:             g.won,
		TurnNumber:      g.turnNumber,
		RNG:             g.rng,
		Rules:           g.rules,
	}
}

// Restore replaces the game state with the given snapshot.
func (g *Game) Restore(s Snapshot) {
	g.deck = cloneTiles(s.Deck)
	g.hand = cloneTiles(s.Hand)
	g.board = cloneTiles(s.Board)
	sortHand(g.hand)
	g.phase = s.Phase
	g.hasDrawn = s.HasDrawn
	g.initialMoveMade = s.InitialMoveMade
	g.won = s.Won
	g.turnNumber = s.TurnNumber
	g.rng = s.RNG
	g.rules = s.Rules
}

// FromSnapshot builds a new Game from a snapshot.
func FromSnapshot(s Snapshot) *Game {
	g := &Game{}
	g.Restore(s)
	return g
}
