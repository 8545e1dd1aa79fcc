package engine

import (
	"fmt"
	"sort"
)

// Color is the suit of a tile. Jokers carry their own color.
type Color uint8

const (
	ColorRed    Color = 0
	ColorBlue   Color = 1
	ColorYellow Color = 2
	ColorBlack  Color = 3
	ColorJoker  Color = 4
)

// NumSuitColors is the number of non-joker colors.
const NumSuitColors = 4

// String returns the lowercase color name used in tile IDs and payloads.
func (c Color) String() string {
	switch c {
	case ColorRed:
		return "red"
	case ColorBlue:
		return "blue"
	case ColorYellow:
		return "yellow"
	case ColorBlack:
		return "black"
	case ColorJoker:
		return "joker"
	default:
		return "?"
	}
}

// ParseColor converts a color name back into a Color.
func ParseColor(s string) (Color, error) {
	switch s {
	case "red":
		return ColorRed, nil
	case "blue":
		return ColorBlue, nil
	case "yellow":
		return ColorYellow, nil
	case "black":
		return ColorBlack, nil
	case "joker":
		return ColorJoker, nil
	}
	return 0, fmt.Errorf("unknown tile color %q", s)
}

// MarshalText encodes the color by name.
func (c Color) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText decodes a color name.
func (c *Color) UnmarshalText(b []byte) error {
	parsed, err := ParseColor(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

const (
	MinValue = 1
	MaxValue = 13
)

// Tile is one physical tile. Color, Value and ID never change once built;
// IsNew and IsFixed track the tile's placement history on the board.
type Tile struct {
	ID      string `json:"id"`
	Color   Color  `json:"color"`
	Value   int    `json:"value"`
	IsNew   bool   `json:"isNew,omitempty"`
	IsFixed bool   `json:"isFixed,omitempty"`
}

// NewTile builds a suited tile. copy is 'a' or 'b' for the two sets.
func NewTile(color Color, value int, copy byte) Tile {
	return Tile{
		ID:    fmt.Sprintf("%s-%d-%c", color, value, copy),
		Color: color,
		Value: value,
	}
}

// NewJoker builds joker number n (1 or 2).
func NewJoker(n int) Tile {
	return Tile{ID: fmt.Sprintf("j%d", n), Color: ColorJoker}
}

// IsJoker reports whether the tile is a joker.
func (t Tile) IsJoker() bool { return t.Color == ColorJoker }

// Points is the tile's contribution to a value sum. Jokers count 0.
func (t Tile) Points() int {
	if t.IsJoker() {
		return 0
	}
	return t.Value
}

func (t Tile) String() string {
	if t.IsJoker() {
		return "J"
	}
	return fmt.Sprintf("%s %d", t.Color, t.Value)
}

// sortHand orders tiles by value, then by color name.
func sortHand(tiles []Tile) {
	sort.SliceStable(tiles, func(i, j int) bool {
		if tiles[i].Value != tiles[j].Value {
			return tiles[i].Value < tiles[j].Value
		}
		return tiles[i].Color.String() < tiles[j].Color.String()
	})
}

// Zone identifies where a tile lives.
type Zone uint8

const (
	ZoneHand  Zone = 0
	ZoneBoard Zone = 1
)

func (z Zone) String() string {
	switch z {
	case ZoneHand:
		return "hand"
	case ZoneBoard:
		return "board"
	default:
		return "?"
	}
}

// ParseZone converts "hand" or "board" into a Zone.
func ParseZone(s string) (Zone, error) {
	switch s {
	case "hand":
		return ZoneHand, nil
	case "board":
		return ZoneBoard, nil
	}
	return 0, fmt.Errorf("unknown zone %q", s)
}

// MarshalText encodes the zone by name.
func (z Zone) MarshalText() ([]byte, error) { return []byte(z.String()), nil }

// UnmarshalText decodes a zone name.
func (z *Zone) UnmarshalText(b []byte) error {
	parsed, err := ParseZone(string(b))
	if err != nil {
		return err
	}
	*z = parsed
	return nil
}

// Phase is the turn phase governing which actions are legal.
type Phase uint8

const (
	PhasePlaying Phase = iota // 0
	PhaseDrawing              // 1
	PhaseEndTurn              // 2
)

func (p Phase) String() string {
	switch p {
	case PhasePlaying:
		return "PLAYING"
	case PhaseDrawing:
		return "DRAWING"
	case PhaseEndTurn:
		return "END_TURN"
	default:
		return "?"
	}
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// UnmarshalText decodes a phase name.
func (p *Phase) UnmarshalText(b []byte) error {
	switch string(b) {
	case "PLAYING":
		*p = PhasePlaying
	case "DRAWING":
		*p = PhaseDrawing
	case "END_TURN":
		*p = PhaseEndTurn
	default:
		return fmt.Errorf("unknown phase %q", b)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Actions
// ---------------------------------------------------------------------------

// ActionKind is the kind of a player action.
type ActionKind uint8

const (
	ActionMove     ActionKind = iota // 0
	ActionDraw                       // 1
	ActionValidate                   // 2
	ActionNextTurn                   // 3
)

func (k ActionKind) String() string {
	switch k {
	case ActionMove:
		return "move"
	case ActionDraw:
		return "draw"
	case ActionValidate:
		return "validate"
	case ActionNextTurn:
		return "next_turn"
	default:
		return "?"
	}
}

// ParseActionKind converts an action name into an ActionKind.
func ParseActionKind(s string) (ActionKind, error) {
	switch s {
	case "move":
		return ActionMove, nil
	case "draw":
		return ActionDraw, nil
	case "validate":
		return ActionValidate, nil
	case "next_turn":
		return ActionNextTurn, nil
	}
	return 0, fmt.Errorf("unknown action %q", s)
}

// MarshalText encodes the kind by name.
func (k ActionKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText decodes an action name.
func (k *ActionKind) UnmarshalText(b []byte) error {
	v, err := ParseActionKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Action is a single player action. From, To and Index are only meaningful
// for ActionMove.
type Action struct {
	Kind  ActionKind `json:"kind"`
	From  Zone       `json:"from"`
	To    Zone       `json:"to"`
	Index int        `json:"index"`
}

// Move returns a move action.
func Move(from, to Zone, index int) Action {
	return Action{Kind: ActionMove, From: from, To: to, Index: index}
}

// Outcome summarises what a successful action did.
type Outcome uint8

const (
	OutcomeNone     Outcome = iota // 0: nothing happened (ignored move)
	OutcomeMoved                   // 1
	OutcomeDrawn                   // 2
	OutcomeAccepted                // 3: turn validated
	OutcomePassed                  // 4: validate in DRAWING, turn already finished
	OutcomeWon                     // 5: turn validated and hand emptied
	OutcomeNewTurn                 // 6
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "none"
	case OutcomeMoved:
		return "moved"
	case OutcomeDrawn:
		return "drawn"
	case OutcomeAccepted:
		return "accepted"
	case OutcomePassed:
		return "passed"
	case OutcomeWon:
		return "won"
	case OutcomeNewTurn:
		return "new_turn"
	default:
		return "?"
	}
}
