package engine

import "fmt"

// RunColorRule selects how isRun treats tile colors.
type RunColorRule uint8

const (
	// RunColorsDistinct requires every tile of a run to have a different
	// color. This is the default.
	RunColorsDistinct RunColorRule = iota
	// RunColorsSame requires a single shared color (standard Rummikube).
	RunColorsSame
)

func (r RunColorRule) String() string {
	switch r {
	case RunColorsDistinct:
		return "distinct"
	case RunColorsSame:
		return "same"
	default:
		return "?"
	}
}

// ParseRunColorRule parses "distinct" or "same".
func ParseRunColorRule(s string) (RunColorRule, error) {
	switch s {
	case "distinct", "":
		return RunColorsDistinct, nil
	case "same":
		return RunColorsSame, nil
	}
	return 0, fmt.Errorf("unknown run color rule %q", s)
}

func (r RunColorRule) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *RunColorRule) UnmarshalText(b []byte) error {
	v, err := ParseRunColorRule(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// BoardCheck selects how the board is checked at validation.
type BoardCheck uint8

const (
	// BoardWhole treats the whole board as one combination.
	BoardWhole BoardCheck = iota
	// BoardPartition requires the board to split into valid runs and sets.
	BoardPartition
)

func (b BoardCheck) String() string {
	switch b {
	case BoardWhole:
		return "whole"
	case BoardPartition:
		return "partition"
	default:
		return "?"
	}
}

// ParseBoardCheck parses "whole" or "partition".
func ParseBoardCheck(s string) (BoardCheck, error) {
	switch s {
	case "whole", "":
		return BoardWhole, nil
	case "partition":
		return BoardPartition, nil
	}
	return 0, fmt.Errorf("unknown board check %q", s)
}

func (b BoardCheck) MarshalText() ([]byte, error) { return []byte(b.String()), nil }

func (b *BoardCheck) UnmarshalText(text []byte) error {
	v, err := ParseBoardCheck(string(text))
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// HouseRules holds configurable game rule settings.
type HouseRules struct {
	HandSize         uint8        `json:"handSize"`         // tiles dealt at game start
	OpeningThreshold int          `json:"openingThreshold"` // minimum new-tile value of the first accepted turn
	RunColorRule     RunColorRule `json:"runColorRule"`
	BoardCheck       BoardCheck   `json:"boardCheck"`
}

// DefaultHouseRules returns the default rules: 14 tiles, a 30 point opening,
// distinct-color runs and a whole-board check.
func DefaultHouseRules() HouseRules {
	return HouseRules{
		HandSize:         14,
		OpeningThreshold: 30,
		RunColorRule:     RunColorsDistinct,
		BoardCheck:       BoardWhole,
	}
}

// handSize returns the effective hand size, treating 0 as 14.
func (r *HouseRules) handSize() int {
	if r.HandSize == 0 {
		return 14
	}
	return int(r.HandSize)
}
