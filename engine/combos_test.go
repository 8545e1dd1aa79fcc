package engine

import (
	"testing"
)

func TestIsRun(t *testing.T) {
	tests := []struct {
		name     string
		tiles    []Tile
		distinct bool
		same     bool
	}{
		{
			name:     "same color consecutive",
			tiles:    []Tile{tl(ColorRed, 5), tl(ColorRed, 6), tl(ColorRed, 7)},
			distinct: false,
			same:     true,
		},
		{
			name:     "distinct colors consecutive",
			tiles:    []Tile{tl(ColorRed, 5), tl(ColorBlue, 6), tl(ColorYellow, 7)},
			distinct: true,
			same:     false,
		},
		{
			name:     "unsorted input",
			tiles:    []Tile{tl(ColorYellow, 7), tl(ColorRed, 5), tl(ColorBlue, 6)},
			distinct: true,
		},
		{
			name:  "too short",
			tiles: []Tile{tl(ColorRed, 5), tl(ColorBlue, 6)},
		},
		{
			name:  "gap",
			tiles: []Tile{tl(ColorRed, 5), tl(ColorBlue, 7), tl(ColorYellow, 8)},
		},
		{
			name:  "duplicate value",
			tiles: []Tile{tl(ColorRed, 5), tl(ColorBlue, 5), tl(ColorYellow, 6)},
		},
		{
			name:     "joker as value zero",
			tiles:    []Tile{NewJoker(1), tl(ColorRed, 1), tl(ColorBlue, 2)},
			distinct: true,
		},
		{
			name:     "five colors max",
			tiles:    []Tile{NewJoker(1), tl(ColorRed, 1), tl(ColorBlue, 2), tl(ColorYellow, 3), tl(ColorBlack, 4)},
			distinct: true,
		},
		{
			name:  "long same color",
			tiles: []Tile{tl(ColorBlack, 9), tl(ColorBlack, 10), tl(ColorBlack, 11), tl(ColorBlack, 12), tl(ColorBlack, 13)},
			same:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRun(tt.tiles); got != tt.distinct {
				t.Errorf("IsRun = %v, want %v", got, tt.distinct)
			}
			if got := IsRunWith(tt.tiles, RunColorsDistinct); got != tt.distinct {
				t.Errorf("IsRunWith(distinct) = %v, want %v", got, tt.distinct)
			}
			if got := IsRunWith(tt.tiles, RunColorsSame); got != tt.same {
				t.Errorf("IsRunWith(same) = %v, want %v", got, tt.same)
			}
		})
	}
}

func TestIsSet(t *testing.T) {
	tests := []struct {
		name  string
		tiles []Tile
		want  bool
	}{
		{"three eights", []Tile{tl(ColorRed, 8), tl(ColorBlue, 8), tl(ColorYellow, 8)}, true},
		{"four eights", []Tile{tl(ColorRed, 8), tl(ColorBlue, 8), tl(ColorYellow, 8), tl(ColorBlack, 8)}, true},
		{"five eights", []Tile{tl(ColorRed, 8), tl(ColorBlue, 8), tl(ColorYellow, 8), tl(ColorBlack, 8), tl2(ColorRed, 8)}, false},
		{"two tiles", []Tile{tl(ColorRed, 8), tl(ColorBlue, 8)}, false},
		{"repeated color", []Tile{tl(ColorRed, 8), tl2(ColorRed, 8), tl(ColorYellow, 8)}, false},
		{"mixed values", []Tile{tl(ColorRed, 8), tl(ColorBlue, 9), tl(ColorYellow, 8)}, false},
		{"jokers do not form a set", []Tile{NewJoker(1), NewJoker(2), tl(ColorRed, 8)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSet(tt.tiles); got != tt.want {
				t.Errorf("IsSet = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCalculateTilesValue(t *testing.T) {
	tests := []struct {
		name  string
		tiles []Tile
		want  int
	}{
		{"empty", nil, 0},
		{"joker and red twelve", []Tile{NewJoker(1), tl(ColorRed, 12)}, 12},
		{"joker with a stray value", []Tile{{ID: "j9", Color: ColorJoker, Value: 7}}, 0},
		{"plain sum", []Tile{tl(ColorRed, 1), tl(ColorBlue, 13), tl(ColorBlack, 7)}, 21},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateTilesValue(tt.tiles); got != tt.want {
				t.Errorf("CalculateTilesValue = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPartitionBoard(t *testing.T) {
	tests := []struct {
		name   string
		tiles  []Tile
		rule   RunColorRule
		ok     bool
		groups int
	}{
		{"empty", nil, RunColorsSame, true, 0},
		{
			name:   "run and set",
			tiles:  []Tile{tl(ColorRed, 5), tl(ColorBlue, 9), tl(ColorRed, 6), tl(ColorYellow, 9), tl(ColorRed, 7), tl(ColorBlack, 9)},
			rule:   RunColorsSame,
			ok:     true,
			groups: 2,
		},
		{
			name: "two identical runs",
			tiles: []Tile{
				tl(ColorBlue, 1), tl(ColorBlue, 2), tl(ColorBlue, 3),
				tl2(ColorBlue, 1), tl2(ColorBlue, 2), tl2(ColorBlue, 3),
			},
			rule:   RunColorsSame,
			ok:     true,
			groups: 2,
		},
		{
			name: "run stops short of the set",
			// red 4-7 plus blue 7 and yellow 7: the run must end at 6 so the
			// sevens form a set.
			tiles: []Tile{
				tl(ColorRed, 4), tl(ColorRed, 5), tl(ColorRed, 6), tl(ColorRed, 7),
				tl(ColorBlue, 7), tl(ColorYellow, 7),
			},
			rule:   RunColorsSame,
			ok:     true,
			groups: 2,
		},
		{
			name:  "leftover tile",
			tiles: []Tile{tl(ColorRed, 5), tl(ColorRed, 6), tl(ColorRed, 7), tl(ColorBlue, 1)},
			rule:  RunColorsSame,
		},
		{
			name:   "distinct rule runs",
			tiles:  []Tile{tl(ColorRed, 1), tl(ColorBlue, 2), tl(ColorYellow, 3), tl(ColorBlack, 1), tl(ColorRed, 2), tl(ColorBlue, 3)},
			rule:   RunColorsDistinct,
			ok:     true,
			groups: 2,
		},
		{
			name:  "same color run under distinct rule",
			tiles: []Tile{tl(ColorRed, 5), tl(ColorRed, 6), tl(ColorRed, 7)},
			rule:  RunColorsDistinct,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			groups, ok := PartitionBoard(tt.tiles, tt.rule)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if len(groups) != tt.groups {
				t.Errorf("groups = %d, want %d", len(groups), tt.groups)
			}
			used := 0
			for _, grp := range groups {
				if !IsSet(grp) && !IsRunWith(grp, tt.rule) {
					t.Errorf("group %v is neither a set nor a run", grp)
				}
				used += len(grp)
			}
			if used != len(tt.tiles) {
				t.Errorf("partition covers %d tiles, want %d", used, len(tt.tiles))
			}
		})
	}
}
