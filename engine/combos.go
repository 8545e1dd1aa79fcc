package engine

import "sort"

// IsRun classifies tiles with the default run rule: at least 3 tiles, all
// colors pairwise distinct, and values consecutive once sorted.
func IsRun(tiles []Tile) bool {
	return IsRunWith(tiles, RunColorsDistinct)
}

// IsRunWith classifies tiles as a run under the given color rule. Values
// must form a strictly ascending sequence with step 1 once sorted.
func IsRunWith(tiles []Tile, rule RunColorRule) bool {
	if len(tiles) < 3 {
		return false
	}

	switch rule {
	case RunColorsSame:
		for _, t := range tiles[1:] {
			if t.Color != tiles[0].Color {
				return false
			}
		}
	default:
		if distinctColors(tiles) != len(tiles) {
			return false
		}
	}

	values := make([]int, len(tiles))
	for i, t := range tiles {
		values[i] = t.Value
	}
	sort.Ints(values)
	for i := 1; i < len(values); i++ {
		if values[i] != values[i-1]+1 {
			return false
		}
	}
	return true
}

// IsSet classifies tiles as a set (group): 3 or 4 tiles of one value with
// pairwise-distinct colors.
func IsSet(tiles []Tile) bool {
	if len(tiles) < 3 || len(tiles) > 4 {
		return false
	}
	for _, t := range tiles[1:] {
		if t.Value != tiles[0].Value {
			return false
		}
	}
	return distinctColors(tiles) == len(tiles)
}

func distinctColors(tiles []Tile) int {
	var seen [ColorJoker + 1]bool
	n := 0
	for _, t := range tiles {
		if t.Color > ColorJoker {
			continue
		}
		if !seen[t.Color] {
			seen[t.Color] = true
			n++
		}
	}
	return n
}

// ---------------------------------------------------------------------------
// Board partition
// ---------------------------------------------------------------------------

// PartitionBoard splits tiles into groups that are each a run (under rule)
// or a set, using every tile exactly once. It returns the groups and true
// when such a split exists. An empty board partitions trivially.
func PartitionBoard(tiles []Tile, rule RunColorRule) ([][]Tile, bool) {
	if len(tiles) == 0 {
		return nil, true
	}
	p := &partitioner{
		tiles: cloneTiles(tiles),
		used:  make([]bool, len(tiles)),
		rule:  rule,
	}
	sortHand(p.tiles)
	if !p.solve() {
		return nil, false
	}
	out := make([][]Tile, len(p.groups))
	for i, idxs := range p.groups {
		out[i] = make([]Tile, len(idxs))
		for j, idx := range idxs {
			out[i][j] = p.tiles[idx]
		}
	}
	return out, true
}

// partitioner is an exact-cover search. tiles is sorted by value, so the
// first uncovered tile always has the lowest remaining value and can only be
// the start of a run or a member of a set of its own value.
type partitioner struct {
	tiles  []Tile
	used   []bool
	rule   RunColorRule
	groups [][]int
}

func (p *partitioner) solve() bool {
	pivot := -1
	for i, u := range p.used {
		if !u {
			pivot = i
			break
		}
	}
	if pivot < 0 {
		return true
	}

	for _, cand := range p.candidates(pivot) {
		p.mark(cand, true)
		p.groups = append(p.groups, cand)
		if p.solve() {
			return true
		}
		p.groups = p.groups[:len(p.groups)-1]
		p.mark(cand, false)
	}
	return false
}

func (p *partitioner) mark(idxs []int, used bool) {
	for _, i := range idxs {
		p.used[i] = used
	}
}

// candidates lists every valid group containing pivot built from unused
// tiles. Identical tiles are interchangeable, so only one per color/value is
// considered.
func (p *partitioner) candidates(pivot int) [][]int {
	var out [][]int
	pt := p.tiles[pivot]

	// Sets: pivot plus 2 or 3 tiles of the same value in other colors.
	var mates []int
	var seen [ColorJoker + 1]bool
	seen[pt.Color] = true
	for i := range p.tiles {
		t := p.tiles[i]
		if i == pivot || p.used[i] || t.Value != pt.Value || seen[t.Color] {
			continue
		}
		seen[t.Color] = true
		mates = append(mates, i)
	}
	for a := 0; a < len(mates); a++ {
		for b := a + 1; b < len(mates); b++ {
			out = append(out, []int{pivot, mates[a], mates[b]})
			for c := b + 1; c < len(mates); c++ {
				out = append(out, []int{pivot, mates[a], mates[b], mates[c]})
			}
		}
	}

	// Runs starting at the pivot.
	var colors [ColorJoker + 1]bool
	colors[pt.Color] = true
	p.extendRun([]int{pivot}, colors, pt.Value+1, &out)

	valid := out[:0]
	for _, cand := range out {
		group := make([]Tile, len(cand))
		for i, idx := range cand {
			group[i] = p.tiles[idx]
		}
		if IsSet(group) || IsRunWith(group, p.rule) {
			valid = append(valid, cand)
		}
	}
	return valid
}

func (p *partitioner) extendRun(run []int, colors [ColorJoker + 1]bool, next int, out *[][]int) {
	if len(run) >= 3 {
		*out = append(*out, append([]int(nil), run...))
	}
	if next > MaxValue {
		return
	}
	first := p.tiles[run[0]]
	var tried [ColorJoker + 1]bool
	for i := range p.tiles {
		t := p.tiles[i]
		if p.used[i] || t.Value != next || tried[t.Color] {
			continue
		}
		tried[t.Color] = true
		switch p.rule {
		case RunColorsSame:
			if t.Color != first.Color {
				continue
			}
		default:
			if colors[t.Color] {
				continue
			}
		}
		nextColors := colors
		nextColors[t.Color] = true
		p.extendRun(append(run, i), nextColors, next+1, out)
	}
}
