package engine

// CalculateTilesValue returns the sum of tile values. Jokers count 0.
func CalculateTilesValue(tiles []Tile) int {
	sum := 0
	for _, t := range tiles {
		sum += t.Points()
	}
	return sum
}

// HandValue returns the value still held in the hand.
func (g *Game) HandValue() int { return CalculateTilesValue(g.hand) }

// PendingValue returns the value of the tiles placed this turn.
func (g *Game) PendingValue() int { return CalculateTilesValue(g.NewTilesOnBoard()) }
