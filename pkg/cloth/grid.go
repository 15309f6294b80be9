// pkg/cloth/grid.go
package cloth

// Grid maps between linear node indices and 2D coordinates of a dim×dim
// regular grid of cloth nodes. Every linear index in [0, Count()) maps
// bijectively to exactly one valid (col, row) coordinate.
type Grid struct {
	Dim int
}

// Count returns the number of nodes in the grid.
func (g Grid) Count() int {
	return g.Dim * g.Dim
}

// To2D converts a linear node index to its (col, row) grid coordinate.
func (g Grid) To2D(i int) (col, row int) {
	return i % g.Dim, i / g.Dim
}

// To1D converts a (col, row) grid coordinate to its linear node index.
// It is only defined for coordinates that pass Valid.
func (g Grid) To1D(col, row int) int {
	return row*g.Dim + col
}

// Valid reports whether the coordinate lies inside the grid.
func (g Grid) Valid(col, row int) bool {
	return col >= 0 && col < g.Dim && row >= 0 && row < g.Dim
}
