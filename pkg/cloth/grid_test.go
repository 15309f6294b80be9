// pkg/cloth/grid_test.go
package cloth

import "testing"

func TestGridBijection(t *testing.T) {
	for _, dim := range []int{1, 2, 5, 16} {
		grid := Grid{Dim: dim}

		for row := 0; row < dim; row++ {
			for col := 0; col < dim; col++ {
				i := grid.To1D(col, row)
				if i < 0 || i >= grid.Count() {
					t.Fatalf("dim %d: To1D(%d,%d) = %d, outside [0,%d)", dim, col, row, i, grid.Count())
				}
				gotCol, gotRow := grid.To2D(i)
				if gotCol != col || gotRow != row {
					t.Errorf("dim %d: To2D(To1D(%d,%d)) = (%d,%d)", dim, col, row, gotCol, gotRow)
				}
			}
		}
	}
}

func TestGridTo2DCoversAllIndices(t *testing.T) {
	grid := Grid{Dim: 4}
	seen := make(map[[2]int]bool)

	for i := 0; i < grid.Count(); i++ {
		col, row := grid.To2D(i)
		if !grid.Valid(col, row) {
			t.Errorf("To2D(%d) = (%d,%d), outside the grid", i, col, row)
		}
		coord := [2]int{col, row}
		if seen[coord] {
			t.Errorf("To2D(%d) = (%d,%d) already produced by another index", i, col, row)
		}
		seen[coord] = true
	}
}

func TestGridValid(t *testing.T) {
	grid := Grid{Dim: 3}

	tests := []struct {
		name     string
		col, row int
		expected bool
	}{
		{name: "origin", col: 0, row: 0, expected: true},
		{name: "last_cell", col: 2, row: 2, expected: true},
		{name: "col_negative", col: -1, row: 0, expected: false},
		{name: "row_negative", col: 0, row: -1, expected: false},
		{name: "col_past_edge", col: 3, row: 0, expected: false},
		{name: "row_past_edge", col: 0, row: 3, expected: false},
		{name: "bending_reach_outside", col: 4, row: 4, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := grid.Valid(tt.col, tt.row); result != tt.expected {
				t.Errorf("Valid(%d,%d) = %v, expected %v", tt.col, tt.row, result, tt.expected)
			}
		})
	}
}
