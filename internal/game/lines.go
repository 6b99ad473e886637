package game

// Axis selects rows or columns.
type Axis int

const (
	Row Axis = iota
	Column
)

func (a Axis) String() string {
	if a == Column {
		return "column"
	}
	return "row"
}

// ClearResult describes one simultaneous clear.
type ClearResult struct {
	Rows    []int
	Columns []int
	// Cells is the number of distinct cells emptied; a cell shared by a
	// cleared row and a cleared column counts once.
	Cells int
}

// Lines is the number of rows plus columns cleared.
func (r ClearResult) Lines() int {
	return len(r.Rows) + len(r.Columns)
}

// FullLines scans every row and column and returns those with no empty cell.
func (b *Board) FullLines() (rows, cols []int) {
	for y := 0; y < b.Size; y++ {
		full := true
		for x := 0; x < b.Size; x++ {
			if !b.Cells[y][x].Filled {
				full = false
				break
			}
		}
		if full {
			rows = append(rows, y)
		}
	}
	for x := 0; x < b.Size; x++ {
		full := true
		for y := 0; y < b.Size; y++ {
			if !b.Cells[y][x].Filled {
				full = false
				break
			}
		}
		if full {
			cols = append(cols, x)
		}
	}
	return rows, cols
}

// ClearFullLines finds all full rows and columns in a single scan and empties
// them together. Unlike a falling-block board nothing shifts afterwards.
func (b *Board) ClearFullLines() ClearResult {
	rows, cols := b.FullLines()
	return b.clearLines(rows, cols)
}

// ClearLine empties one row or column regardless of its contents.
func (b *Board) ClearLine(axis Axis, index int) ClearResult {
	if index < 0 || index >= b.Size {
		return ClearResult{}
	}
	if axis == Column {
		return b.clearLines(nil, []int{index})
	}
	return b.clearLines([]int{index}, nil)
}

func (b *Board) clearLines(rows, cols []int) ClearResult {
	res := ClearResult{Rows: rows, Columns: cols}
	for _, y := range rows {
		for x := 0; x < b.Size; x++ {
			if b.Cells[y][x].Filled {
				b.Cells[y][x] = Cell{}
				res.Cells++
			}
		}
	}
	for _, x := range cols {
		for y := 0; y < b.Size; y++ {
			if b.Cells[y][x].Filled {
				b.Cells[y][x] = Cell{}
				res.Cells++
			}
		}
	}
	return res
}
