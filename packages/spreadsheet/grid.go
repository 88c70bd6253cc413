package spreadsheet

// chunkKey indexes a chunk in the grid
type chunkKey struct {
	chunkRow int
	chunkCol int
}

const (
	chunkRows = 64                    // rows per chunk
	chunkCols = 64                    // columns per chunk
	chunkSize = chunkRows * chunkCols // 4096 slots per chunk
)

// chunk is a 64x64 block of cell slots. slots are column-major, like the
// bitmap so a column scan stays inside one word run.
type chunk struct {
	cells          []*Cell
	count          int      // occupied slots
	occupiedBitmap []uint64 // one bit per slot
}

// grid is the sparse cell store of a Sheet.
//
// - slots are partitioned into 64x64 chunks held in a sparse map
// - a chunk is allocated on the first store into it and freed once it holds
//   no cells
// - every slot holds either nil or a *Cell, including Empty placeholders
//   kept alive by their dependents
type grid struct {
	chunks     map[chunkKey]*chunk
	totalCells int
}

func newGrid() *grid {
	return &grid{chunks: make(map[chunkKey]*chunk)}
}

func locate(pos Position) (chunkKey, int) {
	key := chunkKey{chunkRow: pos.Row / chunkRows, chunkCol: pos.Col / chunkCols}
	localRow := pos.Row % chunkRows
	localCol := pos.Col % chunkCols
	return key, localCol*chunkRows + localRow
}

// get returns the cell stored at pos, or nil
func (g *grid) get(pos Position) *Cell {
	key, idx := locate(pos)
	c, exists := g.chunks[key]
	if !exists {
		return nil
	}
	return c.cells[idx]
}

// put stores cell at pos, replacing whatever was there
func (g *grid) put(pos Position, cell *Cell) {
	if cell == nil {
		g.remove(pos)
		return
	}

	key, idx := locate(pos)
	c, exists := g.chunks[key]
	if !exists {
		c = &chunk{
			cells:          make([]*Cell, chunkSize),
			occupiedBitmap: make([]uint64, (chunkSize+63)/64),
		}
		g.chunks[key] = c
	}

	if c.cells[idx] == nil {
		c.count++
		g.totalCells++
		c.occupiedBitmap[idx/64] |= 1 << (idx % 64)
	}
	c.cells[idx] = cell
}

// remove empties the slot at pos
func (g *grid) remove(pos Position) {
	key, idx := locate(pos)
	c, exists := g.chunks[key]
	if !exists || c.cells[idx] == nil {
		return
	}

	c.cells[idx] = nil
	c.count--
	g.totalCells--
	c.occupiedBitmap[idx/64] &^= 1 << (idx % 64)

	if c.count == 0 {
		delete(g.chunks, key)
	}
}

// len returns the number of occupied slots
func (g *grid) len() int {
	return g.totalCells
}

// each calls fn for every occupied slot, in no particular order
func (g *grid) each(fn func(pos Position, cell *Cell)) {
	for key, c := range g.chunks {
		for word, bits := range c.occupiedBitmap {
			for bit := 0; bits != 0; bit++ {
				if bits&1 != 0 {
					idx := word*64 + bit
					pos := Position{
						Row: key.chunkRow*chunkRows + idx%chunkRows,
						Col: key.chunkCol*chunkCols + idx/chunkRows,
					}
					fn(pos, c.cells[idx])
				}
				bits >>= 1
			}
		}
	}
}
