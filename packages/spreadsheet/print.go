package spreadsheet

import (
	"bufio"
	"io"
)

// PrintValues writes the printable area row by row, one line per row with
// cell values separated by tabs
func (s *Sheet) PrintValues(w io.Writer) error {
	return s.print(w, func(c *Cell) string {
		return c.Value().String()
	})
}

// PrintTexts writes the printable area like PrintValues but with each
// cell's definition text
func (s *Sheet) PrintTexts(w io.Writer) error {
	return s.print(w, func(c *Cell) string {
		return c.Text()
	})
}

func (s *Sheet) print(w io.Writer, render func(*Cell) string) error {
	bw := bufio.NewWriter(w)
	for row := 0; row < s.size.Rows; row++ {
		for col := 0; col < s.size.Cols; col++ {
			if col > 0 {
				bw.WriteByte('\t')
			}
			if cell := s.cells.get(Position{Row: row, Col: col}); cell != nil {
				bw.WriteString(render(cell))
			}
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
