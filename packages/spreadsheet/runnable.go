package spreadsheet

import (
	"fmt"
	"io"
	"strings"
)

// RunnableSheet provides a chainable interface over a Sheet using A1
// addresses. the first error stops the chain until Reset.
type RunnableSheet struct {
	sheet   *Sheet
	err     error
	printLn func(string)
}

// NewRunnableSheet creates a new RunnableSheet. printLn is required and
// will be used for all output operations (Log, LogText, Print, CheckError)
func NewRunnableSheet(printLn func(string), opts ...Option) *RunnableSheet {
	return &RunnableSheet{
		sheet:   NewSheet(opts...),
		printLn: printLn,
	}
}

// Set sets a cell from text (chainable)
func (r *RunnableSheet) Set(address, text string) *RunnableSheet {
	if r.err != nil {
		return r // no-op if there's already an error
	}
	pos, err := ParsePosition(address)
	if err != nil {
		r.err = err
		return r
	}
	r.err = r.sheet.SetCell(pos, text)
	return r
}

// Clear clears a cell (chainable)
func (r *RunnableSheet) Clear(address string) *RunnableSheet {
	if r.err != nil {
		return r // no-op if there's already an error
	}
	pos, err := ParsePosition(address)
	if err != nil {
		r.err = err
		return r
	}
	r.err = r.sheet.ClearCell(pos)
	return r
}

// SetBatch sets several cells in row-major address order (chainable)
func (r *RunnableSheet) SetBatch(cells map[string]string) *RunnableSheet {
	if r.err != nil {
		return r // no-op if there's already an error
	}

	positions := newPositionSet()
	texts := make(map[Position]string, len(cells))
	for address, text := range cells {
		pos, err := ParsePosition(address)
		if err != nil {
			r.err = err
			return r
		}
		positions.add(pos)
		texts[pos] = text
	}
	for _, pos := range positions.sorted() {
		if err := r.sheet.SetCell(pos, texts[pos]); err != nil {
			r.err = err
			return r
		}
	}
	return r
}

func (r *RunnableSheet) cell(address string) *Cell {
	pos, err := ParsePosition(address)
	if err != nil {
		r.err = err
		return nil
	}
	cell, err := r.sheet.GetCell(pos)
	if err != nil {
		r.err = err
		return nil
	}
	return cell
}

// Value is a helper to get a single value from the chain. an absent cell
// is the empty text.
// example: v := NewRunnableSheet(log).Set("A1", "10").Set("A2", "=A1*2").Value("A2")
func (r *RunnableSheet) Value(address string) Value {
	if r.err != nil {
		return Value{}
	}
	if cell := r.cell(address); cell != nil {
		return cell.Value()
	}
	return Value{}
}

// Text returns the definition text of a cell
func (r *RunnableSheet) Text(address string) string {
	if r.err != nil {
		return ""
	}
	if cell := r.cell(address); cell != nil {
		return cell.Text()
	}
	return ""
}

// Refs returns the cells a formula reads
func (r *RunnableSheet) Refs(address string) []Position {
	if r.err != nil {
		return nil
	}
	if cell := r.cell(address); cell != nil {
		return cell.ReferencedCells()
	}
	return nil
}

// Size returns the printable area
func (r *RunnableSheet) Size() Size {
	return r.sheet.GetPrintableSize()
}

// Log logs the value of a cell using the provided printLn function (chainable)
func (r *RunnableSheet) Log(address string) *RunnableSheet {
	if r.err != nil {
		return r // no-op if there's already an error
	}
	cell := r.cell(address)
	if r.err != nil {
		return r
	}

	if cell == nil || cell.IsEmpty() {
		r.printLn(fmt.Sprintf("%s: <empty>", address))
	} else {
		r.printLn(fmt.Sprintf("%s: %s", address, cell.Value()))
	}
	return r
}

// LogText logs the definition text of a cell (chainable)
func (r *RunnableSheet) LogText(address string) *RunnableSheet {
	if r.err != nil {
		return r // no-op if there's already an error
	}
	cell := r.cell(address)
	if r.err != nil {
		return r
	}

	if cell == nil || cell.IsEmpty() {
		r.printLn(fmt.Sprintf("%s: <empty>", address))
	} else {
		r.printLn(fmt.Sprintf("%s: %s", address, cell.Text()))
	}
	return r
}

// LogRefs logs the cells a formula reads (chainable)
func (r *RunnableSheet) LogRefs(address string) *RunnableSheet {
	refs := r.Refs(address)
	if r.err != nil {
		return r
	}
	r.printLn(fmt.Sprintf("%s: [%s]", address, formatPositions(refs)))
	return r
}

// LogSize logs the printable area (chainable)
func (r *RunnableSheet) LogSize() *RunnableSheet {
	if r.err != nil {
		return r // no-op if there's already an error
	}
	r.printLn(fmt.Sprintf("size: %s", r.sheet.GetPrintableSize()))
	return r
}

// PrintValues prints the printable area's values, one printLn per row
// (chainable)
func (r *RunnableSheet) PrintValues() *RunnableSheet {
	return r.printRows(r.sheet.PrintValues)
}

// PrintTexts prints the printable area's texts, one printLn per row
// (chainable)
func (r *RunnableSheet) PrintTexts() *RunnableSheet {
	return r.printRows(r.sheet.PrintTexts)
}

func (r *RunnableSheet) printRows(write func(w io.Writer) error) *RunnableSheet {
	if r.err != nil {
		return r // no-op if there's already an error
	}
	var sb strings.Builder
	if err := write(&sb); err != nil {
		r.err = err
		return r
	}
	out := strings.TrimSuffix(sb.String(), "\n")
	if out == "" {
		return r
	}
	for _, line := range strings.Split(out, "\n") {
		r.printLn(line)
	}
	return r
}

// Error returns the current error state
func (r *RunnableSheet) Error() error {
	return r.err
}

// CheckError logs the current error using the printLn function (chainable)
func (r *RunnableSheet) CheckError() *RunnableSheet {
	if r.err != nil {
		r.printLn(fmt.Sprintf("ERROR: %v", r.err))
	} else {
		r.printLn("No errors")
	}
	return r
}

// Sheet returns the underlying sheet. use with caution as it bypasses
// error tracking.
func (r *RunnableSheet) Sheet() *Sheet {
	return r.sheet
}

// Reset clears the error state (chainable)
func (r *RunnableSheet) Reset() *RunnableSheet {
	r.err = nil
	return r
}

// Then allows conditional execution based on current error state
func (r *RunnableSheet) Then(fn func(*RunnableSheet) *RunnableSheet) *RunnableSheet {
	if r.err != nil {
		return r // skip if there's an error
	}
	return fn(r)
}

// OnError allows error handling in the chain
func (r *RunnableSheet) OnError(fn func(error) error) *RunnableSheet {
	if r.err != nil {
		r.err = fn(r.err)
	}
	return r
}

// Must panics if there's an error (chainable). useful for ensuring
// critical operations succeed
func (r *RunnableSheet) Must() *RunnableSheet {
	if r.err != nil {
		panic(r.err)
	}
	return r
}
