package spreadsheet

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// SheetInterface is the operation surface a driving layer consumes
type SheetInterface interface {
	// cell methods

	SetCell(pos Position, text string) error
	GetCell(pos Position) (*Cell, error)
	ClearCell(pos Position) error

	// sheet methods

	GetPrintableSize() Size
	PrintValues(w io.Writer) error
	PrintTexts(w io.Writer) error
}

var _ SheetInterface = (*Sheet)(nil)

// Sheet is a grid of cells with a live dependency graph. formula results
// are computed on read, memoized, and invalidated along the dependents of
// whatever cell changes. a Sheet is not safe for concurrent use, see
// SyncSheet.
type Sheet struct {
	cells *grid

	// non-empty cells per row and per column, used to shrink the
	// printable area when cells are cleared
	rowCounts map[int]int
	colCounts map[int]int
	size      Size

	parser  FormulaParser
	log     logrus.FieldLogger
	metrics *Metrics
	reader  SheetReader
}

// Option configures a Sheet
type Option func(*Sheet)

// WithParser replaces the default formula parser
func WithParser(parser FormulaParser) Option {
	return func(s *Sheet) {
		s.parser = parser
	}
}

// WithLogger sets the logger mutations and rejections are reported to
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Sheet) {
		s.log = log
	}
}

// WithMetrics records sheet activity into m
func WithMetrics(m *Metrics) Option {
	return func(s *Sheet) {
		s.metrics = m
	}
}

// NewSheet creates an empty sheet
func NewSheet(opts ...Option) *Sheet {
	s := &Sheet{
		cells:     newGrid(),
		rowCounts: make(map[int]int),
		colCounts: make(map[int]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.parser == nil {
		s.parser = NewDefaultParser()
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	s.reader = sheetReader{sheet: s}
	s.metrics.observeSize(s.size)
	return s
}

// sheetReader is the view formulas evaluate against. it can only read.
type sheetReader struct {
	sheet *Sheet
}

func (r sheetReader) Read(pos Position) Value {
	if !pos.IsValid() {
		return ErrorValue(NewFormulaError(ErrorCodeRef, ""))
	}
	cell := r.sheet.cells.get(pos)
	if cell == nil {
		return TextValue("")
	}
	return cell.Value()
}

// SetCell defines the cell at pos from text. text starting with '=' (and
// longer than that) is a formula; empty text clears the cell. a write that
// fails leaves the sheet exactly as it was.
func (s *Sheet) SetCell(pos Position, text string) error {
	if !pos.IsValid() {
		return s.reject(pos, text, NewInvalidPositionError(pos, ""))
	}
	if text == "" {
		return s.ClearCell(pos)
	}

	old := s.cells.get(pos)
	if old != nil && !old.IsEmpty() && old.Text() == text {
		return nil
	}

	candidate, err := s.buildCell(text)
	if err != nil {
		return s.reject(pos, text, newFormulaParseError(pos, err))
	}
	if s.wouldCycle(pos, candidate.references) {
		return s.reject(pos, text, newCircularDependencyError(pos))
	}

	// commit, nothing below can fail
	wasOccupied := old != nil && !old.IsEmpty()
	if old != nil {
		s.detach(pos, old.references)
		candidate.dependents = old.dependents
	}
	s.cells.put(pos, candidate)
	if !wasOccupied {
		s.occupy(pos)
	}
	s.attach(pos, candidate.references)
	invalidated := s.invalidate(pos)

	s.metrics.observeWrite("set")
	s.metrics.observeSize(s.size)
	s.log.WithFields(logrus.Fields{
		"position":    pos.String(),
		"text":        text,
		"invalidated": formatPositions(invalidated),
	}).Debug("cell set")

	return nil
}

// GetCell returns the cell at pos. a never written position inside the
// printable area yields an Empty cell, outside of it nil.
func (s *Sheet) GetCell(pos Position) (*Cell, error) {
	if !pos.IsValid() {
		return nil, NewInvalidPositionError(pos, "")
	}
	if cell := s.cells.get(pos); cell != nil {
		return cell, nil
	}
	if s.size.Contains(pos) {
		return s.newEmptyCell(), nil
	}
	return nil, nil
}

// ClearCell resets the cell at pos to Empty. formulas reading it keep
// their edge to the slot and see it as empty.
func (s *Sheet) ClearCell(pos Position) error {
	if !pos.IsValid() {
		return s.reject(pos, "", NewInvalidPositionError(pos, ""))
	}

	cell := s.cells.get(pos)
	if cell == nil || cell.IsEmpty() {
		return nil
	}

	s.detach(pos, cell.references)
	empty := s.newEmptyCell()
	empty.dependents = cell.dependents
	s.cells.put(pos, empty)
	invalidated := s.invalidate(pos)
	s.release(pos)
	s.collect(pos)

	s.metrics.observeWrite("clear")
	s.metrics.observeSize(s.size)
	s.log.WithFields(logrus.Fields{
		"position":    pos.String(),
		"invalidated": formatPositions(invalidated),
	}).Debug("cell cleared")

	return nil
}

// GetPrintableSize returns the smallest box anchored at A1 that holds every
// non-empty cell
func (s *Sheet) GetPrintableSize() Size {
	return s.size
}

// occupy counts a newly non-empty slot and grows the printable area
func (s *Sheet) occupy(pos Position) {
	s.rowCounts[pos.Row]++
	s.colCounts[pos.Col]++
	s.size.Rows = max(s.size.Rows, pos.Row+1)
	s.size.Cols = max(s.size.Cols, pos.Col+1)
}

// release uncounts a slot that became empty and shrinks the printable area
// when a row or column runs out of cells
func (s *Sheet) release(pos Position) {
	shrink := false
	if s.rowCounts[pos.Row]--; s.rowCounts[pos.Row] <= 0 {
		delete(s.rowCounts, pos.Row)
		shrink = true
	}
	if s.colCounts[pos.Col]--; s.colCounts[pos.Col] <= 0 {
		delete(s.colCounts, pos.Col)
		shrink = true
	}
	if !shrink {
		return
	}

	if len(s.rowCounts) == 0 || len(s.colCounts) == 0 {
		s.size = Size{}
		return
	}
	s.size = Size{Rows: maxKey(s.rowCounts) + 1, Cols: maxKey(s.colCounts) + 1}
}

func maxKey(counts map[int]int) int {
	best := -1
	for k := range counts {
		if k > best {
			best = k
		}
	}
	return best
}

func (s *Sheet) reject(pos Position, text string, err *AppError) error {
	s.metrics.observeRejected(err.Code)
	s.log.WithFields(logrus.Fields{
		"position": positionField(pos),
		"text":     text,
		"error":    err.Error(),
	}).Debug("cell write rejected")
	return err
}

func positionField(pos Position) string {
	if pos.IsValid() {
		return pos.String()
	}
	return fmt.Sprintf("(%d,%d)", pos.Row, pos.Col)
}
