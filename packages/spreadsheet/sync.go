package spreadsheet

import (
	"io"
	"sync"
)

// SyncSheet guards a Sheet with one lock held for the whole of each call.
// invalidation and cycle checks walk arbitrary parts of the graph, so
// finer locking would not see a consistent snapshot. cell handles would
// escape the lock, so reads return values instead.
type SyncSheet struct {
	mu    sync.Mutex
	sheet *Sheet
}

// NewSyncSheet creates an empty guarded sheet
func NewSyncSheet(opts ...Option) *SyncSheet {
	return &SyncSheet{sheet: NewSheet(opts...)}
}

func (s *SyncSheet) SetCell(pos Position, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sheet.SetCell(pos, text)
}

func (s *SyncSheet) ClearCell(pos Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sheet.ClearCell(pos)
}

// GetValue returns the value at pos; an absent cell reads as empty text
func (s *SyncSheet) GetValue(pos Position) (Value, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cell, err := s.sheet.GetCell(pos)
	if err != nil || cell == nil {
		return Value{}, err
	}
	return cell.Value(), nil
}

func (s *SyncSheet) GetText(pos Position) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cell, err := s.sheet.GetCell(pos)
	if err != nil || cell == nil {
		return "", err
	}
	return cell.Text(), nil
}

func (s *SyncSheet) GetReferencedCells(pos Position) ([]Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cell, err := s.sheet.GetCell(pos)
	if err != nil || cell == nil {
		return nil, err
	}
	return cell.ReferencedCells(), nil
}

func (s *SyncSheet) GetPrintableSize() Size {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sheet.GetPrintableSize()
}

func (s *SyncSheet) PrintValues(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sheet.PrintValues(w)
}

func (s *SyncSheet) PrintTexts(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sheet.PrintTexts(w)
}
