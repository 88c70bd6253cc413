package spreadsheet

import "strings"

const (
	FormulaSign = '=' // marks formula text
	EscapeSign  = '\'' // forces text interpretation of what follows
)

// CellKind tags the variant held by a Cell
type CellKind uint8

const (
	CellKindEmpty   CellKind = 0
	CellKindText    CellKind = 1
	CellKindFormula CellKind = 2
)

func (k CellKind) String() string {
	switch k {
	case CellKindText:
		return "text"
	case CellKindFormula:
		return "formula"
	default:
		return "empty"
	}
}

// Cell is one slot of a Sheet. it is Empty, Text or Formula.
//
// references are the positions a formula reads; dependents are the
// positions whose formulas read this cell. the sheet keeps dependents in
// sync with every other cell's references, a cell never edits its own.
type Cell struct {
	kind CellKind
	text string
	expr Expression

	cache *Value // memoized formula result, nil until computed

	references []Position // sorted, from expr
	dependents positionSet

	sheet *Sheet
}

func (s *Sheet) newEmptyCell() *Cell {
	return &Cell{
		kind:       CellKindEmpty,
		dependents: newPositionSet(),
		sheet:      s,
	}
}

// buildCell creates a detached cell for text. it is not installed
func (s *Sheet) buildCell(text string) (*Cell, error) {
	cell := s.newEmptyCell()
	if text == "" {
		return cell, nil
	}

	if len(text) > 1 && text[0] == FormulaSign {
		expr, err := s.parser.Parse(text[1:])
		if err != nil {
			return nil, err
		}
		cell.kind = CellKindFormula
		cell.expr = expr
		cell.references = expr.ReferencedPositions()
		return cell, nil
	}

	cell.kind = CellKindText
	cell.text = text
	return cell, nil
}

func (c *Cell) Kind() CellKind {
	return c.kind
}

func (c *Cell) IsEmpty() bool {
	return c.kind == CellKindEmpty
}

// Text returns the definition of the cell. formulas come back in canonical
// form with the leading '='; escaped text keeps its escape sign.
func (c *Cell) Text() string {
	switch c.kind {
	case CellKindText:
		return c.text
	case CellKindFormula:
		return string(FormulaSign) + c.expr.String()
	default:
		return ""
	}
}

// Value returns what the cell evaluates to. formula results are memoized
// until an upstream change invalidates them, errors included.
func (c *Cell) Value() Value {
	switch c.kind {
	case CellKindText:
		if strings.HasPrefix(c.text, string(EscapeSign)) {
			return TextValue(c.text[1:])
		}
		if number, ok := parseNumber(c.text); ok {
			return NumberValue(number)
		}
		return TextValue(c.text)
	case CellKindFormula:
		return c.evaluate()
	default:
		return TextValue("")
	}
}

func (c *Cell) evaluate() Value {
	if c.cache != nil {
		c.sheet.metrics.observeMemoHit()
		return *c.cache
	}

	c.sheet.metrics.observeEvaluation()
	var v Value
	result, err := c.expr.Evaluate(c.sheet.reader)
	if err != nil {
		fe, ok := err.(FormulaError)
		if !ok {
			fe = NewFormulaError(ErrorCodeValue, err.Error())
		}
		v = ErrorValue(fe)
	} else {
		v = NumberValue(result)
	}
	c.cache = &v
	return v
}

// ReferencedCells lists the positions the formula reads in row-major order
func (c *Cell) ReferencedCells() []Position {
	out := make([]Position, len(c.references))
	copy(out, c.references)
	return out
}

// Dependents lists the positions whose formulas read this cell
func (c *Cell) Dependents() []Position {
	return c.dependents.sorted()
}

// IsReferenced reports whether any formula reads this cell
func (c *Cell) IsReferenced() bool {
	return len(c.dependents) > 0
}

// HasCachedValue reports whether a formula result is memoized
func (c *Cell) HasCachedValue() bool {
	return c.cache != nil
}
