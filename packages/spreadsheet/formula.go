package spreadsheet

import (
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultFormulaCacheSize is the number of parsed formulas kept by a Parser
// created without an explicit size.
const DefaultFormulaCacheSize = 1024

// SheetReader is the read-only view of a sheet handed to a formula while it
// evaluates. positions outside the grid read as a #REF! error.
type SheetReader interface {
	Read(pos Position) Value
}

// Expression is a parsed formula.
type Expression interface {
	// Evaluate computes the formula. the error, when set, is a FormulaError.
	Evaluate(r SheetReader) (float64, error)
	// ReferencedPositions lists the cells the formula reads, unique and in
	// row-major order. names outside the grid are left out.
	ReferencedPositions() []Position
	// String renders the canonical formula text without the leading '='.
	String() string
}

// FormulaParser turns formula text (without the leading '=') into an
// Expression. failures are reported as *ParseError.
type FormulaParser interface {
	Parse(expression string) (Expression, error)
}

// Formula is the Expression built from an AST.
type Formula struct {
	root ASTNode
	refs []Position
}

func newFormula(root ASTNode) *Formula {
	refs := newPositionSet()
	collectCells(root, refs)
	return &Formula{root: root, refs: refs.sorted()}
}

func (f *Formula) Evaluate(r SheetReader) (float64, error) {
	result, err := f.root.Eval(r)
	if err == nil {
		return result, nil
	}
	var fe FormulaError
	if errors.As(err, &fe) {
		return 0, fe
	}
	return 0, NewFormulaError(ErrorCodeValue, err.Error())
}

func (f *Formula) ReferencedPositions() []Position {
	out := make([]Position, len(f.refs))
	copy(out, f.refs)
	return out
}

func (f *Formula) String() string {
	return f.root.ToString()
}

// Parser is the default FormulaParser. parsed formulas are immutable, so
// they are cached by source text and shared between cells.
type Parser struct {
	cache *lru.Cache[string, *Formula]
}

// NewParser creates a parser that keeps up to size parsed formulas
func NewParser(size int) (*Parser, error) {
	if size <= 0 {
		return nil, fmt.Errorf("formula cache size must be positive, got %d", size)
	}
	cache, err := lru.New[string, *Formula](size)
	if err != nil {
		return nil, err
	}
	return &Parser{cache: cache}, nil
}

// NewDefaultParser creates a parser with DefaultFormulaCacheSize
func NewDefaultParser() *Parser {
	p, err := NewParser(DefaultFormulaCacheSize)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Parser) Parse(expression string) (Expression, error) {
	if f, ok := p.cache.Get(expression); ok {
		return f, nil
	}

	root, err := parseFormula("=" + expression)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) && pe.Pos > 0 {
			// offsets are reported against the text the caller passed in
			pe.Pos--
		}
		return nil, err
	}

	f := newFormula(root)
	p.cache.Add(expression, f)
	return f, nil
}

// Len returns the number of cached formulas
func (p *Parser) Len() int {
	return p.cache.Len()
}
