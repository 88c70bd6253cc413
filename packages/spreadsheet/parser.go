package spreadsheet

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type NodePosition struct {
	Start int
	End   int
}

// ASTNode is one node of a parsed formula. nodes are immutable once built,
// so a tree can be shared by every cell holding the same formula text.
type ASTNode interface {
	Eval(r SheetReader) (float64, error)
	GetPosition() NodePosition
	ToString() string
}

// operator precedence, used by ToString to decide where parentheses go
const (
	precAdditive = iota + 1
	precMultiplicative
	precUnary
	precAtom
)

// NumberNode represents a numeric literal
type NumberNode struct {
	Value    float64
	Position NodePosition
}

func (n *NumberNode) Eval(r SheetReader) (float64, error) {
	return n.Value, nil
}

func (n *NumberNode) GetPosition() NodePosition {
	return n.Position
}

func (n *NumberNode) ToString() string {
	return formatNumber(n.Value)
}

// CellRefNode represents a reference to another cell. Target is NonePosition
// when the name is shaped like a cell but falls outside the grid.
type CellRefNode struct {
	Name     string
	Target   Position
	Position NodePosition
}

func (n *CellRefNode) Eval(r SheetReader) (float64, error) {
	if !n.Target.IsValid() {
		return 0, NewFormulaError(ErrorCodeRef, "reference outside the grid: "+n.Name)
	}

	v := r.Read(n.Target)
	switch v.Type() {
	case ValueTypeNumber:
		num, _ := v.Number()
		return num, nil
	case ValueTypeError:
		fe, _ := v.Err()
		return 0, fe
	default:
		text, _ := v.Text()
		if text == "" {
			return 0, nil
		}
		if num, ok := parseNumber(text); ok {
			return num, nil
		}
		return 0, NewFormulaError(ErrorCodeValue, fmt.Sprintf("%s holds text %q", n.Target, text))
	}
}

func (n *CellRefNode) GetPosition() NodePosition {
	return n.Position
}

func (n *CellRefNode) ToString() string {
	if n.Target.IsValid() {
		return n.Target.String()
	}
	return n.Name
}

// BinaryOpNode represents a binary operation
type BinaryOpNode struct {
	Op       BinaryOp
	Left     ASTNode
	Right    ASTNode
	Position NodePosition
}

func (n *BinaryOpNode) Eval(r SheetReader) (float64, error) {
	// left to right, the first error wins
	left, err := n.Left.Eval(r)
	if err != nil {
		return 0, err
	}
	right, err := n.Right.Eval(r)
	if err != nil {
		return 0, err
	}

	var result float64
	switch n.Op {
	case BinOpAdd:
		result = left + right
	case BinOpSubtract:
		result = left - right
	case BinOpMultiply:
		result = left * right
	case BinOpDivide:
		if right == 0 {
			return 0, NewFormulaError(ErrorCodeDiv0, "division by zero")
		}
		result = left / right
	default:
		return 0, NewFormulaError(ErrorCodeValue, "unknown binary operator")
	}

	if math.IsInf(result, 0) || math.IsNaN(result) {
		return 0, NewFormulaError(ErrorCodeDiv0, "result is not a finite number")
	}
	return result, nil
}

func (n *BinaryOpNode) GetPosition() NodePosition {
	return n.Position
}

func (n *BinaryOpNode) ToString() string {
	var opStr string
	switch n.Op {
	case BinOpAdd:
		opStr = "+"
	case BinOpSubtract:
		opStr = "-"
	case BinOpMultiply:
		opStr = "*"
	case BinOpDivide:
		opStr = "/"
	}

	left := n.Left.ToString()
	if n.needsParens(n.Left, false) {
		left = "(" + left + ")"
	}
	right := n.Right.ToString()
	if n.needsParens(n.Right, true) {
		right = "(" + right + ")"
	}
	return left + opStr + right
}

// needsParens reports whether child must be wrapped to keep its grouping
// when printed under this operator
func (n *BinaryOpNode) needsParens(child ASTNode, isRight bool) bool {
	childPrec := precedence(child)
	switch n.Op {
	case BinOpSubtract:
		return isRight && childPrec == precAdditive
	case BinOpMultiply:
		return childPrec == precAdditive
	case BinOpDivide:
		if childPrec == precAdditive {
			return true
		}
		return isRight && childPrec == precMultiplicative
	default:
		return false
	}
}

// UnaryOpNode represents a unary operation
type UnaryOpNode struct {
	Op       UnaryOp
	Operand  ASTNode
	Position NodePosition
}

func (n *UnaryOpNode) Eval(r SheetReader) (float64, error) {
	val, err := n.Operand.Eval(r)
	if err != nil {
		return 0, err
	}

	switch n.Op {
	case UnaryOpPlus:
		return val, nil
	case UnaryOpMinus:
		return -val, nil
	default:
		return 0, NewFormulaError(ErrorCodeValue, "unknown unary operator")
	}
}

func (n *UnaryOpNode) GetPosition() NodePosition {
	return n.Position
}

func (n *UnaryOpNode) ToString() string {
	opStr := "+"
	if n.Op == UnaryOpMinus {
		opStr = "-"
	}
	operand := n.Operand.ToString()
	if precedence(n.Operand) == precAdditive {
		operand = "(" + operand + ")"
	}
	return opStr + operand
}

func precedence(node ASTNode) int {
	switch n := node.(type) {
	case *BinaryOpNode:
		if n.Op == BinOpAdd || n.Op == BinOpSubtract {
			return precAdditive
		}
		return precMultiplicative
	case *UnaryOpNode:
		return precUnary
	default:
		return precAtom
	}
}

// collectCells adds every valid position the tree reads to out
func collectCells(node ASTNode, out positionSet) {
	stack := []ASTNode{node}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch n := top.(type) {
		case *CellRefNode:
			if n.Target.IsValid() {
				out.add(n.Target)
			}
		case *UnaryOpNode:
			stack = append(stack, n.Operand)
		case *BinaryOpNode:
			stack = append(stack, n.Left, n.Right)
		}
	}
}

// tokenParser turns the lexer's tokens into an AST by recursive descent
type tokenParser struct {
	tokens []Token
	pos    int
}

// parseFormula lexes and parses formula text, including its leading '='
func parseFormula(input string) (ASTNode, error) {
	tokens, err := NewLexer(input).Tokenize()
	if err != nil {
		return nil, err
	}
	p := &tokenParser{tokens: tokens}
	return p.Parse()
}

// Parse parses the tokens into an AST
func (p *tokenParser) Parse() (ASTNode, error) {
	if len(p.tokens) == 0 || p.tokens[0].Type != TokenEquals {
		return nil, &ParseError{Pos: 0, Message: "formula must start with '='"}
	}
	p.pos++ // consume the equals token

	node, err := p.parseAddition()
	if err != nil {
		return nil, err
	}

	if tok := p.current(); tok.Type != TokenEOF {
		return nil, &ParseError{Pos: tok.Pos, Message: fmt.Sprintf("unexpected token after expression: %s", tok.Value)}
	}

	return node, nil
}

func (p *tokenParser) current() Token {
	if p.pos >= len(p.tokens) {
		end := 0
		if len(p.tokens) > 0 {
			end = p.tokens[len(p.tokens)-1].Pos
		}
		return Token{Type: TokenEOF, Pos: end}
	}
	return p.tokens[p.pos]
}

// parseAddition handles addition and subtraction
func (p *tokenParser) parseAddition() (ASTNode, error) {
	left, err := p.parseMultiplication()
	if err != nil {
		return nil, err
	}

	for {
		tok := p.current()
		if tok.Type != TokenBinaryOp {
			break
		}

		var op BinaryOp
		switch tok.Value {
		case "+":
			op = BinOpAdd
		case "-":
			op = BinOpSubtract
		default:
			return left, nil
		}

		p.pos++
		right, err := p.parseMultiplication()
		if err != nil {
			return nil, err
		}

		left = &BinaryOpNode{
			Op:       op,
			Left:     left,
			Right:    right,
			Position: NodePosition{Start: left.GetPosition().Start, End: right.GetPosition().End},
		}
	}

	return left, nil
}

// parseMultiplication handles multiplication and division
func (p *tokenParser) parseMultiplication() (ASTNode, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		tok := p.current()
		if tok.Type != TokenBinaryOp {
			break
		}

		var op BinaryOp
		switch tok.Value {
		case "*":
			op = BinOpMultiply
		case "/":
			op = BinOpDivide
		default:
			return left, nil
		}

		p.pos++
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		left = &BinaryOpNode{
			Op:       op,
			Left:     left,
			Right:    right,
			Position: NodePosition{Start: left.GetPosition().Start, End: right.GetPosition().End},
		}
	}

	return left, nil
}

// parseUnary handles unary operators
func (p *tokenParser) parseUnary() (ASTNode, error) {
	tok := p.current()
	if tok.Type != TokenUnaryPrefixOp {
		return p.parsePrimary()
	}

	op := UnaryOpPlus
	if tok.Value == "-" {
		op = UnaryOpMinus
	}

	p.pos++
	operand, err := p.parseUnary() // recurse for chained unary operators
	if err != nil {
		return nil, err
	}

	return &UnaryOpNode{
		Op:       op,
		Operand:  operand,
		Position: NodePosition{Start: tok.Pos, End: operand.GetPosition().End},
	}, nil
}

// parsePrimary handles literals, references and parentheses
func (p *tokenParser) parsePrimary() (ASTNode, error) {
	tok := p.current()

	switch tok.Type {
	case TokenNumber:
		p.pos++
		val, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil || math.IsInf(val, 0) {
			return nil, &ParseError{Pos: tok.Pos, Message: fmt.Sprintf("invalid number: %s", tok.Value)}
		}
		return &NumberNode{
			Value:    val,
			Position: NodePosition{Start: tok.Pos, End: tok.Pos + len(tok.Value)},
		}, nil

	case TokenCell:
		p.pos++
		return &CellRefNode{
			Name:     tok.Value,
			Target:   positionFromName(tok.Value),
			Position: NodePosition{Start: tok.Pos, End: tok.Pos + len(tok.Value)},
		}, nil

	case TokenLeftParen:
		p.pos++
		node, err := p.parseAddition()
		if err != nil {
			return nil, err
		}

		if p.current().Type != TokenRightParen {
			return nil, &ParseError{Pos: p.current().Pos, Message: "expected closing parenthesis"}
		}
		p.pos++

		return node, nil

	case TokenEOF:
		return nil, &ParseError{Pos: tok.Pos, Message: "unexpected end of expression"}

	default:
		return nil, &ParseError{Pos: tok.Pos, Message: fmt.Sprintf("unexpected token: %s", strings.TrimSpace(tok.Value))}
	}
}
