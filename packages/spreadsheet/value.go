package spreadsheet

import (
	"math"
	"strconv"
)

// ErrorCode represents the spreadsheet error codes a formula can produce
type ErrorCode uint8

const (
	ErrorCodeRef   ErrorCode = 1 // #REF! - reference outside the grid
	ErrorCodeValue ErrorCode = 2 // #VALUE! - operand is not a number
	ErrorCodeDiv0  ErrorCode = 3 // #DIV/0! - division by zero or non-finite result
)

// ErrorMapper maps error codes to their display form
var ErrorMapper = map[ErrorCode]string{
	ErrorCodeRef:   "#REF!",
	ErrorCodeValue: "#VALUE!",
	ErrorCodeDiv0:  "#DIV/0!",
}

// FormulaError is the result of a formula that failed to evaluate. it is
// a value stored in the cell, not a failure of the call that produced it
type FormulaError struct {
	Code    ErrorCode
	Message string
}

// NewFormulaError creates a formula error, defaulting the message to the
// display form of the code
func NewFormulaError(code ErrorCode, message string) FormulaError {
	if message == "" {
		message = ErrorMapper[code]
	}
	return FormulaError{Code: code, Message: message}
}

func (e FormulaError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return ErrorMapper[e.Code]
}

// String returns the display form, e.g. "#DIV/0!"
func (e FormulaError) String() string {
	return ErrorMapper[e.Code]
}

// ValueType tags the variant held by a Value
type ValueType uint8

const (
	ValueTypeText   ValueType = 0
	ValueTypeNumber ValueType = 1
	ValueTypeError  ValueType = 2
)

// Value is what a cell evaluates to: text, a number, or a formula error.
// the zero Value is the empty text, which is what empty cells hold
type Value struct {
	typ    ValueType
	text   string
	number float64
	err    FormulaError
}

func TextValue(text string) Value {
	return Value{typ: ValueTypeText, text: text}
}

func NumberValue(number float64) Value {
	return Value{typ: ValueTypeNumber, number: number}
}

func ErrorValue(err FormulaError) Value {
	return Value{typ: ValueTypeError, err: err}
}

func (v Value) Type() ValueType {
	return v.typ
}

// Text returns the text variant
func (v Value) Text() (string, bool) {
	return v.text, v.typ == ValueTypeText
}

// Number returns the numeric variant
func (v Value) Number() (float64, bool) {
	return v.number, v.typ == ValueTypeNumber
}

// Err returns the formula error variant
func (v Value) Err() (FormulaError, bool) {
	return v.err, v.typ == ValueTypeError
}

// String renders the value the way it is printed in a sheet
func (v Value) String() string {
	switch v.typ {
	case ValueTypeNumber:
		return formatNumber(v.number)
	case ValueTypeError:
		return v.err.String()
	default:
		return v.text
	}
}

// formatNumber renders the shortest representation that parses back to
// the same float64
func formatNumber(number float64) string {
	return strconv.FormatFloat(number, 'g', -1, 64)
}

// parseNumber parses the whole string as a finite real number. partial
// matches such as "12abc" and non-finite spellings such as "Inf" fail
func parseNumber(text string) (float64, bool) {
	if text == "" {
		return 0, false
	}
	number, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, false
	}
	if math.IsInf(number, 0) || math.IsNaN(number) {
		return 0, false
	}
	return number, true
}
