package spreadsheet

import "fmt"

// AppErrorCode classifies failures of mutating sheet operations. formula
// evaluation faults are not AppErrors, they are FormulaError values
type AppErrorCode int

const (
	// InvalidPosition means the coordinates are outside the grid.
	InvalidPosition AppErrorCode = 1

	// FormulaParse means the formula text could not be parsed.
	FormulaParse AppErrorCode = 2

	// CircularDependency means installing the formula would close a cycle
	// in the dependency graph.
	CircularDependency AppErrorCode = 3
)

var appErrorNames = map[AppErrorCode]string{
	InvalidPosition:    "invalid position",
	FormulaParse:       "formula parse error",
	CircularDependency: "circular dependency",
}

func (c AppErrorCode) String() string {
	if name, ok := appErrorNames[c]; ok {
		return name
	}
	return fmt.Sprintf("code(%d)", int(c))
}

// AppError is returned by SetCell, GetCell and ClearCell. the sheet is
// never modified when one is returned
type AppError struct {
	Code     AppErrorCode
	Position Position
	Message  string
	Err      error
}

// sentinels for errors.Is, matched by code
var (
	ErrInvalidPosition    = &AppError{Code: InvalidPosition}
	ErrFormulaParse       = &AppError{Code: FormulaParse}
	ErrCircularDependency = &AppError{Code: CircularDependency}
)

func (e *AppError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Code.String()
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches any AppError carrying the same code
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// NewApplicationError creates a new application error
func NewApplicationError(code AppErrorCode, pos Position, message string) *AppError {
	return &AppError{
		Code:     code,
		Position: pos,
		Message:  message,
	}
}

func NewInvalidPositionError(pos Position, message string) *AppError {
	if message == "" {
		message = fmt.Sprintf("invalid position (%d, %d)", pos.Row, pos.Col)
	}
	return NewApplicationError(InvalidPosition, pos, message)
}

func newFormulaParseError(pos Position, cause error) *AppError {
	return &AppError{
		Code:     FormulaParse,
		Position: pos,
		Message:  fmt.Sprintf("cannot parse formula for %s", pos),
		Err:      cause,
	}
}

func newCircularDependencyError(pos Position) *AppError {
	return NewApplicationError(CircularDependency, pos,
		fmt.Sprintf("circular dependency through %s", pos))
}
