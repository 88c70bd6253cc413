package spreadsheet

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	MaxRows = 16384 // exclusive upper bound for Position.Row
	MaxCols = 16384 // exclusive upper bound for Position.Col

	maxColumnLetters = 3 // "XFD" is the last column
	lettersInAlpha   = 26
)

// Position identifies a cell by zero-based row and column
type Position struct {
	Row int
	Col int
}

// NonePosition is returned where a position could not be resolved
var NonePosition = Position{Row: -1, Col: -1}

// IsValid reports whether the position lies inside the grid
func (p Position) IsValid() bool {
	return p.Row >= 0 && p.Col >= 0 && p.Row < MaxRows && p.Col < MaxCols
}

// Less orders positions row-major
func (p Position) Less(other Position) bool {
	if p.Row != other.Row {
		return p.Row < other.Row
	}
	return p.Col < other.Col
}

// String renders the position in A1 notation. invalid positions render
// as the empty string
func (p Position) String() string {
	if !p.IsValid() {
		return ""
	}
	return columnName(p.Col) + strconv.Itoa(p.Row+1)
}

// columnName converts a zero-based column index to letters
// (0=A, 25=Z, 26=AA, ...)
func columnName(col int) string {
	var letters []byte
	for col >= 0 {
		letters = append(letters, byte('A'+col%lettersInAlpha))
		col = col/lettersInAlpha - 1
	}
	for i, j := 0, len(letters)-1; i < j; i, j = i+1, j-1 {
		letters[i], letters[j] = letters[j], letters[i]
	}
	return string(letters)
}

// ParsePosition parses an A1-style address. the column must be upper case
// letters and the row a positive decimal number
func ParsePosition(address string) (Position, error) {
	pos := positionFromName(address)
	if !pos.IsValid() {
		return NonePosition, NewInvalidPositionError(NonePosition,
			fmt.Sprintf("invalid address: %q", address))
	}
	return pos, nil
}

// positionFromName resolves a cell name like "B12". malformed or
// out-of-range names yield NonePosition
func positionFromName(name string) Position {
	letterEnd := 0
	for letterEnd < len(name) && isUpper(name[letterEnd]) {
		letterEnd++
	}

	if letterEnd == 0 || letterEnd > maxColumnLetters || letterEnd == len(name) {
		return NonePosition
	}

	digits := name[letterEnd:]
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return NonePosition
		}
	}
	// anything longer can't be a row inside the grid
	if len(digits) > len(strconv.Itoa(MaxRows)) {
		return NonePosition
	}

	col := 0
	for i := 0; i < letterEnd; i++ {
		col = col*lettersInAlpha + int(name[i]-'A') + 1
	}

	row, err := strconv.Atoi(digits)
	if err != nil {
		return NonePosition
	}

	pos := Position{Row: row - 1, Col: col - 1}
	if !pos.IsValid() {
		return NonePosition
	}
	return pos
}

func isUpper(ch byte) bool {
	return ch >= 'A' && ch <= 'Z'
}

// Size is the printable area of a sheet: the smallest box anchored at A1
// containing every non-empty cell
type Size struct {
	Rows int
	Cols int
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Rows, s.Cols)
}

// Contains reports whether pos falls inside the box
func (s Size) Contains(pos Position) bool {
	return pos.Row >= 0 && pos.Col >= 0 && pos.Row < s.Rows && pos.Col < s.Cols
}

// formatPositions joins positions in A1 notation, used for log fields
func formatPositions(positions []Position) string {
	names := make([]string, len(positions))
	for i, pos := range positions {
		names[i] = pos.String()
	}
	return strings.Join(names, ",")
}
