package spreadsheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPositionString(t *testing.T) {
	cases := map[Position]string{
		{Row: 0, Col: 0}:                     "A1",
		{Row: 9, Col: 25}:                    "Z10",
		{Row: 0, Col: 26}:                    "AA1",
		{Row: 0, Col: 701}:                   "ZZ1",
		{Row: 0, Col: 702}:                   "AAA1",
		{Row: MaxRows - 1, Col: MaxCols - 1}: "XFD16384",
		{Row: -1, Col: 0}:                    "",
		{Row: 0, Col: MaxCols}:               "",
	}
	for pos, expected := range cases {
		assert.Equal(t, expected, pos.String(), "%+v", pos)
	}
}

func TestParsePosition(t *testing.T) {
	valid := []string{"A1", "Z10", "AA1", "ZZ1", "AAA1", "XFD16384", "B12"}
	for _, address := range valid {
		pos, err := ParsePosition(address)
		require.NoError(t, err, address)
		assert.Equal(t, address, pos.String())
	}

	invalid := []string{"", "A", "1", "a1", "A0", "A-1", "A+1", "XFE1", "A16385", "AAAA1", "A1B", "A 1", "A123456"}
	for _, address := range invalid {
		pos, err := ParsePosition(address)
		assert.ErrorIs(t, err, ErrInvalidPosition, address)
		assert.Equal(t, NonePosition, pos)
	}
}

func TestPositionLess(t *testing.T) {
	assert.True(t, Position{Row: 0, Col: 5}.Less(Position{Row: 1, Col: 0}))
	assert.True(t, Position{Row: 1, Col: 0}.Less(Position{Row: 1, Col: 1}))
	assert.False(t, Position{Row: 1, Col: 1}.Less(Position{Row: 1, Col: 1}))
	assert.False(t, Position{Row: 2, Col: 0}.Less(Position{Row: 1, Col: 9}))
}

func TestSize(t *testing.T) {
	size := Size{Rows: 2, Cols: 3}
	assert.Equal(t, "2x3", size.String())
	assert.True(t, size.Contains(Position{Row: 1, Col: 2}))
	assert.False(t, size.Contains(Position{Row: 2, Col: 0}))
	assert.False(t, size.Contains(Position{Row: 0, Col: 3}))
	assert.False(t, Size{}.Contains(Position{Row: 0, Col: 0}))
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "", Value{}.String())
	assert.Equal(t, "text", TextValue("text").String())
	assert.Equal(t, "1.5", NumberValue(1.5).String())
	assert.Equal(t, "100", NumberValue(100).String())
	assert.Equal(t, "-0.001", NumberValue(-0.001).String())
	assert.Equal(t, "#DIV/0!", ErrorValue(NewFormulaError(ErrorCodeDiv0, "division by zero")).String())
	assert.Equal(t, "#REF!", ErrorValue(NewFormulaError(ErrorCodeRef, "")).String())
	assert.Equal(t, "#VALUE!", NewFormulaError(ErrorCodeValue, "").Error())
}

func TestParseNumber(t *testing.T) {
	numbers := map[string]float64{
		"0":     0,
		"-3":    -3,
		"+3":    3,
		"1.25":  1.25,
		"1e-2":  0.01,
		".5":    0.5,
		"5.":    5,
		"0x1p4": 16,
	}
	for text, expected := range numbers {
		n, ok := parseNumber(text)
		assert.True(t, ok, text)
		assert.Equal(t, expected, n, text)
	}

	for _, text := range []string{"", " ", "1 ", "1,5", "abc", "1e", "Inf", "-inf", "NaN", "1e400"} {
		_, ok := parseNumber(text)
		assert.False(t, ok, text)
	}
}
