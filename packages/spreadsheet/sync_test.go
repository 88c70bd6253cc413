package spreadsheet

import (
	"bytes"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncSheet(t *testing.T) {
	sheet := NewSyncSheet()
	a1 := Position{Row: 0, Col: 0}
	b1 := Position{Row: 0, Col: 1}

	require.NoError(t, sheet.SetCell(a1, "5"))
	require.NoError(t, sheet.SetCell(b1, "=A1*2"))

	v, err := sheet.GetValue(b1)
	require.NoError(t, err)
	n, ok := v.Number()
	assert.True(t, ok)
	assert.Equal(t, 10.0, n)

	text, err := sheet.GetText(b1)
	require.NoError(t, err)
	assert.Equal(t, "=A1*2", text)

	refs, err := sheet.GetReferencedCells(b1)
	require.NoError(t, err)
	assert.Equal(t, []Position{a1}, refs)

	assert.Equal(t, Size{Rows: 1, Cols: 2}, sheet.GetPrintableSize())

	var out bytes.Buffer
	require.NoError(t, sheet.PrintValues(&out))
	assert.Equal(t, "5\t10\n", out.String())
	out.Reset()
	require.NoError(t, sheet.PrintTexts(&out))
	assert.Equal(t, "5\t=A1*2\n", out.String())

	require.NoError(t, sheet.ClearCell(a1))
	v, err = sheet.GetValue(b1)
	require.NoError(t, err)
	n, _ = v.Number()
	assert.Equal(t, 0.0, n)

	err = sheet.SetCell(a1, "=B1")
	assert.ErrorIs(t, err, ErrCircularDependency)

	_, err = sheet.GetValue(Position{Row: -1, Col: 0})
	assert.ErrorIs(t, err, ErrInvalidPosition)

	v, err = sheet.GetValue(Position{Row: 100, Col: 100})
	require.NoError(t, err)
	assert.Equal(t, Value{}, v)
}

func TestSyncSheetConcurrentWriters(t *testing.T) {
	sheet := NewSyncSheet()
	total := Position{Row: 0, Col: 0}

	const writers = 8
	const perWriter = 50

	// A1 sums the first row of every writer's column
	formula := "=0"
	for w := 0; w < writers; w++ {
		formula += fmt.Sprintf("+%s", Position{Row: 1, Col: w})
	}
	require.NoError(t, sheet.SetCell(total, formula))

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(col int) {
			defer wg.Done()
			pos := Position{Row: 1, Col: col}
			for i := 1; i <= perWriter; i++ {
				assert.NoError(t, sheet.SetCell(pos, fmt.Sprint(i)))
				_, err := sheet.GetValue(total)
				assert.NoError(t, err)
			}
		}(w)
	}
	wg.Wait()

	v, err := sheet.GetValue(total)
	require.NoError(t, err)
	n, ok := v.Number()
	assert.True(t, ok)
	assert.Equal(t, float64(writers*perWriter), n)
}
