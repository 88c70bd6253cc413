package spreadsheet

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lineRecorder struct {
	lines []string
}

func (l *lineRecorder) printLn(s string) {
	l.lines = append(l.lines, s)
}

func TestRunnableSheet(t *testing.T) {
	rec := &lineRecorder{}
	r := NewRunnableSheet(rec.printLn).
		Set("A1", "10").
		Set("A2", "=A1*2").
		Log("A2").
		LogText("A2").
		LogRefs("A2").
		Log("B9").
		LogSize()

	require.NoError(t, r.Error())
	assert.Equal(t, []string{
		"A2: 20",
		"A2: =A1*2",
		"A2: [A1]",
		"B9: <empty>",
		"size: 2x1",
	}, rec.lines)

	n, ok := r.Value("A2").Number()
	assert.True(t, ok)
	assert.Equal(t, 20.0, n)
	assert.Equal(t, "=A1*2", r.Text("A2"))
	assert.Equal(t, []Position{{Row: 0, Col: 0}}, r.Refs("A2"))
	assert.Equal(t, Size{Rows: 2, Cols: 1}, r.Size())
}

func TestRunnableSheetErrors(t *testing.T) {
	rec := &lineRecorder{}
	r := NewRunnableSheet(rec.printLn).
		Set("A1", "=B1").
		Set("B1", "=A1").
		Set("C1", "never written").
		Log("A1")

	assert.ErrorIs(t, r.Error(), ErrCircularDependency)
	assert.Empty(t, rec.lines, "the chain stops at the first error")

	r.CheckError()
	require.Len(t, rec.lines, 1)
	assert.Contains(t, rec.lines[0], "ERROR: circular dependency")

	r.Reset().Set("C1", "ok").CheckError()
	assert.Equal(t, "No errors", rec.lines[1])
	assert.Equal(t, "ok", r.Text("C1"))

	r.Set("bad", "1")
	assert.ErrorIs(t, r.Error(), ErrInvalidPosition)

	called := false
	r.Then(func(r *RunnableSheet) *RunnableSheet {
		called = true
		return r
	})
	assert.False(t, called)

	replaced := errors.New("replaced")
	r.OnError(func(error) error { return replaced })
	assert.Equal(t, replaced, r.Error())
	assert.Panics(t, func() { r.Must() })

	r.Reset()
	assert.NotPanics(t, func() { r.Must() })
}

func TestRunnableSheetBatchAndPrint(t *testing.T) {
	rec := &lineRecorder{}
	r := NewRunnableSheet(rec.printLn).
		SetBatch(map[string]string{
			"B1": "=A1+1",
			"A1": "1",
			"A2": "text",
		}).
		PrintValues().
		PrintTexts()

	require.NoError(t, r.Error())
	assert.Equal(t, []string{
		"1\t2",
		"text\t",
		"1\t=A1+1",
		"text\t",
	}, rec.lines)

	r.SetBatch(map[string]string{"a1": "1"})
	assert.ErrorIs(t, r.Error(), ErrInvalidPosition)
}
