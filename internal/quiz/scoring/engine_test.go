package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentageRoundsHalfUp(t *testing.T) {
	e := NewEngine(DefaultScoringConfig())

	assert.Equal(t, 33, e.Percentage(1, 3))
	assert.Equal(t, 67, e.Percentage(2, 3))
	assert.Equal(t, 50, e.Percentage(1, 2))
	assert.Equal(t, 13, e.Percentage(1, 8)) // 12.5
	assert.Equal(t, 100, e.Percentage(5, 5))
	assert.Equal(t, 0, e.Percentage(0, 0))
}

func TestGrade(t *testing.T) {
	e := NewEngine(DefaultScoringConfig())

	out, err := e.Grade([]int{1, Unanswered, 3}, []int{1, 2, 0})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Correct)
	assert.Equal(t, 3, out.Total)
	assert.Equal(t, 33, out.Score)
	assert.Equal(t, []bool{true, false, false}, out.Marks)

	out, err = e.Grade([]int{0, 0}, []int{0, 0})
	require.NoError(t, err)
	assert.Equal(t, 100, out.Score)
}

func TestGradeRejectsBadSheets(t *testing.T) {
	e := NewEngine(ScoringConfig{})

	_, err := e.Grade([]int{0}, []int{0, 1})
	var mismatch *MismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, 2, mismatch.Want)

	_, err = e.Grade([]int{0, 4}, []int{0, 1})
	var rangeErr *RangeError
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, 1, rangeErr.Index)

	_, err = e.Grade([]int{-2}, []int{0})
	assert.ErrorAs(t, err, &rangeErr)
}
