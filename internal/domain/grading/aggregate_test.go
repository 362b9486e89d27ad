package grading

import (
	"math"
	"testing"

	"github.com/SamijonovSardor/Programming-topshiriq/internal/domain/shared"
	"github.com/SamijonovSardor/Programming-topshiriq/internal/domain/student"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scored(studentID int64, name string, score int) ScoredResult {
	return ScoredResult{
		Result:  Result{StudentID: studentID, TestID: 1, Score: score},
		Student: student.Student{ID: studentID, Name: name, Email: name + "@example.com"},
	}
}

func TestAverageScore(t *testing.T) {
	avg, err := AverageScore([]Result{{Score: 10}, {Score: 20}, {Score: 30}})
	require.NoError(t, err)
	assert.Equal(t, 20.0, avg)
}

func TestAverageScore_Fractional(t *testing.T) {
	avg, err := AverageScore([]Result{{Score: 10}, {Score: 20}, {Score: 20}})
	require.NoError(t, err)
	assert.InDelta(t, 16.6666666, avg, 1e-6)
}

func TestAverageScore_LargeScores(t *testing.T) {
	avg, err := AverageScore([]Result{{Score: math.MaxInt}, {Score: math.MaxInt}})
	require.NoError(t, err)
	assert.Equal(t, float64(math.MaxInt), avg)

	avg, err = AverageScore([]Result{{Score: math.MinInt}, {Score: math.MinInt}})
	require.NoError(t, err)
	assert.Equal(t, float64(math.MinInt), avg)

	avg, err = AverageScore([]Result{{Score: math.MaxInt}, {Score: math.MinInt}})
	require.NoError(t, err)
	assert.Equal(t, -0.5, avg)
}

func TestAverageScore_Empty(t *testing.T) {
	_, err := AverageScore(nil)
	assert.ErrorIs(t, err, ErrNoResults)
	assert.True(t, shared.IsNoData(err))
}

func TestHighestScorer_TieGoesToEarliest(t *testing.T) {
	results := []ScoredResult{
		scored(1, "alice", 50),
		scored(2, "bob", 90),
		scored(3, "carol", 90),
	}

	top, err := HighestScorer(results)
	require.NoError(t, err)
	assert.Equal(t, int64(2), top.Student.ID)
	assert.Equal(t, 90, top.Result.Score)
}

func TestHighestScorer_NonPositiveScores(t *testing.T) {
	results := []ScoredResult{
		scored(1, "alice", 0),
		scored(2, "bob", -5),
	}

	_, err := HighestScorer(results)
	assert.ErrorIs(t, err, ErrNoScorer)
	assert.True(t, shared.IsNoData(err))
}

func TestHighestScorer_Empty(t *testing.T) {
	_, err := HighestScorer(nil)
	assert.ErrorIs(t, err, ErrNoScorer)
}

func TestHighestScorer_SkipsLeadingZeros(t *testing.T) {
	results := []ScoredResult{
		scored(1, "alice", 0),
		scored(2, "bob", 1),
	}

	top, err := HighestScorer(results)
	require.NoError(t, err)
	assert.Equal(t, int64(2), top.Student.ID)
}

func TestAverageMessage(t *testing.T) {
	assert.Equal(t, "Average score for test ID 7 is 20.0", AverageMessage(7, 20))
	assert.Equal(t, "Average score for test ID 7 is 12.5", AverageMessage(7, 12.5))
	assert.Equal(t, "Average score for test ID 3 is 16.666666666666668", AverageMessage(3, 50.0/3.0))
}

func TestFormatScore(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.0"},
		{20, "20.0"},
		{-3, "-3.0"},
		{12.5, "12.5"},
		{50.0 / 3.0, "16.666666666666668"},
		{0.0001, "0.0001"},
		{0.00001, "1e-05"},
		{1.25e-7, "1.25e-07"},
		{1e15, "1000000000000000.0"},
		{9999999999999998, "9999999999999998.0"},
		{1e16, "1e+16"},
		{1.5e16, "1.5e+16"},
		{-1e16, "-1e+16"},
		{9223372036854775807, "9.223372036854776e+18"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatScore(tt.in))
		})
	}
}

func TestNewTest(t *testing.T) {
	tt, err := NewTest(1, "Algebra", 100)
	require.NoError(t, err)
	assert.Equal(t, &Test{ID: 1, Name: "Algebra", MaxScore: 100}, tt)

	_, err = NewTest(2, "A", 100)
	assert.True(t, shared.IsValidation(err))
}
