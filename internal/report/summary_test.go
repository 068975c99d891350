package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{8.6, 8.8, 7.6, 5})

	assert.Equal(t, 4, s.Count)
	assert.InDelta(t, 7.5, s.Mean, 1e-9)
	assert.InDelta(t, 8.1, s.Median, 1e-9)
	assert.Equal(t, 5.0, s.Min)
	assert.Equal(t, 8.8, s.Max)
	assert.Greater(t, s.StdDev, 0.0)

	assert.GreaterOrEqual(t, s.Q25, s.Min)
	assert.LessOrEqual(t, s.Q25, s.Median)
	assert.GreaterOrEqual(t, s.Q75, s.Median)
	assert.LessOrEqual(t, s.Q75, s.Max)
	assert.Less(t, s.Skewness, 0.0)
}

func TestSummarizeSingleScore(t *testing.T) {
	s := Summarize([]float64{9.5})

	assert.Equal(t, 1, s.Count)
	assert.Equal(t, 9.5, s.Q25)
	assert.Equal(t, 9.5, s.Q75)
	assert.Equal(t, 0.0, s.Skewness)
}

func TestSummarizeEmpty(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil))
}
