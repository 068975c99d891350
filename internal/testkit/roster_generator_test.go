package testkit

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRosterGeneratorIsDeterministic(t *testing.T) {
	cfg := DefaultRosterConfig()

	var a, b bytes.Buffer
	require.NoError(t, NewRosterGenerator(cfg).WriteCSV(&a))
	require.NoError(t, NewRosterGenerator(cfg).WriteCSV(&b))
	assert.Equal(t, a.String(), b.String())

	cfg.Seed = 7
	var c bytes.Buffer
	require.NoError(t, NewRosterGenerator(cfg).WriteCSV(&c))
	assert.NotEqual(t, a.String(), c.String())
}

func TestRosterGeneratorShape(t *testing.T) {
	cfg := DefaultRosterConfig()
	cfg.StudentCount = 200
	cfg.BlankRate = 0
	cfg.ExcusedRate = 0

	var buf bytes.Buffer
	require.NoError(t, NewRosterGenerator(cfg).WriteCSV(&buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 201)
	assert.Equal(t, "Midterm (10)", records[0][5])
	assert.Equal(t, "Final Exam (10)", records[0][6])

	for _, rec := range records[1:] {
		assert.Equal(t, "CS101 Intro to Systems (CS101-01)", rec[4])
		for _, raw := range rec[5:] {
			v, err := strconv.ParseFloat(raw, 64)
			require.NoError(t, err, raw)
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 10.0)
		}
	}
}

func TestRosterGeneratorMissingScores(t *testing.T) {
	cfg := DefaultRosterConfig()
	cfg.StudentCount = 50
	cfg.BlankRate = 0.5
	cfg.ExcusedRate = 0.5

	for _, rec := range NewRosterGenerator(cfg).Records() {
		for _, raw := range rec[5:] {
			assert.Contains(t, []string{"", "EX"}, raw)
		}
	}
}
