package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRawRowKeepsHeaderOrder(t *testing.T) {
	row := NewRawRow(
		[]string{"Student", "Score", "Section", "Score"},
		[]string{"Ada", "7", "CS101 (01)", "9"},
	)

	assert.Equal(t, []string{"Student", "Score", "Section"}, row.Headers)
	assert.Equal(t, "9", row.Value("Score"))

	short := NewRawRow([]string{"A", "B"}, []string{"1"})
	v, ok := short.Get("B")
	assert.True(t, ok)
	assert.Equal(t, "", v)
}

func TestResolveColumnFirstMatchWins(t *testing.T) {
	row := NewRawRow([]string{"Score (10)", "score", "Score (5)"}, nil)

	header, ok := ResolveColumn(row, "Score")
	require.True(t, ok)
	assert.Equal(t, "Score (10)", header)

	header, ok = ResolveColumn(row, "  score ")
	require.True(t, ok)
	assert.Equal(t, "score", header)
}

func TestResolveColumnOrderSensitive(t *testing.T) {
	row := NewRawRow([]string{"Score (5)", "Score (10)"}, nil)

	header, ok := ResolveColumn(row, "Score")
	require.True(t, ok)
	assert.Equal(t, "Score (5)", header)
}

func TestResolveColumnOnlyStripsDigits(t *testing.T) {
	row := NewRawRow([]string{"Quiz (A)", "Midterm (12) draft", "Final (100)"}, nil)

	_, ok := ResolveColumn(row, "Quiz")
	assert.False(t, ok)

	header, ok := ResolveColumn(row, "Quiz (A)")
	require.True(t, ok)
	assert.Equal(t, "Quiz (A)", header)

	_, ok = ResolveColumn(row, "Midterm")
	assert.False(t, ok)

	header, ok = ResolveColumn(row, "Final")
	require.True(t, ok)
	assert.Equal(t, "Final (100)", header)
}

func TestResolveColumnNoMatch(t *testing.T) {
	row := NewRawRow([]string{"Student", "SIS User ID"}, nil)

	header, ok := ResolveColumn(row, "Attendance")
	assert.False(t, ok)
	assert.Empty(t, header)
}

func TestStripPointsSuffix(t *testing.T) {
	assert.Equal(t, "Quiz", StripPointsSuffix("Quiz (10)"))
	assert.Equal(t, "Quiz", StripPointsSuffix("Quiz(10)"))
	assert.Equal(t, "Quiz (10) ", StripPointsSuffix("Quiz (10) "))
	assert.Equal(t, "Lab (1)", StripPointsSuffix("Lab (1) (20)"))
}

func TestExtractClassInfo(t *testing.T) {
	tests := []struct {
		input    string
		expected ClassInfo
	}{
		{
			"CS101 Intro to Systems (CS101-01)",
			ClassInfo{ClassName: "CS101 Intro to Systems", ClassCode: "CS101-01", HasClassCode: true},
		},
		{"CS101", ClassInfo{ClassName: "CS101"}},
		{"  spaced  ", ClassInfo{ClassName: "  spaced  "}},
		{"A (b) (c)", ClassInfo{ClassName: "A (b)", ClassCode: "c", HasClassCode: true}},
		{"NoSpace(X)", ClassInfo{ClassName: "NoSpace(X)"}},
		{"", ClassInfo{}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ExtractClassInfo(tt.input), tt.input)
	}
}

func TestSectionCandidateSecondRowWins(t *testing.T) {
	headers := []string{"Student", "Section"}
	rows := []RawRow{
		NewRawRow(headers, []string{"Ada", "Systems (S1)"}),
		NewRawRow(headers, []string{"Bob", "Networks (N2)"}),
		NewRawRow(headers, []string{"Cy", "Compilers (C3)"}),
	}

	assert.Equal(t, "Networks (N2)", SectionCandidate(rows, "Section"))
	assert.Equal(t, "Systems (S1)", SectionCandidate(rows[:1], "Section"))
	assert.Equal(t, "", SectionCandidate(nil, "Section"))

	noSection := []RawRow{rows[0], NewRawRow([]string{"Student"}, []string{"Bob"})}
	assert.Equal(t, "Systems (S1)", SectionCandidate(noSection, "Section"))
}

func TestScoreSpecValidate(t *testing.T) {
	assert.Empty(t, ScoreSpec{ComponentScoreLabel: "Quiz", FinalScoreLabel: "Final"}.Validate())
	assert.Equal(t, []string{"componentScore", "finalScore"}, ScoreSpec{FinalScoreLabel: "  "}.Validate())
}

func TestScoreSpecResolve(t *testing.T) {
	row := NewRawRow([]string{"Student", "Midterm (40)", "Final Exam (60)"}, nil)
	spec := ScoreSpec{ComponentScoreLabel: "Midterm", FinalScoreLabel: "Project"}

	cols := spec.Resolve(row)
	assert.Equal(t, "Midterm (40)", cols.ComponentScore)
	assert.Empty(t, cols.FinalScore)
}
