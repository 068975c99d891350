package testkit

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"strconv"
)

// RosterGeneratorConfig configures the synthetic gradebook export
type RosterGeneratorConfig struct {
	StudentCount   int     `json:"student_count"`
	ClassName      string  `json:"class_name"`
	ClassCode      string  `json:"class_code"`
	ComponentLabel string  `json:"component_label"`
	FinalLabel     string  `json:"final_label"`
	PointsPossible int     `json:"points_possible"`
	BlankRate      float64 `json:"blank_rate"`   // share of scores left empty
	ExcusedRate    float64 `json:"excused_rate"` // share of scores marked "EX"
	Seed           int64   `json:"seed"`
}

// DefaultRosterConfig returns sensible defaults for roster generation
func DefaultRosterConfig() RosterGeneratorConfig {
	return RosterGeneratorConfig{
		StudentCount:   30,
		ClassName:      "CS101 Intro to Systems",
		ClassCode:      "CS101-01",
		ComponentLabel: "Midterm",
		FinalLabel:     "Final Exam",
		PointsPossible: 10,
		BlankRate:      0.02,
		ExcusedRate:    0.02,
		Seed:           42,
	}
}

var (
	givenNames  = []string{"An", "Bình", "Chi", "Dũng", "Giang", "Hà", "Hùng", "Khoa", "Lan", "Minh", "Nam", "Phương", "Quân", "Thảo", "Trang", "Vy"}
	familyNames = []string{"Nguyễn", "Trần", "Lê", "Phạm", "Hoàng", "Huỳnh", "Phan", "Vũ", "Đặng", "Bùi"}
)

// RosterGenerator produces gradebook CSV exports shaped like an LMS download
type RosterGenerator struct {
	config RosterGeneratorConfig
	rng    *rand.Rand
}

// NewRosterGenerator creates a generator; equal seeds give equal rosters
func NewRosterGenerator(config RosterGeneratorConfig) *RosterGenerator {
	return &RosterGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Headers returns the CSV header line. Score columns carry the points
// possible in parentheses, e.g. "Midterm (10)".
func (g *RosterGenerator) Headers() []string {
	suffix := fmt.Sprintf(" (%d)", g.config.PointsPossible)
	return []string{
		"Student", "ID", "SIS User ID", "SIS Login ID", "Section",
		g.config.ComponentLabel + suffix,
		g.config.FinalLabel + suffix,
	}
}

// Records generates one record per student
func (g *RosterGenerator) Records() [][]string {
	section := g.config.ClassName
	if g.config.ClassCode != "" {
		section = fmt.Sprintf("%s (%s)", g.config.ClassName, g.config.ClassCode)
	}

	records := make([][]string, 0, g.config.StudentCount)
	for i := 0; i < g.config.StudentCount; i++ {
		name := fmt.Sprintf("%s %s",
			familyNames[g.rng.Intn(len(familyNames))],
			givenNames[g.rng.Intn(len(givenNames))])
		sisID := fmt.Sprintf("SV%05d", 20000+i+1)
		records = append(records, []string{
			name,
			strconv.Itoa(1000 + i + 1),
			sisID,
			sisID + "@student.example.edu",
			section,
			g.score(),
			g.score(),
		})
	}
	return records
}

// WriteCSV writes the header line and all records to w
func (g *RosterGenerator) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(g.Headers()); err != nil {
		return err
	}
	if err := cw.WriteAll(g.Records()); err != nil {
		return err
	}
	return cw.Error()
}

func (g *RosterGenerator) score() string {
	roll := g.rng.Float64()
	switch {
	case roll < g.config.BlankRate:
		return ""
	case roll < g.config.BlankRate+g.config.ExcusedRate:
		return "EX"
	}
	// quarter-point grades, skewed towards the upper half
	points := float64(g.config.PointsPossible)
	raw := points * (0.4 + 0.6*g.rng.Float64())
	return strconv.FormatFloat(float64(int(raw*4))/4, 'f', -1, 64)
}
