package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/exam-timetabler/internal/config"
	"github.com/jakechorley/exam-timetabler/pkg/core/model"
	"github.com/jakechorley/exam-timetabler/pkg/core/services"
	"github.com/jakechorley/exam-timetabler/pkg/core/timetabler"
	"github.com/jakechorley/exam-timetabler/pkg/db"
)

func TestParseAlgorithm(t *testing.T) {
	tests := []struct {
		input    string
		expected model.Algorithm
	}{
		{"genetic", model.AlgorithmGenetic},
		{"GA", model.AlgorithmGenetic},
		{"GENETIC_ALGORITHM", model.AlgorithmGenetic},
		{"annealing", model.AlgorithmAnnealing},
		{"sa", model.AlgorithmAnnealing},
		{"Simulated_Annealing", model.AlgorithmAnnealing},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			algorithm, err := parseAlgorithm(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, algorithm)
		})
	}

	_, err := parseAlgorithm("tabu")
	assert.Error(t, err)
}

func TestSortedEntries(t *testing.T) {
	entries := []model.TimetableEntry{
		{Course: model.Course{ID: "C"}, DayIndex: 1, SlotIndex: 0},
		{Course: model.Course{ID: "B"}, DayIndex: 0, SlotIndex: 2},
		{Course: model.Course{ID: "A"}, DayIndex: 0, SlotIndex: 2},
		{Course: model.Course{ID: "D"}, DayIndex: 0, SlotIndex: 0},
	}

	sorted := sortedEntries(entries)

	ids := make([]string, len(sorted))
	for i, e := range sorted {
		ids[i] = e.Course.ID
	}
	assert.Equal(t, []string{"D", "A", "B", "C"}, ids)

	// The input order is left alone
	assert.Equal(t, "C", entries[0].Course.ID)
}

func TestRenderProgress(t *testing.T) {
	var out bytes.Buffer
	progress := make(chan float64, 3)
	progress <- 10
	progress <- 55.5
	progress <- 100
	close(progress)

	renderProgress(&out, progress)

	assert.Contains(t, out.String(), "\rGenerating...  10%")
	assert.True(t, strings.HasSuffix(out.String(), "100%\n"))
}

func generateDefault(t *testing.T) *services.TimetableResult {
	t.Helper()

	cfg := config.Default()
	cfg.Seed = 11
	cfg.Params.Generations = 20
	cfg.Params.PopulationSize = 10

	opts, err := services.OptionsFromConfig(&cfg, time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	result, err := services.GenerateTimetable(context.Background(), db.NewFileStore(db.DefaultDataset()),
		timetabler.NewEngine(nil), zap.NewNop(), opts, nil)
	require.NoError(t, err)
	return result
}

func TestPrintTimetable(t *testing.T) {
	result := generateDefault(t)

	var out bytes.Buffer
	printTimetable(&out, result)
	text := out.String()

	assert.Contains(t, text, "Run ID:    "+result.Generation.RunID)
	assert.Contains(t, text, "Algorithm: GENETIC_ALGORITHM")
	assert.Contains(t, text, "Exam days: 2026-10-19 to 2026-10-30")
	for _, course := range db.DefaultDataset().Courses {
		assert.Contains(t, text, course.ID)
	}
	assert.Contains(t, text, "Computer Science")
	assert.Contains(t, text, "Hard violations:")
}

func TestPrintTimetable_NoCourses(t *testing.T) {
	result := &services.TimetableResult{
		Generation: &model.GenerationResult{RunID: "r", Algorithm: model.AlgorithmAnnealing, Timetable: []model.TimetableEntry{}},
		Horizon:    model.Horizon{Days: []time.Time{time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)}, TimeSlots: []string{"AM"}},
	}

	var out bytes.Buffer
	printTimetable(&out, result)

	assert.Contains(t, out.String(), "No courses to schedule.")
}

func TestWriteResultJSON(t *testing.T) {
	result := generateDefault(t)
	path := filepath.Join(t.TempDir(), "result.json")

	require.NoError(t, writeResultJSON(path, result.Generation))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, result.Generation.RunID, decoded["runId"])
	assert.Contains(t, decoded, "timetable")

	metrics, ok := decoded["metrics"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, metrics, "generationTime")
	assert.Contains(t, metrics, "fitnessHistory")
}

func TestPrintDataset(t *testing.T) {
	dataset := db.DefaultDataset()
	dataset.Constraints = append(dataset.Constraints, model.Constraint{ID: "c9", Description: "Lunch break", Kind: model.KindSoft})

	var out bytes.Buffer
	printDataset(&out, dataset)
	text := out.String()

	assert.Contains(t, text, "Courses (5):")
	assert.Contains(t, text, "Rooms (4):")
	assert.Contains(t, text, "Constraints (5):")
	assert.Contains(t, text, "(same-time)")
	assert.Contains(t, text, "✗ c9")
	assert.Contains(t, text, "unknown rule, ignored")
}
