package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/jakechorley/exam-timetabler/pkg/core/model"
	"github.com/jakechorley/exam-timetabler/pkg/core/services"
)

// GenerateCmd creates the generate command
func GenerateCmd(app *AppContext) *cobra.Command {
	var (
		algorithm     string
		seed          int64
		population    int
		mutationRate  float64
		crossoverRate float64
		generations   int
		temperature   float64
		coolingRate   float64
		startDate     string
		days          int
		groupBy       string
		outPath       string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate an exam timetable from the configured dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := services.OptionsFromConfig(app.Cfg, time.Now())
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("algorithm") {
				opts.Algorithm, err = parseAlgorithm(algorithm)
				if err != nil {
					return err
				}
			}
			if flags.Changed("seed") {
				opts.Seed = seed
			}
			if flags.Changed("population") {
				opts.Params.PopulationSize = population
			}
			if flags.Changed("mutation-rate") {
				opts.Params.MutationRate = mutationRate
			}
			if flags.Changed("crossover-rate") {
				opts.Params.CrossoverRate = crossoverRate
			}
			if flags.Changed("generations") {
				opts.Params.Generations = generations
			}
			if flags.Changed("temperature") {
				opts.Params.InitialTemperature = temperature
			}
			if flags.Changed("cooling-rate") {
				opts.Params.CoolingRate = coolingRate
			}
			if flags.Changed("start-date") {
				opts.Horizon.StartDate, err = time.Parse("2006-01-02", startDate)
				if err != nil {
					return fmt.Errorf("start-date must be YYYY-MM-DD: %w", err)
				}
			}
			if flags.Changed("days") {
				opts.Horizon.DayCount = days
			}
			if flags.Changed("group-by") {
				opts.SpreadGroupBy = groupBy
			}

			flags.Visit(func(flag *pflag.Flag) {
				app.Logger.Debug("Overriding configured option",
					zap.String("flag", flag.Name),
					zap.String("value", flag.Value.String()))
			})

			progress := make(chan float64, 1)
			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer wg.Done()
				renderProgress(os.Stderr, progress)
			}()

			result, err := services.GenerateTimetable(app.Ctx, app.Store, app.Engine, app.Logger, opts, progress)
			close(progress)
			wg.Wait()
			if err != nil {
				return err
			}

			printTimetable(os.Stdout, result)

			if outPath != "" {
				if err := writeResultJSON(outPath, result.Generation); err != nil {
					return err
				}
				fmt.Printf("Result written to %s\n\n", outPath)
			}

			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&algorithm, "algorithm", "a", "", "Search algorithm: genetic or annealing")
	flags.Int64Var(&seed, "seed", 0, "Random seed (0 draws from the clock)")
	flags.IntVar(&population, "population", 0, "Genetic population size")
	flags.Float64Var(&mutationRate, "mutation-rate", 0, "Per-gene mutation probability")
	flags.Float64Var(&crossoverRate, "crossover-rate", 0, "Crossover probability")
	flags.IntVarP(&generations, "generations", "g", 0, "Generations, or iterations for annealing")
	flags.Float64Var(&temperature, "temperature", 0, "Initial annealing temperature")
	flags.Float64Var(&coolingRate, "cooling-rate", 0, "Geometric cooling factor per iteration")
	flags.StringVar(&startDate, "start-date", "", "First exam day (YYYY-MM-DD)")
	flags.IntVar(&days, "days", 0, "Number of exam days (0 sizes to the course count)")
	flags.StringVar(&groupBy, "group-by", "", "Spread grouping: department or none")
	flags.StringVarP(&outPath, "out", "o", "", "Write the full result as JSON to this file")

	return cmd
}

// parseAlgorithm accepts the full algorithm names and the short forms genetic and annealing
func parseAlgorithm(name string) (model.Algorithm, error) {
	switch strings.ToLower(name) {
	case "genetic", "ga", "genetic_algorithm":
		return model.AlgorithmGenetic, nil
	case "annealing", "sa", "simulated_annealing":
		return model.AlgorithmAnnealing, nil
	}
	return "", fmt.Errorf("unknown algorithm %q (use genetic or annealing)", name)
}

// renderProgress draws a single updating progress line until the channel is closed
func renderProgress(w io.Writer, progress <-chan float64) {
	drawn := false
	for percent := range progress {
		fmt.Fprintf(w, "\rGenerating... %3.0f%%", percent)
		drawn = true
	}
	if drawn {
		fmt.Fprintln(w)
	}
}

// sortedEntries orders entries by day, then slot, then course ID
func sortedEntries(entries []model.TimetableEntry) []model.TimetableEntry {
	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b model.TimetableEntry) int {
		if a.DayIndex != b.DayIndex {
			return a.DayIndex - b.DayIndex
		}
		if a.SlotIndex != b.SlotIndex {
			return a.SlotIndex - b.SlotIndex
		}
		return strings.Compare(a.Course.ID, b.Course.ID)
	})
	return sorted
}

func printTimetable(w io.Writer, result *services.TimetableResult) {
	generation := result.Generation
	departments := lo.KeyBy(result.Departments, func(d model.Department) string { return d.ID })

	fmt.Fprintf(w, "\n✓ Timetable generated!\n\n")
	fmt.Fprintf(w, "Run ID:    %s\n", generation.RunID)
	fmt.Fprintf(w, "Algorithm: %s\n", generation.Algorithm)
	fmt.Fprintf(w, "Exam days: %s to %s\n\n", result.Horizon.DayLabel(0), result.Horizon.DayLabel(len(result.Horizon.Days)-1))

	if len(generation.Timetable) == 0 {
		fmt.Fprintf(w, "No courses to schedule.\n\n")
	} else {
		fmt.Fprintf(w, "%-10s  %-11s  %-8s  %-24s  %-18s  %s\n", "Day", "Time", "Course", "Name", "Department", "Room")
		for _, entry := range sortedEntries(generation.Timetable) {
			department := entry.Course.DepartmentID
			if d, ok := departments[department]; ok && d.Name != "" {
				department = d.Name
			}

			over := ""
			if entry.Course.Students > entry.Room.Capacity {
				over = fmt.Sprintf("  ⚠ %d students > %d seats", entry.Course.Students, entry.Room.Capacity)
			}

			fmt.Fprintf(w, "%-10s  %-11s  %-8s  %-24s  %-18s  %s%s\n",
				entry.Day, entry.TimeSlot, entry.Course.ID, entry.Course.Name, department, entry.Room.ID, over)
		}
		fmt.Fprintln(w)
	}

	metrics := generation.Metrics
	fmt.Fprintf(w, "Hard violations: %d\n", metrics.HardConstraintViolations)
	fmt.Fprintf(w, "Soft violations: %d\n", metrics.SoftConstraintViolations)
	fmt.Fprintf(w, "Fitness:         %.0f\n", metrics.Fitness)
	fmt.Fprintf(w, "Generation time: %dms\n\n", metrics.GenerationTimeMs)
}

func writeResultJSON(path string, result *model.GenerationResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write result file: %w", err)
	}
	return nil
}
