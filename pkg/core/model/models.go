package model

import "time"

type ConstraintKind string

const (
	KindHard ConstraintKind = "Hard"
	KindSoft ConstraintKind = "Soft"
)

func (k ConstraintKind) IsValid() bool {
	return k == KindHard || k == KindSoft
}

// Rule names the evaluation rule a constraint switches on
type Rule string

const (
	RuleSameTime    Rule = "same-time"
	RuleCapacity    Rule = "capacity"
	RuleConsecutive Rule = "consecutive"
	RuleSpread      Rule = "spread"
)

func (r Rule) IsValid() bool {
	switch r {
	case RuleSameTime, RuleCapacity, RuleConsecutive, RuleSpread:
		return true
	}
	return false
}

type Algorithm string

const (
	AlgorithmGenetic   Algorithm = "GENETIC_ALGORITHM"
	AlgorithmAnnealing Algorithm = "SIMULATED_ANNEALING"
)

func (a Algorithm) IsValid() bool {
	return a == AlgorithmGenetic || a == AlgorithmAnnealing
}

// Department owns courses. Only used for display, the engine groups by DepartmentID directly.
type Department struct {
	ID   string `json:"id" yaml:"id" validate:"required"`
	Name string `json:"name" yaml:"name"`
}

// Course is one exam to be scheduled
type Course struct {
	ID           string `json:"id" yaml:"id" validate:"required"`
	Name         string `json:"name" yaml:"name"`
	DepartmentID string `json:"departmentId" yaml:"departmentId"`
	Students     int    `json:"students" yaml:"students" validate:"gte=0"`
	Units        int    `json:"units" yaml:"units" validate:"gte=0"`
}

// Room is an exam room
type Room struct {
	ID       string `json:"id" yaml:"id" validate:"required"`
	Capacity int    `json:"capacity" yaml:"capacity" validate:"gte=0"`
}

// Constraint is a user-facing rule toggle. Rule may be empty, in which case it is
// resolved from the well-known constraint IDs.
type Constraint struct {
	ID          string         `json:"id" yaml:"id" validate:"required"`
	Description string         `json:"description" yaml:"description"`
	Kind        ConstraintKind `json:"type" yaml:"type" validate:"omitempty,oneof=Hard Soft"`
	Enabled     bool           `json:"enabled" yaml:"enabled"`
	Rule        Rule           `json:"rule,omitempty" yaml:"rule,omitempty" validate:"omitempty,oneof=same-time capacity consecutive spread"`
}

// AlgorithmParameters tunes both search engines
type AlgorithmParameters struct {
	PopulationSize     int     `json:"populationSize" yaml:"populationSize"`
	MutationRate       float64 `json:"mutationRate" yaml:"mutationRate"`
	CrossoverRate      float64 `json:"crossoverRate" yaml:"crossoverRate"`
	Generations        int     `json:"generations" yaml:"generations"`
	InitialTemperature float64 `json:"initialTemperature" yaml:"initialTemperature"`
	CoolingRate        float64 `json:"coolingRate" yaml:"coolingRate"`
}

// DefaultParameters returns the parameters the scheduler ships with
func DefaultParameters() AlgorithmParameters {
	return AlgorithmParameters{
		PopulationSize:     100,
		MutationRate:       0.05,
		CrossoverRate:      0.8,
		Generations:        200,
		InitialTemperature: 1000,
		CoolingRate:        0.995,
	}
}

// Horizon is the enumerable set of (day, time slot) pairs available for scheduling
type Horizon struct {
	Days      []time.Time
	TimeSlots []string
}

// DayLabel returns the display label of the day at index i
func (h Horizon) DayLabel(i int) string {
	return h.Days[i].Format("2006-01-02")
}

// Size returns the number of (day, slot) pairs
func (h Horizon) Size() int {
	return len(h.Days) * len(h.TimeSlots)
}

// TimetableEntry is one scheduled exam
type TimetableEntry struct {
	Course    Course `json:"course"`
	Room      Room   `json:"room"`
	Day       string `json:"day"`
	TimeSlot  string `json:"timeSlot"`
	DayIndex  int    `json:"dayIndex"`
	SlotIndex int    `json:"slotIndex"`
}

// FitnessPoint is the best fitness seen up to and including an iteration
type FitnessPoint struct {
	Iteration int     `json:"iteration"`
	Fitness   float64 `json:"fitness"`
}

// Metrics summarises a generation run
type Metrics struct {
	GenerationTime           time.Duration  `json:"-"`
	GenerationTimeMs         int64          `json:"generationTime"`
	HardConstraintViolations int            `json:"hardConstraintViolations"`
	SoftConstraintViolations int            `json:"softConstraintViolations"`
	Fitness                  float64        `json:"fitness"`
	FitnessHistory           []FitnessPoint `json:"fitnessHistory"`
}

// GenerationResult is the immutable output of one run
type GenerationResult struct {
	RunID     string           `json:"runId"`
	Algorithm Algorithm        `json:"algorithm"`
	Timetable []TimetableEntry `json:"timetable"`
	Metrics   Metrics          `json:"metrics"`
}
