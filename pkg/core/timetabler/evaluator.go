package timetabler

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/exam-timetabler/pkg/core/model"
)

// HardWeight is how many soft violations one hard violation outweighs
const HardWeight = 1000

// Score is the evaluation of one candidate encoding
type Score struct {
	Hard    int
	Soft    int
	Fitness float64
}

func newScore(hard, soft int) Score {
	return Score{
		Hard:    hard,
		Soft:    soft,
		Fitness: -float64(hard*HardWeight + soft),
	}
}

// tally holds the per-candidate occupancy counts every criterion reads from.
// It is rebuilt in a single pass for each evaluated encoding.
type tally struct {
	courses []model.Course
	rooms   []model.Room
	days    int
	slots   int

	encoding Encoding

	// slotLoad[day*slots+slot] is the number of courses in that day and slot
	slotLoad []int

	// groupOf[course] is the spread group index, -1 when ungrouped
	groupOf []int

	// groupDayLoad[group*days+day] is the number of group courses on that day
	groupDayLoad []int
}

func (t *tally) fill(encoding Encoding, space GeneSpace) {
	clear(t.slotLoad)
	clear(t.groupDayLoad)
	t.encoding = encoding

	for i, assignment := range encoding {
		if !space.contains(assignment) {
			panic(fmt.Sprintf("course %d assigned outside the gene space: %+v", i, assignment))
		}
		t.slotLoad[assignment.Day*t.slots+assignment.Slot]++
		if group := t.groupOf[i]; group >= 0 {
			t.groupDayLoad[group*t.days+assignment.Day]++
		}
	}
}

type boundCriterion struct {
	criterion  Criterion
	constraint model.Constraint
	kind       model.ConstraintKind
}

// Evaluator scores candidate encodings against the enabled constraints of a snapshot.
// It reuses internal buffers and must only be used from one goroutine.
type Evaluator struct {
	space    GeneSpace
	criteria []boundCriterion
	tally    tally
}

// NewEvaluator binds the enabled constraints of the snapshot to their criteria.
// Constraints that resolve to no rule, or repeat an already bound rule, are skipped.
func NewEvaluator(snapshot *Snapshot, logger *zap.Logger) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}

	space := snapshot.geneSpace()
	evaluator := &Evaluator{space: space}

	seen := make(map[model.Rule]bool)
	for _, constraint := range snapshot.Constraints {
		if !constraint.Enabled {
			continue
		}

		rule, ok := ResolveRule(constraint)
		if !ok {
			logger.Warn("Ignoring constraint with no known rule",
				zap.String("constraint_id", constraint.ID),
				zap.String("description", constraint.Description))
			continue
		}
		if seen[rule] {
			logger.Warn("Ignoring constraint repeating an enabled rule",
				zap.String("constraint_id", constraint.ID),
				zap.String("rule", string(rule)))
			continue
		}
		seen[rule] = true

		criterion, _ := NewCriterion(rule)
		kind := constraint.Kind
		if !kind.IsValid() {
			kind = criterion.DefaultKind()
		}

		evaluator.criteria = append(evaluator.criteria, boundCriterion{
			criterion:  criterion,
			constraint: constraint,
			kind:       kind,
		})
	}

	// Index spread groups in first-seen order
	groupKey := snapshot.groupKey()
	groupIndex := make(map[string]int)
	groupOf := make([]int, len(snapshot.Courses))
	for i, course := range snapshot.Courses {
		key := groupKey(course)
		if key == "" {
			groupOf[i] = -1
			continue
		}
		index, ok := groupIndex[key]
		if !ok {
			index = len(groupIndex)
			groupIndex[key] = index
		}
		groupOf[i] = index
	}

	evaluator.tally = tally{
		courses:      snapshot.Courses,
		rooms:        snapshot.Rooms,
		days:         space.Days,
		slots:        space.Slots,
		slotLoad:     make([]int, space.Days*space.Slots),
		groupOf:      groupOf,
		groupDayLoad: make([]int, len(groupIndex)*space.Days),
	}

	return evaluator
}

// Evaluate returns the hard and soft violation counts of the encoding and its fitness.
// Fitness is 0 for a perfect timetable and negative otherwise.
func (e *Evaluator) Evaluate(encoding Encoding) Score {
	if len(encoding) != len(e.tally.courses) {
		panic(fmt.Sprintf("encoding has %d assignments for %d courses", len(encoding), len(e.tally.courses)))
	}

	e.tally.fill(encoding, e.space)

	hard, soft := 0, 0
	for _, bound := range e.criteria {
		violations := bound.criterion.Violations(&e.tally)
		if bound.kind == model.KindHard {
			hard += violations
		} else {
			soft += violations
		}
	}

	return newScore(hard, soft)
}

// Rules lists the rules the evaluator enforces, in constraint order
func (e *Evaluator) Rules() []model.Rule {
	rules := make([]model.Rule, len(e.criteria))
	for i, bound := range e.criteria {
		rules[i] = bound.criterion.Rule()
	}
	return rules
}
