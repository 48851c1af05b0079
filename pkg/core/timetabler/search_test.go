package timetabler

import (
	"context"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/exam-timetabler/pkg/core/model"
)

func TestAnnealingAccept(t *testing.T) {
	search := &annealingSearch{rng: NewRand(1)}

	assert.True(t, search.accept(0, 10))
	assert.True(t, search.accept(5, 0))
	assert.False(t, search.accept(-1, 0))

	// exp(-1000/1e-3) underflows to zero
	for range 100 {
		assert.False(t, search.accept(-1000, 1e-3))
	}
}

func TestAnnealingAccept_HotAcceptsMostWorseMoves(t *testing.T) {
	search := &annealingSearch{rng: NewRand(2)}

	accepted := 0
	for range 1000 {
		if search.accept(-1, 1e6) {
			accepted++
		}
	}
	assert.Greater(t, accepted, 990)
}

func TestTournament_MatchesReplayedDraws(t *testing.T) {
	// Fitness -3000, -5, -5, 0, -5: index 3 is fittest, 1, 2 and 4 tie
	population := []individual{
		{score: newScore(3, 0)},
		{score: newScore(0, 5)},
		{score: newScore(0, 5)},
		{score: newScore(0, 0)},
		{score: newScore(0, 5)},
	}

	search := &geneticSearch{rng: NewRand(4)}
	replay := NewRand(4)

	ties := 0
	for range 500 {
		i := replay.Intn(len(population))
		j := replay.Intn(len(population))

		expected := min(i, j)
		switch fi, fj := population[i].score.Fitness, population[j].score.Fitness; {
		case fi > fj:
			expected = i
		case fj > fi:
			expected = j
		default:
			ties++
		}

		assert.Equal(t, expected, search.tournament(population), "draws %d and %d", i, j)
	}
	assert.Positive(t, ties)
}

// geneticFixture returns a search over the sample snapshot and a scored random population
func geneticFixture(params model.AlgorithmParameters, size int) (*geneticSearch, []individual) {
	snapshot := sampleSnapshot()
	search := &geneticSearch{
		evaluator: NewEvaluator(&snapshot, nil),
		space:     snapshot.geneSpace(),
		params:    params,
		rng:       NewRand(11),
		courses:   len(snapshot.Courses),
	}

	population := make([]individual, size)
	for i := range population {
		encoding := RandomEncoding(search.rng, search.courses, search.space)
		population[i] = individual{encoding: encoding, score: search.evaluator.Evaluate(encoding)}
	}
	return search, population
}

func isMember(population []individual, encoding Encoding) bool {
	for _, member := range population {
		if slices.Equal(member.encoding, encoding) {
			return true
		}
	}
	return false
}

func TestNextGeneration_NoCrossoverNoMutationCopiesParents(t *testing.T) {
	params := model.DefaultParameters()
	params.CrossoverRate = 0
	params.MutationRate = 0
	search, population := geneticFixture(params, 12)

	next := search.nextGeneration(population)

	require.Len(t, next, len(population))
	assert.Equal(t, population[fittest(population)].encoding, next[0].encoding)
	for k, child := range next {
		assert.True(t, isMember(population, child.encoding), "child %d is not a copy of a parent", k)
		assert.Equal(t, search.evaluator.Evaluate(child.encoding), child.score)
	}
}

func TestNextGeneration_AlwaysCrossoverNoMutation(t *testing.T) {
	params := model.DefaultParameters()
	params.CrossoverRate = 1
	params.MutationRate = 0
	search, population := geneticFixture(params, 12)

	next := search.nextGeneration(population)

	for k, child := range next[1:] {
		found := false
		for _, a := range population {
			for _, b := range population {
				for cut := 1; cut < search.courses; cut++ {
					if slices.Equal(Crossover(a.encoding, b.encoding, cut), child.encoding) {
						found = true
					}
				}
			}
		}
		assert.True(t, found, "child %d is not a single point crossover of two parents", k+1)
	}
}

func TestNextGeneration_FullMutationRedrawsGenes(t *testing.T) {
	params := model.DefaultParameters()
	params.CrossoverRate = 0
	params.MutationRate = 1
	search, population := geneticFixture(params, 30)

	next := search.nextGeneration(population)

	// Every gene of every child is redrawn, so children are almost never exact parent copies
	copies := 0
	for _, child := range next[1:] {
		if isMember(population, child.encoding) {
			copies++
		}
	}
	assert.Zero(t, copies)
}

func TestFittest(t *testing.T) {
	population := []individual{
		{score: newScore(1, 0)},
		{score: newScore(0, 3)},
		{score: newScore(0, 3)},
		{score: newScore(0, 5)},
	}
	assert.Equal(t, 1, fittest(population))
}

func TestCutPoint_StaysInside(t *testing.T) {
	search := &geneticSearch{rng: NewRand(6), courses: 5}
	for range 200 {
		cut := search.cutPoint()
		assert.GreaterOrEqual(t, cut, 1)
		assert.LessOrEqual(t, cut, 4)
	}

	single := &geneticSearch{rng: NewRand(6), courses: 1}
	assert.Equal(t, 0, single.cutPoint())
}

func TestProgressReporter_NeverDecreases(t *testing.T) {
	ch := make(chan float64, 10)
	reporter := &progressReporter{ch: ch, logger: zap.NewNop()}

	reporter.report(40)
	reporter.report(20)
	reporter.report(250)
	reporter.complete(context.Background())
	close(ch)

	var values []float64
	for v := range ch {
		values = append(values, v)
	}
	assert.Equal(t, []float64{40, 40, 100, 100}, values)
}

func TestRunContext_Step(t *testing.T) {
	rc := newRunContext(context.Background(), 4, &progressReporter{logger: zap.NewNop()})

	assert.NoError(t, rc.step(1, -10))
	assert.NoError(t, rc.step(2, -3))

	assert.Equal(t, []model.FitnessPoint{{Iteration: 1, Fitness: -10}, {Iteration: 2, Fitness: -3}}, rc.history)
	assert.Equal(t, 50.0, rc.progress.last)
}
