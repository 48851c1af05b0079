package timetabler

import (
	"math/rand"

	"github.com/jakechorley/exam-timetabler/pkg/core/model"
)

type individual struct {
	encoding Encoding
	score    Score
}

// geneticSearch evolves a population with tournament selection, single point crossover,
// per-gene mutation and single-individual elitism.
type geneticSearch struct {
	evaluator *Evaluator
	space     GeneSpace
	params    model.AlgorithmParameters
	rng       *rand.Rand
	courses   int
}

func (g *geneticSearch) run(rc *runContext) (searchOutcome, error) {
	population := make([]individual, g.params.PopulationSize)
	for i := range population {
		encoding := RandomEncoding(g.rng, g.courses, g.space)
		population[i] = individual{encoding: encoding, score: g.evaluator.Evaluate(encoding)}
	}

	for generation := 1; generation <= g.params.Generations; generation++ {
		population = g.nextGeneration(population)

		// The elite sits at index 0, so the best fitness never regresses
		best := population[fittest(population)]
		if err := rc.step(generation, best.score.Fitness); err != nil {
			return searchOutcome{}, err
		}
	}

	best := population[fittest(population)]
	return searchOutcome{best: best.encoding, score: best.score}, nil
}

func (g *geneticSearch) nextGeneration(population []individual) []individual {
	next := make([]individual, 0, len(population))

	// Elitism: population members are never modified in place, so the elite can be shared
	next = append(next, population[fittest(population)])

	for len(next) < len(population) {
		first := population[g.tournament(population)]

		var child Encoding
		if g.rng.Float64() < g.params.CrossoverRate {
			second := population[g.tournament(population)]
			child = Crossover(first.encoding, second.encoding, g.cutPoint())
		} else {
			child = first.encoding.Clone()
		}

		g.mutate(child)
		next = append(next, individual{encoding: child, score: g.evaluator.Evaluate(child)})
	}

	return next
}

// tournament samples two individuals and returns the index of the fitter one.
// Ties go to the lower index.
func (g *geneticSearch) tournament(population []individual) int {
	i := g.rng.Intn(len(population))
	j := g.rng.Intn(len(population))

	if population[j].score.Fitness > population[i].score.Fitness ||
		(population[j].score.Fitness == population[i].score.Fitness && j < i) {
		return j
	}
	return i
}

// cutPoint picks a uniformly random cut strictly inside the encoding when possible
func (g *geneticSearch) cutPoint() int {
	if g.courses < 2 {
		return 0
	}
	return 1 + g.rng.Intn(g.courses-1)
}

// mutate redraws each gene of the child independently with probability MutationRate
func (g *geneticSearch) mutate(child Encoding) {
	for i := range child {
		if g.rng.Float64() < g.params.MutationRate {
			child[i] = g.space.randomAssignment(g.rng)
		}
	}
}

// fittest returns the index of the highest-fitness individual, lowest index on ties
func fittest(population []individual) int {
	best := 0
	for i := 1; i < len(population); i++ {
		if population[i].score.Fitness > population[best].score.Fitness {
			best = i
		}
	}
	return best
}
