package timetabler

import (
	"math"
	"math/rand"

	"github.com/jakechorley/exam-timetabler/pkg/core/model"
)

// annealingSearch perturbs a single encoding one gene at a time and accepts worse
// neighbours with the Metropolis probability exp(delta / temperature).
// Temperature cools geometrically after every iteration.
type annealingSearch struct {
	evaluator *Evaluator
	space     GeneSpace
	params    model.AlgorithmParameters
	rng       *rand.Rand
	courses   int
}

func (a *annealingSearch) run(rc *runContext) (searchOutcome, error) {
	current := RandomEncoding(a.rng, a.courses, a.space)
	currentScore := a.evaluator.Evaluate(current)

	best, bestScore := current, currentScore
	temperature := a.params.InitialTemperature

	for iteration := 1; iteration <= a.params.Generations; iteration++ {
		neighbor := MutateOneGene(current, a.rng.Intn(a.courses), a.space, a.rng)
		neighborScore := a.evaluator.Evaluate(neighbor)

		if a.accept(neighborScore.Fitness-currentScore.Fitness, temperature) {
			current, currentScore = neighbor, neighborScore
			if currentScore.Fitness > bestScore.Fitness {
				best, bestScore = current, currentScore
			}
		}

		temperature *= a.params.CoolingRate

		if err := rc.step(iteration, bestScore.Fitness); err != nil {
			return searchOutcome{}, err
		}
	}

	return searchOutcome{best: best, score: bestScore}, nil
}

// accept applies the Metropolis criterion to a fitness delta (positive is better)
func (a *annealingSearch) accept(delta, temperature float64) bool {
	if delta >= 0 {
		return true
	}
	if temperature <= 0 {
		return false
	}
	return a.rng.Float64() < math.Exp(delta/temperature)
}
