package timetabler

import (
	"math"

	"go.uber.org/zap"

	"github.com/jakechorley/exam-timetabler/pkg/core/model"
)

// Safe bounds applied to nonsensical parameters
const (
	MinPopulationSize = 2
	MinGenerations    = 1
	MinTemperature    = 1e-3
	MinCoolingRate    = 0.01
	MaxCoolingRate    = 0.9999
	MinRate           = 0.0
	MaxRate           = 1.0
)

// ClampParameters returns params with every out-of-range value pulled back to a safe bound.
// Each adjustment is logged at warn level. NaN values, and an infinite initial temperature,
// fall back to the shipped defaults.
func ClampParameters(params model.AlgorithmParameters, logger *zap.Logger) model.AlgorithmParameters {
	if logger == nil {
		logger = zap.NewNop()
	}
	defaults := model.DefaultParameters()
	clamped := params

	warn := func(field string, given, used float64) {
		logger.Warn("Clamped algorithm parameter",
			zap.String("parameter", field),
			zap.Float64("given", given),
			zap.Float64("used", used))
	}

	if clamped.PopulationSize < MinPopulationSize {
		warn("populationSize", float64(params.PopulationSize), MinPopulationSize)
		clamped.PopulationSize = MinPopulationSize
	}

	if clamped.Generations < MinGenerations {
		warn("generations", float64(params.Generations), MinGenerations)
		clamped.Generations = MinGenerations
	}

	clamped.MutationRate = clampRate("mutationRate", params.MutationRate, defaults.MutationRate, warn)
	clamped.CrossoverRate = clampRate("crossoverRate", params.CrossoverRate, defaults.CrossoverRate, warn)

	switch {
	case math.IsNaN(params.InitialTemperature), math.IsInf(params.InitialTemperature, 1):
		warn("initialTemperature", params.InitialTemperature, defaults.InitialTemperature)
		clamped.InitialTemperature = defaults.InitialTemperature
	case params.InitialTemperature < MinTemperature:
		warn("initialTemperature", params.InitialTemperature, MinTemperature)
		clamped.InitialTemperature = MinTemperature
	}

	switch {
	case math.IsNaN(params.CoolingRate):
		warn("coolingRate", params.CoolingRate, defaults.CoolingRate)
		clamped.CoolingRate = defaults.CoolingRate
	case params.CoolingRate < MinCoolingRate:
		warn("coolingRate", params.CoolingRate, MinCoolingRate)
		clamped.CoolingRate = MinCoolingRate
	case params.CoolingRate > MaxCoolingRate:
		warn("coolingRate", params.CoolingRate, MaxCoolingRate)
		clamped.CoolingRate = MaxCoolingRate
	}

	return clamped
}

func clampRate(field string, rate, fallback float64, warn func(string, float64, float64)) float64 {
	switch {
	case math.IsNaN(rate):
		warn(field, rate, fallback)
		return fallback
	case rate < MinRate:
		warn(field, rate, MinRate)
		return MinRate
	case rate > MaxRate:
		warn(field, rate, MaxRate)
		return MaxRate
	}
	return rate
}
