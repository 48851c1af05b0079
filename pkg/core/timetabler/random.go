package timetabler

import (
	"math/rand"
	"time"
)

// NewRand returns the random source for one run. A zero seed draws from the clock,
// any other seed makes the run exactly reproducible.
//
// math/rand.Rand is not goroutine-safe; each run owns its source.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}
