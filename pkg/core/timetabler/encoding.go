package timetabler

import (
	"fmt"
	"math/rand"
)

// Assignment binds one course to a (day, time slot, room) triple. All three are indices
// into the snapshot's Horizon.Days, Horizon.TimeSlots and Rooms.
type Assignment struct {
	Day  int
	Slot int
	Room int
}

// Encoding is one candidate timetable, indexed by course position
type Encoding []Assignment

// Clone returns an independent copy of the encoding
func (e Encoding) Clone() Encoding {
	clone := make(Encoding, len(e))
	copy(clone, e)
	return clone
}

// GeneSpace is the range each Assignment field is drawn from
type GeneSpace struct {
	Days  int
	Slots int
	Rooms int
}

// randomAssignment draws a uniformly random day, slot and room. Capacity is not
// pre-filtered: infeasible assignments are penalized by the evaluator instead.
func (s GeneSpace) randomAssignment(rng *rand.Rand) Assignment {
	return Assignment{
		Day:  rng.Intn(s.Days),
		Slot: rng.Intn(s.Slots),
		Room: rng.Intn(s.Rooms),
	}
}

func (s GeneSpace) contains(a Assignment) bool {
	return a.Day >= 0 && a.Day < s.Days &&
		a.Slot >= 0 && a.Slot < s.Slots &&
		a.Room >= 0 && a.Room < s.Rooms
}

// RandomEncoding draws an independent random assignment for each of the courses
func RandomEncoding(rng *rand.Rand, courses int, space GeneSpace) Encoding {
	encoding := make(Encoding, courses)
	for i := range encoding {
		encoding[i] = space.randomAssignment(rng)
	}
	return encoding
}

// MutateOneGene returns a copy of the encoding in which course i has been reassigned
// to a fresh random triple. Every other course keeps its assignment.
func MutateOneGene(encoding Encoding, i int, space GeneSpace, rng *rand.Rand) Encoding {
	if i < 0 || i >= len(encoding) {
		panic(fmt.Sprintf("course index %d out of range for encoding of length %d", i, len(encoding)))
	}
	mutated := encoding.Clone()
	mutated[i] = space.randomAssignment(rng)
	return mutated
}

// Crossover performs single point recombination: positions before cutPoint come from a,
// positions at or after it come from b. The cut point is clamped to [0, len].
func Crossover(a, b Encoding, cutPoint int) Encoding {
	if len(a) != len(b) {
		panic(fmt.Sprintf("cannot cross encodings of different lengths %d and %d", len(a), len(b)))
	}
	cutPoint = max(0, min(cutPoint, len(a)))

	child := make(Encoding, len(a))
	copy(child[:cutPoint], a[:cutPoint])
	copy(child[cutPoint:], b[cutPoint:])
	return child
}
