// Package dice rolls six-sided battle dice from a seeded source.
package dice

import (
	"errors"
	"math/rand"
	"sync"
)

// Sides is the number of faces on a battle die.
const Sides = 6

// ErrInvalidCount is returned when fewer than one die is requested.
var ErrInvalidCount = errors.New("dice count must be positive")

// Roller produces deterministic rolls for a seed. It is safe for
// concurrent use.
type Roller struct {
	mu   sync.Mutex
	seed int64
	rng  *rand.Rand
}

// NewRoller returns a roller seeded with seed. Two rollers with the same
// seed produce the same sequence of rolls.
func NewRoller(seed int64) *Roller {
	return &Roller{
		seed: seed,
		rng:  rand.New(rand.NewSource(seed)),
	}
}

// Seed returns the seed the roller started from.
func (r *Roller) Seed() int64 {
	return r.seed
}

// Roll rolls count dice and returns the faces in roll order.
func (r *Roller) Roll(count int) ([]int, error) {
	if count <= 0 {
		return nil, ErrInvalidCount
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	rolls := make([]int, count)
	for i := range rolls {
		rolls[i] = r.rng.Intn(Sides) + 1
	}
	return rolls, nil
}

// Hits counts the rolls at or above toHit.
func Hits(rolls []int, toHit int) int {
	hits := 0
	for _, roll := range rolls {
		if roll >= toHit {
			hits++
		}
	}
	return hits
}
