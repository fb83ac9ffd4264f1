package game

import (
	"math"
	"math/rand"
)

// Rand is the randomness source used by every decision in the simulation.
// *rand.Rand satisfies it; tests can pass a scripted source.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// NewRand returns a seeded source.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed)) // #nosec G404 -- game only
}

// frand returns a uniform value in [lo, hi).
func frand(rng Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// irand returns a uniform int in [lo, hi].
func irand(rng Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.Intn(hi-lo+1)
}

// chance returns true with probability p.
func chance(rng Rand, p float64) bool { return rng.Float64() < p }

// jitterFacing rotates a facing vector by a random yaw in [-maxRad, maxRad].
func jitterFacing(rng Rand, facing Vec2, maxRad float64) Vec2 {
	yaw := math.Atan2(facing.Y, facing.X) + frand(rng, -maxRad, maxRad)
	return FromAngle(yaw)
}
