package queue

import "math/rand"

// SizeFirst is §4.1's default priority: smaller programs/sketches first,
// where size is caller-supplied (e.g. a program's node count).
func SizeFirst[T any](size func(item T) int) Priority[T] {
	return func(item T) float64 { return float64(size(item)) }
}

// RandomUniform is §4.1's second strategy: draw priority[0,1) per push,
// giving an arbitrary (seeded, reproducible) exploration order.
func RandomUniform[T any](rng *rand.Rand) Priority[T] {
	return func(_ T) float64 { return rng.Float64() }
}
