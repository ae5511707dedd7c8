package learn

import "math/rand"

// shuffled returns a Fisher–Yates shuffled copy of in.
func shuffled[T any](in []T, rng *rand.Rand) []T {
	out := append([]T(nil), in...)
	for i := len(out) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
