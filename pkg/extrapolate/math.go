package extrapolate

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// GCD returns the greatest common divisor of a and b using Euclid's algorithm.
func GCD[T constraints.Integer](a, b T) T {
	for b != 0 {
		a, b = b, a%b
	}
	if a < 0 {
		return -a
	}
	return a
}

// LCM returns the least common multiple of the given integers, folded
// pairwise as a/gcd(a,b)*b. It panics when called without arguments. A zero
// argument yields zero. A result that does not fit in T yields an error
// wrapping ErrHorizonExceeded.
func LCM[T constraints.Integer](values ...T) (T, error) {
	if len(values) == 0 {
		panic("extrapolate: LCM of no integers")
	}

	result := abs(values[0])
	for _, v := range values[1:] {
		v = abs(v)
		if result == 0 || v == 0 {
			return 0, nil
		}
		q := result / GCD(result, v)
		next := q * v
		if next/v != q || next < 0 {
			return 0, fmt.Errorf("%w: lcm of %d and %d overflows", ErrHorizonExceeded, result, v)
		}
		result = next
	}
	return result, nil
}

func abs[T constraints.Integer](v T) T {
	if v < 0 {
		return -v
	}
	return v
}
