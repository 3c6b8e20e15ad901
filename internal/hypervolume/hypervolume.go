// Package hypervolume computes the exact hypervolume indicator of a set of
// objective vectors under minimization.
//
// The hypervolume of a point set relative to a reference point r is the
// Lebesgue measure of the union of the boxes [p, r] for every point p that
// is strictly better than r in every objective. Points on or beyond the
// reference point in any objective contribute nothing.
package hypervolume

import (
	"cmp"
	"fmt"
	"slices"
)

// Calculator computes hypervolumes. The zero value is ready to use and is
// safe for concurrent use; Compute has no side effects.
type Calculator struct{}

// New returns a Calculator.
func New() Calculator {
	return Calculator{}
}

// Compute returns the hypervolume dominated by points relative to ref.
// Every point must have len(ref) objectives; Compute panics otherwise, since
// a dimension mismatch is a caller bug rather than a data condition.
func (Calculator) Compute(ref []float64, points [][]float64) float64 {
	inside := make([][]float64, 0, len(points))
	for i, p := range points {
		if len(p) != len(ref) {
			panic(fmt.Sprintf("hypervolume: point %d has %d objectives, reference point has %d", i, len(p), len(ref)))
		}
		if strictlyBelow(p, ref) {
			inside = append(inside, p)
		}
	}
	if len(inside) == 0 || len(ref) == 0 {
		return 0
	}
	return slice(inside, ref)
}

// Validate checks that ref is usable as a reference point for n objectives.
func Validate(ref []float64, n int) error {
	if len(ref) != n {
		return fmt.Errorf("reference point has %d objectives, want %d", len(ref), n)
	}
	return nil
}

func strictlyBelow(p, ref []float64) bool {
	for j := range p {
		if p[j] >= ref[j] {
			return false
		}
	}
	return true
}

// slice computes the hypervolume by slicing along the last objective
// (HSO). Each slab between consecutive last-objective values is dominated
// exactly by the points at or below it, projected onto the remaining
// objectives.
func slice(points [][]float64, ref []float64) float64 {
	d := len(ref)
	switch d {
	case 1:
		best := points[0][0]
		for _, p := range points[1:] {
			best = min(best, p[0])
		}
		return ref[0] - best
	case 2:
		return sweep2D(points, ref)
	}

	sorted := slices.Clone(points)
	slices.SortFunc(sorted, func(a, b []float64) int {
		return cmp.Compare(a[d-1], b[d-1])
	})

	var volume float64
	projected := make([][]float64, 0, len(sorted))
	for i, p := range sorted {
		projected = append(projected, p[:d-1])
		upper := ref[d-1]
		if i+1 < len(sorted) {
			upper = sorted[i+1][d-1]
		}
		depth := upper - p[d-1]
		if depth == 0 {
			continue
		}
		volume += slice(projected, ref[:d-1]) * depth
	}
	return volume
}

// sweep2D sums the staircase of rectangles left by the points sorted on the
// first objective.
func sweep2D(points [][]float64, ref []float64) float64 {
	sorted := slices.Clone(points)
	slices.SortFunc(sorted, func(a, b []float64) int {
		if c := cmp.Compare(a[0], b[0]); c != 0 {
			return c
		}
		return cmp.Compare(a[1], b[1])
	})

	var area float64
	ceiling := ref[1]
	for _, p := range sorted {
		if p[1] < ceiling {
			area += (ref[0] - p[0]) * (ceiling - p[1])
			ceiling = p[1]
		}
	}
	return area
}
