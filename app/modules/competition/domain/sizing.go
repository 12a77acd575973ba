package competitiondomain

import "fmt"

// DivisionSizes searches for a split of n users into divisions within b.
//
// n == 0 yields no divisions and n < b.Min yields a single undersized division.
// Otherwise the count starts at n/b.Target and moves down while the base size is
// too small and up while it is too large. When the base size fits but the
// remainder pushes a division out of bounds the search stops with
// ErrInfeasibleSplit instead of probing further counts.
func DivisionSizes(n int, b SizeBounds) ([]int, error) {
	if n <= 0 {
		return nil, nil
	}
	if n < b.Min {
		return []int{n}, nil
	}
	if b.Target <= 0 {
		return nil, fmt.Errorf("%w: target size must be positive", ErrInfeasibleSplit)
	}

	count := max(n/b.Target, 1)
	tried := make(map[int]bool)
	for {
		if tried[count] {
			return nil, fmt.Errorf("%w: %d users oscillate between %d divisions", ErrInfeasibleSplit, n, count)
		}
		tried[count] = true

		base, remainder := n/count, n%count
		sizes := make([]int, count)
		fits := true
		for i := range sizes {
			sizes[i] = base
			if i < remainder {
				sizes[i]++
			}
			if sizes[i] < b.Min || sizes[i] > b.Max {
				fits = false
			}
		}
		if fits {
			return sizes, nil
		}

		switch {
		case base < b.Min:
			count--
			if count == 0 {
				return nil, fmt.Errorf("%w: %d users, bounds %d..%d", ErrInfeasibleSplit, n, b.Min, b.Max)
			}
		case base > b.Max:
			count++
		default:
			return nil, fmt.Errorf("%w: %d users cannot fill %d divisions within %d..%d",
				ErrInfeasibleSplit, n, count, b.Min, b.Max)
		}
	}
}
