package competitiondomain

import "fmt"

// AssignRoundRobin deals items across divisions of the given capacities. Each
// item goes to the current slot, then the cursor advances; full slots are
// skipped. With items sorted by score this spreads low scorers evenly instead
// of packing them into the first division.
func AssignRoundRobin[T any](items []T, sizes []int) ([][]T, error) {
	capacity := 0
	for _, s := range sizes {
		capacity += s
	}
	if len(items) > capacity {
		return nil, fmt.Errorf("%w: %d users, %d slots", ErrCapacityExceeded, len(items), capacity)
	}

	divisions := make([][]T, len(sizes))
	for i, s := range sizes {
		divisions[i] = make([]T, 0, s)
	}

	idx := 0
	for _, item := range items {
		for len(divisions[idx]) >= sizes[idx] {
			idx = (idx + 1) % len(divisions)
		}
		divisions[idx] = append(divisions[idx], item)
		idx = (idx + 1) % len(divisions)
	}
	return divisions, nil
}
