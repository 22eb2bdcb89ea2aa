package prices

import (
	"errors"
	"fmt"
	"sort"

	"github.com/liznear/price-merge/model"
)

// ErrOverlap is returned when two prices of the same group are in force at the same instant.
var ErrOverlap = errors.New("prices: overlapping prices")

// CheckDisjoint verifies that every price is valid and that prices of the same group don't
// overlap. All violations are reported.
func CheckDisjoint(ps []model.Price) error {
	var errs []error
	groups := make(map[model.GroupKey][]model.Price)
	for i := range ps {
		if err := ps[i].Validate(); err != nil {
			errs = append(errs, fmt.Errorf("prices: price %d: %w", i, err))
			continue
		}
		groups[ps[i].Key()] = append(groups[ps[i].Key()], ps[i])
	}

	for _, g := range groups {
		sort.Slice(g, func(i, j int) bool {
			return g[i].Begin.Before(g[j].Begin)
		})
		// last is the price reaching furthest so far.
		last := 0
		for i := 1; i < len(g); i++ {
			if model.HasOverlap(g[last].Period(), g[i].Period()) {
				errs = append(errs, fmt.Errorf("%w: %s and %s", ErrOverlap, &g[last], &g[i]))
			}
			if g[i].End.After(g[last].End) {
				last = i
			}
		}
	}
	return errors.Join(errs...)
}
