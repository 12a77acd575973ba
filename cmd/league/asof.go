package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

const dateLayout = "2006-01-02"

// parseAsOf resolves the --as-of flag in loc. It takes an ISO date or a
// phrase such as "yesterday" or "last friday"; empty means now.
func parseAsOf(input string, now time.Time, loc *time.Location) (time.Time, error) {
	input = strings.TrimSpace(input)
	base := now.In(loc)
	if input == "" {
		return base, nil
	}

	if t, err := time.ParseInLocation(dateLayout, input, loc); err == nil {
		return t, nil
	}

	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	r, err := w.Parse(strings.ToLower(input), base)
	if err != nil {
		return time.Time{}, fmt.Errorf("could not parse --as-of %q: %w", input, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("could not recognize --as-of %q, use YYYY-MM-DD", input)
	}
	return r.Time.In(loc), nil
}
