// Package agespan parses the compact age-span strings used by income and
// expense streams in the household config: "62", "62-70", "65-" (open-ended),
// and comma-separated combinations like "62-70,75".
package agespan

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// OpenEnd is the age an open-ended span ("65-") runs through.
const OpenEnd = 120

var spanRe = regexp.MustCompile(`^(\d+)(-(\d+)?)?$`)

// Expand returns every age the expression covers, in order of appearance.
// Overlapping spans repeat ages; callers that accumulate amounts per age get
// the stream counted once per covering span, matching how streams are summed.
func Expand(spec string) ([]int, error) {
	var ages []int
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		m := spanRe.FindStringSubmatch(part)
		if m == nil {
			return nil, fmt.Errorf("bad age span %q", part)
		}
		start, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, fmt.Errorf("bad age span %q: %w", part, err)
		}
		end := start
		if m[2] != "" {
			end = OpenEnd
			if m[3] != "" {
				end, err = strconv.Atoi(m[3])
				if err != nil {
					return nil, fmt.Errorf("bad age span %q: %w", part, err)
				}
			}
		}
		if end < start {
			return nil, fmt.Errorf("age span %q ends before it starts", part)
		}
		for a := start; a <= end; a++ {
			ages = append(ages, a)
		}
	}
	return ages, nil
}
