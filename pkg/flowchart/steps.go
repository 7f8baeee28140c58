package flowchart

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ParseSteps expands a step selection such as "1-4", "3,6,7" or "2,4-8" into
// the sorted, deduplicated list of step ids it names. Whether the ids exist
// is checked later by Resolve.
func ParseSteps(spec string) ([]int, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, fmt.Errorf("step selection must not be empty")
	}

	seen := map[int]bool{}
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		lowText, highText, isRange := strings.Cut(part, "-")
		if !isRange {
			highText = lowText
		}
		low, err := parseBound(part, lowText)
		if err != nil {
			return nil, err
		}
		high, err := parseBound(part, highText)
		if err != nil {
			return nil, err
		}
		if low > high {
			return nil, fmt.Errorf("step range %q runs backwards", part)
		}
		for id := low; id <= high; id++ {
			seen[id] = true
		}
	}

	ids := make([]int, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, nil
}

func parseBound(part, text string) (int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, fmt.Errorf("step selection %q has an empty bound", part)
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("step selection %q: %q is not a number", part, text)
	}
	if n <= 0 {
		return 0, fmt.Errorf("step selection %q: steps start from 1, not %d", part, n)
	}
	return n, nil
}
