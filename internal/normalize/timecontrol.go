package normalize

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseTimeControl decodes a Chess.com time-control string into base
// seconds, increment seconds and a canonical mode string.
//
// Accepted shapes: "180+2" (base+increment), "600" (no increment),
// "1/86400" (daily: moves per day / seconds). A string that fails to
// parse is preserved as the mode with nil numbers so one malformed
// time-control cannot abort the rest of a batch.
func ParseTimeControl(tc string) (base, inc *int, mode *string) {
	if tc == "" {
		return nil, nil, nil
	}

	if strings.Contains(tc, "/") {
		left, right, _ := strings.Cut(tc, "/")
		b, errB := strconv.Atoi(left)
		p, errP := strconv.Atoi(right)
		if errB != nil || errP != nil {
			return nil, nil, strPtr(tc)
		}
		// daily format keeps its original rendering
		return &b, &p, strPtr(tc)
	}

	if strings.Contains(tc, "+") {
		left, right, _ := strings.Cut(tc, "+")
		b, errB := strconv.Atoi(left)
		i, errI := strconv.Atoi(right)
		if errB != nil || errI != nil {
			return nil, nil, strPtr(tc)
		}
		return &b, &i, strPtr(fmt.Sprintf("%d+%d", b, i))
	}

	b, err := strconv.Atoi(tc)
	if err != nil {
		return nil, nil, strPtr(tc)
	}
	zero := 0
	return &b, &zero, strPtr(fmt.Sprintf("%d+0", b))
}

func strPtr(s string) *string { return &s }
