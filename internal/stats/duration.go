package stats

import (
	"fmt"
	"strings"
)

// FormatDuration renders a second count as the two largest non-zero
// units, e.g. "2d 4h" or "45m 12s". Presentation only; the statistics
// themselves stay in seconds. Zero and negative inputs render as "0s".
func FormatDuration(seconds int64) string {
	if seconds <= 0 {
		return "0s"
	}

	units := []struct {
		size  int64
		label string
	}{
		{86400, "d"},
		{3600, "h"},
		{60, "m"},
		{1, "s"},
	}

	parts := make([]string, 0, 2)
	for _, u := range units {
		if len(parts) == 2 {
			break
		}
		if n := seconds / u.size; n > 0 {
			parts = append(parts, fmt.Sprintf("%d%s", n, u.label))
			seconds -= n * u.size
		}
	}
	return strings.Join(parts, " ")
}
