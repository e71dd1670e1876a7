package catalog

import "math"

// Zone is a display band for a score.
type Zone string

const (
	ZoneCritical Zone = "critical"
	ZoneWarning  Zone = "warning"
	ZoneHealthy  Zone = "healthy"
)

// zoneThresholds are lower bounds in percent, checked from the top.
var zoneThresholds = []struct {
	min  int
	zone Zone
}{
	{70, ZoneHealthy},
	{40, ZoneWarning},
	{0, ZoneCritical},
}

// ZoneOfPercent maps a 0..100 percentage to its band.
func ZoneOfPercent(pct int) Zone {
	for _, t := range zoneThresholds {
		if pct >= t.min {
			return t.zone
		}
	}
	return ZoneCritical
}

// ZoneOf maps a score out of max to its band. A non-positive max is critical.
func ZoneOf(score, max int) Zone {
	return ZoneOfPercent(Percent(score, max))
}

// Percent is round(100*score/max), or 0 when max is not positive.
func Percent(score, max int) int {
	if max <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(score) / float64(max)))
}

// Status is the four-step label shown next to a domain score.
func Status(pct int) string {
	switch {
	case pct >= 80:
		return "excellent"
	case pct >= 60:
		return "good"
	case pct >= 40:
		return "warning"
	default:
		return "danger"
	}
}
