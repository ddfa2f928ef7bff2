// Package analysis aggregates per-frame attention checks into a
// time-integrated distraction level.
//
// The model is deliberately dual: failure counters are cumulative for
// the process lifetime (reset only explicitly), while the event log is
// the only windowed, capacity-bounded structure. That keeps escalation
// monotonic and memory bounded at the same time.
package analysis

import "fmt"

// Level is the discrete distraction severity. It is always recomputed
// from the cumulative failure count, never stored and transitioned.
type Level int

const (
	LevelSafe Level = iota
	LevelWarning
	LevelCritical
	LevelSevere
)

// String returns the level name.
func (l Level) String() string {
	switch l {
	case LevelSafe:
		return "SAFE"
	case LevelWarning:
		return "WARNING"
	case LevelCritical:
		return "CRITICAL"
	case LevelSevere:
		return "SEVERE"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// MarshalText encodes the level as its name for JSON payloads.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText parses a level name produced by MarshalText.
func (l *Level) UnmarshalText(text []byte) error {
	switch string(text) {
	case "SAFE":
		*l = LevelSafe
	case "WARNING":
		*l = LevelWarning
	case "CRITICAL":
		*l = LevelCritical
	case "SEVERE":
		*l = LevelSevere
	default:
		return fmt.Errorf("analysis: unknown level %q", text)
	}
	return nil
}

// Thresholds are the non-decreasing failure counts at which each level
// begins. A count below Warning is SAFE.
type Thresholds struct {
	Warning  int
	Critical int
	Severe   int
}

// Validate rejects non-monotonic threshold configurations.
func (t Thresholds) Validate() error {
	if t.Warning < 1 {
		return fmt.Errorf("analysis: warning threshold must be >= 1, got %d", t.Warning)
	}
	if t.Warning > t.Critical || t.Critical > t.Severe {
		return fmt.Errorf("analysis: thresholds must be non-decreasing: %d <= %d <= %d",
			t.Warning, t.Critical, t.Severe)
	}
	return nil
}

// LevelForCount returns the unique level whose interval contains the
// total failure count. Interval lower bounds are inclusive; the scan
// walks the ordered table and keeps the highest satisfied entry.
func (t Thresholds) LevelForCount(count int) Level {
	table := []struct {
		min   int
		level Level
	}{
		{t.Warning, LevelWarning},
		{t.Critical, LevelCritical},
		{t.Severe, LevelSevere},
	}

	level := LevelSafe
	for _, entry := range table {
		if count >= entry.min {
			level = entry.level
		}
	}
	return level
}

// consequences and recommendations are fixed per level; external UIs
// and the alert channels rely on these exact strings.
var consequences = map[Level]string{
	LevelSafe:     "No action required",
	LevelWarning:  "Visual alert to driver",
	LevelCritical: "Audible alert + enhanced monitoring",
	LevelSevere:   "Emergency intervention active",
}

var recommendations = map[Level]string{
	LevelSafe:     "Stay focused on the road",
	LevelWarning:  "Keep your eyes on the road",
	LevelCritical: "Pull over safely if possible",
	LevelSevere:   "Immediate driver attention required",
}

// Consequence returns the action string for a level.
func Consequence(l Level) string {
	if c, ok := consequences[l]; ok {
		return c
	}
	return "Unknown"
}

// Recommendation returns the driver guidance string for a level.
func Recommendation(l Level) string {
	if r, ok := recommendations[l]; ok {
		return r
	}
	return "Unknown"
}
