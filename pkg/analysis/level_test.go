package analysis

import "testing"

func TestLevelForCount_Intervals(t *testing.T) {
	th := Thresholds{Warning: 5, Critical: 10, Severe: 20}

	cases := []struct {
		count int
		want  Level
	}{
		{0, LevelSafe},
		{4, LevelSafe},
		{5, LevelWarning}, // lower bound inclusive
		{9, LevelWarning},
		{10, LevelCritical},
		{19, LevelCritical},
		{20, LevelSevere},
		{1000, LevelSevere},
	}

	for _, tc := range cases {
		if got := th.LevelForCount(tc.count); got != tc.want {
			t.Errorf("count %d: got %s, want %s", tc.count, got, tc.want)
		}
	}
}

func TestLevelForCount_EqualThresholds(t *testing.T) {
	// Equal thresholds are legal (non-decreasing); the highest
	// satisfied interval wins.
	th := Thresholds{Warning: 5, Critical: 5, Severe: 5}
	if got := th.LevelForCount(5); got != LevelSevere {
		t.Errorf("got %s, want SEVERE", got)
	}
	if got := th.LevelForCount(4); got != LevelSafe {
		t.Errorf("got %s, want SAFE", got)
	}
}

func TestThresholds_Validate(t *testing.T) {
	if err := (Thresholds{Warning: 5, Critical: 10, Severe: 20}).Validate(); err != nil {
		t.Errorf("valid thresholds rejected: %v", err)
	}
	if err := (Thresholds{Warning: 10, Critical: 5, Severe: 20}).Validate(); err == nil {
		t.Error("expected error for warning > critical")
	}
	if err := (Thresholds{Warning: 5, Critical: 30, Severe: 20}).Validate(); err == nil {
		t.Error("expected error for critical > severe")
	}
	if err := (Thresholds{Warning: 0, Critical: 5, Severe: 10}).Validate(); err == nil {
		t.Error("expected error for zero warning threshold")
	}
}

func TestConsequenceRecommendation_ExactStrings(t *testing.T) {
	cases := []struct {
		level Level
		cons  string
		rec   string
	}{
		{LevelSafe, "No action required", "Stay focused on the road"},
		{LevelWarning, "Visual alert to driver", "Keep your eyes on the road"},
		{LevelCritical, "Audible alert + enhanced monitoring", "Pull over safely if possible"},
		{LevelSevere, "Emergency intervention active", "Immediate driver attention required"},
	}

	for _, tc := range cases {
		if got := Consequence(tc.level); got != tc.cons {
			t.Errorf("%s consequence: got %q, want %q", tc.level, got, tc.cons)
		}
		if got := Recommendation(tc.level); got != tc.rec {
			t.Errorf("%s recommendation: got %q, want %q", tc.level, got, tc.rec)
		}
	}
}

func TestLevel_String(t *testing.T) {
	if LevelSevere.String() != "SEVERE" || LevelSafe.String() != "SAFE" {
		t.Error("level names wrong")
	}
	text, err := LevelCritical.MarshalText()
	if err != nil || string(text) != "CRITICAL" {
		t.Errorf("MarshalText: got %q, %v", text, err)
	}
}
