package scoring

import "testing"

func TestTemperatureBoundaries(t *testing.T) {
	cases := []struct {
		score int
		want  Temperature
	}{
		{0, TemperatureCold},
		{30, TemperatureCold},
		{31, TemperatureWarm},
		{60, TemperatureWarm},
		{61, TemperatureHot},
		{80, TemperatureHot},
		{81, TemperatureSuperHot},
		{100, TemperatureSuperHot},
	}

	for _, tc := range cases {
		if got := TemperatureOf(tc.score); got != tc.want {
			t.Fatalf("score %d: expected %s, got %s", tc.score, tc.want, got)
		}
	}
}

func TestIntentBoundaries(t *testing.T) {
	cases := []struct {
		score int
		want  Intent
	}{
		{0, IntentLow},
		{29, IntentLow},
		{30, IntentNurture},
		{59, IntentNurture},
		{60, IntentHigh},
		{79, IntentHigh},
		{80, IntentClosingSoon},
		{100, IntentClosingSoon},
	}

	for _, tc := range cases {
		if got := IntentOf(tc.score); got != tc.want {
			t.Fatalf("score %d: expected %s, got %s", tc.score, tc.want, got)
		}
	}
}

// The two scales are intentionally offset by one point: at exactly 80 the
// temperature is still HOT while the intent is already ClosingSoon.
func TestScalesAreIntentionallyUnaligned(t *testing.T) {
	if TemperatureOf(80) != TemperatureHot {
		t.Fatalf("expected 80 to be HOT, got %s", TemperatureOf(80))
	}
	if IntentOf(80) != IntentClosingSoon {
		t.Fatalf("expected 80 to be ClosingSoon, got %s", IntentOf(80))
	}
}

func TestClassificationIsMonotonic(t *testing.T) {
	tempRank := map[Temperature]int{
		TemperatureCold: 0, TemperatureWarm: 1, TemperatureHot: 2, TemperatureSuperHot: 3,
	}
	intentRank := map[Intent]int{
		IntentLow: 0, IntentNurture: 1, IntentHigh: 2, IntentClosingSoon: 3,
	}

	prevTemp, prevIntent := tempRank[TemperatureOf(0)], intentRank[IntentOf(0)]
	for score := 1; score <= 100; score++ {
		currTemp, currIntent := tempRank[TemperatureOf(score)], intentRank[IntentOf(score)]
		if currTemp < prevTemp {
			t.Fatalf("temperature decreased at score %d", score)
		}
		if currIntent < prevIntent {
			t.Fatalf("intent decreased at score %d", score)
		}
		prevTemp, prevIntent = currTemp, currIntent
	}
}

func TestTemperatureColors(t *testing.T) {
	for _, temp := range []Temperature{TemperatureCold, TemperatureWarm, TemperatureHot, TemperatureSuperHot} {
		if temp.Color() == "" {
			t.Fatalf("expected display color for %s", temp)
		}
	}
}
