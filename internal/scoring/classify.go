package scoring

// Temperature is the coarse score bucket used for visual urgency cues.
type Temperature string

const (
	TemperatureCold     Temperature = "COLD"
	TemperatureWarm     Temperature = "WARM"
	TemperatureHot      Temperature = "HOT"
	TemperatureSuperHot Temperature = "SUPER_HOT"
)

// Color returns the display color for the temperature band.
func (t Temperature) Color() string {
	switch t {
	case TemperatureSuperHot:
		return "#ef4444"
	case TemperatureHot:
		return "#f97316"
	case TemperatureWarm:
		return "#f59e0b"
	default:
		return "#64748b"
	}
}

// Intent is the coarse score bucket used for sales-motion labeling.
type Intent string

const (
	IntentLow         Intent = "LowIntent"
	IntentNurture     Intent = "Nurture"
	IntentHigh        Intent = "HighIntent"
	IntentClosingSoon Intent = "ClosingSoon"
)

// TemperatureOf maps a clamped score to its temperature band. Boundaries are
// inclusive on the lower bound of each band: 81 is already SUPER_HOT.
func TemperatureOf(score int) Temperature {
	switch {
	case score >= 81:
		return TemperatureSuperHot
	case score >= 61:
		return TemperatureHot
	case score >= 31:
		return TemperatureWarm
	default:
		return TemperatureCold
	}
}

// IntentOf maps a clamped score to its intent band. The boundary set is
// deliberately offset from the temperature bands (80/60/30 vs 81/61/31),
// so a score of exactly 80 is ClosingSoon but still in HOT range.
func IntentOf(score int) Intent {
	switch {
	case score >= 80:
		return IntentClosingSoon
	case score >= 60:
		return IntentHigh
	case score >= 30:
		return IntentNurture
	default:
		return IntentLow
	}
}
