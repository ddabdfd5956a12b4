package scoring

import (
	"math"
	"strings"
	"time"
)

// richRequirementThreshold is the populated-field count above which a
// requirement earns the full requirement points.
const richRequirementThreshold = 2

// sourceBucketMap normalizes known free-text source names onto quality
// buckets. Matching is case-insensitive; anything absent resolves to the
// cold-call bucket.
var sourceBucketMap = map[string]string{
	"referral":        SourceBucketReferral,
	"old client":      SourceBucketReferral,
	"walk-in":         SourceBucketReferral,
	"friends":         SourceBucketReferral,
	"relative":        SourceBucketReferral,
	"channel partner": SourceBucketReferral,
	"website":         SourceBucketWebsite,
	"own website":     SourceBucketWebsite,
	"99acres":         SourceBucketPortal,
	"magicbricks":     SourceBucketPortal,
	"housing":         SourceBucketPortal,
	"google":          SourceBucketSocial,
	"facebook":        SourceBucketSocial,
	"instagram":       SourceBucketSocial,
	"linkedin":        SourceBucketSocial,
	"sms":             SourceBucketSocial,
}

// stageKeyMap maps lead stages onto multiplier-table keys. Stages outside
// the table (Lost, unknown, empty) are treated as prospect.
var stageKeyMap = map[string]string{
	"New":         StageKeyIncoming,
	"Prospect":    StageKeyProspect,
	"Opportunity": StageKeyOpportunity,
	"Negotiation": StageKeyNegotiation,
}

// Compute scores a lead snapshot against its activity history. It is pure
// and never fails: missing or unrecognized fields contribute zero, because
// an unscorable lead must never block a business workflow.
func Compute(lead Lead, activities []Activity, cfg *Config) ScoreResult {
	return ComputeAt(lead, activities, cfg, time.Now())
}

// ComputeAt is Compute with an explicit evaluation time for the decay
// component.
func ComputeAt(lead Lead, activities []Activity, cfg *Config, now time.Time) ScoreResult {
	if cfg == nil {
		cfg = Default()
	}

	breakdown := Breakdown{
		Attribute: attributeScore(lead, cfg),
		Activity:  activityScore(activities, cfg),
		Source:    sourceScore(lead.Source, cfg),
		Fit:       fitScore(lead, cfg),
		Decay:     decayScore(lead.LastActivityAt, cfg, now),
	}

	multiplier := stageMultiplier(lead.Stage, cfg)

	raw := float64(breakdown.Attribute+breakdown.Activity+breakdown.Source+breakdown.Fit+breakdown.Decay) * multiplier
	total := clampScore(raw)

	return ScoreResult{
		Total:       total,
		Breakdown:   breakdown,
		Multiplier:  multiplier,
		Temperature: TemperatureOf(total),
		Intent:      IntentOf(total),
	}
}

// attributeScore awards fixed points per satisfied form attribute. Each
// attribute is all-or-nothing; the component has no ceiling of its own,
// ceilings are a property of configuration.
func attributeScore(lead Lead, cfg *Config) int {
	score := 0

	if lead.Requirement.PopulatedFields() > richRequirementThreshold {
		score += cfg.Attributes.Requirement
	}
	if lead.BudgetMatch == "perfect" {
		score += cfg.Attributes.Budget
	}
	if lead.LocationPref == "level1" {
		score += cfg.Attributes.Location
	}
	if lead.Timeline == "urgent" {
		score += cfg.Attributes.Timeline
	}
	if len(lead.Payment) > 0 {
		score += cfg.Attributes.Payment
	}

	return score
}

// activityScore walks each activity through the type → purpose → outcome
// taxonomy. A failed lookup at any level contributes zero for that activity
// and never skips subsequent activities.
func activityScore(activities []Activity, cfg *Config) int {
	score := 0
	for _, act := range activities {
		purposes, ok := cfg.Activities[act.Type]
		if !ok {
			continue
		}
		outcomes, ok := purposes[act.Purpose]
		if !ok {
			continue
		}
		points, ok := outcomes[act.Outcome]
		if !ok {
			continue
		}
		score += points
	}
	return score
}

// sourceScore resolves the free-text source to a quality bucket and returns
// the bucket's configured points. Unknown sources resolve to the cold-call
// bucket, not to zero.
func sourceScore(source string, cfg *Config) int {
	bucket, ok := sourceBucketMap[strings.ToLower(strings.TrimSpace(source))]
	if !ok {
		bucket = SourceBucketColdCall
	}
	return cfg.SourceQuality[bucket]
}

// fitScore applies the two independent inventory-fit checks: the matched
// count rule (≥5 or exactly 0; 1-4 contributes nothing) and the price-fit
// flag. Both may fire.
func fitScore(lead Lead, cfg *Config) int {
	score := 0

	switch {
	case lead.Matched >= 5:
		score += cfg.Fit.Match5Plus
	case lead.Matched == 0:
		score += cfg.Fit.NoMatch
	}

	if lead.PriceFit == "good" {
		score += cfg.Fit.PriceDev5
	}

	return score
}

// decayScore applies exactly one inactivity band, most severe first. Bands
// are mutually exclusive; a lead inactive 45 days receives only the
// 30-day penalty. Penalty values are added, not subtracted. A lead with no
// recorded activity date counts as active now.
func decayScore(lastActivityAt *time.Time, cfg *Config, now time.Time) int {
	last := now
	if lastActivityAt != nil {
		last = *lastActivityAt
	}

	days := int(math.Ceil(now.Sub(last).Hours() / 24))

	switch {
	case days >= 30:
		return cfg.Decay.Inactive30
	case days >= 14:
		return cfg.Decay.Inactive14
	case days >= 7:
		return cfg.Decay.Inactive7
	default:
		return 0
	}
}

// stageMultiplier maps the lead stage to its configured multiplier,
// defaulting unknown stages to the prospect key and unset keys to 1.0.
func stageMultiplier(stage string, cfg *Config) float64 {
	key, ok := stageKeyMap[stage]
	if !ok {
		key = StageKeyProspect
	}

	multiplier, ok := cfg.StageMultipliers[key]
	if !ok {
		return 1.0
	}
	return multiplier
}

// clampScore rounds the raw score and clamps it to the hard [0, 100] range.
func clampScore(raw float64) int {
	score := int(math.Round(raw))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
