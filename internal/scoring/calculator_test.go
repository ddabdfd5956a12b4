package scoring

import (
	"testing"
	"time"
)

// richLead returns a lead matching the product's reference scoring example:
// rich requirement, perfect budget, top location tier, urgent timeline,
// no payment info, referral source, abundant inventory fit, good price fit,
// negotiation stage.
func richLead(now time.Time) Lead {
	return Lead{
		Mobile: "+919876543210",
		Stage:  "Negotiation",
		Source: "Referral",
		Requirement: Requirement{
			PropertyType: "Residential",
			SubType:      "Apartment",
			UnitType:     "3BHK",
		},
		BudgetMatch:    "perfect",
		LocationPref:   "level1",
		Timeline:       "urgent",
		Matched:        6,
		PriceFit:       "good",
		LastActivityAt: &now,
	}
}

func TestComputeReferenceExample(t *testing.T) {
	now := time.Now()
	result := ComputeAt(richLead(now), nil, Default(), now)

	// (62 + 0 + 20 + 25 + 0) * 1.2 = 128.4 raw, clamped to 100.
	if result.Breakdown.Attribute != 62 {
		t.Fatalf("expected attribute 62, got %d", result.Breakdown.Attribute)
	}
	if result.Breakdown.Activity != 0 {
		t.Fatalf("expected activity 0, got %d", result.Breakdown.Activity)
	}
	if result.Breakdown.Source != 20 {
		t.Fatalf("expected source 20, got %d", result.Breakdown.Source)
	}
	if result.Breakdown.Fit != 25 {
		t.Fatalf("expected fit 25, got %d", result.Breakdown.Fit)
	}
	if result.Breakdown.Decay != 0 {
		t.Fatalf("expected decay 0, got %d", result.Breakdown.Decay)
	}
	if result.Total != 100 {
		t.Fatalf("expected clamped total 100, got %d", result.Total)
	}
	if result.Temperature != TemperatureSuperHot {
		t.Fatalf("expected SUPER_HOT, got %s", result.Temperature)
	}
	if result.Intent != IntentClosingSoon {
		t.Fatalf("expected ClosingSoon, got %s", result.Intent)
	}
}

func TestComputeDecayVisibleInBreakdownDespiteClamp(t *testing.T) {
	now := time.Now()
	lead := richLead(now)
	stale := now.AddDate(0, 0, -40)
	lead.LastActivityAt = &stale

	result := ComputeAt(lead, nil, Default(), now)

	// (62 + 0 + 20 + 25 - 20) * 1.2 = 104.4 raw; the clamp masks the decay
	// in the total but the breakdown must still expose it.
	if result.Breakdown.Decay != -20 {
		t.Fatalf("expected decay -20 in breakdown, got %d", result.Breakdown.Decay)
	}
	if result.Total != 100 {
		t.Fatalf("expected total still 100, got %d", result.Total)
	}
}

func TestComputeDecayBandsAreMutuallyExclusive(t *testing.T) {
	now := time.Now()
	cfg := Default()

	cases := []struct {
		daysAgo int
		want    int
	}{
		{0, 0},
		{6, 0},
		{7, cfg.Decay.Inactive7},
		{13, cfg.Decay.Inactive7},
		{14, cfg.Decay.Inactive14},
		{29, cfg.Decay.Inactive14},
		{30, cfg.Decay.Inactive30},
		{45, cfg.Decay.Inactive30},
	}

	for _, tc := range cases {
		last := now.AddDate(0, 0, -tc.daysAgo)
		lead := Lead{Mobile: "+919000000001", LastActivityAt: &last}
		result := ComputeAt(lead, nil, cfg, now)
		if result.Breakdown.Decay != tc.want {
			t.Fatalf("days=%d: expected decay %d, got %d", tc.daysAgo, tc.want, result.Breakdown.Decay)
		}
	}
}

func TestComputeMissingLastActivityMeansNoDecay(t *testing.T) {
	result := Compute(Lead{Mobile: "+919000000002"}, nil, Default())
	if result.Breakdown.Decay != 0 {
		t.Fatalf("expected no decay for missing last activity, got %d", result.Breakdown.Decay)
	}
}

func TestComputeTotalAlwaysClamped(t *testing.T) {
	now := time.Now()
	cfg := Default()
	// Adversarial config pushing both ends of the range.
	cfg.Attributes.Requirement = 100000
	result := ComputeAt(richLead(now), nil, cfg, now)
	if result.Total != 100 {
		t.Fatalf("expected hard cap at 100, got %d", result.Total)
	}

	cfg = Default()
	cfg.Decay.Inactive30 = -100000
	stale := now.AddDate(0, 0, -90)
	lead := Lead{Mobile: "+919000000003", LastActivityAt: &stale}
	result = ComputeAt(lead, nil, cfg, now)
	if result.Total != 0 {
		t.Fatalf("expected hard floor at 0, got %d", result.Total)
	}
}

func TestActivityScoreTaxonomyWalk(t *testing.T) {
	now := time.Now()
	activities := []Activity{
		{Type: "call", Purpose: "follow_up", Outcome: "connected", LoggedAt: now},    // +10
		{Type: "call", Purpose: "follow_up", Outcome: "no_answer", LoggedAt: now},    // -2
		{Type: "call", Purpose: "unknown_purpose", Outcome: "connected"},             // 0: purpose miss
		{Type: "carrier_pigeon", Purpose: "follow_up", Outcome: "connected"},         // 0: type miss
		{Type: "site_visit", Purpose: "scheduling", Outcome: "completed"},            // +12
		{Type: "site_visit", Purpose: "scheduling", Outcome: "vanished"},             // 0: outcome miss
		{Type: "whatsapp", Purpose: "nurture", Outcome: "replied", LoggedAt: now},    // +6
	}

	lead := Lead{Mobile: "+919000000004", LastActivityAt: &now}
	result := ComputeAt(lead, activities, Default(), now)
	if result.Breakdown.Activity != 26 {
		t.Fatalf("expected activity 26, got %d", result.Breakdown.Activity)
	}
}

func TestSourceScoreDefaultDeniesToColdCall(t *testing.T) {
	cfg := Default()

	cases := []struct {
		source string
		want   int
	}{
		{"Referral", 20},
		{"referral", 20},
		{"Old Client", 20},
		{"Channel Partner", 20},
		{"Website", 15},
		{"99acres", 12},
		{"MagicBricks", 12},
		{"Google", 8},
		{"Facebook", 8},
		{"Instagram", 8},
		{"Smoke Signals", 4}, // unknown → cold call, never zero
		{"", 4},
	}

	for _, tc := range cases {
		got := sourceScore(tc.source, cfg)
		if got != tc.want {
			t.Fatalf("source %q: expected %d, got %d", tc.source, tc.want, got)
		}
	}
}

func TestFitScoreRulesAreIndependent(t *testing.T) {
	cfg := Default()

	cases := []struct {
		matched  int
		priceFit string
		want     int
	}{
		{6, "good", 25},  // both fire
		{5, "", 15},      // abundant fit only
		{3, "", 0},       // 1-4 contributes nothing
		{1, "good", 10},  // price fit only
		{0, "", -5},      // no fit penalty
		{0, "good", 5},   // no fit penalty plus price fit
	}

	for _, tc := range cases {
		got := fitScore(Lead{Matched: tc.matched, PriceFit: tc.priceFit}, cfg)
		if got != tc.want {
			t.Fatalf("matched=%d priceFit=%q: expected %d, got %d", tc.matched, tc.priceFit, tc.want, got)
		}
	}
}

func TestStageMultiplierDefaultsUnknownStagesToProspect(t *testing.T) {
	cfg := Default()
	cfg.StageMultipliers[StageKeyProspect] = 1.05

	if got := stageMultiplier("Negotiation", cfg); got != 1.2 {
		t.Fatalf("expected negotiation multiplier 1.2, got %v", got)
	}
	if got := stageMultiplier("Lost", cfg); got != 1.05 {
		t.Fatalf("expected unknown stage to use prospect multiplier, got %v", got)
	}
	if got := stageMultiplier("", cfg); got != 1.05 {
		t.Fatalf("expected empty stage to use prospect multiplier, got %v", got)
	}

	delete(cfg.StageMultipliers, StageKeyProspect)
	if got := stageMultiplier("Prospect", cfg); got != 1.0 {
		t.Fatalf("expected unset multiplier to default to 1.0, got %v", got)
	}
}

func TestRichRequirementNeedsMoreThanTwoFields(t *testing.T) {
	cfg := Default()

	thin := Lead{Requirement: Requirement{PropertyType: "Residential", SubType: "Villa"}}
	if got := attributeScore(thin, cfg); got != 0 {
		t.Fatalf("expected two populated fields to earn nothing, got %d", got)
	}

	rich := Lead{Requirement: Requirement{PropertyType: "Residential", SubType: "Villa", Area: "2400sqft"}}
	if got := attributeScore(rich, cfg); got != cfg.Attributes.Requirement {
		t.Fatalf("expected three populated fields to earn %d, got %d", cfg.Attributes.Requirement, got)
	}
}

func TestComputeEmptyLeadDegradesGracefully(t *testing.T) {
	result := Compute(Lead{}, nil, Default())

	// Empty lead: no attributes, no activities, cold-call source, no-fit
	// penalty, no decay → 4 - 5 = -1 raw, floored to 0.
	if result.Total != 0 {
		t.Fatalf("expected empty lead to floor at 0, got %d", result.Total)
	}
	if result.Temperature != TemperatureCold {
		t.Fatalf("expected COLD, got %s", result.Temperature)
	}
	if result.Intent != IntentLow {
		t.Fatalf("expected LowIntent, got %s", result.Intent)
	}
}

func TestComputeNilConfigFallsBackToDefaults(t *testing.T) {
	now := time.Now()
	withDefaults := ComputeAt(richLead(now), nil, Default(), now)
	withNil := ComputeAt(richLead(now), nil, nil, now)
	if withNil.Total != withDefaults.Total {
		t.Fatalf("expected nil config to score like defaults: %d vs %d", withNil.Total, withDefaults.Total)
	}
}
