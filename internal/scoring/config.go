package scoring

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Source quality buckets. Free-text lead sources are normalized onto these
// through sourceBucketMap; anything unrecognized lands in the cold-call
// bucket deliberately (default-deny), never in a zero-by-absence hole.
const (
	SourceBucketReferral = "referral"
	SourceBucketWebsite  = "website"
	SourceBucketPortal   = "portal"
	SourceBucketSocial   = "social"
	SourceBucketColdCall = "cold call"
)

// Stage keys used by the multiplier table. Unknown lead stages fall back to
// the prospect key.
const (
	StageKeyIncoming    = "incoming"
	StageKeyProspect    = "prospect"
	StageKeyOpportunity = "opportunity"
	StageKeyNegotiation = "negotiation"
)

// AttributePoints are the fixed points awarded per satisfied form attribute.
type AttributePoints struct {
	Requirement int `yaml:"requirement" json:"requirement"`
	Budget      int `yaml:"budget" json:"budget"`
	Location    int `yaml:"location" json:"location"`
	Timeline    int `yaml:"timeline" json:"timeline"`
	Payment     int `yaml:"payment" json:"payment"`
}

// FitPoints configure the inventory-fit component. Match5Plus fires at five
// or more matched inventory items, NoMatch at exactly zero; PriceDev5 fires
// independently on a good price fit.
type FitPoints struct {
	Match5Plus int `yaml:"match5Plus" json:"match5Plus"`
	NoMatch    int `yaml:"noMatch" json:"noMatch"`
	PriceDev5  int `yaml:"priceDev5" json:"priceDev5"`
}

// DecayPoints configure the inactivity penalty bands. Values are expected to
// be non-positive; the calculator adds them as-is.
type DecayPoints struct {
	Inactive7  int `yaml:"inactive7" json:"inactive7"`
	Inactive14 int `yaml:"inactive14" json:"inactive14"`
	Inactive30 int `yaml:"inactive30" json:"inactive30"`
}

// ActivityTaxonomy maps activity type → purpose → outcome → points.
// Outcome points may be negative (e.g. a missed follow-up).
type ActivityTaxonomy map[string]map[string]map[string]int

// Config is the fully-specified scoring configuration. All sections are
// resolved to explicit values by Normalize once at load time, so the
// calculator never needs nil checks.
type Config struct {
	Attributes       AttributePoints    `yaml:"attributes" json:"attributes"`
	Activities       ActivityTaxonomy   `yaml:"activities" json:"activities"`
	SourceQuality    map[string]int     `yaml:"sourceQuality" json:"sourceQuality"`
	Fit              FitPoints          `yaml:"fit" json:"fit"`
	Decay            DecayPoints        `yaml:"decay" json:"decay"`
	StageMultipliers map[string]float64 `yaml:"stageMultipliers" json:"stageMultipliers"`
}

// Default returns the compiled-in configuration matching the product's
// documented weights.
func Default() *Config {
	return &Config{
		Attributes: AttributePoints{
			Requirement: 32,
			Budget:      10,
			Location:    10,
			Timeline:    10,
			Payment:     10,
		},
		Activities: ActivityTaxonomy{
			"call": {
				"follow_up": {
					"connected":          10,
					"callback_requested": 4,
					"no_answer":          -2,
				},
				"qualification": {
					"connected":      8,
					"not_interested": -10,
				},
			},
			"whatsapp": {
				"nurture": {
					"replied":   6,
					"delivered": 1,
				},
			},
			"site_visit": {
				"scheduling": {
					"scheduled": 8,
					"completed": 12,
					"no_show":   -8,
				},
			},
			"email": {
				"campaign": {
					"opened":  2,
					"bounced": -1,
				},
			},
		},
		SourceQuality: map[string]int{
			SourceBucketReferral: 20,
			SourceBucketWebsite:  15,
			SourceBucketPortal:   12,
			SourceBucketSocial:   8,
			SourceBucketColdCall: 4,
		},
		Fit: FitPoints{
			Match5Plus: 15,
			NoMatch:    -5,
			PriceDev5:  10,
		},
		Decay: DecayPoints{
			Inactive7:  -5,
			Inactive14: -10,
			Inactive30: -20,
		},
		StageMultipliers: map[string]float64{
			StageKeyIncoming:    1.0,
			StageKeyProspect:    1.0,
			StageKeyOpportunity: 1.1,
			StageKeyNegotiation: 1.2,
		},
	}
}

// Normalize fills absent sections with zero-contribution values so the
// calculator can assume total, non-optional inputs. Missing maps become
// empty maps; missing stage multipliers resolve to 1.0 at lookup time.
func (c *Config) Normalize() {
	if c.Activities == nil {
		c.Activities = ActivityTaxonomy{}
	}
	if c.SourceQuality == nil {
		c.SourceQuality = map[string]int{}
	}
	if c.StageMultipliers == nil {
		c.StageMultipliers = map[string]float64{}
	}
}

// LoadFile reads a YAML scoring configuration. A missing file is not an
// error: scoring must never block on configuration, so the compiled-in
// defaults are returned instead.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read scoring config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse scoring config: %w", err)
	}

	cfg.Normalize()
	return &cfg, nil
}
