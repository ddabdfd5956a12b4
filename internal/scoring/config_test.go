package scoring

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFileMissingFallsBackToDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("missing config file must not error: %v", err)
	}
	if cfg.Attributes.Requirement != 32 {
		t.Fatalf("expected default requirement points 32, got %d", cfg.Attributes.Requirement)
	}
	if cfg.SourceQuality[SourceBucketReferral] != 20 {
		t.Fatalf("expected default referral quality 20, got %d", cfg.SourceQuality[SourceBucketReferral])
	}
}

func TestLoadFileParsesAndNormalizes(t *testing.T) {
	// A partial file: only attribute points. Every other section must
	// resolve to zero-contribution values, not nil.
	path := filepath.Join(t.TempDir(), "scoring.yaml")
	content := []byte("attributes:\n  requirement: 40\n  budget: 5\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Attributes.Requirement != 40 {
		t.Fatalf("expected requirement 40, got %d", cfg.Attributes.Requirement)
	}
	if cfg.Activities == nil || cfg.SourceQuality == nil || cfg.StageMultipliers == nil {
		t.Fatal("expected normalized config to have non-nil sections")
	}

	// A lead scored against a sparse config degrades to zero contributions,
	// never errors.
	result := Compute(Lead{Mobile: "+919000000005", Stage: "Negotiation", Source: "Referral"}, nil, cfg)
	if result.Breakdown.Source != 0 {
		t.Fatalf("expected empty source section to contribute 0, got %d", result.Breakdown.Source)
	}
	if result.Multiplier != 1.0 {
		t.Fatalf("expected missing multiplier section to default to 1.0, got %v", result.Multiplier)
	}
}

func TestLoadFileRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scoring.yaml")
	if err := os.WriteFile(path, []byte("attributes: ["), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected parse error for malformed yaml")
	}
}

func TestProviderReloadKeepsPreviousConfigOnFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scoring.yaml")
	if err := os.WriteFile(path, []byte("attributes:\n  requirement: 40\n"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	provider, err := NewProvider(path, nil)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	if provider.Current().Attributes.Requirement != 40 {
		t.Fatalf("expected initial requirement 40, got %d", provider.Current().Attributes.Requirement)
	}

	if err := os.WriteFile(path, []byte("attributes: ["), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if err := provider.Reload(); err == nil {
		t.Fatal("expected reload error for malformed yaml")
	}
	if provider.Current().Attributes.Requirement != 40 {
		t.Fatal("expected previous config to stay active after failed reload")
	}
}

func TestProviderUpdateNormalizes(t *testing.T) {
	provider, err := NewProvider(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}

	provider.Update(Config{Attributes: AttributePoints{Requirement: 50}})

	current := provider.Current()
	if current.Attributes.Requirement != 50 {
		t.Fatalf("expected updated requirement 50, got %d", current.Attributes.Requirement)
	}
	if current.Activities == nil || current.StageMultipliers == nil {
		t.Fatal("expected update to normalize nil sections")
	}
}
