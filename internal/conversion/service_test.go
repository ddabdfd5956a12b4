package conversion

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"leadqual_backend/internal/events"
	"leadqual_backend/internal/scoring"
	"leadqual_backend/platform/logger"
)

type stubContacts struct {
	contacts []Contact
	err      error
}

func (s *stubContacts) ListContacts(_ context.Context) ([]Contact, error) {
	return s.contacts, s.err
}

// failingHistoryStore fails the insert while delegating reads, to exercise
// the write-as-last-effect ordering.
type failingHistoryStore struct {
	*MemoryHistoryStore
	failInsert bool
}

func (s *failingHistoryStore) InsertIfAbsent(ctx context.Context, rec Record) (bool, error) {
	if s.failInsert {
		return false, errors.New("store unavailable")
	}
	return s.MemoryHistoryStore.InsertIfAbsent(ctx, rec)
}

func newTestService(t *testing.T, contacts *stubContacts, history HistoryStore) *Service {
	t.Helper()
	log := logger.New("development")
	provider, err := scoring.NewProvider("", log)
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	return NewService(contacts, history, provider, events.NewInMemoryBus(log), log)
}

// highScoreLead scores 65 under default configuration when paired with a
// connected follow-up call: budget 10 + referral 20 + match 15 + price 10 +
// activity 10.
func highScoreLead() scoring.Lead {
	now := time.Now()
	return scoring.Lead{
		Mobile:         "9876543210",
		Email:          "asha@example.com",
		Name:           "Asha Verma",
		Stage:          "Prospect",
		Source:         "Referral",
		BudgetMatch:    "perfect",
		Matched:        5,
		PriceFit:       "good",
		LastActivityAt: &now,
		Tags:           "Priority",
		Remarks:        "Prefers east-facing units",
	}
}

func connectedCall() []scoring.Activity {
	return []scoring.Activity{
		{Type: "call", Purpose: "follow_up", Outcome: "connected", LoggedAt: time.Now()},
	}
}

func TestConvertLeadSuccessProjectsContact(t *testing.T) {
	svc := newTestService(t, &stubContacts{}, NewMemoryHistoryStore())

	res, err := svc.ConvertLead(context.Background(), highScoreLead(), connectedCall(), "")
	if err != nil {
		t.Fatalf("ConvertLead: %v", err)
	}
	if res.Outcome != OutcomeSuccess {
		t.Fatalf("outcome = %s, want %s", res.Outcome, OutcomeSuccess)
	}
	if res.Score != 65 {
		t.Fatalf("score = %d, want 65", res.Score)
	}

	c := res.Contact
	if c == nil {
		t.Fatal("success result carries no contact")
	}
	if c.Mobile != "+919876543210" {
		t.Fatalf("mobile = %q, want normalized E.164", c.Mobile)
	}
	if c.Category != "Prospect" {
		t.Fatalf("category = %q, want Prospect", c.Category)
	}
	if c.Tags != "Priority, Converted Lead" {
		t.Fatalf("tags = %q", c.Tags)
	}
	if !strings.HasPrefix(c.Remarks, "(Converted at Score: 65) | Manual Conversion") {
		t.Fatalf("remarks = %q", c.Remarks)
	}
	if !strings.HasSuffix(c.Remarks, "Prefers east-facing units") {
		t.Fatalf("remarks should carry lead remarks: %q", c.Remarks)
	}
	if c.ConversionMeta == nil || c.ConversionMeta.ScoreAtConversion != 65 {
		t.Fatalf("conversion meta = %+v", c.ConversionMeta)
	}
	if c.ConversionMeta.Trigger != TriggerManual {
		t.Fatalf("trigger = %q, want %q", c.ConversionMeta.Trigger, TriggerManual)
	}
}

func TestConvertLeadIsIdempotent(t *testing.T) {
	svc := newTestService(t, &stubContacts{}, NewMemoryHistoryStore())
	ctx := context.Background()
	lead := highScoreLead()

	first, err := svc.ConvertLead(ctx, lead, connectedCall(), "")
	if err != nil {
		t.Fatalf("first convert: %v", err)
	}
	if first.Outcome != OutcomeSuccess {
		t.Fatalf("first outcome = %s", first.Outcome)
	}

	second, err := svc.ConvertLead(ctx, lead, connectedCall(), "")
	if err != nil {
		t.Fatalf("second convert: %v", err)
	}
	if second.Outcome != OutcomeAlreadyConverted {
		t.Fatalf("second outcome = %s, want %s", second.Outcome, OutcomeAlreadyConverted)
	}
	if second.Contact != nil {
		t.Fatal("repeat attempt must not produce a contact")
	}
}

func TestConvertLeadDuplicateBlocksConversion(t *testing.T) {
	existing := Contact{ID: "c1", Mobile: "+919876543210", Email: "other@example.com"}
	history := NewMemoryHistoryStore()
	svc := newTestService(t, &stubContacts{contacts: []Contact{existing}}, history)

	res, err := svc.ConvertLead(context.Background(), highScoreLead(), nil, "")
	if err != nil {
		t.Fatalf("ConvertLead: %v", err)
	}
	if res.Outcome != OutcomeDuplicateFound {
		t.Fatalf("outcome = %s, want %s", res.Outcome, OutcomeDuplicateFound)
	}
	if res.ExistingContact == nil || res.ExistingContact.ID != "c1" {
		t.Fatalf("existing contact = %+v", res.ExistingContact)
	}

	// Duplicate detection must leave no history record behind.
	if has, _ := history.Has(context.Background(), "+919876543210"); has {
		t.Fatal("duplicate outcome wrote a history record")
	}
}

func TestConvertLeadHistoryWriteIsLastEffect(t *testing.T) {
	store := &failingHistoryStore{MemoryHistoryStore: NewMemoryHistoryStore(), failInsert: true}
	svc := newTestService(t, &stubContacts{}, store)
	ctx := context.Background()

	if _, err := svc.ConvertLead(ctx, highScoreLead(), connectedCall(), ""); err == nil {
		t.Fatal("expected error from failing history store")
	}

	// The failed attempt must not have marked the lead converted.
	store.failInsert = false
	res, err := svc.ConvertLead(ctx, highScoreLead(), connectedCall(), "")
	if err != nil {
		t.Fatalf("retry after store recovery: %v", err)
	}
	if res.Outcome != OutcomeSuccess {
		t.Fatalf("retry outcome = %s, want %s", res.Outcome, OutcomeSuccess)
	}
}

func TestConvertLeadConcurrentAttemptsSingleSuccess(t *testing.T) {
	svc := newTestService(t, &stubContacts{}, NewMemoryHistoryStore())
	ctx := context.Background()
	lead := highScoreLead()
	acts := connectedCall()

	const attempts = 16
	results := make([]Result, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := svc.ConvertLead(ctx, lead, acts, "")
			if err != nil {
				t.Errorf("attempt %d: %v", i, err)
				return
			}
			results[i] = res
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, res := range results {
		if res.Outcome == OutcomeSuccess {
			successes++
		}
	}
	if successes != 1 {
		t.Fatalf("successes = %d, want exactly 1", successes)
	}
}

func TestEvaluateAutoConversionEngagementRule(t *testing.T) {
	svc := newTestService(t, &stubContacts{}, NewMemoryHistoryStore())

	res, err := svc.EvaluateAutoConversion(context.Background(), highScoreLead(), connectedCall(),
		"call_logged", map[string]string{"status": "connected"})
	if err != nil {
		t.Fatalf("EvaluateAutoConversion: %v", err)
	}
	if res.Outcome != OutcomeSuccess {
		t.Fatalf("outcome = %s, want %s", res.Outcome, OutcomeSuccess)
	}
	if res.Trigger != TriggerHighEngagement {
		t.Fatalf("trigger = %q, want %q", res.Trigger, TriggerHighEngagement)
	}
}

func TestEvaluateAutoConversionEngagementRequiresConnected(t *testing.T) {
	svc := newTestService(t, &stubContacts{}, NewMemoryHistoryStore())

	res, err := svc.EvaluateAutoConversion(context.Background(), highScoreLead(), connectedCall(),
		"call_logged", map[string]string{"status": "no_answer"})
	if err != nil {
		t.Fatalf("EvaluateAutoConversion: %v", err)
	}
	if res.Outcome != OutcomeNotEligible {
		t.Fatalf("outcome = %s, want %s", res.Outcome, OutcomeNotEligible)
	}
}

func TestEvaluateAutoConversionIntentRule(t *testing.T) {
	svc := newTestService(t, &stubContacts{}, NewMemoryHistoryStore())

	// Budget 10 + referral 20 + match 15 + whatsapp reply 6 = 51: above the
	// intent threshold, below the engagement threshold.
	now := time.Now()
	lead := scoring.Lead{
		Mobile:         "9123456780",
		Stage:          "Prospect",
		Source:         "Referral",
		BudgetMatch:    "perfect",
		Matched:        5,
		LastActivityAt: &now,
	}
	acts := []scoring.Activity{
		{Type: "whatsapp", Purpose: "nurture", Outcome: "replied", LoggedAt: now},
	}

	for _, eventType := range []string{"site_visit_scheduled", "property_shortlisted"} {
		history := NewMemoryHistoryStore()
		svc = newTestService(t, &stubContacts{}, history)
		res, err := svc.EvaluateAutoConversion(context.Background(), lead, acts, eventType, nil)
		if err != nil {
			t.Fatalf("%s: %v", eventType, err)
		}
		if res.Outcome != OutcomeSuccess {
			t.Fatalf("%s: outcome = %s, want %s", eventType, res.Outcome, OutcomeSuccess)
		}
		if res.Trigger != TriggerHighIntent {
			t.Fatalf("%s: trigger = %q, want %q", eventType, res.Trigger, TriggerHighIntent)
		}
	}

	// Same lead on a connected-call event: engagement rule requires 60.
	history := NewMemoryHistoryStore()
	svc = newTestService(t, &stubContacts{}, history)
	res, err := svc.EvaluateAutoConversion(context.Background(), lead, acts,
		"call_logged", map[string]string{"status": "connected"})
	if err != nil {
		t.Fatalf("EvaluateAutoConversion: %v", err)
	}
	if res.Outcome != OutcomeNotEligible {
		t.Fatalf("outcome = %s, want %s", res.Outcome, OutcomeNotEligible)
	}
	if res.Score != 51 {
		t.Fatalf("score = %d, want 51", res.Score)
	}
}

func TestEvaluateAutoConversionBelowThresholds(t *testing.T) {
	svc := newTestService(t, &stubContacts{}, NewMemoryHistoryStore())

	now := time.Now()
	lead := scoring.Lead{
		Mobile:         "9000000001",
		Stage:          "Prospect",
		Source:         "Website",
		Matched:        5,
		LastActivityAt: &now,
	}

	res, err := svc.EvaluateAutoConversion(context.Background(), lead, nil, "site_visit_scheduled", nil)
	if err != nil {
		t.Fatalf("EvaluateAutoConversion: %v", err)
	}
	if res.Outcome != OutcomeNotEligible {
		t.Fatalf("outcome = %s, want %s", res.Outcome, OutcomeNotEligible)
	}
	if res.Score != 30 {
		t.Fatalf("score = %d, want 30", res.Score)
	}
}
