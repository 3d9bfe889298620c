package engine

import (
	"context"
	"testing"
	"time"

	"github.com/shaswatnaman/Nirnay-112/internal/core"
)

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func obs(value string, confidence float64) *core.Observation {
	return &core.Observation{Value: value, Confidence: confidence, Source: core.SourcePerception}
}

func clearSignals(transcript string) core.SignalBundle {
	return core.SignalBundle{Transcript: transcript, Clarity: 0.9, Emotion: core.EmotionCalm}
}

func TestUpdateFromSignalsMergesFields(t *testing.T) {
	clock := newFakeClock()
	mem := NewMemory("s1", clock)

	signals := clearSignals("मेरा नाम राहुल है, आग लगी है")
	signals.Entities.Name = obs("Rahul", 0.9)
	signals.Entities.Location = obs("MG Road", 0.8)
	signals.Entities.Incident = obs("fire", 0.85)
	signals.Entities.PeopleAffected = obs("तीन", 0.7)
	signals.Entities.ImmediateDanger = obs("true", 0.8)

	result := mem.UpdateFromSignals(context.Background(), signals)
	if result.RolledBack {
		t.Fatalf("unexpected rollback: %s", result.RollbackReason)
	}
	if len(result.UpdatedFields) != 5 {
		t.Fatalf("updated fields = %v, want all 5", result.UpdatedFields)
	}
	if mem.CallerName() != "Rahul" {
		t.Errorf("caller name = %q", mem.CallerName())
	}
	if mem.IncidentType() != core.CategoryFire {
		t.Errorf("incident type = %q", mem.IncidentType())
	}
	if got := mem.PeopleAffected(); got == nil || *got != 3 {
		t.Errorf("people affected = %v, want 3", got)
	}
	if !mem.ImmediateDanger() {
		t.Error("immediate danger not set")
	}
}

func TestLowerConfidenceNeverReplaces(t *testing.T) {
	clock := newFakeClock()
	mem := NewMemory("s1", clock)

	first := clearSignals("location is MG Road")
	first.Entities.Location = obs("MG Road", 0.9)
	mem.UpdateFromSignals(context.Background(), first)

	// shares a word with the stored value so the contradiction check stays
	// out of the way; only the confidence comparison decides
	second := clearSignals("somewhere on the road")
	second.Entities.Location = obs("road junction", 0.5)
	mem.UpdateFromSignals(context.Background(), second)

	if mem.Location() != "MG Road" {
		t.Errorf("location = %q, want the higher-confidence value kept", mem.Location())
	}
}

func TestEqualConfidenceKeepsExisting(t *testing.T) {
	clock := newFakeClock()
	mem := NewMemory("s1", clock)

	first := clearSignals("near the temple road")
	first.Entities.Location = obs("temple road", 0.7)
	mem.UpdateFromSignals(context.Background(), first)

	// no time passes, no decay: equal confidence must not win
	second := clearSignals("by the temple gate")
	second.Entities.Location = obs("temple gate", 0.7)
	mem.UpdateFromSignals(context.Background(), second)

	if mem.Location() != "temple road" {
		t.Errorf("location = %q, equal confidence should keep existing", mem.Location())
	}
}

func TestDecayLetsWeakerObservationWin(t *testing.T) {
	clock := newFakeClock()
	mem := NewMemory("s1", clock)

	first := clearSignals("near the temple")
	first.Entities.Location = obs("temple", 0.7)
	mem.UpdateFromSignals(context.Background(), first)

	// 0.05/minute: after 10 minutes the stored 0.7 has decayed to 0.2
	clock.Advance(10 * time.Minute)

	second := clearSignals("at the temple east gate")
	second.Entities.Location = obs("temple east gate", 0.5)
	result := mem.UpdateFromSignals(context.Background(), second)

	if mem.Location() != "temple east gate" {
		t.Errorf("location = %q, decayed value should lose to a fresh one", mem.Location())
	}
	if len(result.UpdatedFields) == 0 {
		t.Error("expected a field update after decay")
	}
}

func TestDecayWritesBackWhenNoNewValue(t *testing.T) {
	clock := newFakeClock()
	mem := NewMemory("s1", clock)

	first := clearSignals("near the temple")
	first.Entities.Location = obs("temple", 0.7)
	mem.UpdateFromSignals(context.Background(), first)

	clock.Advance(4 * time.Minute)
	mem.UpdateFromSignals(context.Background(), clearSignals("everything is on fire"))

	view := mem.View()
	want := 0.7 - 0.05*4
	if diff := view.Location.Confidence - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("location confidence = %v, want %v after decay", view.Location.Confidence, want)
	}
	if mem.Location() != "temple" {
		t.Errorf("location value must survive decay, got %q", mem.Location())
	}
}

func TestLowClarityTriggersRollback(t *testing.T) {
	clock := newFakeClock()
	mem := NewMemory("s1", clock)

	first := clearSignals("fire at MG Road")
	first.Entities.Location = obs("MG Road", 0.8)
	mem.UpdateFromSignals(context.Background(), first)
	before := mem.View()

	garbled := core.SignalBundle{Transcript: "kkhh shhh", Clarity: 0.1}
	garbled.Entities.Location = obs("somewhere else", 0.95)
	result := mem.UpdateFromSignals(context.Background(), garbled)

	if !result.RolledBack {
		t.Fatal("expected rollback on clarity below threshold")
	}
	after := mem.View()
	if after.Location != before.Location {
		t.Errorf("location view changed across rollback: %+v vs %+v", after.Location, before.Location)
	}
	if mem.RepetitionCount() != 0 {
		t.Error("rollback must not advance repetition bookkeeping")
	}
	if mem.HallucinationDetected() {
		t.Error("clarity rollback must not set the contradiction flag")
	}
}

func TestContradictionRollbackIsSticky(t *testing.T) {
	clock := newFakeClock()
	mem := NewMemory("s1", clock)

	first := clearSignals("my name is Rahul")
	first.Entities.Name = obs("Rahul", 0.9)
	mem.UpdateFromSignals(context.Background(), first)

	contradicting := clearSignals("my name is Priya")
	contradicting.Entities.Name = obs("Priya", 0.95)
	result := mem.UpdateFromSignals(context.Background(), contradicting)

	if !result.RolledBack {
		t.Fatal("expected rollback on name contradiction")
	}
	if !mem.HallucinationDetected() {
		t.Fatal("contradiction must set the sticky flag")
	}
	if mem.CallerName() != "Rahul" {
		t.Errorf("caller name = %q after rollback", mem.CallerName())
	}

	// once flagged, even a clean consistent update rolls back
	clean := clearSignals("I am at MG Road")
	clean.Entities.Location = obs("MG Road", 0.9)
	result = mem.UpdateFromSignals(context.Background(), clean)
	if !result.RolledBack {
		t.Error("flagged session must roll back all subsequent updates")
	}
	if mem.Location() != "" {
		t.Errorf("location = %q, nothing should merge after the flag", mem.Location())
	}
}

func TestSharedWordIsNotAContradiction(t *testing.T) {
	clock := newFakeClock()
	mem := NewMemory("s1", clock)

	first := clearSignals("I am near MG Road")
	first.Entities.Location = obs("MG Road", 0.6)
	mem.UpdateFromSignals(context.Background(), first)

	refined := clearSignals("MG Road metro station")
	refined.Entities.Location = obs("MG Road metro station", 0.9)
	result := mem.UpdateFromSignals(context.Background(), refined)

	if result.RolledBack {
		t.Fatalf("refinement sharing a word rolled back: %s", result.RollbackReason)
	}
	if mem.Location() != "MG Road metro station" {
		t.Errorf("location = %q", mem.Location())
	}
}

func TestIncidentFromIntentFallback(t *testing.T) {
	clock := newFakeClock()
	mem := NewMemory("s1", clock)

	signals := clearSignals("someone is badly hurt")
	signals.Intent = "medical_emergency"
	signals.IntentConfidence = 0.8
	signals.IntentSource = core.SourceLocalML
	mem.UpdateFromSignals(context.Background(), signals)

	if mem.IncidentType() != core.CategoryMedical {
		t.Errorf("incident type = %q, want medical_emergency via intent fallback", mem.IncidentType())
	}
}

func TestUncertainIntentNeverSetsIncident(t *testing.T) {
	clock := newFakeClock()
	mem := NewMemory("s1", clock)

	for _, intent := range []string{core.IntentUnclear, core.IntentUncertain, core.IntentNonEmergency, ""} {
		signals := clearSignals("hmm")
		signals.Intent = intent
		signals.IntentConfidence = 0.9
		mem.UpdateFromSignals(context.Background(), signals)
	}
	if mem.IncidentType() != "" {
		t.Errorf("incident type = %q, non-actionable intents must not merge", mem.IncidentType())
	}
}

func TestNormalizeIncident(t *testing.T) {
	tests := []struct {
		raw  string
		want core.Category
	}{
		{"medical_emergency", core.CategoryMedical},
		{"fire", core.CategoryFire},
		{"industrial_accident", core.CategoryRoadAccident},
		{"public_transport", core.CategoryRoadAccident},
		{"mental_health", core.CategoryMedical},
		{"कुत्ते ने काटा", core.CategoryMedical},
		{"car crash on highway", core.CategoryRoadAccident},
		{"random words", core.CategoryUnknown},
	}
	for _, tt := range tests {
		if got := normalizeIncident(tt.raw); got != tt.want {
			t.Errorf("normalizeIncident(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestMissingFields(t *testing.T) {
	clock := newFakeClock()
	mem := NewMemory("s1", clock)

	missing := mem.MissingFields()
	if len(missing) != 2 {
		t.Fatalf("missing = %v, want location and incident_type", missing)
	}

	signals := clearSignals("fire at MG Road")
	signals.Entities.Location = obs("MG Road", 0.8)
	signals.Entities.Incident = obs("fire", 0.8)
	mem.UpdateFromSignals(context.Background(), signals)

	if got := mem.MissingFields(); len(got) != 0 {
		t.Errorf("missing = %v after both critical fields merged", got)
	}
	if got := mem.MissingOperationalFields(); len(got) != 2 {
		t.Errorf("operational missing = %v, want name and people_affected", got)
	}
}

func TestRepetitionAndEmotionBookkeeping(t *testing.T) {
	clock := newFakeClock()
	mem := NewMemory("s1", clock)

	for i := 0; i < 3; i++ {
		s := clearSignals("जल्दी आओ")
		s.Emotion = core.EmotionPanic
		s.Clarity = 0.8
		mem.UpdateFromSignals(context.Background(), s)
	}

	if mem.RepetitionCount() != 2 {
		t.Errorf("repetition count = %d, want 2", mem.RepetitionCount())
	}
	if mem.DominantEmotion() != core.EmotionPanic {
		t.Errorf("dominant emotion = %q", mem.DominantEmotion())
	}
	if mem.ClarityAvg() != 0.8 {
		t.Errorf("clarity avg = %v", mem.ClarityAvg())
	}
}
