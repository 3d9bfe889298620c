package engine

import (
	"context"
	"strings"
	"testing"

	"github.com/shaswatnaman/Nirnay-112/internal/core"
)

func TestExplainTopFactors(t *testing.T) {
	clock := newFakeClock()
	mem := NewMemory("s1", clock)

	signals := clearSignals("aag lagi hai jaldi aao")
	signals.Entities.Incident = obs("fire", 0.9)
	signals.Entities.Location = obs("MG Road", 0.8)
	signals.Emotion = core.EmotionPanic
	mem.UpdateFromSignals(context.Background(), signals)

	signals2 := clearSignals("jaldi aao bachao")
	signals2.Emotion = core.EmotionPanic
	mem.UpdateFromSignals(context.Background(), signals2)

	explanation := Explain(mem, 0.8, core.Escalation{})

	if len(explanation.TopFactors) == 0 || len(explanation.TopFactors) > 3 {
		t.Fatalf("top factors = %v, want 1..3 entries", explanation.TopFactors)
	}
	joined := strings.Join(explanation.TopFactors, "; ")
	if !strings.Contains(joined, "Fire emergency detected") {
		t.Errorf("factors %q missing the incident description", joined)
	}
	if !strings.Contains(joined, "Panic detected") {
		t.Errorf("factors %q missing the panic factor", joined)
	}
	if explanation.UrgencyLevel != core.UrgencyCritical {
		t.Errorf("level = %q for score 0.8", explanation.UrgencyLevel)
	}
}

func TestExplainLowConfidenceAnnotation(t *testing.T) {
	clock := newFakeClock()
	mem := NewMemory("s1", clock)

	signals := clearSignals("kuch hua hai")
	signals.Entities.Incident = obs("fire", 0.4)
	mem.UpdateFromSignals(context.Background(), signals)

	explanation := Explain(mem, 0.5, core.Escalation{})

	joined := strings.Join(explanation.TopFactors, "; ")
	if !strings.Contains(joined, "low confidence: 0.40") {
		t.Errorf("factors %q missing low-confidence annotation", joined)
	}
	warnings := strings.Join(explanation.ConfidenceWarnings, "; ")
	if !strings.Contains(warnings, "Low confidence in incident type (0.40)") {
		t.Errorf("warnings %q missing incident-confidence warning", warnings)
	}
}

func TestExplainWhyEscalated(t *testing.T) {
	clock := newFakeClock()
	mem := NewMemory("s1", clock)

	explanation := Explain(mem, 0.9, core.Escalation{Required: true, Reason: "high urgency score (0.90) exceeds threshold (0.70)"})
	if explanation.WhyEscalated != "high urgency score (0.90) exceeds threshold (0.70)" {
		t.Errorf("why escalated = %q", explanation.WhyEscalated)
	}

	explanation = Explain(mem, 0.9, core.Escalation{Required: true})
	if explanation.WhyEscalated != "Human intervention required" {
		t.Errorf("why escalated fallback = %q", explanation.WhyEscalated)
	}

	explanation = Explain(mem, 0.2, core.Escalation{})
	if explanation.WhyEscalated != "" {
		t.Errorf("why escalated = %q for a non-escalated decision", explanation.WhyEscalated)
	}
}

func TestExplainWarningsOnEmptyContext(t *testing.T) {
	clock := newFakeClock()
	mem := NewMemory("s1", clock)

	explanation := Explain(mem, 0, core.Escalation{})

	warnings := strings.Join(explanation.ConfidenceWarnings, "; ")
	if !strings.Contains(warnings, "Low speech clarity") {
		t.Errorf("warnings %q missing clarity warning", warnings)
	}
	if !strings.Contains(warnings, "Missing critical information: location, incident_type") {
		t.Errorf("warnings %q missing critical-fields warning", warnings)
	}
	if !strings.Contains(warnings, "Incident type unclear") {
		t.Errorf("warnings %q missing unclear-incident warning", warnings)
	}
}

func TestRankFactorsOrdersBySeverity(t *testing.T) {
	factors := []string{
		"Moderate speech clarity (0.55)",
		"Panic detected (3 times in recent speech)",
		"Some repetition detected (1 time)",
	}
	ranked := rankFactors(factors)
	if ranked[0] != "Panic detected (3 times in recent speech)" {
		t.Errorf("ranked[0] = %q, panic must surface first", ranked[0])
	}
}
