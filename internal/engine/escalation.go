package engine

import (
	"fmt"
	"strings"

	"github.com/shaswatnaman/Nirnay-112/internal/core"
	"github.com/shaswatnaman/Nirnay-112/internal/nlp"
)

// Escalation thresholds.
const (
	urgencyEscalationThreshold = 0.7
	clarityEscalationThreshold = 0.3
	panicPersistenceThreshold  = 3
	criticalFieldsQuestionCap  = 5
)

var criticalFields = map[string]struct{}{
	"location":      {},
	"incident_type": {},
}

// EscalationInput carries the signals the rules read.
type EscalationInput struct {
	UrgencyScore         float64
	UrgencyLevel         core.UrgencyLevel
	ClarityAvg           float64
	EmotionHistory       []core.Emotion
	MissingFields        []string
	QuestionCount        int
	ExplicitHumanRequest bool
	ImmediateDanger      bool
}

// CheckEscalation runs the ordered escalation rules; the first rule that
// fires decides both the reason and the priority. Rule order is part of the
// contract: a later rule never overrides an earlier one.
func CheckEscalation(in EscalationInput) core.Escalation {
	// Rule 1: urgency score
	if in.UrgencyScore > urgencyEscalationThreshold {
		return core.Escalation{
			Required: true,
			Reason: fmt.Sprintf("high urgency score (%.2f) exceeds threshold (%.2f)",
				in.UrgencyScore, urgencyEscalationThreshold),
			Priority: in.UrgencyLevel,
		}
	}

	// Rule 2: clarity floor
	if in.ClarityAvg < clarityEscalationThreshold {
		return core.Escalation{
			Required: true,
			Reason: fmt.Sprintf("low clarity (%.2f) below threshold (%.2f)",
				in.ClarityAvg, clarityEscalationThreshold),
			Priority: core.UrgencyHigh,
		}
	}

	// Rule 3: panic persistence over the last 3 turns (whole history when
	// shorter than 3)
	recentPanic := 0
	history := in.EmotionHistory
	if len(history) >= 3 {
		history = history[len(history)-3:]
	}
	for _, e := range history {
		if e == core.EmotionPanic {
			recentPanic++
		}
	}
	if recentPanic >= panicPersistenceThreshold {
		return core.Escalation{
			Required: true,
			Reason: fmt.Sprintf("panic detected %d times in recent interactions (threshold: %d)",
				recentPanic, panicPersistenceThreshold),
			Priority: core.UrgencyCritical,
		}
	}

	// Rule 4: critical fields still missing after enough questions
	var criticalMissing []string
	for _, f := range in.MissingFields {
		if _, ok := criticalFields[f]; ok {
			criticalMissing = append(criticalMissing, f)
		}
	}
	if len(criticalMissing) > 0 && in.QuestionCount >= criticalFieldsQuestionCap {
		return core.Escalation{
			Required: true,
			Reason: fmt.Sprintf("critical fields missing (%s) after %d questions",
				strings.Join(criticalMissing, ", "), in.QuestionCount),
			Priority: core.UrgencyHigh,
		}
	}

	// Rule 5: immediate danger
	if in.ImmediateDanger {
		return core.Escalation{
			Required: true,
			Reason:   "immediate danger detected (fire spreading, weapon, bleeding, or trapped)",
			Priority: core.UrgencyCritical,
		}
	}

	// Rule 6: explicit request for a human
	if in.ExplicitHumanRequest {
		return core.Escalation{
			Required: true,
			Reason:   "caller explicitly requested human assistance",
			Priority: core.UrgencyHigh,
		}
	}

	return core.Escalation{}
}

// DetectExplicitHumanRequest reports whether the transcript asks for a
// human operator.
func DetectExplicitHumanRequest(text string) bool {
	return nlp.DetectHumanRequest(text)
}
