package core

import "time"

// Observation is one extracted value together with its perception metadata.
// Confidence 0 means "not supplied"; the merge layer substitutes
// DefaultObservationConfidence so an unscored value can still compete.
type Observation struct {
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence,omitempty"`
	Source     string  `json:"source,omitempty"`
}

// DefaultObservationConfidence is assumed when a perception source sends a
// value without a confidence companion.
const DefaultObservationConfidence = 0.6

// Entities carries the per-utterance extraction result. Every field is
// optional; absence means "nothing observed this turn", never an error.
//
// ImmediateDanger.Value holds either a boolean literal ("true"/"false") or
// free text that is scanned for danger keywords.
type Entities struct {
	Name            *Observation `json:"name,omitempty"`
	Location        *Observation `json:"location,omitempty"`
	Incident        *Observation `json:"incident,omitempty"`
	PeopleAffected  *Observation `json:"people_affected,omitempty"`
	ImmediateDanger *Observation `json:"immediate_danger,omitempty"`
}

// SignalBundle is one utterance's fused perception output. It is the sole
// input contract of the decision pipeline; entities and intent may come from
// an external model or from local rule classifiers, treated uniformly.
type SignalBundle struct {
	Transcript       string   `json:"transcript"`
	Entities         Entities `json:"entities"`
	Emotion          Emotion  `json:"emotion,omitempty"`
	Clarity          float64  `json:"clarity"`
	Intent           string   `json:"intent,omitempty"`
	IntentConfidence float64  `json:"intent_confidence,omitempty"`
	IntentSource     string   `json:"intent_source,omitempty"`
	Language         string   `json:"language,omitempty"`
}

// FieldView is the triad dump of one tracked field for the decision bundle.
type FieldView struct {
	Value      string     `json:"value,omitempty"`
	Confidence float64    `json:"confidence"`
	Source     string     `json:"source,omitempty"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

// ContextView is the full context dump surfaced to transports and the
// dispatcher UI. It is a snapshot, detached from the live session state.
type ContextView struct {
	// Critical fields
	IncidentType   FieldView    `json:"incident_type"`
	Location       FieldView    `json:"location"`
	UrgencyScore   float64      `json:"urgency_score"`
	UrgencyLevel   UrgencyLevel `json:"urgency_level"`

	// Operational fields
	CallerName      FieldView `json:"caller_name"`
	CallerContact   FieldView `json:"caller_contact"`
	PeopleAffected  FieldView `json:"people_affected"`
	ImmediateDanger FieldView `json:"immediate_danger"`

	// Perceptual signals (dispatcher view only, never asked back)
	EmotionHistory  []Emotion       `json:"emotion_history"`
	DominantEmotion Emotion         `json:"dominant_emotion"`
	ClarityAvg      float64         `json:"clarity_avg"`
	Language        string          `json:"language"`
	RepetitionCount int             `json:"repetition_count"`

	MissingFields            []string  `json:"missing_fields"`
	MissingOperationalFields []string  `json:"missing_operational_fields"`
	LastUpdated              time.Time `json:"last_updated"`
}

// Urgency is the scoring output with its full per-component breakdown. The
// breakdown is always populated; explainability is part of the contract.
type Urgency struct {
	Score     float64          `json:"score"`
	Level     UrgencyLevel     `json:"level"`
	Breakdown UrgencyBreakdown `json:"breakdown"`
}

// UrgencyBreakdown lists every weighted component of the urgency score.
type UrgencyBreakdown struct {
	IntentScore        float64 `json:"intent_score"`
	StressScore        float64 `json:"stress_score"`
	StressScoreRaw     float64 `json:"stress_score_raw"`
	RepetitionScore    float64 `json:"repetition_score"`
	ClarityScore       float64 `json:"clarity_score"`
	TimeScore          float64 `json:"time_score"`
	UrgencySignalBoost float64 `json:"urgency_signal_boost"`
	UrgencySignals     bool    `json:"urgency_signals_detected"`
	Total              float64 `json:"total"`
}

// Escalation is the human-handoff decision.
type Escalation struct {
	Required bool         `json:"required"`
	Reason   string       `json:"reason,omitempty"`
	Priority UrgencyLevel `json:"priority,omitempty"`
}

// Explanation is the human-readable account of the decision.
type Explanation struct {
	UrgencyScore       float64      `json:"urgency_score"`
	UrgencyLevel       UrgencyLevel `json:"urgency_level"`
	TopFactors         []string     `json:"top_3_contributing_factors"`
	WhyEscalated       string       `json:"why_escalated,omitempty"`
	ConfidenceWarnings []string     `json:"confidence_warnings"`
}

// DecisionBundle is the per-utterance output and the sole contract with the
// surrounding transport layer.
type DecisionBundle struct {
	Context       ContextView `json:"context"`
	Urgency       Urgency     `json:"urgency"`
	Escalation    Escalation  `json:"escalation"`
	Explanation   Explanation `json:"explanation"`
	NextPromptKey string      `json:"next_prompt_key"`
	NextPrompt    string      `json:"next_prompt"`
}
