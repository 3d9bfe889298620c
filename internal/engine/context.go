// Package engine is the deterministic decision core: context memory with
// confidence-decayed merge and rollback, urgency scoring, escalation rules,
// decision explanations and the per-session orchestrator. Perception output
// goes in, a decision bundle comes out; nothing in here calls a model.
package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shaswatnaman/Nirnay-112/internal/core"
	"github.com/shaswatnaman/Nirnay-112/internal/nlp"
	"github.com/shaswatnaman/Nirnay-112/pkg/log"
)

// DefaultDecayRatePerMinute is the linear confidence decay applied to stored
// fields. Decay is what lets a later correct value displace an early
// high-confidence hallucination.
const DefaultDecayRatePerMinute = 0.05

// rollbackClarityThreshold: below this the whole utterance is treated as
// unreliable transcription and the update is discarded.
const rollbackClarityThreshold = 0.3

// Memory is the persistent per-session context. It merges partial
// information across turns and never overwrites a high-confidence field
// with a lower-confidence one.
//
// Not safe for concurrent use; Session serializes access.
type Memory struct {
	sessionID string
	clock     core.Clock
	decayRate float64

	// critical fields
	incidentType core.Category
	location     string
	urgencyScore float64
	urgencyLevel core.UrgencyLevel

	// operational fields
	callerName      string
	callerContact   string
	peopleAffected  *int
	immediateDanger bool

	nameConfidence     float64
	locationConfidence float64
	incidentConfidence float64
	peopleConfidence   float64
	dangerConfidence   float64

	nameSource     string
	locationSource string
	incidentSource string
	peopleSource   string
	dangerSource   string

	nameUpdated     *time.Time
	locationUpdated *time.Time
	incidentUpdated *time.Time
	peopleUpdated   *time.Time
	dangerUpdated   *time.Time

	// perceptual signals, tallied but never asked back
	emotionHistory      []core.Emotion
	emotionCounts       map[core.Emotion]int
	clarityScores       []float64
	clarityAvg          float64
	language            string
	languageHistory     []string
	repetitionCount     int
	previousTranscripts []string

	createdAt   time.Time
	lastUpdated time.Time

	// once a contradiction flags the session, every later update is
	// rolled back; the flag is cleared only by ending the session
	hallucinationDetected bool
}

// UpdateResult reports what one merge did.
type UpdateResult struct {
	RolledBack     bool
	RollbackReason string
	UpdatedFields  []string
}

func NewMemory(sessionID string, clock core.Clock) *Memory {
	now := clock.Now()
	counts := make(map[core.Emotion]int, len(core.KnownEmotions))
	for _, e := range core.KnownEmotions {
		counts[e] = 0
	}
	return &Memory{
		sessionID:     sessionID,
		clock:         clock,
		decayRate:     DefaultDecayRatePerMinute,
		incidentType:  "",
		urgencyLevel:  core.UrgencyMedium,
		language:      "Hindi",
		emotionCounts: counts,
		createdAt:     now,
		lastUpdated:   now,
	}
}

// SetDecayRate overrides the per-minute confidence decay.
func (m *Memory) SetDecayRate(rate float64) {
	if rate >= 0 {
		m.decayRate = rate
	}
}

func (m *Memory) SessionID() string    { return m.sessionID }
func (m *Memory) CreatedAt() time.Time { return m.createdAt }

func (m *Memory) decayedConfidence(confidence float64, updated *time.Time) float64 {
	if updated == nil {
		return confidence
	}
	minutes := m.clock.Now().Sub(*updated).Minutes()
	decayed := confidence - m.decayRate*minutes
	if decayed < 0 {
		return 0
	}
	return decayed
}

// UpdateFromSignals merges one utterance into the context. A snapshot is
// taken first; if the utterance contradicts stored facts, arrives with very
// low clarity, or the session is already flagged, the snapshot is restored
// and nothing from this utterance is kept.
func (m *Memory) UpdateFromSignals(ctx context.Context, signals core.SignalBundle) UpdateResult {
	snap := m.snapshot()

	if reason := m.shouldRollback(signals, snap); reason != "" {
		m.rollbackToSnapshot(ctx, snap, reason)
		if strings.Contains(strings.ToLower(reason), "contradiction") {
			m.hallucinationDetected = true
		}
		return UpdateResult{RolledBack: true, RollbackReason: reason}
	}

	logger := log.FromCtx(ctx)
	now := m.clock.Now()
	var updated []string

	// decay stored confidences before any comparison
	decayedName := m.decayedConfidence(m.nameConfidence, m.nameUpdated)
	decayedLocation := m.decayedConfidence(m.locationConfidence, m.locationUpdated)
	decayedIncident := m.decayedConfidence(m.incidentConfidence, m.incidentUpdated)
	decayedPeople := m.decayedConfidence(m.peopleConfidence, m.peopleUpdated)
	decayedDanger := m.decayedConfidence(m.dangerConfidence, m.dangerUpdated)

	entities := signals.Entities

	if obs := entities.Name; obs != nil && obs.Value != "" {
		conf, source := observationMeta(obs)
		if conf > decayedName {
			m.callerName = obs.Value
			m.nameConfidence = conf
			m.nameSource = source
			m.nameUpdated = timePtr(now)
			updated = append(updated, "caller_name")
		} else {
			logger.Debug().Str("field", "caller_name").
				Float64("new_confidence", conf).
				Float64("decayed_existing", decayedName).
				Msg("skipping field update, confidence too low")
		}
	} else if decayedName < m.nameConfidence {
		m.nameConfidence = decayedName
	}

	if obs := entities.Location; obs != nil && obs.Value != "" {
		conf, source := observationMeta(obs)
		if conf > decayedLocation {
			m.location = obs.Value
			m.locationConfidence = conf
			m.locationSource = source
			m.locationUpdated = timePtr(now)
			updated = append(updated, "location")
		}
	} else if decayedLocation < m.locationConfidence {
		m.locationConfidence = decayedLocation
	}

	// incident: entity observation, or the intent as fallback when the
	// intent is actionable
	incidentValue := ""
	incidentConf := 0.0
	incidentSource := ""
	if obs := entities.Incident; obs != nil && obs.Value != "" {
		incidentValue = obs.Value
		incidentConf, incidentSource = observationMeta(obs)
	} else if usableIntent(signals.Intent) {
		incidentValue = signals.Intent
		incidentConf = signals.IntentConfidence
		incidentSource = signals.IntentSource
		if incidentSource == "" {
			incidentSource = core.SourceLocalML
		}
	}
	if incidentValue != "" {
		// normalize before the confidence comparison so categories, not
		// raw strings, are what compete
		normalized := normalizeIncident(incidentValue)
		if incidentConf > decayedIncident {
			m.incidentType = normalized
			m.incidentConfidence = incidentConf
			m.incidentSource = incidentSource
			m.incidentUpdated = timePtr(now)
			updated = append(updated, "incident_type")
		}
	} else if decayedIncident < m.incidentConfidence {
		m.incidentConfidence = decayedIncident
	}

	if obs := entities.PeopleAffected; obs != nil && obs.Value != "" {
		conf, source := observationMeta(obs)
		if conf > decayedPeople {
			if n, ok := nlp.ParsePeopleAffected(obs.Value); ok {
				m.peopleAffected = &n
				m.peopleConfidence = conf
				m.peopleSource = source
				m.peopleUpdated = timePtr(now)
				updated = append(updated, "people_affected")
			}
		}
	} else if decayedPeople < m.peopleConfidence {
		m.peopleConfidence = decayedPeople
	}

	if obs := entities.ImmediateDanger; obs != nil && obs.Value != "" {
		conf, source := observationMeta(obs)
		if conf > decayedDanger {
			switch strings.ToLower(obs.Value) {
			case "true":
				m.immediateDanger = true
			case "false":
				m.immediateDanger = false
			default:
				m.immediateDanger = nlp.DetectImmediateDanger(obs.Value)
			}
			m.dangerConfidence = conf
			m.dangerSource = source
			m.dangerUpdated = timePtr(now)
			updated = append(updated, "immediate_danger")
		}
	} else if decayedDanger < m.dangerConfidence {
		m.dangerConfidence = decayedDanger
	}

	if signals.Language != "" {
		m.language = signals.Language
		m.languageHistory = append(m.languageHistory, signals.Language)
		if len(m.languageHistory) > 5 {
			m.languageHistory = m.languageHistory[len(m.languageHistory)-5:]
		}
	}

	emotion := signals.Emotion
	if emotion == "" {
		emotion = core.EmotionCalm
	}
	m.emotionHistory = append(m.emotionHistory, emotion)
	if _, known := m.emotionCounts[emotion]; known {
		m.emotionCounts[emotion]++
	}

	m.clarityScores = append(m.clarityScores, signals.Clarity)
	sum := 0.0
	for _, c := range m.clarityScores {
		sum += c
	}
	m.clarityAvg = sum / float64(len(m.clarityScores))

	for _, prev := range m.previousTranscripts {
		if prev == signals.Transcript {
			m.repetitionCount++
			break
		}
	}
	m.previousTranscripts = append(m.previousTranscripts, signals.Transcript)
	if len(m.previousTranscripts) > 10 {
		m.previousTranscripts = m.previousTranscripts[len(m.previousTranscripts)-10:]
	}

	m.lastUpdated = now

	if len(updated) > 0 {
		logger.Debug().Strs("fields", updated).Str("session_id", m.sessionID).Msg("context updated")
	}
	return UpdateResult{UpdatedFields: updated}
}

func (m *Memory) shouldRollback(signals core.SignalBundle, snap *snapshot) string {
	if reason := m.checkContradiction(signals, snap); reason != "" {
		return "entity contradiction: " + reason
	}
	if signals.Clarity < rollbackClarityThreshold {
		return fmt.Sprintf("very low clarity (%.2f), transcription may be unreliable", signals.Clarity)
	}
	if m.hallucinationDetected {
		return "hallucination detected earlier in session, discarding update"
	}
	return ""
}

func (m *Memory) checkContradiction(signals core.SignalBundle, snap *snapshot) string {
	entities := signals.Entities

	if obs := entities.Name; obs != nil && obs.Value != "" && snap.callerName != "" {
		if !sharesWord(obs.Value, snap.callerName) {
			return fmt.Sprintf("name %q vs %q", snap.callerName, obs.Value)
		}
	}

	if obs := entities.Location; obs != nil && obs.Value != "" && snap.location != "" {
		if !sharesWord(obs.Value, snap.location) {
			return fmt.Sprintf("location %q vs %q", snap.location, obs.Value)
		}
	}

	if obs := entities.Incident; obs != nil && obs.Value != "" && snap.incidentType != "" {
		newCat := normalizeIncident(obs.Value)
		oldCat := normalizeIncident(string(snap.incidentType))
		if newCat != oldCat && oldCat != core.CategoryUnknown {
			return fmt.Sprintf("incident type %q vs %q", snap.incidentType, obs.Value)
		}
	}

	if signals.Intent != "" && snap.incidentType != "" {
		if cat, ok := intentToCategory[signals.Intent]; ok {
			if cat != snap.incidentType && snap.incidentType != core.CategoryUnknown {
				return fmt.Sprintf("intent %q conflicts with incident %q", signals.Intent, snap.incidentType)
			}
		}
	}

	return ""
}

func (m *Memory) rollbackToSnapshot(ctx context.Context, snap *snapshot, reason string) {
	logger := log.FromCtx(ctx)
	// a failed restore must not take the session down with it
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Str("session_id", m.sessionID).
				Msg("context rollback failed, continuing with current state")
		}
	}()

	var rolledBack []string
	if snap.callerName != m.callerName {
		rolledBack = append(rolledBack, "caller_name")
	}
	if snap.location != m.location {
		rolledBack = append(rolledBack, "location")
	}
	if snap.incidentType != m.incidentType {
		rolledBack = append(rolledBack, "incident_type")
	}

	snap.restoreTo(m)
	logger.Warn().
		Str("session_id", m.sessionID).
		Str("reason", reason).
		Strs("fields", rolledBack).
		Time("restored_to", snap.lastUpdated).
		Msg("context rolled back")
}

// MissingFields lists absent critical fields. Urgency is system-derived and
// is never reported missing.
func (m *Memory) MissingFields() []string {
	var missing []string
	if m.location == "" {
		missing = append(missing, "location")
	}
	if m.incidentType == "" || m.incidentType == core.CategoryUnknown {
		missing = append(missing, "incident_type")
	}
	return missing
}

// MissingOperationalFields lists absent recommended fields.
func (m *Memory) MissingOperationalFields() []string {
	var missing []string
	if m.callerName == "" {
		missing = append(missing, "name")
	}
	if m.peopleAffected == nil {
		missing = append(missing, "people_affected")
	}
	return missing
}

func (m *Memory) DominantEmotion() core.Emotion {
	best := core.EmotionCalm
	bestCount := 0
	for _, e := range core.KnownEmotions {
		if m.emotionCounts[e] > bestCount {
			bestCount = m.emotionCounts[e]
			best = e
		}
	}
	return best
}

func (m *Memory) IncidentType() core.Category { return m.incidentType }
func (m *Memory) Location() string            { return m.location }
func (m *Memory) CallerName() string          { return m.callerName }
func (m *Memory) PeopleAffected() *int        { return m.peopleAffected }
func (m *Memory) ImmediateDanger() bool       { return m.immediateDanger }
func (m *Memory) ClarityAvg() float64         { return m.clarityAvg }
func (m *Memory) RepetitionCount() int        { return m.repetitionCount }
func (m *Memory) Language() string            { return m.language }
func (m *Memory) HallucinationDetected() bool { return m.hallucinationDetected }

// RecentEmotions returns up to the last n emotion labels.
func (m *Memory) RecentEmotions(n int) []core.Emotion {
	if len(m.emotionHistory) <= n {
		return append([]core.Emotion(nil), m.emotionHistory...)
	}
	return append([]core.Emotion(nil), m.emotionHistory[len(m.emotionHistory)-n:]...)
}

// RecentTranscripts returns up to the last n transcripts.
func (m *Memory) RecentTranscripts(n int) []string {
	if len(m.previousTranscripts) <= n {
		return append([]string(nil), m.previousTranscripts...)
	}
	return append([]string(nil), m.previousTranscripts[len(m.previousTranscripts)-n:]...)
}

// SetUrgency stores the derived urgency so the dispatcher view carries it.
func (m *Memory) SetUrgency(score float64, level core.UrgencyLevel) {
	m.urgencyScore = score
	m.urgencyLevel = level
}

func (m *Memory) UrgencyScore() float64          { return m.urgencyScore }
func (m *Memory) UrgencyLevel() core.UrgencyLevel { return m.urgencyLevel }
func (m *Memory) IncidentConfidence() float64    { return m.incidentConfidence }

// View produces the detached context dump for transports.
func (m *Memory) View() core.ContextView {
	people := ""
	if m.peopleAffected != nil {
		people = fmt.Sprintf("%d", *m.peopleAffected)
	}
	danger := "false"
	if m.immediateDanger {
		danger = "true"
	}
	return core.ContextView{
		IncidentType: core.FieldView{
			Value:      string(m.incidentType),
			Confidence: m.incidentConfidence,
			Source:     m.incidentSource,
			UpdatedAt:  m.incidentUpdated,
		},
		Location: core.FieldView{
			Value:      m.location,
			Confidence: m.locationConfidence,
			Source:     m.locationSource,
			UpdatedAt:  m.locationUpdated,
		},
		UrgencyScore: m.urgencyScore,
		UrgencyLevel: m.urgencyLevel,
		CallerName: core.FieldView{
			Value:      m.callerName,
			Confidence: m.nameConfidence,
			Source:     m.nameSource,
			UpdatedAt:  m.nameUpdated,
		},
		CallerContact: core.FieldView{Value: m.callerContact},
		PeopleAffected: core.FieldView{
			Value:      people,
			Confidence: m.peopleConfidence,
			Source:     m.peopleSource,
			UpdatedAt:  m.peopleUpdated,
		},
		ImmediateDanger: core.FieldView{
			Value:      danger,
			Confidence: m.dangerConfidence,
			Source:     m.dangerSource,
			UpdatedAt:  m.dangerUpdated,
		},
		EmotionHistory:           m.RecentEmotions(5),
		DominantEmotion:          m.DominantEmotion(),
		ClarityAvg:               m.clarityAvg,
		Language:                 m.language,
		RepetitionCount:          m.repetitionCount,
		MissingFields:            m.MissingFields(),
		MissingOperationalFields: m.MissingOperationalFields(),
		LastUpdated:              m.lastUpdated,
	}
}

// intentToCategory maps actionable intent labels onto canonical categories.
// Used both for the incident fallback and the intent contradiction check.
var intentToCategory = map[string]core.Category{
	"medical_emergency":   core.CategoryMedical,
	"fire":                core.CategoryFire,
	"road_accident":       core.CategoryRoadAccident,
	"crime":               core.CategoryCrime,
	"domestic_emergency":  core.CategoryDomestic,
	"natural_disaster":    core.CategoryNaturalDisaster,
	"industrial_accident": core.CategoryIndustrial,
	"public_transport":    core.CategoryPublicTransport,
	"mental_health":       core.CategoryMedical,
}

func usableIntent(intent string) bool {
	switch intent {
	case "", core.IntentUnclear, core.IntentUncertain, core.IntentNonEmergency:
		return false
	}
	return true
}

// normalizeIncident maps a raw incident description onto the canonical
// category set. Already-canonical labels map directly; free text goes
// through the keyword classifier. Sparse categories fold into their routing
// equivalents.
func normalizeIncident(raw string) core.Category {
	if raw == "" {
		return core.CategoryUnknown
	}
	classified, ok := intentToCategory[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		classified = nlp.ClassifyIncident(raw)
	}
	switch classified {
	case core.CategoryIndustrial, core.CategoryPublicTransport:
		return core.CategoryRoadAccident
	case core.CategoryMentalHealth:
		return core.CategoryMedical
	case core.CategoryUnknown:
		return core.CategoryUnknown
	}
	return classified
}

func observationMeta(obs *core.Observation) (float64, string) {
	conf := obs.Confidence
	if conf == 0 {
		conf = core.DefaultObservationConfidence
	}
	source := obs.Source
	if source == "" {
		source = core.SourcePerception
	}
	return conf, source
}

func sharesWord(a, b string) bool {
	aw := strings.Fields(strings.ToLower(strings.TrimSpace(a)))
	set := make(map[string]struct{}, len(aw))
	for _, w := range aw {
		set[w] = struct{}{}
	}
	for _, w := range strings.Fields(strings.ToLower(strings.TrimSpace(b))) {
		if _, ok := set[w]; ok {
			return true
		}
	}
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func timePtr(t time.Time) *time.Time { return &t }
