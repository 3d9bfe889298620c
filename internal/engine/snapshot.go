package engine

import (
	"time"

	"github.com/shaswatnaman/Nirnay-112/internal/core"
)

// snapshot is a full deep copy of the mutable context state, taken before
// every merge so an unsafe update can be undone bit for bit.
type snapshot struct {
	incidentType core.Category
	location     string
	urgencyScore float64
	urgencyLevel core.UrgencyLevel

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

	emotionHistory      []core.Emotion
	emotionCounts       map[core.Emotion]int
	clarityScores       []float64
	clarityAvg          float64
	language            string
	languageHistory     []string
	repetitionCount     int
	previousTranscripts []string

	lastUpdated time.Time
}

func (m *Memory) snapshot() *snapshot {
	return &snapshot{
		incidentType: m.incidentType,
		location:     m.location,
		urgencyScore: m.urgencyScore,
		urgencyLevel: m.urgencyLevel,

		callerName:      m.callerName,
		callerContact:   m.callerContact,
		peopleAffected:  copyIntPtr(m.peopleAffected),
		immediateDanger: m.immediateDanger,

		nameConfidence:     m.nameConfidence,
		locationConfidence: m.locationConfidence,
		incidentConfidence: m.incidentConfidence,
		peopleConfidence:   m.peopleConfidence,
		dangerConfidence:   m.dangerConfidence,

		nameSource:     m.nameSource,
		locationSource: m.locationSource,
		incidentSource: m.incidentSource,
		peopleSource:   m.peopleSource,
		dangerSource:   m.dangerSource,

		nameUpdated:     copyTimePtr(m.nameUpdated),
		locationUpdated: copyTimePtr(m.locationUpdated),
		incidentUpdated: copyTimePtr(m.incidentUpdated),
		peopleUpdated:   copyTimePtr(m.peopleUpdated),
		dangerUpdated:   copyTimePtr(m.dangerUpdated),

		emotionHistory:      append([]core.Emotion(nil), m.emotionHistory...),
		emotionCounts:       copyEmotionCounts(m.emotionCounts),
		clarityScores:       append([]float64(nil), m.clarityScores...),
		clarityAvg:          m.clarityAvg,
		language:            m.language,
		languageHistory:     append([]string(nil), m.languageHistory...),
		repetitionCount:     m.repetitionCount,
		previousTranscripts: append([]string(nil), m.previousTranscripts...),

		lastUpdated: m.lastUpdated,
	}
}

func (s *snapshot) restoreTo(m *Memory) {
	m.incidentType = s.incidentType
	m.location = s.location
	m.urgencyScore = s.urgencyScore
	m.urgencyLevel = s.urgencyLevel

	m.callerName = s.callerName
	m.callerContact = s.callerContact
	m.peopleAffected = copyIntPtr(s.peopleAffected)
	m.immediateDanger = s.immediateDanger

	m.nameConfidence = s.nameConfidence
	m.locationConfidence = s.locationConfidence
	m.incidentConfidence = s.incidentConfidence
	m.peopleConfidence = s.peopleConfidence
	m.dangerConfidence = s.dangerConfidence

	m.nameSource = s.nameSource
	m.locationSource = s.locationSource
	m.incidentSource = s.incidentSource
	m.peopleSource = s.peopleSource
	m.dangerSource = s.dangerSource

	m.nameUpdated = copyTimePtr(s.nameUpdated)
	m.locationUpdated = copyTimePtr(s.locationUpdated)
	m.incidentUpdated = copyTimePtr(s.incidentUpdated)
	m.peopleUpdated = copyTimePtr(s.peopleUpdated)
	m.dangerUpdated = copyTimePtr(s.dangerUpdated)

	m.emotionHistory = append([]core.Emotion(nil), s.emotionHistory...)
	m.emotionCounts = copyEmotionCounts(s.emotionCounts)
	m.clarityScores = append([]float64(nil), s.clarityScores...)
	m.clarityAvg = s.clarityAvg
	m.language = s.language
	m.languageHistory = append([]string(nil), s.languageHistory...)
	m.repetitionCount = s.repetitionCount
	m.previousTranscripts = append([]string(nil), s.previousTranscripts...)

	m.lastUpdated = s.lastUpdated
}

func copyIntPtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyTimePtr(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyEmotionCounts(in map[core.Emotion]int) map[core.Emotion]int {
	out := make(map[core.Emotion]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
