package engine

import (
	"strings"

	"github.com/shaswatnaman/Nirnay-112/internal/core"
	"github.com/shaswatnaman/Nirnay-112/internal/nlp"
)

// Urgency formula weights. The weighted components sum past 1.0 by design
// so a severe incident plus high stress can reach critical.
const (
	weightIntent         = 0.5
	weightStress         = 0.25
	weightRepetition     = 0.15
	weightClarity        = 0.05
	weightTimePressure   = 0.05
	weightUrgencySignals = 0.1
)

// Level thresholds.
const (
	thresholdCritical = 0.75
	thresholdHigh     = 0.55
	thresholdMedium   = 0.35
)

// intentUrgencyMap carries the deterministic per-category severity weights.
var intentUrgencyMap = map[string]float64{
	"medical_emergency":   0.9,
	"fire":                0.95,
	"road_accident":       0.85,
	"crime":               0.8,
	"domestic_emergency":  0.75,
	"natural_disaster":    0.9,
	"industrial_accident": 0.85,
	"public_transport":    0.85,
	"mental_health":       0.8,
	"police":              0.8, // legacy label, kept for older perception payloads
	"non_emergency":       0.2,
	"unclear":             0.5,
}

// UrgencyInput carries everything the scoring formula reads.
type UrgencyInput struct {
	Intent             string
	StressScore        float64
	RepetitionCount    int
	ClarityAvg         float64
	TimeElapsedSeconds float64
	// Transcript is scanned for urgency keywords and the dog-bite
	// severity override; pass the accumulated input when available.
	Transcript string
}

// ScoreUrgency computes the deterministic urgency score and level with a
// full component breakdown.
func ScoreUrgency(in UrgencyInput) core.Urgency {
	intentWeight, ok := intentUrgencyMap[normalizeIntentLabel(in.Intent)]
	if !ok {
		intentWeight, ok = intentUrgencyMap[in.Intent]
		if !ok {
			intentWeight = 0.5
		}
	}

	// dog bites need medical attention but are not life threatening; cap
	// their severity below the critical threshold
	if intentWeight >= 0.8 && nlp.DetectDogBite(in.Transcript) {
		intentWeight = 0.7
	}
	intentScore := weightIntent * intentWeight

	stressRaw := clampUnit(in.StressScore)
	stressScore := weightStress * stressRaw

	repetitionWeight := float64(in.RepetitionCount) / 5.0
	if repetitionWeight > 1 {
		repetitionWeight = 1
	}
	repetitionScore := weightRepetition * repetitionWeight

	clarityScore := weightClarity * (1.0 - in.ClarityAvg)

	signalsDetected := in.Transcript != "" && nlp.DetectUrgencySignals(in.Transcript)
	signalBoost := 0.0
	if signalsDetected {
		signalBoost = weightUrgencySignals
	}

	timeWeight := in.TimeElapsedSeconds / 300.0
	if timeWeight > 1 {
		timeWeight = 1
	}
	timeScore := weightTimePressure * timeWeight

	total := clampUnit(intentScore + stressScore + repetitionScore + clarityScore + timeScore + signalBoost)

	return core.Urgency{
		Score: total,
		Level: LevelForScore(total),
		Breakdown: core.UrgencyBreakdown{
			IntentScore:        intentScore,
			StressScore:        stressScore,
			StressScoreRaw:     stressRaw,
			RepetitionScore:    repetitionScore,
			ClarityScore:       clarityScore,
			TimeScore:          timeScore,
			UrgencySignalBoost: signalBoost,
			UrgencySignals:     signalsDetected,
			Total:              total,
		},
	}
}

// LevelForScore maps a score onto the discrete urgency level.
func LevelForScore(score float64) core.UrgencyLevel {
	switch {
	case score >= thresholdCritical:
		return core.UrgencyCritical
	case score >= thresholdHigh:
		return core.UrgencyHigh
	case score >= thresholdMedium:
		return core.UrgencyMedium
	default:
		return core.UrgencyLow
	}
}

func normalizeIntentLabel(intent string) string {
	return strings.ReplaceAll(strings.ToLower(intent), "_emergency", "")
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
