package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shaswatnaman/Nirnay-112/internal/core"
)

var incidentDescriptions = map[core.Category]string{
	core.CategoryFire:            "Fire emergency detected",
	core.CategoryMedical:         "Medical emergency detected",
	core.CategoryRoadAccident:    "Road accident reported",
	core.CategoryCrime:           "Crime incident reported",
	core.CategoryDomestic:        "Domestic emergency reported",
	core.CategoryNaturalDisaster: "Natural disaster reported",
}

// Explain produces the human-readable account of a decision. It reads the
// same signals the decision used and never changes the decision itself.
func Explain(mem *Memory, urgencyScore float64, escalation core.Escalation) core.Explanation {
	var factors []string

	if incident := mem.IncidentType(); incident != "" && incident != core.CategoryUnknown {
		factors = append(factors, intentFactor(incident, mem.IncidentConfidence()))
	}
	if f := stressFactor(mem); f != "" {
		factors = append(factors, f)
	}
	if f := repetitionFactor(mem.RepetitionCount()); f != "" {
		factors = append(factors, f)
	}
	if f := clarityFactor(mem.ClarityAvg()); f != "" {
		factors = append(factors, f)
	}
	if f := urgencySignalsFactor(mem); f != "" {
		factors = append(factors, f)
	}
	missing := mem.MissingFields()
	if len(missing) > 0 {
		factors = append(factors, "Missing critical information: "+strings.Join(missing, ", "))
	}

	ranked := rankFactors(factors)
	if len(ranked) > 3 {
		ranked = ranked[:3]
	}

	whyEscalated := ""
	if escalation.Required {
		whyEscalated = escalation.Reason
		if whyEscalated == "" {
			whyEscalated = "Human intervention required"
		}
	}

	var warnings []string
	if mem.ClarityAvg() < 0.4 {
		warnings = append(warnings,
			fmt.Sprintf("Low speech clarity (%.2f) - may affect understanding", mem.ClarityAvg()))
	}
	if mem.RepetitionCount() >= 3 {
		warnings = append(warnings,
			fmt.Sprintf("High repetition detected (%d times) - caller may be distressed", mem.RepetitionCount()))
	}
	if mem.IncidentConfidence() < 0.5 && mem.IncidentType() != "" && mem.IncidentType() != core.CategoryUnknown {
		warnings = append(warnings,
			fmt.Sprintf("Low confidence in incident type (%.2f)", mem.IncidentConfidence()))
	}
	if len(missing) > 0 {
		warnings = append(warnings, "Missing critical information: "+strings.Join(missing, ", "))
	}
	if mem.IncidentType() == "" || mem.IncidentType() == core.CategoryUnknown {
		warnings = append(warnings, "Incident type unclear - may need human clarification")
	}

	return core.Explanation{
		UrgencyScore:       urgencyScore,
		UrgencyLevel:       LevelForScore(urgencyScore),
		TopFactors:         ranked,
		WhyEscalated:       whyEscalated,
		ConfidenceWarnings: warnings,
	}
}

func intentFactor(incident core.Category, confidence float64) string {
	description, ok := incidentDescriptions[incident]
	if !ok {
		description = string(incident) + " incident"
	}
	if confidence < 0.6 {
		return fmt.Sprintf("%s (low confidence: %.2f)", description, confidence)
	}
	return description
}

func stressFactor(mem *Memory) string {
	recent := mem.RecentEmotions(5)
	if len(recent) == 0 {
		return ""
	}
	panicCount, stressedCount := 0, 0
	for _, e := range recent {
		switch e {
		case core.EmotionPanic:
			panicCount++
		case core.EmotionStressed:
			stressedCount++
		}
	}
	switch {
	case panicCount >= 2:
		return fmt.Sprintf("Panic detected (%d times in recent speech)", panicCount)
	case stressedCount >= 2:
		return fmt.Sprintf("Stress/distress indicators detected (%d times)", stressedCount)
	case panicCount == 1:
		return "Panic indicators present"
	case stressedCount == 1:
		return "Stress indicators present"
	}
	return ""
}

func repetitionFactor(count int) string {
	switch {
	case count == 0:
		return ""
	case count >= 5:
		return fmt.Sprintf("Very high repetition (%d times) - strong distress indicator", count)
	case count >= 3:
		return fmt.Sprintf("High repetition (%d times) - caller may be panicking", count)
	case count >= 2:
		return fmt.Sprintf("Moderate repetition (%d times) - caller may be stressed", count)
	default:
		return fmt.Sprintf("Some repetition detected (%d time)", count)
	}
}

func clarityFactor(avg float64) string {
	switch {
	case avg >= 0.7:
		return ""
	case avg < 0.3:
		return fmt.Sprintf("Very low speech clarity (%.2f) - difficult to understand", avg)
	case avg < 0.5:
		return fmt.Sprintf("Low speech clarity (%.2f) - may affect information gathering", avg)
	default:
		return fmt.Sprintf("Moderate speech clarity (%.2f)", avg)
	}
}

func urgencySignalsFactor(mem *Memory) string {
	recentPanic := 0
	for _, e := range mem.RecentEmotions(3) {
		if e == core.EmotionPanic {
			recentPanic++
		}
	}
	if recentPanic >= 2 {
		return "Urgent keywords detected (e.g., 'jaldi', 'abhi', 'emergency')"
	}
	return ""
}

// rankFactors orders factors by severity keywords so the most alarming
// signals surface first. The sort is stable so equal-priority factors keep
// their collection order.
func rankFactors(factors []string) []string {
	ranked := append([]string(nil), factors...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return factorPriority(ranked[i]) > factorPriority(ranked[j])
	})
	return ranked
}

func factorPriority(factor string) int {
	lower := strings.ToLower(factor)
	priority := 0
	switch {
	case containsAnyWord(lower, "panic", "critical", "very high", "very low", "emergency"):
		priority += 3
	case containsAnyWord(lower, "high", "low", "distress", "stressed"):
		priority += 2
	case containsAnyWord(lower, "moderate", "some", "detected"):
		priority++
	}
	if containsAnyWord(lower, "emergency", "incident", "accident") {
		priority += 2
	}
	return priority
}

func containsAnyWord(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
