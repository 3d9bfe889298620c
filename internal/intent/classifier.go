// Package intent provides the local intent classifier used as a perceptual
// signal source. The classifier scores weighted keyword matches per label
// and reports a probability-style confidence, so callers treat it the same
// way they would an external model endpoint.
package intent

import (
	"regexp"
	"strings"

	"github.com/shaswatnaman/Nirnay-112/internal/core"
)

// Labels the classifier can emit.
const (
	LabelFire            = "fire"
	LabelMedical         = "medical"
	LabelCrime           = "crime"
	LabelAccident        = "accident"
	LabelNaturalDisaster = "natural_disaster"
	LabelOther           = "other"
)

type weightedKeyword struct {
	keyword string
	weight  float64
}

var labelKeywords = map[string][]weightedKeyword{
	LabelAccident: {
		{"दुर्घटना", 1.0}, {"हादसा", 1.0}, {"टक्कर", 0.9},
		{"गाड़ी", 0.8}, {"कार", 0.8}, {"बस", 0.7}, {"ट्रक", 0.7},
		{"गिर गया", 0.8}, {"गिर गई", 0.8}, {"चोट", 0.6},
		{"सड़क", 0.6}, {"हाइवे", 0.6},
		{"accident", 1.0}, {"crash", 0.9}, {"collision", 0.9},
		{"vehicle", 0.8}, {"car", 0.8}, {"truck", 0.7},
		{"motorcycle", 0.7}, {"bike slip", 0.8}, {"hit and run", 0.9},
		{"highway", 0.6}, {"helmet", 0.5},
	},
	LabelCrime: {
		{"अपराध", 1.0}, {"चोरी", 1.0}, {"डकैती", 1.0}, {"हत्या", 1.0},
		{"मारपीट", 0.9}, {"छीन", 0.9}, {"लूट", 0.9}, {"धमकी", 0.8},
		{"हमला", 0.9}, {"बलात्कार", 1.0}, {"पुलिस", 0.6},
		{"crime", 1.0}, {"theft", 1.0}, {"robbery", 1.0}, {"murder", 1.0},
		{"assault", 0.9}, {"snatch", 0.9}, {"stolen", 0.9}, {"stole", 0.9},
		{"loot", 0.9}, {"threat", 0.8}, {"weapon", 0.9}, {"knife", 0.8},
		{"gun", 0.8}, {"police", 0.6},
	},
	LabelMedical: {
		{"दर्द", 0.9}, {"बेहोश", 0.9}, {"सांस", 0.8}, {"बुखार", 0.8},
		{"दिल का दौरा", 1.0}, {"दिल", 0.8}, {"एम्बुलेंस", 0.9},
		{"घायल", 0.8}, {"खून बह रहा", 0.9}, {"अस्पताल", 0.7},
		{"डॉक्टर", 0.7}, {"कुत्ते ने काट", 0.9}, {"कुत्ता काट", 0.9},
		{"heart attack", 1.0}, {"chest pain", 0.95}, {"pain", 0.9},
		{"unconscious", 0.9}, {"breathing", 0.9}, {"breath", 0.8},
		{"bleeding", 0.9}, {"ambulance", 0.9}, {"injured", 0.8},
		{"fever", 0.8}, {"seizure", 0.9}, {"stroke", 0.9},
		{"hospital", 0.7}, {"doctor", 0.7}, {"dog bite", 0.9},
	},
	LabelFire: {
		{"आग", 1.0}, {"धुआं", 0.8}, {"जल रहा", 0.9},
		{"सिलेंडर", 0.8}, {"शॉर्ट सर्किट", 0.8},
		{"fire", 1.0}, {"smoke", 0.8}, {"burning", 0.9},
		{"cylinder blast", 0.9}, {"gas leak", 0.8}, {"explosion", 0.9},
		{"short circuit", 0.8}, {"aag", 1.0},
	},
	LabelNaturalDisaster: {
		{"बाढ़", 1.0}, {"भूकंप", 1.0}, {"तूफान", 0.9}, {"बिजली गिर", 0.9},
		{"flood", 1.0}, {"earthquake", 1.0}, {"cyclone", 0.9},
		{"landslide", 0.9}, {"storm", 0.8}, {"drowning", 0.9},
		{"paani bhar", 0.8}, {"tufaan", 0.9}, {"bhookamp", 1.0},
	},
	LabelOther: {
		{"जानकारी", 0.6}, {"सूचना", 0.6}, {"रास्ता", 0.6}, {"पता", 0.6},
		{"शिकायत", 0.7}, {"सवाल", 0.5},
		{"information", 0.6}, {"direction", 0.6}, {"address", 0.6},
		{"complaint", 0.7}, {"question", 0.5}, {"query", 0.5},
	},
}

var labelOrder = []string{
	LabelFire, LabelMedical, LabelCrime, LabelAccident,
	LabelNaturalDisaster, LabelOther,
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	splitRe      = regexp.MustCompile(`[,\s\.!?।]+`)
)

// Classifier scores transcripts against per-label keyword corpora. The zero
// value is not usable; construct with New.
type Classifier struct {
	keywords map[string][]weightedKeyword
}

func New() *Classifier {
	return &Classifier{keywords: labelKeywords}
}

// Predict implements core.IntentClassifier. It never returns
// IntentUnavailable itself; that status is reserved for remote or disabled
// classifier wiring.
func (c *Classifier) Predict(text string) core.IntentResult {
	normalized := normalize(text)
	if normalized == "" {
		return core.IntentResult{Status: core.IntentOK, Label: LabelOther, Confidence: 0}
	}

	phrases := tokenPhrases(normalized)
	scores := make(map[string]float64, len(labelOrder))
	total := 0.0
	for _, label := range labelOrder {
		score := c.scoreLabel(normalized, phrases, label)
		scores[label] = score
		total += score
	}

	best := LabelOther
	bestScore := 0.0
	for _, label := range labelOrder {
		if scores[label] > bestScore {
			bestScore = scores[label]
			best = label
		}
	}

	if bestScore == 0 {
		return core.IntentResult{Status: core.IntentOK, Label: LabelOther, Confidence: 0}
	}

	// probability-style confidence: share of the total mass, so competing
	// labels drag the winner down the way model probabilities would
	confidence := bestScore / total
	if confidence > 1 {
		confidence = 1
	}
	return core.IntentResult{Status: core.IntentOK, Label: best, Confidence: confidence}
}

func (c *Classifier) scoreLabel(text string, phrases []string, label string) float64 {
	score := 0.0
	matches := 0
	for _, wk := range c.keywords[label] {
		if strings.Contains(wk.keyword, " ") {
			// multi-word phrase, match against the raw transcript
			if strings.Contains(text, wk.keyword) {
				score += wk.weight
				matches++
			}
			continue
		}
		for _, phrase := range phrases {
			if phrase == wk.keyword {
				score += wk.weight
				matches++
				break
			}
		}
	}
	if matches > 1 {
		boost := float64(matches) * 0.1
		if boost > 0.3 {
			boost = 0.3
		}
		score += boost
	}
	return score
}

func normalize(text string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(strings.ToLower(text), " "))
}

// tokenPhrases splits a transcript into single tokens; multi-word corpus
// entries are matched by substring instead.
func tokenPhrases(text string) []string {
	parts := splitRe.Split(text, -1)
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
