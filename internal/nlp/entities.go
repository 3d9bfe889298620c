package nlp

import (
	"regexp"
	"strings"

	"github.com/shaswatnaman/Nirnay-112/internal/core"
)

// Extraction is the result of running the rule-based extractor over one
// transcript. A nil Observation means the field was not found.
type Extraction struct {
	Name         *core.Observation
	Location     *core.Observation
	IncidentType *core.Observation
	Urgency      *core.Observation
}

type weightedKeyword struct {
	keyword string
	weight  float64
}

// Location indicators, ordered so landmark and city names win over generic
// prepositions when both appear.
var locationKeywords = []weightedKeyword{
	// Hindi indicators
	{"में", 0.6}, {"पर", 0.6}, {"के पास", 0.7}, {"के पीछे", 0.7},
	{"के सामने", 0.7}, {"के बगल", 0.7},
	{"रोड", 0.8}, {"सड़क", 0.8}, {"मार्ग", 0.8}, {"गली", 0.7},
	{"चौक", 0.7}, {"चौराहा", 0.7},
	{"होटल", 0.6}, {"मंदिर", 0.6}, {"स्कूल", 0.6}, {"अस्पताल", 0.6},
	{"मार्केट", 0.6}, {"बाजार", 0.6}, {"पार्क", 0.6},
	{"स्टेशन", 0.7}, {"बस स्टॉप", 0.7}, {"मेट्रो", 0.7},
	// English indicators
	{"at", 0.6}, {"near", 0.7}, {"beside", 0.7}, {"behind", 0.7},
	{"in front of", 0.7},
	{"road", 0.8}, {"street", 0.8}, {"lane", 0.7}, {"avenue", 0.8},
	{"crossing", 0.7}, {"square", 0.7},
	{"hotel", 0.6}, {"temple", 0.6}, {"school", 0.6}, {"hospital", 0.6},
	{"market", 0.6}, {"park", 0.6},
	{"station", 0.7}, {"bus stop", 0.7}, {"metro", 0.7},
	// City names
	{"दिल्ली", 0.9}, {"new delhi", 0.9}, {"नई दिल्ली", 0.9},
	{"मुंबई", 0.9}, {"बंगलौर", 0.9}, {"चेन्नई", 0.9}, {"कोलकाता", 0.9},
	{"पुणे", 0.9}, {"हैदराबाद", 0.9}, {"जयपुर", 0.9}, {"लखनऊ", 0.9},
	{"कानपुर", 0.9},
	{"railway station", 0.8}, {"रेलवे स्टेशन", 0.8},
}

var nameIndicators = []string{
	"मेरा नाम", "नाम है", "मैं",
	"my name is", "name is", "i am", "i'm", "call me",
	"मुझे कहते हैं", "this is",
}

var commonNames = []string{
	"राम", "श्याम", "मोहन", "राज", "अमित", "राहुल",
	"प्रिया", "अनु", "सीता", "गीता", "राधा",
	"ram", "shyam", "mohan", "raj", "amit", "rahul",
	"priya", "anu", "sita", "geeta", "radha",
}

var incidentPatterns = map[string][]string{
	"accident": {
		"दुर्घटना", "हादसा", "crash", "accident", "collision",
		"टक्कर", "गिर गया", "गिर गई",
	},
	"crime": {
		"चोरी", "डकैती", "theft", "robbery", "crime",
		"हत्या", "murder", "assault", "मारपीट",
	},
	"medical": {
		"दर्द", "pain", "बुखार", "fever", "heart", "दिल",
		"सांस", "breath", "unconscious", "बेहोश", "injured", "घायल",
	},
	"fire": {
		"आग", "fire", "जलन", "burn", "धुआं", "smoke",
	},
}

var incidentPatternOrder = []string{"accident", "crime", "medical", "fire"}

var urgencyLevelKeywords = map[core.UrgencyLevel][]weightedKeyword{
	core.UrgencyCritical: {
		{"तुरंत", 1.0}, {"अभी", 1.0}, {"जल्दी", 0.9}, {"तत्काल", 1.0},
		{"बहुत जरूरी", 1.0}, {"जान का खतरा", 1.0}, {"मर रहा", 0.9},
		{"बेहोश", 0.8}, {"खून बह रहा", 0.9}, {"सांस नहीं", 0.9},
		{"immediately", 1.0}, {"now", 1.0}, {"urgent", 1.0},
		{"critical", 1.0}, {"emergency", 1.0}, {"dying", 0.9},
		{"unconscious", 0.8}, {"bleeding", 0.9}, {"can't breathe", 0.9},
		{"life threatening", 1.0},
	},
	core.UrgencyHigh: {
		{"शीघ्र", 0.8}, {"जरूरी", 0.9}, {"जल्द", 0.8},
		{"soon", 0.8}, {"quickly", 0.8}, {"asap", 0.9},
		{"fast", 0.7}, {"quick", 0.7},
	},
	core.UrgencyMedium: {
		{"जल्द ही", 0.6}, {"समय पर", 0.5}, {"जरूरत", 0.5},
		{"when possible", 0.5}, {"need", 0.5}, {"required", 0.5},
	},
	core.UrgencyLow: {
		{"बाद में", 0.7}, {"जब भी", 0.6}, {"कोई जल्दी नहीं", 0.8},
		{"later", 0.7}, {"whenever", 0.6}, {"no hurry", 0.8},
		{"not urgent", 0.8},
	},
}

var urgencyLevelOrder = []core.UrgencyLevel{
	core.UrgencyCritical, core.UrgencyHigh, core.UrgencyMedium, core.UrgencyLow,
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	stopCapture  = map[string]struct{}{
		"is": {}, "am": {}, "are": {}, "was": {}, "were": {},
		"the": {}, "a": {}, "an": {},
	}
	pronouns = map[string]struct{}{
		"मैं": {}, "तुम": {}, "वह": {}, "यह": {},
		"i": {}, "you": {}, "he": {}, "she": {}, "it": {},
	}
)

func normalizeText(text string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(strings.ToLower(text), " "))
}

// ExtractName pulls a caller name out of free speech. Explicit indicators
// ("मेरा नाम X", "my name is X") score 0.9, known common names 0.7, and a
// plausible standalone word 0.5.
func ExtractName(text string) (string, float64) {
	if text == "" {
		return "", 0
	}
	normalized := normalizeText(text)

	for _, indicator := range nameIndicators {
		idx := strings.Index(normalized, indicator)
		if idx < 0 {
			continue
		}
		rest := strings.TrimSpace(normalized[idx+len(indicator):])
		words := strings.Fields(rest)
		if len(words) == 0 {
			continue
		}
		candidate := strings.Trim(words[0], ".,!?")
		if len(candidate) > 1 {
			if _, skip := stopCapture[candidate]; !skip {
				return candidate, 0.9
			}
		}
	}

	for _, known := range commonNames {
		if containsWord(normalized, known) {
			return titleCase(known), 0.7
		}
	}

	for _, word := range strings.Fields(normalized) {
		n := len([]rune(word))
		if n < 2 || n > 15 || !isAlpha(word) {
			continue
		}
		if _, skip := pronouns[word]; skip {
			continue
		}
		return titleCase(word), 0.5
	}

	return "", 0
}

// ExtractLocation pulls a place out of free speech using weighted location
// indicators and known city names.
func ExtractLocation(text string) (string, float64) {
	if text == "" {
		return "", 0
	}
	normalized := normalizeText(text)

	for _, wk := range locationKeywords {
		idx := strings.Index(normalized, wk.keyword+" ")
		if idx < 0 {
			continue
		}
		rest := strings.TrimSpace(normalized[idx+len(wk.keyword):])
		candidate := firstPhrase(rest)
		if len(candidate) > 2 {
			if _, skip := stopCapture[candidate]; !skip {
				return candidate, wk.weight
			}
		}
	}

	// city names standing on their own, no trailing phrase needed
	for _, wk := range locationKeywords {
		if wk.weight >= 0.8 && strings.Contains(normalized, wk.keyword) {
			return titleCase(wk.keyword), wk.weight
		}
	}

	return "", 0
}

// ExtractIncidentType scores the coarse incident pattern families
// (accident/crime/medical/fire). Confidence grows with the number of
// matching patterns: 0.5 base plus 0.2 per match, capped at 1.0.
func ExtractIncidentType(text string) (string, float64) {
	if text == "" {
		return "", 0
	}
	normalized := normalizeText(text)

	bestType := ""
	bestConfidence := 0.0
	for _, incType := range incidentPatternOrder {
		matches := 0
		for _, pattern := range incidentPatterns[incType] {
			if strings.Contains(normalized, pattern) {
				matches++
			}
		}
		if matches == 0 {
			continue
		}
		confidence := 0.5 + float64(matches)*0.2
		if confidence > 1.0 {
			confidence = 1.0
		}
		if confidence > bestConfidence {
			bestConfidence = confidence
			bestType = incType
		}
	}

	return bestType, bestConfidence
}

// ExtractUrgency scores urgency indicator keywords per level; the confidence
// is the average keyword weight boosted by 0.1 per match. Defaults to medium
// with low confidence when nothing fires.
func ExtractUrgency(text string) (core.UrgencyLevel, float64) {
	if text == "" {
		return "", 0
	}
	normalized := normalizeText(text)

	var best core.UrgencyLevel
	bestConfidence := 0.0
	for _, level := range urgencyLevelOrder {
		total := 0.0
		matches := 0
		for _, wk := range urgencyLevelKeywords[level] {
			if strings.Contains(normalized, wk.keyword) {
				total += wk.weight
				matches++
			}
		}
		if matches == 0 {
			continue
		}
		confidence := total/float64(matches) + float64(matches)*0.1
		if confidence > 1.0 {
			confidence = 1.0
		}
		if confidence > bestConfidence {
			bestConfidence = confidence
			best = level
		}
	}

	if best == "" {
		return core.UrgencyMedium, 0.3
	}
	return best, bestConfidence
}

// ExtractEntities runs all extractors over one transcript and returns the
// findings as confidence-tagged observations.
func ExtractEntities(text string) Extraction {
	var out Extraction
	if strings.TrimSpace(text) == "" {
		return out
	}

	if name, conf := ExtractName(text); name != "" {
		out.Name = &core.Observation{Value: name, Confidence: conf, Source: core.SourceLocalNLP}
	}
	if location, conf := ExtractLocation(text); location != "" {
		out.Location = &core.Observation{Value: location, Confidence: conf, Source: core.SourceLocalNLP}
	}
	if incident, conf := ExtractIncidentType(text); incident != "" {
		out.IncidentType = &core.Observation{Value: incident, Confidence: conf, Source: core.SourceLocalNLP}
	}
	if urgency, conf := ExtractUrgency(text); urgency != "" {
		out.Urgency = &core.Observation{Value: string(urgency), Confidence: conf, Source: core.SourceLocalNLP}
	}
	return out
}

func firstPhrase(s string) string {
	for i, r := range s {
		switch r {
		case ',', '.', '!', '?':
			return strings.TrimSpace(s[:i])
		}
	}
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}
	// keep at most two words so prepositions don't swallow the sentence
	if len(words) > 2 {
		words = words[:2]
	}
	return strings.Join(words, " ")
}

func titleCase(s string) string {
	out := strings.Fields(s)
	for i, w := range out {
		r := []rune(w)
		if r[0] >= 'a' && r[0] <= 'z' {
			r[0] = r[0] - 'a' + 'A'
		}
		out[i] = string(r)
	}
	return strings.Join(out, " ")
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !isLetter(r) {
			return false
		}
	}
	return s != ""
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
		(r >= 0x0900 && r <= 0x097F)
}

func containsWord(text, word string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], word)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(word)
		beforeOK := start == 0 || !isLetter(lastRuneBefore(text, start))
		afterOK := end == len(text) || !isLetter(firstRuneAt(text, end))
		if beforeOK && afterOK {
			return true
		}
		idx = start + len(word)
	}
}

func lastRuneBefore(s string, i int) rune {
	r := rune(0)
	for _, c := range s[:i] {
		r = c
	}
	return r
}

func firstRuneAt(s string, i int) rune {
	for _, c := range s[i:] {
		return c
	}
	return 0
}
