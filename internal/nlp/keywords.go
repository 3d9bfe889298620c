// Package nlp holds the rule-based language layer: keyword corpora for the
// Indian emergency context (Hindi, Hinglish, English), incident
// classification, urgency and panic signal detection, and entity extraction.
// Everything here is a pure function over text.
package nlp

import (
	"strings"

	"github.com/shaswatnaman/Nirnay-112/internal/core"
)

var medicalKeywords = []string{
	// Hindi / Hinglish
	"saans nahi aa rahi", "saans nahi aa raha", "breathing problem", "breathing nahi ho rahi",
	"behosh ho gaya", "behosh ho gayi", "behosh", "unconscious",
	"heart problem", "dil ki problem", "heart attack lag raha hai", "heart attack",
	"chest pain", "chhati mein dard", "chest mein dard",
	"khoon nikal raha hai", "khoon beh raha hai", "bleeding ho rahi hai", "bleeding",
	"chakkar aa rahe hain", "chakkar aa raha hai", "dizziness", "dizzy",
	"sugar low", "sugar high", "sugar kam hai", "sugar zyada hai",
	"bp badh gaya", "bp kam hai", "bp high", "bp low", "blood pressure",
	"fit aa gaya", "seizure", "fits",
	"ulti ho rahi hai", "vomiting", "vomit",
	"bukhar bahut zyada", "fever", "high fever",
	"pregnant pain", "delivery ka pain", "delivery", "pregnancy pain",
	"baccha paida hone wala hai",
	"dog bite", "dog_bite", "dogbite", "कुत्ते ने काट", "कुत्ता काट", "कुत्ते काट", "कुत्ता ने काट",
	"कुत्ते", "कुत्ता", "काट लिया", "काटा", "काट गया",
	"चोट", "injury", "injured", "hurt",
	// English
	"severe pain", "medical emergency", "critical condition",
	"patient serious", "emergency medical", "ambulance needed", "hospital needed",
}

var roadAccidentKeywords = []string{
	"accident ho gaya", "accident", "gaadi takra gayi", "car accident",
	"bike slip ho gayi", "bike accident", "motorcycle accident",
	"truck ne maar diya", "truck accident", "truck hit",
	"road pe gir gaya", "road pe accident", "highway accident",
	"flyover pe accident", "flyover accident",
	"footpath pe hit ho gaya", "footpath accident",
	"helmet nahi tha", "no helmet",
	"khoon beh raha hai", "bleeding from accident",
	"road accident", "collision", "hit and run", "injured badly",
	"car crash", "vehicle accident", "traffic accident",
}

var fireKeywords = []string{
	"aag lag gayi", "aag", "fire lag gaya", "fire",
	"gas cylinder blast", "cylinder phat gaya", "cylinder blast", "gas blast",
	"short circuit", "bijli se aag", "electric fire",
	"kitchen fire", "kitchen mein aag",
	"factory mein aag", "factory fire",
	"smoke aa raha hai", "dhuan bhar gaya", "smoke",
	"log phanse hue hain", "people trapped", "trapped in fire",
	"fire outbreak", "building on fire", "explosion", "smoke everywhere",
	"fire emergency", "burning",
}

var crimeKeywords = []string{
	"chori ho gayi", "chori", "theft", "robbery",
	"loot liya", "loot",
	"chain snatching", "chain chheen li", "chain snatch",
	"phone chheen liya", "phone snatch", "mobile chheen liya",
	"maar peet ho rahi hai", "maar peet", "fighting",
	"ladayi ho rahi hai", "fight", "violence",
	"gunda log", "gunda", "goons",
	"dhamki de raha hai", "threat", "threatening",
	"assault", "attack",
	"stabbing", "knife nikala", "knife", "chaku",
	"gun dikhayi", "gun", "weapon",
	"crime", "criminal", "weapon involved",
}

var domesticKeywords = []string{
	"ghar mein jhagda", "domestic fight", "family fight",
	"husband maar raha hai", "pati maar raha hai", "husband beating",
	"wife ko maar raha", "wife beating",
	"sasural wale maar rahe", "in-laws violence",
	"abuse ho raha hai", "abuse", "domestic abuse",
	"domestic violence", "family violence",
	"mental torture", "mental abuse",
	"children crying", "bachche danger mein hain", "children in danger",
	"family emergency", "child abuse",
}

var naturalDisasterKeywords = []string{
	"flood aa gaya", "flood", "paani bhar gaya", "water flooding",
	"ghar doob gaya", "house flooded", "drowning",
	"bijli gir gayi", "lightning", "thunder",
	"landslide", "pahaad se pathar gir gaya", "rockslide",
	"earthquake", "bhookamp",
	"cyclone", "tufaan", "storm",
	"baarish bahut zyada", "heavy rain", "rainfall",
	"heat stroke", "loo lag gayi", "heat wave",
	"natural disaster",
}

var industrialKeywords = []string{
	"factory accident", "factory mein accident",
	"machine mein haath aa gaya", "machine accident", "machine injury",
	"chemical leak", "chemical spill",
	"gas leak", "gas leak ho gaya",
	"mazdoor phans gaya", "worker trapped",
	"construction site accident", "construction accident",
	"building gir gayi", "building collapse",
	"industrial accident", "workplace accident",
}

var publicTransportKeywords = []string{
	"train accident", "train mein accident",
	"platform pe gir gaya", "platform accident",
	"metro mein problem", "metro accident", "metro issue",
	"bus accident", "bus mein accident",
	"overcrowding", "bheed zyada hai",
	"stampede", "bheed mein phas gaye",
	"public transport",
}

var mentalHealthKeywords = []string{
	"suicide kar lega", "suicide", "jaan dene ki baat", "suicidal",
	"depression mein hai", "depression", "depressed",
	"mentally disturbed", "mental problem",
	"pagal ho raha hai", "mental breakdown",
	"kuchh bhi bol raha hai", "confused", "confusion",
	"ro raha hai", "crying continuously",
	"dar lag raha hai", "scared",
	"mental health", "distress",
}

var urgencyKeywords = []string{
	"jaldi bhejo", "jaldi", "quickly",
	"abhi", "immediately", "right now",
	"please help", "help", "madad", "sahayata",
	"mar jayega", "mar jayegi", "will die", "dying",
	"bachao", "save", "rescue",
	"emergency", "emergency hai", "urgent",
	"kuchh karo", "do something", "help karo",
	"fast fast", "jaldi jaldi",
	"please sir", "please madam", "please",
	"critical", "immediate", "help needed",
}

var humanRequestKeywords = []string{
	"human", "person", "operator", "dispatcher",
	"मानव", "व्यक्ति", "ऑपरेटर",
	"talk to human", "speak to person", "human help",
	"मानव से बात", "व्यक्ति से बात",
}

var dangerKeywords = []string{
	"fire spreading", "weapon", "bleeding", "trapped",
	"आग फैल", "हथियार", "खून", "फंसा",
}

var dogBiteKeywords = []string{
	"dog bite", "dog_bite", "dogbite",
	"कुत्ते ने काट", "कुत्ता काट", "कुत्ते काट", "कुत्ता ने काट",
	"कुत्ते", "कुत्ता", "bite", "काट लिया", "काटा", "काट गया",
}

var categoryKeywords = map[core.Category][]string{
	core.CategoryMedical:         medicalKeywords,
	core.CategoryRoadAccident:    roadAccidentKeywords,
	core.CategoryFire:            fireKeywords,
	core.CategoryCrime:           crimeKeywords,
	core.CategoryDomestic:        domesticKeywords,
	core.CategoryNaturalDisaster: naturalDisasterKeywords,
	core.CategoryIndustrial:      industrialKeywords,
	core.CategoryPublicTransport: publicTransportKeywords,
	core.CategoryMentalHealth:    mentalHealthKeywords,
}

// classification order keeps ties deterministic when two categories score the
// same number of keyword hits.
var categoryOrder = []core.Category{
	core.CategoryMedical,
	core.CategoryRoadAccident,
	core.CategoryFire,
	core.CategoryCrime,
	core.CategoryDomestic,
	core.CategoryNaturalDisaster,
	core.CategoryIndustrial,
	core.CategoryPublicTransport,
	core.CategoryMentalHealth,
}

// ClassifyIncident maps free text onto the category with the highest keyword
// hit count. Returns CategoryUnknown if nothing matches.
func ClassifyIncident(text string) core.Category {
	if text == "" {
		return core.CategoryUnknown
	}

	lower := strings.ToLower(text)
	best := core.CategoryUnknown
	bestScore := 0

	for _, category := range categoryOrder {
		score := 0
		for _, kw := range categoryKeywords[category] {
			if strings.Contains(lower, kw) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			best = category
		}
	}

	return best
}

// DetectUrgencySignals reports whether the text carries urgency or panic
// keywords ("jaldi", "abhi", "bachao", "emergency", ...).
func DetectUrgencySignals(text string) bool {
	return containsAny(text, urgencyKeywords)
}

// DetectHumanRequest reports whether the caller explicitly asks for a human
// operator.
func DetectHumanRequest(text string) bool {
	return containsAny(text, humanRequestKeywords)
}

// DetectImmediateDanger scans free text for the danger markers that flip the
// immediate-danger flag (fire spreading, weapon, bleeding, trapped).
func DetectImmediateDanger(text string) bool {
	return containsAny(text, dangerKeywords)
}

// DetectDogBite reports whether the transcript matches the dog-bite lexicon
// used to down-weight medical urgency.
func DetectDogBite(text string) bool {
	return containsAny(text, dogBiteKeywords)
}

func containsAny(text string, keywords []string) bool {
	if text == "" {
		return false
	}
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
