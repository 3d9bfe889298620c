package core

const (
	AppName       = "Nirnay-112"
	AppUserAgent  = "Nirnay-112/0.1"
	RepositoryURL = "https://github.com/shaswatnaman/Nirnay-112"
	AppVersion    = "0.1.0"
)

// Category is a canonical incident classification. Raw perception strings are
// normalized into one of these before they ever compete in a confidence merge.
type Category string

const (
	CategoryMedical         Category = "medical_emergency"
	CategoryRoadAccident    Category = "road_accident"
	CategoryFire            Category = "fire"
	CategoryCrime           Category = "crime"
	CategoryDomestic        Category = "domestic_emergency"
	CategoryNaturalDisaster Category = "natural_disaster"
	CategoryIndustrial      Category = "industrial_accident"
	CategoryPublicTransport Category = "public_transport"
	CategoryMentalHealth    Category = "mental_health"
	CategoryUnknown         Category = "unknown"
)

// UrgencyLevel is the discrete level derived from the urgency score.
type UrgencyLevel string

const (
	UrgencyCritical UrgencyLevel = "critical"
	UrgencyHigh     UrgencyLevel = "high"
	UrgencyMedium   UrgencyLevel = "medium"
	UrgencyLow      UrgencyLevel = "low"
)

// Emotion is a perception-layer label. It is never trusted for scoring, only
// tallied for the dispatcher view and the panic-persistence escalation rule.
type Emotion string

const (
	EmotionPanic    Emotion = "panic"
	EmotionStressed Emotion = "stressed"
	EmotionCalm     Emotion = "calm"
	EmotionAngry    Emotion = "angry"
)

// KnownEmotions lists the labels the emotion tally tracks.
var KnownEmotions = []Emotion{EmotionPanic, EmotionStressed, EmotionCalm, EmotionAngry}

// Intent constants shared by the classifier and the merge layer.
const (
	IntentUnclear      = "unclear"
	IntentUncertain    = "uncertain"
	IntentNonEmergency = "non_emergency"
)

// Source tags recorded alongside every accepted field value.
const (
	SourcePerception = "perception"
	SourceLocalNLP   = "local_nlp"
	SourceLocalML    = "local_ml"
	SourceFallback   = "fallback"
)
