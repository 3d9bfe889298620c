package core

// IntentStatus tags an IntentResult.
type IntentStatus int

const (
	IntentOK IntentStatus = iota
	IntentUnavailable
	IntentError
)

// IntentResult is the typed outcome of an intent prediction. A classifier
// that is not loaded reports Unavailable rather than failing; the
// orchestrator handles each branch explicitly instead of catching a generic
// failure.
type IntentResult struct {
	Status     IntentStatus
	Label      string
	Confidence float64
	Err        error
}

// IntentClassifier is the only contract the decision pipeline has with any
// intent model, local or remote.
type IntentClassifier interface {
	Predict(text string) IntentResult
}
