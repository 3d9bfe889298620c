// Package stress implements the deterministic stress estimator. Scores come
// from explicit rules over the transcript and conversation context; the
// estimator keeps no state, so the same input always yields the same score.
package stress

import (
	"strings"
)

var hindiPanicKeywords = []string{
	"बचाओ", "मदद", "जल्दी", "तुरंत", "अभी", "हैल्प", "हेल्प",
	"डर", "भय", "घबराहट", "चिंता", "फिक्र", "परेशानी",
	"जरूरी", "अत्यंत", "बहुत", "बहुत जरूरी", "तत्काल",
	"दुख", "पीड़ा", "तकलीफ", "मुसीबत", "संकट",
	"इमरजेंसी", "आपातकाल",
	"अरे", "ओह", "हाय", "अरे बाप रे", "हे भगवान",
}

var englishPanicKeywords = []string{
	"help", "save", "quick", "urgent", "emergency", "now", "immediately",
	"scared", "afraid", "fear", "panic", "worried", "anxious", "distressed",
	"critical", "important", "asap", "right now",
	"pain", "hurt", "injured", "bleeding", "trapped", "stuck",
	"crisis", "danger", "dangerous", "unsafe",
	"oh", "oh no", "oh god", "please", "god",
}

var allPanicKeywords = append(append([]string{}, hindiPanicKeywords...), englishPanicKeywords...)

var hindiExclamations = []string{"अरे", "ओह", "हाय", "अरे बाप रे"}

// Input carries the context signals the estimator scores alongside the
// transcript itself.
type Input struct {
	Transcript          string
	RepetitionCount     int
	TimeElapsedSeconds  float64
	HasTimeElapsed      bool
	PreviousTranscripts []string
}

// Components breaks the overall score down per signal.
type Components struct {
	Repetition   float64
	PanicKeyword float64
	SpeakingRate float64
	Exclamation  float64
}

// Result is the full stress analysis for one input.
type Result struct {
	Score             float64
	Components        Components
	PanicKeywordCount int
	ExclamationCount  int
	WordCount         int
	SpeakingRate      float64
}

// Component weights. Panic keywords are the most reliable signal.
const (
	weightRepetition   = 0.25
	weightPanicKeyword = 0.35
	weightSpeakingRate = 0.25
	weightExclamation  = 0.15
)

// Estimate scores the caller's stress in [0, 1]. An empty transcript scores
// exactly zero on every component.
func Estimate(in Input) Result {
	if strings.TrimSpace(in.Transcript) == "" {
		return Result{}
	}

	repetition := repetitionScore(in.RepetitionCount, in.PreviousTranscripts, in.Transcript)
	panicScore, panicCount := panicKeywordScore(in.Transcript)
	rateScore, wordCount, rate := speakingRateScore(in.Transcript, in.TimeElapsedSeconds, in.HasTimeElapsed)
	exclScore, exclCount := exclamationScore(in.Transcript)

	score := weightRepetition*repetition +
		weightPanicKeyword*panicScore +
		weightSpeakingRate*rateScore +
		weightExclamation*exclScore
	score = clamp01(score)

	return Result{
		Score: score,
		Components: Components{
			Repetition:   repetition,
			PanicKeyword: panicScore,
			SpeakingRate: rateScore,
			Exclamation:  exclScore,
		},
		PanicKeywordCount: panicCount,
		ExclamationCount:  exclCount,
		WordCount:         wordCount,
		SpeakingRate:      rate,
	}
}

func repetitionScore(count int, previous []string, current string) float64 {
	score := 0.0
	if count > 0 {
		score = float64(count) / 3.0
		if score > 1 {
			score = 1
		}
	}

	// similarity to any of the last 3 transcripts bumps the floor to 0.7
	currentWords := wordSet(current)
	if len(currentWords) > 0 {
		start := len(previous) - 3
		if start < 0 {
			start = 0
		}
		for _, prev := range previous[start:] {
			prevWords := wordSet(prev)
			if len(prevWords) == 0 {
				continue
			}
			if wordOverlap(currentWords, prevWords) > 0.7 {
				if score < 0.7 {
					score = 0.7
				}
				break
			}
		}
	}

	return clamp01(score)
}

func panicKeywordScore(transcript string) (float64, int) {
	lower := strings.ToLower(transcript)
	count := 0
	for _, kw := range allPanicKeywords {
		count += strings.Count(lower, kw)
	}

	wordCount := len(strings.Fields(transcript))
	if wordCount == 0 {
		return 0, 0
	}

	// keywords per 10 words, squashed through f/(f+1)
	frequency := float64(count) / float64(wordCount) * 10.0
	score := frequency / (frequency + 1.0)
	if count >= 3 {
		score *= 1.2
	}
	return clamp01(score), count
}

func speakingRateScore(transcript string, elapsed float64, hasElapsed bool) (float64, int, float64) {
	wordCount := len(strings.Fields(transcript))

	if !hasElapsed || elapsed <= 0 {
		// no timing, a very long transcript is a weak stress proxy
		if wordCount > 50 {
			return 0.3, wordCount, 0
		}
		return 0, wordCount, 0
	}

	rate := float64(wordCount) / elapsed
	var score float64
	switch {
	case rate <= 2.0:
		score = 0.0
	case rate <= 3.0:
		score = 0.3
	case rate <= 4.0:
		score = 0.6
	case rate <= 5.0:
		score = 0.8
	default:
		score = 1.0
	}
	return score, wordCount, rate
}

func exclamationScore(transcript string) (float64, int) {
	count := strings.Count(transcript, "!")
	for _, excl := range hindiExclamations {
		count += strings.Count(transcript, excl)
	}

	wordCount := len(strings.Fields(transcript))
	if wordCount == 0 {
		return 0, 0
	}

	frequency := float64(count) / float64(wordCount) * 10.0
	score := frequency / (frequency + 1.0)
	if count >= 3 {
		score *= 1.2
	}
	return clamp01(score), count
}

func wordSet(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(strings.TrimSpace(s))) {
		out[w] = struct{}{}
	}
	return out
}

func wordOverlap(a, b map[string]struct{}) float64 {
	shared := 0
	for w := range a {
		if _, ok := b[w]; ok {
			shared++
		}
	}
	max := len(a)
	if len(b) > max {
		max = len(b)
	}
	if max == 0 {
		return 0
	}
	return float64(shared) / float64(max)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
