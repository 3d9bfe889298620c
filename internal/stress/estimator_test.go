package stress

import (
	"testing"
)

func TestEstimateEmptyTranscript(t *testing.T) {
	got := Estimate(Input{Transcript: "   ", RepetitionCount: 5})
	if got.Score != 0 {
		t.Errorf("score = %v, want 0", got.Score)
	}
	if got.Components != (Components{}) {
		t.Errorf("components = %+v, want all zero", got.Components)
	}
}

func TestEstimateDeterministic(t *testing.T) {
	in := Input{
		Transcript:         "bachao! jaldi help bhejo, aag lag gayi hai!",
		RepetitionCount:    2,
		TimeElapsedSeconds: 10,
		HasTimeElapsed:     true,
	}
	a := Estimate(in)
	b := Estimate(in)
	if a != b {
		t.Errorf("same input gave different results: %+v vs %+v", a, b)
	}
	if a.Score <= 0 || a.Score > 1 {
		t.Errorf("score = %v, want in (0, 1]", a.Score)
	}
}

func TestRepetitionScore(t *testing.T) {
	tests := []struct {
		name     string
		count    int
		previous []string
		current  string
		want     float64
	}{
		{
			name:    "zero_count",
			count:   0,
			current: "aag lag gayi",
			want:    0,
		},
		{
			name:    "one_repetition",
			count:   1,
			current: "aag lag gayi",
			want:    1.0 / 3.0,
		},
		{
			name:    "saturates_at_three",
			count:   7,
			current: "aag lag gayi",
			want:    1.0,
		},
		{
			name:     "overlap_floor",
			count:    0,
			previous: []string{"ghar mein aag lag gayi hai"},
			current:  "ghar mein aag lag gayi",
			want:     0.7,
		},
		{
			name:     "overlap_only_checks_last_three",
			count:    0,
			previous: []string{"ghar mein aag lag gayi", "a", "b", "c"},
			current:  "ghar mein aag lag gayi",
			want:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := repetitionScore(tt.count, tt.previous, tt.current)
			if got != tt.want {
				t.Errorf("repetitionScore = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPanicKeywordScore(t *testing.T) {
	score, count := panicKeywordScore("please help bachao emergency")
	if count < 3 {
		t.Fatalf("keyword count = %d, want >= 3", count)
	}
	if score <= 0.5 {
		t.Errorf("score = %v, want above 0.5 with boost", score)
	}

	score, count = panicKeywordScore("sab theek hai ghar par")
	if count != 0 || score != 0 {
		t.Errorf("calm text = (%v, %d), want (0, 0)", score, count)
	}
}

func TestSpeakingRateScore(t *testing.T) {
	tenWords := "one two three four five six seven eight nine ten"

	tests := []struct {
		name    string
		elapsed float64
		has     bool
		want    float64
	}{
		{"slow", 10, true, 0.0},    // 1 wps
		{"slightly_fast", 4, true, 0.3}, // 2.5 wps
		{"fast", 2.9, true, 0.6},   // ~3.4 wps
		{"very_fast", 2.2, true, 0.8}, // ~4.5 wps
		{"extreme", 1, true, 1.0},  // 10 wps
		{"no_time_short", 0, false, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, words, _ := speakingRateScore(tenWords, tt.elapsed, tt.has)
			if got != tt.want {
				t.Errorf("score = %v, want %v", got, tt.want)
			}
			if words != 10 {
				t.Errorf("word count = %d, want 10", words)
			}
		})
	}
}

func TestSpeakingRateScoreLongTranscriptWithoutTime(t *testing.T) {
	var b []byte
	for i := 0; i < 60; i++ {
		b = append(b, "word "...)
	}
	got, _, _ := speakingRateScore(string(b), 0, false)
	if got != 0.3 {
		t.Errorf("score = %v, want 0.3 for long untimed transcript", got)
	}
}

func TestExclamationScore(t *testing.T) {
	score, count := exclamationScore("bachao! jaldi aao! अरे koi hai!")
	if count < 3 {
		t.Fatalf("exclamation count = %d, want >= 3", count)
	}
	if score <= 0 {
		t.Errorf("score = %v, want positive", score)
	}

	_, count = exclamationScore("sab theek hai")
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
}
