package intent

import (
	"testing"

	"github.com/shaswatnaman/Nirnay-112/internal/core"
)

func TestClassifierPredict(t *testing.T) {
	c := New()

	tests := []struct {
		name      string
		text      string
		wantLabel string
	}{
		{
			name:      "fire",
			text:      "aag lag gayi hai, bahut smoke hai",
			wantLabel: LabelFire,
		},
		{
			name:      "medical_hindi",
			text:      "papa behosh ho gaye, ambulance bhejo",
			wantLabel: LabelMedical,
		},
		{
			name:      "accident",
			text:      "truck aur car ki टक्कर ho gayi highway par",
			wantLabel: LabelAccident,
		},
		{
			name:      "crime",
			text:      "मेरा phone stolen ho gaya, robbery hui hai",
			wantLabel: LabelCrime,
		},
		{
			name:      "natural_disaster",
			text:      "flood aa gaya, paani bhar गया",
			wantLabel: LabelNaturalDisaster,
		},
		{
			name:      "dog_bite_is_medical",
			text:      "कुत्ते ने काट liya bachche ko",
			wantLabel: LabelMedical,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Predict(tt.text)
			if got.Status != core.IntentOK {
				t.Fatalf("status = %v, want ok", got.Status)
			}
			if got.Label != tt.wantLabel {
				t.Errorf("Predict(%q).Label = %q, want %q", tt.text, got.Label, tt.wantLabel)
			}
			if got.Confidence <= 0 || got.Confidence > 1 {
				t.Errorf("confidence = %v, want in (0, 1]", got.Confidence)
			}
		})
	}
}

func TestClassifierPredictEmpty(t *testing.T) {
	c := New()
	got := c.Predict("   ")
	if got.Label != LabelOther || got.Confidence != 0 {
		t.Errorf("empty text = (%q, %v), want (other, 0)", got.Label, got.Confidence)
	}
}

func TestClassifierPredictNoSignal(t *testing.T) {
	c := New()
	got := c.Predict("namaste kaise ho aap")
	if got.Label != LabelOther || got.Confidence != 0 {
		t.Errorf("no-signal text = (%q, %v), want (other, 0)", got.Label, got.Confidence)
	}
}

func TestClassifierConfidenceSplitsAcrossLabels(t *testing.T) {
	c := New()
	pure := c.Predict("aag lag gayi fire")
	mixed := c.Predict("fire bhi hai aur accident bhi hua hai gaadi crash")
	if mixed.Confidence >= pure.Confidence {
		t.Errorf("mixed transcript confidence %v should be below pure %v",
			mixed.Confidence, pure.Confidence)
	}
}
