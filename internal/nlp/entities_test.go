package nlp

import (
	"testing"

	"github.com/shaswatnaman/Nirnay-112/internal/core"
)

func TestExtractName(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantName string
		wantConf float64
	}{
		{
			name:     "explicit_english_indicator",
			text:     "my name is rahul and there was an accident",
			wantName: "rahul",
			wantConf: 0.9,
		},
		{
			name:     "explicit_hindi_indicator",
			text:     "मेरा नाम राम है",
			wantName: "राम",
			wantConf: 0.9,
		},
		{
			name:     "common_name_without_indicator",
			text:     "priya yahan behosh padi hai",
			wantName: "Priya",
			wantConf: 0.7,
		},
		{
			name:     "empty",
			text:     "",
			wantName: "",
			wantConf: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, conf := ExtractName(tt.text)
			if name != tt.wantName || conf != tt.wantConf {
				t.Errorf("ExtractName(%q) = (%q, %v), want (%q, %v)",
					tt.text, name, conf, tt.wantName, tt.wantConf)
			}
		})
	}
}

func TestExtractLocation(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantLoc  bool
		minConf  float64
	}{
		{
			name:    "city_name",
			text:    "accident हुआ दिल्ली station ke paas",
			wantLoc: true,
			minConf: 0.6,
		},
		{
			name:    "near_landmark",
			text:    "near city hospital someone collapsed",
			wantLoc: true,
			minConf: 0.6,
		},
		{
			name:    "no_location",
			text:    "",
			wantLoc: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, conf := ExtractLocation(tt.text)
			if tt.wantLoc && (loc == "" || conf < tt.minConf) {
				t.Errorf("ExtractLocation(%q) = (%q, %v), want location with conf >= %v",
					tt.text, loc, conf, tt.minConf)
			}
			if !tt.wantLoc && loc != "" {
				t.Errorf("ExtractLocation(%q) = %q, want none", tt.text, loc)
			}
		})
	}
}

func TestExtractIncidentType(t *testing.T) {
	incType, conf := ExtractIncidentType("आग lag gayi, bahut धुआं hai")
	if incType != "fire" {
		t.Fatalf("incident type = %q, want fire", incType)
	}
	// two pattern hits: 0.5 + 2*0.2
	if conf != 0.9 {
		t.Errorf("confidence = %v, want 0.9", conf)
	}

	incType, conf = ExtractIncidentType("sab theek hai")
	if incType != "" || conf != 0 {
		t.Errorf("expected no incident type, got (%q, %v)", incType, conf)
	}
}

func TestExtractUrgency(t *testing.T) {
	level, conf := ExtractUrgency("तुरंत aao, emergency hai")
	if level != core.UrgencyCritical {
		t.Errorf("level = %q, want critical", level)
	}
	if conf < 0.9 {
		t.Errorf("confidence = %v, want >= 0.9", conf)
	}

	level, conf = ExtractUrgency("kal subah aana")
	if level != core.UrgencyMedium || conf != 0.3 {
		t.Errorf("default urgency = (%q, %v), want (medium, 0.3)", level, conf)
	}
}

func TestExtractEntities(t *testing.T) {
	got := ExtractEntities("my name is rahul, आग lag gayi near city hospital, तुरंत aao")
	if got.Name == nil || got.Name.Value != "rahul" {
		t.Errorf("name = %+v, want rahul", got.Name)
	}
	if got.Location == nil {
		t.Error("expected a location observation")
	}
	if got.IncidentType == nil || got.IncidentType.Value != "fire" {
		t.Errorf("incident type = %+v, want fire", got.IncidentType)
	}
	if got.Urgency == nil || got.Urgency.Value != string(core.UrgencyCritical) {
		t.Errorf("urgency = %+v, want critical", got.Urgency)
	}
	if got.Name.Source != core.SourceLocalNLP {
		t.Errorf("source = %q, want %q", got.Name.Source, core.SourceLocalNLP)
	}

	empty := ExtractEntities("   ")
	if empty.Name != nil || empty.Location != nil || empty.IncidentType != nil || empty.Urgency != nil {
		t.Errorf("expected empty extraction, got %+v", empty)
	}
}

func TestParsePeopleAffected(t *testing.T) {
	tests := []struct {
		name   string
		value  interface{}
		want   int
		wantOK bool
	}{
		{"int", 3, 3, true},
		{"float", 4.0, 4, true},
		{"digit_string", "5", 5, true},
		{"digits_in_text", "about 12 log", 12, true},
		{"hindi_word", "तीन log ghayal hain", 3, true},
		{"no_number", "kuchh log", 0, false},
		{"empty", "", 0, false},
		{"nil", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParsePeopleAffected(tt.value)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParsePeopleAffected(%v) = (%d, %v), want (%d, %v)",
					tt.value, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
