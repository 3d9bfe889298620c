package nlp

import (
	"regexp"
	"strconv"
	"strings"
)

var digitsRe = regexp.MustCompile(`\d+`)

var hindiNumbers = map[string]int{
	"एक": 1, "दो": 2, "तीन": 3, "चार": 4, "पांच": 5,
	"छह": 6, "सात": 7, "आठ": 8, "नौ": 9, "दस": 10,
}

// ParsePeopleAffected turns a free-form people count ("3", "teen log",
// "तीन") into an integer. Returns ok=false when nothing parseable is
// found; callers keep the previous value in that case.
func ParsePeopleAffected(value interface{}) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, false
		}
		if n, err := strconv.Atoi(s); err == nil {
			return n, true
		}
		if m := digitsRe.FindString(s); m != "" {
			if n, err := strconv.Atoi(m); err == nil {
				return n, true
			}
		}
		for word, n := range hindiNumbers {
			if strings.Contains(s, word) {
				return n, true
			}
		}
	}
	return 0, false
}
