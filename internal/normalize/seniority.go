package normalize

import (
	"regexp"
	"strings"
)

const (
	LevelSenior    = "Senior"
	LevelJunior    = "Junior"
	LevelMid       = "Mid"
	LevelExecutive = "Executive"
)

// seniorityFamilies is checked in order; the first family that matches wins.
var seniorityFamilies = []struct {
	level   string
	pattern *regexp.Regexp
}{
	{LevelSenior, regexp.MustCompile(`\b(senior|sr|lead|principal|staff|architect)\b`)},
	{LevelJunior, regexp.MustCompile(`\b(junior|jr|entry|intern|graduate|trainee)\b`)},
	{LevelMid, regexp.MustCompile(`\b(mid|middle|intermediate)\b`)},
	{LevelExecutive, regexp.MustCompile(`\b(head|director|vp|cto|ceo)\b`)},
}

// ParseSeniorityLevel infers a seniority level from the title and description.
func ParseSeniorityLevel(title, description string) string {
	text := strings.ToLower(title + " " + description)
	for _, f := range seniorityFamilies {
		if f.pattern.MatchString(text) {
			return f.level
		}
	}
	return LevelMid
}
