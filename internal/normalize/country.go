package normalize

import "regexp"

var countryPatterns = []struct {
	name    string
	pattern *regexp.Regexp
}{
	{"United States", regexp.MustCompile(`(?i)\b(usa|us|united states|new york|nyc|san francisco|los angeles|seattle|boston|austin|chicago|miami|denver|california|texas)\b|\bu\.s\.`)},
	{"United Kingdom", regexp.MustCompile(`(?i)\b(uk|united kingdom|england|scotland|wales|britain|london|manchester|edinburgh)\b|\bu\.k\.`)},
	{"Canada", regexp.MustCompile(`(?i)\b(canada|toronto|vancouver|montreal|ottawa|calgary)\b`)},
	{"Australia", regexp.MustCompile(`(?i)\b(australia|sydney|melbourne|brisbane|perth)\b`)},
	{"Germany", regexp.MustCompile(`(?i)\b(germany|deutschland|berlin|munich|hamburg|frankfurt)\b`)},
	{"France", regexp.MustCompile(`(?i)\b(france|paris|lyon)\b`)},
	{"Netherlands", regexp.MustCompile(`(?i)\b(netherlands|holland|amsterdam|rotterdam)\b`)},
	{"Singapore", regexp.MustCompile(`(?i)\b(singapore)\b`)},
	{"Switzerland", regexp.MustCompile(`(?i)\b(switzerland|zurich|zürich|geneva|zug|basel)\b`)},
	{"Israel", regexp.MustCompile(`(?i)\b(israel|tel aviv|jerusalem)\b`)},
	{"Japan", regexp.MustCompile(`(?i)\b(japan|tokyo|osaka)\b`)},
	{"South Korea", regexp.MustCompile(`(?i)\b(south korea|korea|seoul)\b`)},
}

// ParseCountry maps a free-text location to a canonical country name. It returns
// the first table entry that matches, or "" when nothing does.
func ParseCountry(location string) string {
	if location == "" {
		return ""
	}
	for _, c := range countryPatterns {
		if c.pattern.MatchString(location) {
			return c.name
		}
	}
	return ""
}
