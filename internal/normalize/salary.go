package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

// DefaultMinBareAmount is the default threshold at or below which a lone number
// without a "k" suffix is not treated as a salary.
const DefaultMinBareAmount = 1000

// Salary is a parsed salary range. Min and Max are nil when no figure was found.
type Salary struct {
	Min      *float64
	Max      *float64
	Currency string
}

// SalaryParser turns free-text salary strings into a numeric range.
type SalaryParser struct {
	// MinBareAmount: single bare numbers <= this value are discarded.
	MinBareAmount float64
}

// NewSalaryParser returns a parser with the given bare-number threshold.
// A non-positive threshold selects DefaultMinBareAmount.
func NewSalaryParser(minBareAmount float64) SalaryParser {
	if minBareAmount <= 0 {
		minBareAmount = DefaultMinBareAmount
	}
	return SalaryParser{MinBareAmount: minBareAmount}
}

// ParseSalary parses text with the default threshold.
func ParseSalary(text string) Salary {
	return NewSalaryParser(DefaultMinBareAmount).Parse(text)
}

var (
	currencyCodes = []struct {
		currency string
		pattern  *regexp.Regexp
	}{
		{"EUR", regexp.MustCompile(`(?i)€|\beur\b`)},
		{"GBP", regexp.MustCompile(`(?i)£|\bgbp\b`)},
		{"CAD", regexp.MustCompile(`(?i)\bcad\b|\bca?\$`)},
		{"AUD", regexp.MustCompile(`(?i)\baud\b|\bau?\$`)},
		{"USD", regexp.MustCompile(`(?i)\$|\busd\b`)},
	}

	currencyTokenRe  = regexp.MustCompile(`(?i)\b(usd|eur|gbp|cad|aud)\b|\b(?:ca|au|us|c|a)\$|[$€£]`)
	unitWordsRe      = regexp.MustCompile(`(?i)per\s+(year|annum|month|hour|yr|hr)|\b(annual(ly)?|yearly|monthly|hourly|a\s+year)\b|/\s*(year|yr|month|mo|hour|hr)\b|\bp\.a\.`)
	dotThousandsRe   = regexp.MustCompile(`\b\d{1,3}(?:\.\d{3})+\b`)
	salaryRangeRe    = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(k)?\s*(?:-|–|—|\bto\b)\s*(\d+(?:\.\d+)?)\s*(k)?`)
	salaryThousandRe = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*k\b`)
	salaryNumberRe   = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// Parse extracts a salary range from text. A range takes priority over a single
// number; a single "k" number sets min and max to the same value; a single bare
// number is kept only when it exceeds MinBareAmount.
func (p SalaryParser) Parse(text string) Salary {
	if strings.TrimSpace(text) == "" {
		return Salary{}
	}

	s := Salary{Currency: detectCurrency(text)}

	cleaned := currencyTokenRe.ReplaceAllString(text, " ")
	cleaned = unitWordsRe.ReplaceAllString(cleaned, " ")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = dotThousandsRe.ReplaceAllStringFunc(cleaned, func(m string) string {
		return strings.ReplaceAll(m, ".", "")
	})

	if m := salaryRangeRe.FindStringSubmatch(cleaned); m != nil {
		lo, _ := strconv.ParseFloat(m[1], 64)
		hi, _ := strconv.ParseFloat(m[3], 64)
		loK, hiK := m[2] != "", m[4] != ""
		// "100-150k" means both ends are in thousands.
		if hiK && !loK && lo < 1000 {
			loK = true
		}
		if loK {
			lo *= 1000
		}
		if hiK {
			hi *= 1000
		}
		if lo > hi {
			lo, hi = hi, lo
		}
		s.Min, s.Max = &lo, &hi
		return s
	}

	if m := salaryThousandRe.FindStringSubmatch(cleaned); m != nil {
		v, _ := strconv.ParseFloat(m[1], 64)
		v *= 1000
		lo, hi := v, v
		s.Min, s.Max = &lo, &hi
		return s
	}

	if m := salaryNumberRe.FindString(cleaned); m != "" {
		v, _ := strconv.ParseFloat(m, 64)
		if v > p.MinBareAmount {
			lo, hi := v, v
			s.Min, s.Max = &lo, &hi
		}
	}
	return s
}

func detectCurrency(text string) string {
	for _, c := range currencyCodes {
		if c.pattern.MatchString(text) {
			return c.currency
		}
	}
	return "USD"
}
