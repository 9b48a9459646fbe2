package notifier

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/amishk599/jobfeed/internal/model"
)

// FormatMessage renders a job as the plain-text message every channel sends.
// Empty fields are left out.
func FormatMessage(j model.Job) string {
	var b strings.Builder

	b.WriteString("🚀 " + j.Title + "\n")
	b.WriteString("🏢 " + j.Company + "\n")

	if loc := locationLine(j); loc != "" {
		b.WriteString("📍 " + loc + "\n")
	}
	if pay := salaryLine(j); pay != "" {
		b.WriteString("💰 " + pay + "\n")
	}

	var meta []string
	if j.SeniorityLevel != "" {
		meta = append(meta, j.SeniorityLevel)
	}
	if j.EmploymentType != "" {
		meta = append(meta, j.EmploymentType)
	}
	if len(meta) > 0 {
		b.WriteString("🧭 " + strings.Join(meta, " · ") + "\n")
	}
	if len(j.Tags) > 0 {
		b.WriteString("🏷 " + strings.Join(j.Tags, ", ") + "\n")
	}
	if j.URL != "" {
		b.WriteString(j.URL + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func locationLine(j model.Job) string {
	parts := make([]string, 0, 3)
	if j.Location != "" {
		parts = append(parts, j.Location)
	}
	if j.Remote && !strings.Contains(strings.ToLower(j.Location), "remote") {
		parts = append(parts, "(Remote)")
	}
	if j.Country != "" && !strings.Contains(j.Location, j.Country) {
		parts = append(parts, "· "+j.Country)
	}
	return strings.Join(parts, " ")
}

func salaryLine(j model.Job) string {
	switch {
	case j.SalaryMin != nil && j.SalaryMax != nil && *j.SalaryMin != *j.SalaryMax:
		return fmt.Sprintf("%s %s - %s", j.Currency, formatAmount(*j.SalaryMin), formatAmount(*j.SalaryMax))
	case j.SalaryMin != nil:
		return fmt.Sprintf("%s %s", j.Currency, formatAmount(*j.SalaryMin))
	case j.SalaryMax != nil:
		return fmt.Sprintf("%s %s", j.Currency, formatAmount(*j.SalaryMax))
	default:
		return j.Salary
	}
}

// formatAmount prints whole amounts with thousands separators: 120000 -> 120,000.
func formatAmount(v float64) string {
	s := strconv.FormatFloat(v, 'f', 0, 64)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	if neg {
		return "-" + s
	}
	return s
}
