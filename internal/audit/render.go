package audit

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/jobfeed/internal/model"
)

// jobItemHeight is the number of lines one posting takes in a pane.
const jobItemHeight = 3

const detailTimeLayout = "2006-01-02 15:04 MST"

var (
	colorAccent = lipgloss.Color("39")
	colorMuted  = lipgloss.Color("240")
	colorDim    = lipgloss.Color("245")
	colorText   = lipgloss.Color("252")
	colorBright = lipgloss.Color("15")
	colorSelect = lipgloss.Color("24")

	frame        = lipgloss.NewStyle().Border(lipgloss.RoundedBorder())
	focusedFrame = frame.BorderForeground(colorAccent)
	blurredFrame = frame.BorderForeground(colorMuted)

	heading        = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	focusedHeading = heading.Foreground(colorAccent)
	blurredHeading = heading.Foreground(colorMuted)

	statusBar = lipgloss.NewStyle().Padding(0, 1).Foreground(colorText).Background(lipgloss.Color("236"))

	itemTitle       = lipgloss.NewStyle().Bold(true)
	itemMeta        = lipgloss.NewStyle().Foreground(colorDim)
	cursorItemTitle = itemTitle.Foreground(colorBright).Background(colorSelect)
	cursorItemMeta  = lipgloss.NewStyle().Foreground(colorText).Background(colorSelect)

	fieldLabel  = lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Width(16)
	detailTitle = lipgloss.NewStyle().Bold(true).Foreground(colorBright).MarginBottom(1)
	rule        = lipgloss.NewStyle().Foreground(colorMuted)
	hint        = lipgloss.NewStyle().Foreground(colorDim).Italic(true)
	body        = lipgloss.NewStyle().Foreground(colorText)
)

func (m auditModel) viewList() string {
	w := m.panes[paneAll].vp.Width
	titles := [2]string{
		fmt.Sprintf(" %s (%d)", m.label, len(m.panes[paneAll].jobs)),
		fmt.Sprintf(" Matching %s (%d)", topicSummary(m.topics), len(m.panes[paneMatched].jobs)),
	}

	var headers, bodies [2]string
	for i := range m.panes {
		h, f := blurredHeading, blurredFrame
		if i == m.focus {
			h, f = focusedHeading, focusedFrame
		}
		headers[i] = lipgloss.NewStyle().Width(w + 2).Render(h.Render(titles[i]))
		bodies[i] = f.Width(w).Render(m.panes[i].vp.View())
	}

	all, matched := len(m.panes[paneAll].jobs), len(m.panes[paneMatched].jobs)
	status := fmt.Sprintf(" %d fetched | %d matching | %d other    %s", all, matched, all-matched,
		helpLine(m.keys.Switch, m.keys.Up, m.keys.Down, m.keys.Open, m.keys.Back, m.keys.Quit))

	return lipgloss.JoinHorizontal(lipgloss.Top, headers[0], " ", headers[1]) + "\n" +
		lipgloss.JoinHorizontal(lipgloss.Top, bodies[0], " ", bodies[1]) + "\n" +
		statusBar.Width(m.width).Render(status)
}

func (m auditModel) viewDetail() string {
	bindings := []key.Binding{m.keys.Browse}
	if m.detail.job.Description != "" {
		bindings = append(bindings, m.keys.Read)
	}
	bindings = append(bindings, m.keys.Back, m.keys.Quit)

	return detailTitle.Render("Posting Details") + "\n" +
		focusedFrame.Width(m.width-2).Render(m.detail.vp.View()) + "\n" +
		statusBar.Width(m.width).Render(" "+helpLine(bindings...))
}

func helpLine(bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, "  ")
}

func renderJobs(jobs []model.Job, cursor int, focused bool) string {
	if len(jobs) == 0 {
		return "  (no jobs)"
	}

	lines := make([]string, 0, len(jobs)*jobItemHeight)
	for i, j := range jobs {
		prefix, t, meta := "  ", itemTitle, itemMeta
		if focused && i == cursor {
			prefix, t, meta = "> ", cursorItemTitle, cursorItemMeta
		}

		posted := "n/a"
		if j.PostedAt != nil {
			posted = j.PostedAt.Format("2006-01-02")
		}
		lines = append(lines,
			prefix+t.Render(j.Title),
			prefix+meta.Render(j.Company+" · "+locationOrRemote(j)+" · "+posted),
		)
		if i < len(jobs)-1 {
			lines = append(lines, "")
		}
	}
	return strings.Join(lines, "\n")
}

func detailContent(j model.Job, showDescription bool, wrapWidth int) string {
	var b strings.Builder
	field := func(label, value string) {
		if value != "" {
			b.WriteString(fieldLabel.Render(label) + value + "\n")
		}
	}
	stamp := func(t *time.Time) string {
		if t == nil || t.IsZero() {
			return ""
		}
		return t.Local().Format(detailTimeLayout)
	}

	remote := ""
	if j.Remote {
		remote = "yes"
	}

	field("Title", j.Title)
	field("Company", j.Company)
	field("Location", j.Location)
	field("Remote", remote)
	field("Country", j.Country)
	field("Job ID", j.ID)
	field("Source", j.Source)
	b.WriteByte('\n')

	field("Posted At", stamp(j.PostedAt))
	field("Fetched At", stamp(&j.CreatedAt))
	field("Seniority", j.SeniorityLevel)
	field("Employment", j.EmploymentType)
	field("Salary", j.Salary)
	field("Salary Range", formatSalaryRange(j))
	field("Tags", strings.Join(j.Tags, ", "))
	b.WriteByte('\n')
	field("Job URL", j.URL)

	if j.Description == "" {
		return b.String()
	}
	b.WriteByte('\n')
	if !showDescription {
		b.WriteString(hint.Render("  press r to read the description") + "\n")
		return b.String()
	}
	label := "── Description "
	b.WriteString(rule.Render(label+strings.Repeat("─", max(wrapWidth-len(label), 3))) + "\n\n")
	b.WriteString(body.Render(wordWrap(j.Description, wrapWidth)) + "\n")
	return b.String()
}

// formatSalaryRange renders the parsed bounds, or "" when none were found.
func formatSalaryRange(j model.Job) string {
	lo, hi := j.SalaryMin, j.SalaryMax
	if lo == nil && hi == nil {
		return ""
	}
	currency := j.Currency
	if currency == "" {
		currency = "USD"
	}
	switch {
	case lo != nil && hi != nil && *lo != *hi:
		return fmt.Sprintf("%s %.0f - %.0f", currency, *lo, *hi)
	case lo != nil:
		return fmt.Sprintf("%s %.0f", currency, *lo)
	default:
		return fmt.Sprintf("%s %.0f", currency, *hi)
	}
}

func topicSummary(topics []string) string {
	if len(topics) == 0 {
		return "(all topics)"
	}
	return strings.Join(topics, ", ")
}

func locationOrRemote(j model.Job) string {
	switch {
	case j.Location != "" && j.Remote:
		return j.Location + " (Remote)"
	case j.Location != "":
		return j.Location
	case j.Remote:
		return "Remote"
	default:
		return "n/a"
	}
}

// wordWrap breaks text on spaces so no line exceeds width unless a single
// word is longer.
func wordWrap(text string, width int) string {
	var b strings.Builder
	n := 0
	for i, w := range strings.Fields(text) {
		switch {
		case i == 0:
		case n+1+len(w) <= width:
			b.WriteByte(' ')
			n++
		default:
			b.WriteByte('\n')
			n = 0
		}
		b.WriteString(w)
		n += len(w)
	}
	return b.String()
}
