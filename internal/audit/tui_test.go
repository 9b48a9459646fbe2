package audit

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/amishk599/jobfeed/internal/filter"
	"github.com/amishk599/jobfeed/internal/model"
)

func timePtr(t time.Time) *time.Time { return &t }
func floatPtr(v float64) *float64    { return &v }

func previewJobs() []model.Job {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return []model.Job{
		{ID: "undated", Title: "Python Developer", Company: "Ledgerly", Tags: []string{"python"}},
		{ID: "old", Title: "Senior Solidity Engineer", Company: "Chainforge", PostedAt: timePtr(base.Add(-48 * time.Hour))},
		{ID: "new", Title: "NFT Marketplace Developer", Company: "Mintpath", PostedAt: timePtr(base)},
	}
}

func press(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestPartition(t *testing.T) {
	matched := Partition(previewJobs(), filter.NewTopicFilter([]string{"solidity", "nft"}))
	if len(matched) != 2 || matched[0].ID != "old" || matched[1].ID != "new" {
		t.Errorf("unexpected matches %v", matched)
	}

	all := Partition(previewJobs(), filter.NewTopicFilter(nil))
	if len(all) != 3 {
		t.Errorf("expected an empty topic list to match everything, got %d", len(all))
	}
}

func TestNewAuditModel_SortsNewestFirst(t *testing.T) {
	m := newAuditModel("lever:acme", previewJobs(), filter.NewTopicFilter([]string{"solidity"}), []string{"solidity"})
	all := m.panes[paneAll].jobs
	order := []string{all[0].ID, all[1].ID, all[2].ID}
	if strings.Join(order, ",") != "new,old,undated" {
		t.Errorf("unexpected order %v", order)
	}
	if matched := m.panes[paneMatched].jobs; len(matched) != 1 || matched[0].ID != "old" {
		t.Errorf("unexpected matched %v", matched)
	}
}

func TestAuditModel_Navigation(t *testing.T) {
	var tm tea.Model = newAuditModel("lever:acme", previewJobs(), filter.NewTopicFilter([]string{"nft"}), []string{"nft"})
	tm, _ = tm.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	tm, _ = tm.Update(press("down"))
	tm, _ = tm.Update(press("down"))
	tm, _ = tm.Update(press("down"))
	m := tm.(auditModel)
	if m.panes[paneAll].cursor != 2 {
		t.Errorf("expected cursor clamped at 2, got %d", m.panes[paneAll].cursor)
	}

	tm, _ = tm.Update(press("tab"))
	tm, _ = tm.Update(press("enter"))
	m = tm.(auditModel)
	if m.view != viewDetail || m.detail.job.ID != "new" {
		t.Errorf("expected detail of the matched posting, got view=%v job=%q", m.view, m.detail.job.ID)
	}

	tm, _ = tm.Update(press("esc"))
	m = tm.(auditModel)
	if m.view != viewList {
		t.Error("expected esc to return to the list")
	}

	_, cmd := tm.Update(press("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected q to quit")
	}
}

func TestDetailContent(t *testing.T) {
	j := model.Job{
		ID:             "abc",
		Title:          "Senior Solidity Engineer",
		Company:        "Chainforge",
		Location:       "London, UK",
		Remote:         true,
		Country:        "United Kingdom",
		Tags:           []string{"solidity", "web3"},
		Salary:         "£70k-£90k",
		SalaryMin:      floatPtr(70000),
		SalaryMax:      floatPtr(90000),
		Currency:       "GBP",
		SeniorityLevel: "Senior",
		Description:    "Write and audit contracts.",
	}

	hidden := detailContent(j, false, 60)
	for _, want := range []string{"Chainforge", "United Kingdom", "GBP 70000 - 90000", "Senior", "solidity, web3", "press r"} {
		if !strings.Contains(hidden, want) {
			t.Errorf("expected detail to contain %q:\n%s", want, hidden)
		}
	}
	if strings.Contains(hidden, "audit contracts") {
		t.Error("expected description hidden until toggled")
	}
	if shown := detailContent(j, true, 60); !strings.Contains(shown, "audit contracts") {
		t.Error("expected description after toggle")
	}
}

func TestFormatSalaryRange(t *testing.T) {
	tests := []struct {
		name string
		job  model.Job
		want string
	}{
		{"none", model.Job{}, ""},
		{"range", model.Job{SalaryMin: floatPtr(100000), SalaryMax: floatPtr(150000), Currency: "EUR"}, "EUR 100000 - 150000"},
		{"single", model.Job{SalaryMin: floatPtr(80000), SalaryMax: floatPtr(80000)}, "USD 80000"},
		{"max only", model.Job{SalaryMax: floatPtr(90000), Currency: "CAD"}, "CAD 90000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatSalaryRange(tt.job); got != tt.want {
				t.Errorf("formatSalaryRange() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWordWrap(t *testing.T) {
	got := wordWrap("one two three four five", 9)
	if got != "one two\nthree\nfour five" {
		t.Errorf("unexpected wrap %q", got)
	}
}

func TestPickerModel(t *testing.T) {
	var tm tea.Model = pickerModel{labels: []string{"lever:acme", "rss:feed"}, keys: defaultKeys(), chosen: pickerPending}

	tm, _ = tm.Update(press("up"))
	tm, _ = tm.Update(press("j"))
	tm, _ = tm.Update(press("j"))
	if m := tm.(pickerModel); m.cursor != 1 {
		t.Fatalf("expected cursor 1, got %d", m.cursor)
	}

	tm, cmd := tm.Update(press("enter"))
	if m := tm.(pickerModel); m.chosen != 1 || cmd == nil {
		t.Errorf("expected enter to choose index 1, got %d", m.chosen)
	}

	quit, _ := pickerModel{keys: defaultKeys(), chosen: pickerPending}.Update(press("q"))
	if m := quit.(pickerModel); m.chosen != pickerQuit {
		t.Errorf("expected quit, got %d", m.chosen)
	}
}
