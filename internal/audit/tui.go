package audit

import (
	"os/exec"
	"runtime"
	"sort"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/amishk599/jobfeed/internal/model"
)

type viewState int

const (
	viewList viewState = iota
	viewDetail
)

const (
	paneAll = iota
	paneMatched
)

type keyMap struct {
	Quit   key.Binding
	Back   key.Binding
	Switch key.Binding
	Up     key.Binding
	Down   key.Binding
	Open   key.Binding
	Browse key.Binding
	Read   key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Back:   key.NewBinding(key.WithKeys("esc", "b", "backspace"), key.WithHelp("esc", "back")),
		Switch: key.NewBinding(key.WithKeys("tab", "left", "right"), key.WithHelp("tab", "switch")),
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓", "down")),
		Open:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "detail")),
		Browse: key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open url")),
		Read:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "description")),
	}
}

// pane is one scrollable column of postings with its own cursor.
type pane struct {
	jobs   []model.Job
	cursor int
	vp     viewport.Model
}

func (p *pane) move(delta int) {
	p.cursor = clamp(p.cursor+delta, 0, max(len(p.jobs)-1, 0))
}

func (p *pane) selected() (model.Job, bool) {
	if len(p.jobs) == 0 {
		return model.Job{}, false
	}
	return p.jobs[p.cursor], true
}

// follow scrolls the viewport so the cursor's item is fully visible.
func (p *pane) follow() {
	top := p.cursor * jobItemHeight
	bottom := top + jobItemHeight - 1
	switch {
	case top < p.vp.YOffset:
		p.vp.SetYOffset(top)
	case bottom >= p.vp.YOffset+p.vp.Height:
		p.vp.SetYOffset(bottom - p.vp.Height + 1)
	}
}

func (p *pane) resize(w, h int) {
	p.vp.Width = w
	p.vp.Height = h
}

func (p *pane) refresh(focused bool) {
	p.vp.SetContent(renderJobs(p.jobs, p.cursor, focused))
}

type detailState struct {
	job      model.Job
	vp       viewport.Model
	expanded bool
}

type auditModel struct {
	label  string
	topics []string
	keys   keyMap

	panes [2]pane
	focus int

	width, height int
	ready         bool

	view   viewState
	detail detailState

	wantQuit bool
}

func newAuditModel(label string, allJobs []model.Job, f model.JobFilter, topics []string) auditModel {
	all := append([]model.Job(nil), allJobs...)
	sortJobsByDate(all)
	m := auditModel{label: label, topics: topics, keys: defaultKeys()}
	m.panes[paneAll].jobs = all
	m.panes[paneMatched].jobs = Partition(all, f)
	return m
}

func (m auditModel) Init() tea.Cmd {
	return nil
}

func (m auditModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		if m.view == viewDetail {
			m.detail.vp.Width = m.width - 4
			m.detail.vp.Height = m.height - 4
			m.detail.vp.SetContent(m.detailBody())
		}
		return m, nil
	case tea.KeyMsg:
		if m.view == viewDetail {
			return m.updateDetail(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m auditModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := &m.panes[m.focus]
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.wantQuit = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Switch):
		m.focus = 1 - m.focus
		m.refresh()
		return m, nil
	case key.Matches(msg, m.keys.Up):
		p.move(-1)
		m.refresh()
		p.follow()
		return m, nil
	case key.Matches(msg, m.keys.Down):
		p.move(1)
		m.refresh()
		p.follow()
		return m, nil
	case key.Matches(msg, m.keys.Open):
		j, ok := p.selected()
		if !ok {
			return m, nil
		}
		m.view = viewDetail
		m.detail = detailState{job: j, vp: viewport.New(m.width-4, m.height-4)}
		m.detail.vp.SetContent(m.detailBody())
		return m, nil
	}

	// pgup/pgdn/home/end scroll the focused pane.
	var cmd tea.Cmd
	p.vp, cmd = p.vp.Update(msg)
	return m, cmd
}

func (m auditModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.wantQuit = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back):
		m.view = viewList
		return m, nil
	case key.Matches(msg, m.keys.Browse):
		if m.detail.job.URL != "" {
			openURL(m.detail.job.URL)
		}
		return m, nil
	case key.Matches(msg, m.keys.Read):
		if m.detail.job.Description != "" {
			m.detail.expanded = !m.detail.expanded
			m.detail.vp.SetContent(m.detailBody())
			m.detail.vp.SetYOffset(0)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.detail.vp, cmd = m.detail.vp.Update(msg)
	return m, cmd
}

// layout sizes both panes: two borders each plus a one column gap, and one
// header row, two border rows and a status row.
func (m *auditModel) layout() {
	w := max((m.width-5)/2, 20)
	h := max(m.height-4, 5)
	for i := range m.panes {
		if m.ready {
			m.panes[i].resize(w, h)
		} else {
			m.panes[i].vp = viewport.New(w, h)
		}
	}
	m.ready = true
	m.refresh()
}

func (m *auditModel) refresh() {
	for i := range m.panes {
		m.panes[i].refresh(i == m.focus)
	}
}

func (m auditModel) detailBody() string {
	return detailContent(m.detail.job, m.detail.expanded, max(m.width-8, 20))
}

func (m auditModel) View() string {
	switch {
	case !m.ready:
		return "Initializing..."
	case m.view == viewDetail:
		return m.viewDetail()
	default:
		return m.viewList()
	}
}

func sortJobsByDate(jobs []model.Job) {
	sort.SliceStable(jobs, func(i, j int) bool {
		a, b := jobs[i].PostedAt, jobs[j].PostedAt
		if a == nil {
			return false
		}
		return b == nil || a.After(*b)
	})
}

// Partition returns the postings f matches, keeping their order.
func Partition(jobs []model.Job, f model.JobFilter) []model.Job {
	matched := make([]model.Job, 0, len(jobs))
	for _, j := range jobs {
		if f.Match(j) {
			matched = append(matched, j)
		}
	}
	return matched
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

func openURL(url string) {
	var name string
	var args []string
	switch runtime.GOOS {
	case "darwin":
		name = "open"
	case "linux":
		name = "xdg-open"
	case "windows":
		name, args = "cmd", []string{"/c", "start"}
	default:
		return
	}
	_ = exec.Command(name, append(args, url)...).Start()
}

// RunAuditTUI shows every fetched posting next to the ones f matches.
// wantQuit is true when the user quit with q, false when they pressed esc
// to go back to the source picker.
func RunAuditTUI(label string, jobs []model.Job, f model.JobFilter, topics []string) (bool, error) {
	result, err := tea.NewProgram(newAuditModel(label, jobs, f, topics), tea.WithAltScreen()).Run()
	if err != nil {
		return false, err
	}
	return result.(auditModel).wantQuit, nil
}
