// Package tui is the interactive review front-end. Input handling is
// a small state machine over a closed set of modes so transitions can
// be tested without rendering.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sevigo/git-review/internal/diff"
	"github.com/sevigo/git-review/internal/store"
)

type mode int

const (
	modeReview mode = iota
	modeDashboard
	modeConfirm
	modeHelp
)

type filterMode int

const (
	filterAll filterMode = iota
	filterUnreviewed
	filterStale
)

func (f filterMode) String() string {
	switch f {
	case filterUnreviewed:
		return "unreviewed"
	case filterStale:
		return "stale"
	default:
		return "all"
	}
}

// confirmAction is the bulk operation waiting behind the confirm
// modal.
type confirmAction int

const (
	confirmNone confirmAction = iota
	confirmApproveFile
	confirmApproveAll
	confirmMergeBranch
)

// entry addresses one hunk in the flattened file list.
type entry struct {
	fileIdx int
	hunkIdx int
}

type model struct {
	styles styles
	store  store.Store
	scope  string

	mode       mode
	returnMode mode

	// Review state.
	files    []diff.File
	statuses map[string]diff.Status
	entries  []entry
	cursor   int
	filter   filterMode
	progress store.Progress
	viewport viewport.Model
	ready    bool

	// Confirm modal state.
	pending confirmAction

	// Dashboard state.
	branches        []branchRow
	branchCursor    int
	baseBranch      string
	headSHA         string
	refreshInterval time.Duration
	statusMsg       string

	width  int
	height int
	err    error
}

func hunkKey(path, hash string) string {
	return path + "\x00" + hash
}

func newReviewModel(st store.Store, scope string, files []diff.File, theme ThemeName) *model {
	return &model{
		styles:   GetTheme(theme),
		store:    st,
		scope:    scope,
		mode:     modeReview,
		files:    files,
		statuses: make(map[string]diff.Status),
	}
}

func (m *model) Init() tea.Cmd {
	if m.mode == modeDashboard {
		return tea.Batch(loadBranchesCmd(), headSHACmd(), refreshTickCmd(m.refreshInterval))
	}
	return loadStatusesCmd(m.store, m.scope, m.files)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = max(0, msg.Width-4)
		m.viewport.Height = max(0, msg.Height-12)
		m.ready = true
		m.refreshViewport()
		return m, nil

	case statusesLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.statuses = msg.statuses
		m.progress = msg.progress
		m.rebuildEntries()
		m.refreshViewport()
		return m, nil

	case statusSetMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.statuses[msg.key] = msg.status
		m.progress = msg.progress
		m.rebuildEntries()
		m.refreshViewport()
		return m, nil

	case bulkApprovedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		// Reload the full status map; a bulk update touches rows the
		// cursor never visited.
		return m, loadStatusesCmd(m.store, m.scope, m.files)

	case errorMsg:
		m.err = msg.err
		return m, tea.Quit

	// Dashboard data messages are routed by what they are, not by the
	// current mode: a tick or a detail fetch landing while the help or
	// confirm overlay is open must still re-arm the refresh chain and
	// fill its row.
	case branchesLoadedMsg, branchDetailMsg, headSHAMsg, refreshTickMsg, branchMergedMsg:
		return m.updateDashboard(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// handleKey routes keys by mode. Each mode owns its transitions;
// nothing outside this switch changes m.mode.
func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	switch m.mode {
	case modeReview:
		return m.handleReviewKey(msg)
	case modeDashboard:
		return m.handleDashboardKey(msg)
	case modeConfirm:
		return m.handleConfirmKey(msg)
	case modeHelp:
		m.mode = m.returnMode
		return m, nil
	}
	return m, nil
}

func (m *model) handleReviewKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			m.refreshViewport()
		}
	case "down", "j":
		if m.cursor < len(m.entries)-1 {
			m.cursor++
			m.refreshViewport()
		}
	case "pgup":
		m.viewport.HalfViewUp()
	case "pgdown":
		m.viewport.HalfViewDown()
	case " ":
		return m, m.toggleCurrent()
	case "f":
		m.filter = (m.filter + 1) % 3
		m.cursor = 0
		m.rebuildEntries()
		m.refreshViewport()
	case "F":
		if _, ok := m.currentEntry(); ok {
			m.pending = confirmApproveFile
			m.returnMode = modeReview
			m.mode = modeConfirm
		}
	case "A":
		if len(m.entries) > 0 {
			m.pending = confirmApproveAll
			m.returnMode = modeReview
			m.mode = modeConfirm
		}
	case "?":
		m.returnMode = modeReview
		m.mode = modeHelp
	}
	return m, nil
}

func (m *model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		action := m.pending
		m.pending = confirmNone
		m.mode = m.returnMode
		switch action {
		case confirmApproveAll:
			return m, approveAllCmd(m.store, m.scope)
		case confirmApproveFile:
			if e, ok := m.currentEntry(); ok {
				return m, approveFileCmd(m.store, m.scope, m.files[e.fileIdx].Path)
			}
		case confirmMergeBranch:
			if m.branchCursor < len(m.branches) {
				m.statusMsg = ""
				return m, mergeBranchCmd(m.store, m.baseBranch, m.branches[m.branchCursor].info.Name)
			}
		}
	case "n", "N", "esc":
		m.pending = confirmNone
		m.mode = m.returnMode
	}
	return m, nil
}

func (m *model) toggleCurrent() tea.Cmd {
	e, ok := m.currentEntry()
	if !ok {
		return nil
	}
	f := m.files[e.fileIdx]
	h := f.Hunks[e.hunkIdx]
	next := diff.StatusReviewed
	if m.statuses[hunkKey(f.Path, h.ContentHash)] == diff.StatusReviewed {
		next = diff.StatusUnreviewed
	}
	return setStatusCmd(m.store, m.scope, f.Path, h.ContentHash, next)
}

func (m *model) currentEntry() (entry, bool) {
	if m.cursor < 0 || m.cursor >= len(m.entries) {
		return entry{}, false
	}
	return m.entries[m.cursor], true
}

// rebuildEntries recomputes the visible hunk list under the active
// filter, keeping the cursor in range.
func (m *model) rebuildEntries() {
	m.entries = m.entries[:0]
	for fi, f := range m.files {
		for hi, h := range f.Hunks {
			status := m.statuses[hunkKey(f.Path, h.ContentHash)]
			switch m.filter {
			case filterUnreviewed:
				if status != diff.StatusUnreviewed {
					continue
				}
			case filterStale:
				if status != diff.StatusStale {
					continue
				}
			}
			m.entries = append(m.entries, entry{fileIdx: fi, hunkIdx: hi})
		}
	}
	if m.cursor >= len(m.entries) {
		m.cursor = len(m.entries) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *model) refreshViewport() {
	if !m.ready {
		return
	}
	e, ok := m.currentEntry()
	if !ok {
		m.viewport.SetContent(m.styles.inactive.Render("nothing to review under this filter"))
		return
	}
	h := m.files[e.fileIdx].Hunks[e.hunkIdx]
	var b strings.Builder
	header := fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.OldStart, h.OldCount, h.NewStart, h.NewCount)
	b.WriteString(m.styles.inactive.Render(header))
	b.WriteByte('\n')
	for _, line := range strings.Split(h.Content, "\n") {
		switch {
		case strings.HasPrefix(line, "+"):
			b.WriteString(m.styles.diffAdd.Render(line))
		case strings.HasPrefix(line, "-"):
			b.WriteString(m.styles.diffDel.Render(line))
		default:
			b.WriteString(m.styles.diffCtx.Render(line))
		}
		b.WriteByte('\n')
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoTop()
}

func (m *model) statusStyle(status diff.Status) lipgloss.Style {
	switch status {
	case diff.StatusReviewed:
		return m.styles.reviewed
	case diff.StatusStale:
		return m.styles.stale
	default:
		return m.styles.unreviewed
	}
}

func statusGlyph(status diff.Status) string {
	switch status {
	case diff.StatusReviewed:
		return "✓"
	case diff.StatusStale:
		return "!"
	default:
		return "○"
	}
}

func (m *model) View() string {
	if m.err != nil {
		return m.styles.error.Render("error: "+m.err.Error()) + "\n"
	}
	switch m.mode {
	case modeDashboard:
		return m.viewDashboard()
	case modeConfirm:
		return m.viewConfirm()
	case modeHelp:
		return m.viewHelp()
	default:
		return m.viewReview()
	}
}

func (m *model) viewReview() string {
	var b strings.Builder
	title := fmt.Sprintf("review %s  [%d/%d reviewed, %d stale]  filter: %s",
		m.scope, m.progress.Reviewed, m.progress.TotalHunks, m.progress.Stale, m.filter)
	b.WriteString(m.styles.header.Render(title))
	b.WriteByte('\n')

	lastFile := -1
	for i, e := range m.entries {
		f := m.files[e.fileIdx]
		if e.fileIdx != lastFile {
			b.WriteString(m.styles.fileHeader.Render(f.Path))
			b.WriteByte('\n')
			lastFile = e.fileIdx
		}
		h := f.Hunks[e.hunkIdx]
		status := m.statuses[hunkKey(f.Path, h.ContentHash)]
		line := fmt.Sprintf("  %s hunk @%d %s", statusGlyph(status), h.NewStart, status)
		if i == m.cursor {
			b.WriteString(m.styles.selected.Render(line))
		} else {
			b.WriteString(m.statusStyle(status).Render(line))
		}
		b.WriteByte('\n')
	}
	if len(m.entries) == 0 {
		b.WriteString(m.styles.inactive.Render("  no hunks match the filter"))
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	b.WriteString(m.viewport.View())
	b.WriteString(m.styles.footer.Render(
		"space toggle · f filter · F approve file · A approve all · ? help · q quit"))
	return m.styles.app.Render(b.String())
}

func (m *model) viewConfirm() string {
	var what string
	switch m.pending {
	case confirmApproveAll:
		what = fmt.Sprintf("Approve all %d remaining hunks in %s?", m.progress.Unreviewed+m.progress.Stale, m.scope)
	case confirmApproveFile:
		if e, ok := m.currentEntry(); ok {
			what = fmt.Sprintf("Approve every hunk in %s?", m.files[e.fileIdx].Path)
		}
	case confirmMergeBranch:
		if m.branchCursor < len(m.branches) {
			what = fmt.Sprintf("Merge %s into %s?", m.branches[m.branchCursor].info.Name, m.baseBranch)
		}
	}
	body := m.styles.prompt.Render(what) + "\n\n" + m.styles.inactive.Render("y confirm · n cancel")
	return m.styles.app.Render(m.styles.modal.Render(body))
}

func (m *model) viewHelp() string {
	help := m.styles.header.Render("keys") + `

  up/k, down/j   move between hunks
  space          toggle reviewed
  f              cycle filter (all / unreviewed / stale)
  F              approve whole file
  A              approve everything in scope
  enter          load branch detail (dashboard)
  M              merge the selected branch once its gate passes (dashboard)
  r              reload branches (dashboard)
  ?              this help
  q              quit
`
	return m.styles.app.Render(help + "\n" + m.styles.inactive.Render("press any key to go back"))
}
