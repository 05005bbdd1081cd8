package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sevigo/git-review/internal/git"
	"github.com/sevigo/git-review/internal/store"
)

// branchRow is one dashboard line. Detail and progress stay nil until
// the row is opened; a fetch failure leaves the row blank instead of
// killing the session.
type branchRow struct {
	info     git.BranchInfo
	detail   *git.BranchDetail
	progress *store.Progress
	loading  bool
	failed   bool
}

func newDashboardModel(st store.Store, baseBranch string, interval time.Duration, theme ThemeName) *model {
	return &model{
		styles:          GetTheme(theme),
		store:           st,
		mode:            modeDashboard,
		baseBranch:      baseBranch,
		refreshInterval: interval,
		statuses:        nil,
	}
}

func (m *model) updateDashboard(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case branchesLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.branches = m.branches[:0]
		for _, b := range msg.branches {
			if b.Name == m.baseBranch {
				continue
			}
			m.branches = append(m.branches, branchRow{info: b})
		}
		if m.branchCursor >= len(m.branches) {
			m.branchCursor = 0
		}
		return m, nil

	case branchDetailMsg:
		for i := range m.branches {
			if m.branches[i].info.Name != msg.name {
				continue
			}
			m.branches[i].loading = false
			if msg.err != nil {
				m.branches[i].failed = true
				break
			}
			detail := msg.detail
			progress := msg.progress
			m.branches[i].detail = &detail
			m.branches[i].progress = &progress
			m.branches[i].failed = false
		}
		return m, nil

	case headSHAMsg:
		if msg.err == nil && msg.sha != m.headSHA {
			m.headSHA = msg.sha
			return m, loadBranchesCmd()
		}
		return m, nil

	case refreshTickMsg:
		return m, tea.Batch(headSHACmd(), refreshTickCmd(m.refreshInterval))

	case branchMergedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("merge of %s failed: %v", msg.name, msg.err)
			return m, nil
		}
		m.statusMsg = fmt.Sprintf("merged %s into %s", msg.name, m.baseBranch)
		return m, loadBranchesCmd()
	}
	return m, nil
}

func (m *model) handleDashboardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.branchCursor > 0 {
			m.branchCursor--
		}
	case "down", "j":
		if m.branchCursor < len(m.branches)-1 {
			m.branchCursor++
		}
	case "enter":
		if m.branchCursor < len(m.branches) {
			row := &m.branches[m.branchCursor]
			if row.detail == nil && !row.loading {
				row.loading = true
				return m, branchDetailCmd(m.store, m.baseBranch, row.info.Name)
			}
		}
	case "M":
		if m.branchCursor < len(m.branches) {
			m.pending = confirmMergeBranch
			m.returnMode = modeDashboard
			m.mode = modeConfirm
		}
	case "r":
		return m, loadBranchesCmd()
	case "?":
		m.returnMode = modeDashboard
		m.mode = modeHelp
	}
	return m, nil
}

func (m *model) viewDashboard() string {
	var b strings.Builder
	b.WriteString(m.styles.header.Render(fmt.Sprintf("branches against %s", m.baseBranch)))
	b.WriteByte('\n')

	if len(m.branches) == 0 {
		b.WriteString(m.styles.inactive.Render("  no branches"))
		b.WriteByte('\n')
	}
	for i, row := range m.branches {
		line := fmt.Sprintf("  %-30s %s %s", row.info.Name, row.info.LastCommitSHA, m.renderRowDetail(row))
		if i == m.branchCursor {
			b.WriteString(m.styles.selected.Render(line))
		} else {
			b.WriteString(line)
		}
		b.WriteByte('\n')
	}

	if m.statusMsg != "" {
		b.WriteByte('\n')
		b.WriteString(m.styles.inactive.Render(m.statusMsg))
		b.WriteByte('\n')
	}
	b.WriteString(m.styles.footer.Render("enter detail · M merge · r reload · ? help · q quit"))
	return m.styles.app.Render(b.String())
}

func (m *model) renderRowDetail(row branchRow) string {
	switch {
	case row.loading:
		return m.styles.inactive.Render("loading...")
	case row.failed:
		return m.styles.inactive.Render("-")
	case row.detail == nil:
		return ""
	}
	d := row.detail
	p := row.progress
	detail := fmt.Sprintf("↑%d ↓%d  %d files +%d -%d",
		d.Ahead, d.Behind, d.Stats.FileCount, d.Stats.Insertions, d.Stats.Deletions)
	if p.TotalHunks == 0 {
		return detail + "  " + m.styles.reviewed.Render("nothing to review")
	}
	review := fmt.Sprintf("%d/%d reviewed", p.Reviewed, p.TotalHunks)
	if p.Complete() {
		return detail + "  " + m.styles.reviewed.Render(review+" ✓")
	}
	if p.Stale > 0 {
		review += fmt.Sprintf(", %d stale", p.Stale)
		return detail + "  " + m.styles.stale.Render(review)
	}
	return detail + "  " + m.styles.unreviewed.Render(review)
}
