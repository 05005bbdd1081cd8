package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sevigo/git-review/internal/diff"
	"github.com/sevigo/git-review/internal/store"
)

// RunReview opens the hunk-by-hunk review screen for one scope.
func RunReview(st store.Store, scope string, files []diff.File, theme ThemeName) error {
	m := newReviewModel(st, scope, files, theme)
	return runProgram(m)
}

// RunDashboard opens the branch overview screen.
func RunDashboard(st store.Store, baseBranch string, refreshInterval time.Duration, theme ThemeName) error {
	m := newDashboardModel(st, baseBranch, refreshInterval, theme)
	return runProgram(m)
}

func runProgram(m *model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("terminal session failed: %w", err)
	}
	if fm, ok := final.(*model); ok && fm.err != nil {
		return fm.err
	}
	return nil
}
