package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sevigo/git-review/internal/diff"
	"github.com/sevigo/git-review/internal/git"
	"github.com/sevigo/git-review/internal/store"
)

// All store reads happen behind a sync so the view never shows state
// from a diff snapshot that no longer exists.

func loadStatusesCmd(st store.Store, scope string, files []diff.File) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if err := st.SyncWithDiff(ctx, scope, files); err != nil {
			return statusesLoadedMsg{err: err}
		}
		statuses := make(map[string]diff.Status)
		for _, f := range files {
			for _, h := range f.Hunks {
				status, err := st.GetStatus(ctx, scope, f.Path, h.ContentHash)
				if err != nil {
					return statusesLoadedMsg{err: err}
				}
				statuses[hunkKey(f.Path, h.ContentHash)] = status
			}
		}
		progress, err := st.Progress(ctx, scope)
		if err != nil {
			return statusesLoadedMsg{err: err}
		}
		return statusesLoadedMsg{statuses: statuses, progress: progress}
	}
}

func setStatusCmd(st store.Store, scope, path, hash string, status diff.Status) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if err := st.SetStatus(ctx, scope, path, hash, status); err != nil {
			return statusSetMsg{err: err}
		}
		progress, err := st.Progress(ctx, scope)
		if err != nil {
			return statusSetMsg{err: err}
		}
		return statusSetMsg{key: hunkKey(path, hash), status: status, progress: progress}
	}
}

func approveAllCmd(st store.Store, scope string) tea.Cmd {
	return func() tea.Msg {
		count, err := st.ApproveAll(context.Background(), scope)
		return bulkApprovedMsg{count: count, err: err}
	}
}

func approveFileCmd(st store.Store, scope, path string) tea.Cmd {
	return func() tea.Msg {
		count, err := st.ApproveFile(context.Background(), scope, path)
		return bulkApprovedMsg{count: count, err: err}
	}
}

func loadBranchesCmd() tea.Cmd {
	return func() tea.Msg {
		branches, err := git.ListBranches(context.Background())
		return branchesLoadedMsg{branches: branches, err: err}
	}
}

// branchDetailCmd fetches one branch's comparison against base and its
// review progress, syncing the branch scope first.
func branchDetailCmd(st store.Store, base, branch string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		detail, err := git.GetBranchDetail(ctx, base, branch)
		if err != nil {
			return branchDetailMsg{name: branch, err: err}
		}
		scope := base + "..." + branch
		raw, err := git.GetDiff(ctx, scope)
		if err != nil {
			return branchDetailMsg{name: branch, err: err}
		}
		if err := st.SyncWithDiff(ctx, scope, diff.Parse(raw)); err != nil {
			return branchDetailMsg{name: branch, err: err}
		}
		progress, err := st.Progress(ctx, scope)
		if err != nil {
			return branchDetailMsg{name: branch, err: err}
		}
		return branchDetailMsg{name: branch, detail: detail, progress: progress}
	}
}

// mergeBranchCmd merges a branch into base after every precondition
// holds: base checked out, clean worktree, review gate passed, and a
// conflict-free merge probe. The branch is kept after the merge.
func mergeBranchCmd(st store.Store, base, branch string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		current, err := git.CurrentBranch(ctx)
		if err != nil {
			return branchMergedMsg{name: branch, err: err}
		}
		if current != base {
			return branchMergedMsg{name: branch, err: fmt.Errorf("check out %s first", base)}
		}
		worktree, err := git.CheckWorktree(ctx)
		if err != nil {
			return branchMergedMsg{name: branch, err: err}
		}
		if !worktree.Clean() {
			return branchMergedMsg{name: branch, err: fmt.Errorf("worktree has %d modified and %d untracked files", worktree.Modified, worktree.Untracked)}
		}

		scope := base + "..." + branch
		raw, err := git.GetDiff(ctx, scope)
		if err != nil {
			return branchMergedMsg{name: branch, err: err}
		}
		if err := st.SyncWithDiff(ctx, scope, diff.Parse(raw)); err != nil {
			return branchMergedMsg{name: branch, err: err}
		}
		progress, err := st.Progress(ctx, scope)
		if err != nil {
			return branchMergedMsg{name: branch, err: err}
		}
		if !progress.Complete() {
			return branchMergedMsg{name: branch, err: fmt.Errorf("review gate open: %d unreviewed, %d stale", progress.Unreviewed, progress.Stale)}
		}

		check, err := git.CheckMergeConflicts(ctx, base, branch)
		if err != nil {
			return branchMergedMsg{name: branch, err: err}
		}
		if check == git.MergeConflicts {
			return branchMergedMsg{name: branch, err: fmt.Errorf("would conflict with %s", base)}
		}

		if err := git.MergeBranch(ctx, branch, false); err != nil {
			return branchMergedMsg{name: branch, err: err}
		}
		return branchMergedMsg{name: branch}
	}
}

func headSHACmd() tea.Cmd {
	return func() tea.Msg {
		sha, err := git.HeadSHA(context.Background())
		return headSHAMsg{sha: sha, err: err}
	}
}

func refreshTickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return refreshTickMsg(t)
	})
}
