package tui

import (
	"time"

	"github.com/sevigo/git-review/internal/diff"
	"github.com/sevigo/git-review/internal/git"
	"github.com/sevigo/git-review/internal/store"
)

// statusesLoadedMsg delivers the synced per-hunk statuses and the
// scope progress after loadStatusesCmd.
type statusesLoadedMsg struct {
	statuses map[string]diff.Status
	progress store.Progress
	err      error
}

// statusSetMsg confirms a single hunk toggle.
type statusSetMsg struct {
	key      string
	status   diff.Status
	progress store.Progress
	err      error
}

// bulkApprovedMsg confirms an approve-all or approve-file operation.
type bulkApprovedMsg struct {
	count int
	err   error
}

// branchesLoadedMsg delivers the dashboard branch listing.
type branchesLoadedMsg struct {
	branches []git.BranchInfo
	err      error
}

// branchDetailMsg delivers one branch's lazily fetched metadata. A
// non-nil err leaves the row blank; the dashboard keeps running.
type branchDetailMsg struct {
	name     string
	detail   git.BranchDetail
	progress store.Progress
	err      error
}

// branchMergedMsg reports the outcome of a dashboard merge.
type branchMergedMsg struct {
	name string
	err  error
}

// refreshTickMsg drives the periodic dashboard staleness check.
type refreshTickMsg time.Time

// headSHAMsg reports the current HEAD so the dashboard can decide
// whether its listing is stale.
type headSHAMsg struct {
	sha string
	err error
}

type errorMsg struct {
	err error
}
