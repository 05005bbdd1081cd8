// Package git shells out to the git binary for everything this tool
// needs from version control. Diff computation stays in git; this
// package only transports and parses its output.
package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// ErrNotARepo is returned when the working directory is not inside a
// git repository.
var ErrNotARepo = errors.New("not a git repository")

// InvalidRefError reports a ref name that failed validation before any
// subprocess was started.
type InvalidRefError struct {
	Ref string
}

func (e *InvalidRefError) Error() string {
	return fmt.Sprintf("invalid git ref %q", e.Ref)
}

// CommandError carries the stderr of a failed git invocation.
type CommandError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("git %s: %s", strings.Join(e.Args, " "), msg)
}

func (e *CommandError) Unwrap() error { return e.Err }

// ValidateRef checks a ref or ref range against the allowed charset
// before it is ever passed to a subprocess. Git ref syntax plus range
// and revision operators; anything else is rejected.
func ValidateRef(ref string) error {
	if ref == "" {
		return &InvalidRefError{Ref: ref}
	}
	for _, r := range ref {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune("-_/.~^@:{}", r):
		default:
			return &InvalidRefError{Ref: ref}
		}
	}
	return nil
}

func run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return "", &CommandError{Args: args, Stderr: stderr.String(), Err: err}
	}
	return string(out), nil
}

// FindRepoRoot returns the absolute path of the enclosing repository's
// top-level directory.
func FindRepoRoot(ctx context.Context) (string, error) {
	out, err := run(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotARepo, err)
	}
	return strings.TrimSpace(out), nil
}

// GetDiff returns the unified diff for a validated ref or ref range
// against the working tree.
func GetDiff(ctx context.Context, refRange string) (string, error) {
	if err := ValidateRef(refRange); err != nil {
		return "", err
	}
	return run(ctx, "diff", refRange)
}

// HeadSHA returns the current commit hash.
func HeadSHA(ctx context.Context) (string, error) {
	out, err := run(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// CurrentBranch returns the checked-out branch name, or the empty
// string for a detached HEAD.
func CurrentBranch(ctx context.Context) (string, error) {
	out, err := run(ctx, "branch", "--show-current")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// DetectDefaultBranch resolves the repository's default branch:
// origin/HEAD when set, then main, then master.
func DetectDefaultBranch(ctx context.Context) (string, error) {
	if out, err := run(ctx, "symbolic-ref", "refs/remotes/origin/HEAD", "--short"); err == nil {
		name := strings.TrimSpace(out)
		if _, rest, ok := strings.Cut(name, "/"); ok {
			return rest, nil
		}
	}
	for _, candidate := range []string{"main", "master"} {
		if _, err := run(ctx, "rev-parse", "--verify", "refs/heads/"+candidate); err == nil {
			return candidate, nil
		}
	}
	return "", errors.New("could not detect default branch")
}

// BranchInfo is one row of the branch listing.
type BranchInfo struct {
	Name           string
	LastCommitSHA  string
	LastCommitUnix int64
	Author         string
}

// ListBranches returns all local branches with their tip metadata,
// newest first. One for-each-ref call, no per-branch subprocesses.
func ListBranches(ctx context.Context) ([]BranchInfo, error) {
	out, err := run(ctx, "for-each-ref", "refs/heads",
		"--sort=-committerdate",
		"--format=%(refname:short)%09%(objectname:short)%09%(committerdate:unix)%09%(authorname)")
	if err != nil {
		return nil, err
	}
	var branches []BranchInfo
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if b, ok := parseBranchLine(line); ok {
			branches = append(branches, b)
		}
	}
	return branches, nil
}

func parseBranchLine(line string) (BranchInfo, bool) {
	parts := strings.Split(line, "\t")
	if len(parts) < 4 || parts[0] == "" {
		return BranchInfo{}, false
	}
	unix, _ := strconv.ParseInt(parts[2], 10, 64)
	return BranchInfo{
		Name:           parts[0],
		LastCommitSHA:  parts[1],
		LastCommitUnix: unix,
		Author:         parts[3],
	}, true
}

// DiffStats summarizes a branch diff.
type DiffStats struct {
	FileCount  int
	Insertions int
	Deletions  int
}

// BranchDetail is the lazily fetched per-branch metadata for the
// dashboard.
type BranchDetail struct {
	Ahead  int
	Behind int
	Stats  DiffStats
}

// GetBranchDetail computes ahead/behind counts and diff stats of a
// branch against base.
func GetBranchDetail(ctx context.Context, base, branch string) (BranchDetail, error) {
	if err := ValidateRef(base); err != nil {
		return BranchDetail{}, err
	}
	if err := ValidateRef(branch); err != nil {
		return BranchDetail{}, err
	}

	var detail BranchDetail
	out, err := run(ctx, "rev-list", "--left-right", "--count", base+"..."+branch)
	if err != nil {
		return BranchDetail{}, err
	}
	detail.Behind, detail.Ahead, err = parseAheadBehind(out)
	if err != nil {
		return BranchDetail{}, err
	}

	out, err = run(ctx, "diff", "--numstat", base+"..."+branch)
	if err != nil {
		return BranchDetail{}, err
	}
	detail.Stats = parseNumstat(out)
	return detail, nil
}

func parseAheadBehind(out string) (behind, ahead int, err error) {
	fields := strings.Fields(strings.TrimSpace(out))
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("unexpected rev-list output %q", strings.TrimSpace(out))
	}
	behind, err = strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, err
	}
	ahead, err = strconv.Atoi(fields[1])
	return behind, ahead, err
}

// parseNumstat folds numstat lines into totals. Binary entries report
// "-" counts and contribute to the file count only.
func parseNumstat(out string) DiffStats {
	var stats DiffStats
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		stats.FileCount++
		if add, err := strconv.Atoi(fields[0]); err == nil {
			stats.Insertions += add
		}
		if del, err := strconv.Atoi(fields[1]); err == nil {
			stats.Deletions += del
		}
	}
	return stats
}

// WorktreeStatus reports pending local changes.
type WorktreeStatus struct {
	Modified  int
	Untracked int
}

func (w WorktreeStatus) Clean() bool { return w.Modified == 0 && w.Untracked == 0 }

// CheckWorktree parses porcelain status into modified and untracked
// counts.
func CheckWorktree(ctx context.Context) (WorktreeStatus, error) {
	out, err := run(ctx, "status", "--porcelain")
	if err != nil {
		return WorktreeStatus{}, err
	}
	return parseWorktreeStatus(out), nil
}

func parseWorktreeStatus(out string) WorktreeStatus {
	var status WorktreeStatus
	for _, line := range strings.Split(out, "\n") {
		if len(line) < 2 {
			continue
		}
		if strings.HasPrefix(line, "??") {
			status.Untracked++
		} else {
			status.Modified++
		}
	}
	return status
}

// MergeCheck is the outcome of a non-destructive merge probe.
type MergeCheck int

const (
	MergeUnknown MergeCheck = iota
	MergeClean
	MergeConflicts
)

// CheckMergeConflicts probes whether branch merges cleanly into base
// without touching the worktree. Uses merge-tree --write-tree and
// falls back to the legacy 3-argument form on older git.
func CheckMergeConflicts(ctx context.Context, base, branch string) (MergeCheck, error) {
	if err := ValidateRef(base); err != nil {
		return MergeUnknown, err
	}
	if err := ValidateRef(branch); err != nil {
		return MergeUnknown, err
	}

	_, err := run(ctx, "merge-tree", "--write-tree", base, branch)
	if err == nil {
		return MergeClean, nil
	}
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		var exitErr *exec.ExitError
		if errors.As(cmdErr.Err, &exitErr) && exitErr.ExitCode() == 1 {
			return MergeConflicts, nil
		}
	}

	mergeBase, err := run(ctx, "merge-base", base, branch)
	if err != nil {
		return MergeUnknown, err
	}
	out, err := run(ctx, "merge-tree", strings.TrimSpace(mergeBase), base, branch)
	if err != nil {
		return MergeUnknown, err
	}
	if strings.Contains(out, "<<<<<<<") {
		return MergeConflicts, nil
	}
	return MergeClean, nil
}

// MergeBranch merges branch into the current branch with --no-ff,
// aborting the merge on failure. With deleteAfter the merged branch is
// removed.
func MergeBranch(ctx context.Context, branch string, deleteAfter bool) error {
	if err := ValidateRef(branch); err != nil {
		return err
	}
	if _, err := run(ctx, "merge", "--no-ff", branch); err != nil {
		_, _ = run(ctx, "merge", "--abort")
		return fmt.Errorf("merge of %s failed: %w", branch, err)
	}
	if deleteAfter {
		if _, err := run(ctx, "branch", "-d", branch); err != nil {
			return fmt.Errorf("merged but could not delete %s: %w", branch, err)
		}
	}
	return nil
}

// Commit runs git commit with the caller's extra arguments, wired to
// the user's terminal so editors and hooks behave normally.
func Commit(ctx context.Context, extraArgs []string) error {
	args := append([]string{"commit"}, extraArgs...)
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
