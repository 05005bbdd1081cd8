// Package gate decides whether a scope is fully reviewed and manages
// the pre-commit hook that enforces it.
package gate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sevigo/git-review/internal/store"
)

// hookMarker identifies hooks written by this tool. Disable refuses to
// touch a pre-commit hook that does not carry it.
const hookMarker = "# Installed by git-review"

const hookScript = `#!/bin/sh
` + hookMarker + `
exec git-review gate check
`

// Check reports whether the scope passes the review gate: no
// unreviewed and no stale hunks. An empty scope passes.
func Check(ctx context.Context, st store.Store, scope string) (bool, error) {
	p, err := st.Progress(ctx, scope)
	if err != nil {
		return false, err
	}
	return p.Complete(), nil
}

// Enable installs the pre-commit hook under repoRoot/.git/hooks. An
// existing foreign hook is kept as pre-commit.backup.
func Enable(repoRoot string) error {
	hooksDir := filepath.Join(repoRoot, ".git", "hooks")
	if err := os.MkdirAll(hooksDir, 0o755); err != nil {
		return fmt.Errorf("failed to create hooks directory: %w", err)
	}

	hookPath := filepath.Join(hooksDir, "pre-commit")
	if existing, err := os.ReadFile(hookPath); err == nil {
		if !strings.Contains(string(existing), hookMarker) {
			backupPath := hookPath + ".backup"
			if err := os.WriteFile(backupPath, existing, 0o755); err != nil {
				return fmt.Errorf("failed to back up existing hook: %w", err)
			}
		}
	}

	if err := os.WriteFile(hookPath, []byte(hookScript), 0o755); err != nil {
		return fmt.Errorf("failed to write pre-commit hook: %w", err)
	}
	return nil
}

// Disable removes the pre-commit hook if this tool installed it and
// restores a backup when one exists. A hook without the marker is left
// alone.
func Disable(repoRoot string) error {
	hookPath := filepath.Join(repoRoot, ".git", "hooks", "pre-commit")
	content, err := os.ReadFile(hookPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read pre-commit hook: %w", err)
	}
	if !strings.Contains(string(content), hookMarker) {
		return fmt.Errorf("pre-commit hook was not installed by git-review, leaving it in place")
	}

	if err := os.Remove(hookPath); err != nil {
		return fmt.Errorf("failed to remove pre-commit hook: %w", err)
	}

	backupPath := hookPath + ".backup"
	if backup, err := os.ReadFile(backupPath); err == nil {
		if err := os.WriteFile(hookPath, backup, 0o755); err != nil {
			return fmt.Errorf("failed to restore hook backup: %w", err)
		}
		_ = os.Remove(backupPath)
	}
	return nil
}

// Installed reports whether the active pre-commit hook is ours.
func Installed(repoRoot string) bool {
	content, err := os.ReadFile(filepath.Join(repoRoot, ".git", "hooks", "pre-commit"))
	return err == nil && strings.Contains(string(content), hookMarker)
}
