package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/git-review/internal/diff"
)

func newTestStore(t *testing.T) (Store, *DB) {
	t.Helper()
	db, cleanup, err := Open(filepath.Join(t.TempDir(), "review.db"))
	require.NoError(t, err)
	t.Cleanup(cleanup)
	return NewStore(db), db
}

func filesOf(hunks map[string][]string) []diff.File {
	var files []diff.File
	for path, bodies := range hunks {
		f := diff.File{Path: path}
		for _, body := range bodies {
			f.Hunks = append(f.Hunks, diff.Hunk{
				Content:     body,
				ContentHash: diff.HashContent(body),
			})
		}
		files = append(files, f)
	}
	return files
}

func TestGetStatus_DefaultsToUnreviewed(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	status, err := st.GetStatus(ctx, "main", "a.go", diff.HashContent("+x"))
	require.NoError(t, err)
	assert.Equal(t, diff.StatusUnreviewed, status)
}

func TestSetStatus_RoundTrip(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()
	hash := diff.HashContent("+x")

	require.NoError(t, st.SetStatus(ctx, "main", "a.go", hash, diff.StatusReviewed))
	status, err := st.GetStatus(ctx, "main", "a.go", hash)
	require.NoError(t, err)
	assert.Equal(t, diff.StatusReviewed, status)

	require.NoError(t, st.SetStatus(ctx, "main", "a.go", hash, diff.StatusUnreviewed))
	status, err = st.GetStatus(ctx, "main", "a.go", hash)
	require.NoError(t, err)
	assert.Equal(t, diff.StatusUnreviewed, status)
}

func TestSetStatus_ReviewedStampsTimestamp(t *testing.T) {
	st, db := newTestStore(t)
	ctx := context.Background()
	hash := diff.HashContent("+x")

	require.NoError(t, st.SetStatus(ctx, "main", "a.go", hash, diff.StatusReviewed))
	var reviewedAt *string
	err := db.QueryRowContext(ctx,
		`SELECT reviewed_at FROM hunks WHERE scope = ? AND content_hash = ?`,
		"main", hash).Scan(&reviewedAt)
	require.NoError(t, err)
	require.NotNil(t, reviewedAt)

	require.NoError(t, st.SetStatus(ctx, "main", "a.go", hash, diff.StatusUnreviewed))
	err = db.QueryRowContext(ctx,
		`SELECT reviewed_at FROM hunks WHERE scope = ? AND content_hash = ?`,
		"main", hash).Scan(&reviewedAt)
	require.NoError(t, err)
	assert.Nil(t, reviewedAt)
}

func TestGetStatus_UnknownStoredValue(t *testing.T) {
	st, db := newTestStore(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx,
		`INSERT INTO hunks (scope, file_path, content_hash, status, created_at)
		 VALUES ('main', 'a.go', 'deadbeef', 'approved', '2026-01-01T00:00:00Z')`)
	require.NoError(t, err)

	_, err = st.GetStatus(ctx, "main", "a.go", "deadbeef")
	var invalid *diff.InvalidStatusError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "approved", invalid.Value)
}

func TestSyncWithDiff_InsertsUnreviewed(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	files := filesOf(map[string][]string{
		"a.go": {"+one", "+two"},
		"b.go": {"+three"},
	})
	require.NoError(t, st.SyncWithDiff(ctx, "main", files))

	p, err := st.Progress(ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, 3, p.TotalHunks)
	assert.Equal(t, 3, p.Unreviewed)
	assert.Equal(t, 0, p.Reviewed)
	assert.Equal(t, 0, p.Stale)
	assert.Equal(t, 2, p.TotalFiles)
	assert.Equal(t, 2, p.FilesRemaining)
}

func TestSyncWithDiff_Idempotent(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	files := filesOf(map[string][]string{"a.go": {"+one", "+two"}})
	require.NoError(t, st.SyncWithDiff(ctx, "main", files))
	require.NoError(t, st.SyncWithDiff(ctx, "main", files))
	require.NoError(t, st.SyncWithDiff(ctx, "main", files))

	p, err := st.Progress(ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, 2, p.TotalHunks)
	assert.Equal(t, 2, p.Unreviewed)
}

func TestSyncWithDiff_PreservesReviewed(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	files := filesOf(map[string][]string{"a.go": {"+one", "+two"}})
	require.NoError(t, st.SyncWithDiff(ctx, "main", files))
	require.NoError(t, st.SetStatus(ctx, "main", "a.go", diff.HashContent("+one"), diff.StatusReviewed))

	require.NoError(t, st.SyncWithDiff(ctx, "main", files))

	status, err := st.GetStatus(ctx, "main", "a.go", diff.HashContent("+one"))
	require.NoError(t, err)
	assert.Equal(t, diff.StatusReviewed, status)
}

func TestSyncWithDiff_MarksMissingStale(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	before := filesOf(map[string][]string{"a.go": {"+old", "+kept"}})
	require.NoError(t, st.SyncWithDiff(ctx, "main", before))
	require.NoError(t, st.SetStatus(ctx, "main", "a.go", diff.HashContent("+old"), diff.StatusReviewed))

	after := filesOf(map[string][]string{"a.go": {"+new", "+kept"}})
	require.NoError(t, st.SyncWithDiff(ctx, "main", after))

	status, err := st.GetStatus(ctx, "main", "a.go", diff.HashContent("+old"))
	require.NoError(t, err)
	assert.Equal(t, diff.StatusStale, status)

	status, err = st.GetStatus(ctx, "main", "a.go", diff.HashContent("+new"))
	require.NoError(t, err)
	assert.Equal(t, diff.StatusUnreviewed, status)

	status, err = st.GetStatus(ctx, "main", "a.go", diff.HashContent("+kept"))
	require.NoError(t, err)
	assert.Equal(t, diff.StatusUnreviewed, status)
}

func TestSyncWithDiff_StaleNotRevived(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	v1 := filesOf(map[string][]string{"a.go": {"+one"}})
	require.NoError(t, st.SyncWithDiff(ctx, "main", v1))

	v2 := filesOf(map[string][]string{"a.go": {"+other"}})
	require.NoError(t, st.SyncWithDiff(ctx, "main", v2))

	// The original content comes back; its stale record stays stale.
	require.NoError(t, st.SyncWithDiff(ctx, "main", v1))
	status, err := st.GetStatus(ctx, "main", "a.go", diff.HashContent("+one"))
	require.NoError(t, err)
	assert.Equal(t, diff.StatusStale, status)
}

func TestSyncWithDiff_ScopesAreIndependent(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.SyncWithDiff(ctx, "main", filesOf(map[string][]string{"a.go": {"+one"}})))
	require.NoError(t, st.SyncWithDiff(ctx, "develop", filesOf(map[string][]string{"a.go": {"+two"}})))

	// Syncing develop with different content must not stale main.
	p, err := st.Progress(ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, 0, p.Stale)

	scopes, err := st.ListScopes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"develop", "main"}, scopes)
}

func TestApproveAll_CountsOnlyChanged(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	files := filesOf(map[string][]string{"a.go": {"+one", "+two", "+three"}})
	require.NoError(t, st.SyncWithDiff(ctx, "main", files))
	require.NoError(t, st.SetStatus(ctx, "main", "a.go", diff.HashContent("+one"), diff.StatusReviewed))

	n, err := st.ApproveAll(ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = st.ApproveAll(ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	p, err := st.Progress(ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, 3, p.Reviewed)
	assert.True(t, p.Complete())
}

func TestApproveAll_CoversStale(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.SyncWithDiff(ctx, "main", filesOf(map[string][]string{"a.go": {"+one"}})))
	require.NoError(t, st.SyncWithDiff(ctx, "main", filesOf(map[string][]string{"a.go": {"+two"}})))

	n, err := st.ApproveAll(ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	p, err := st.Progress(ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, 0, p.Stale)
	assert.True(t, p.Complete())
}

func TestApproveFile_LimitsToPath(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	files := filesOf(map[string][]string{
		"a.go": {"+one", "+two"},
		"b.go": {"+three"},
	})
	require.NoError(t, st.SyncWithDiff(ctx, "main", files))

	n, err := st.ApproveFile(ctx, "main", "a.go")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	p, err := st.Progress(ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, 2, p.Reviewed)
	assert.Equal(t, 1, p.Unreviewed)
	assert.Equal(t, 1, p.FilesRemaining)
}

func TestReset_DropsScopeOnly(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.SyncWithDiff(ctx, "main", filesOf(map[string][]string{"a.go": {"+one"}})))
	require.NoError(t, st.SyncWithDiff(ctx, "develop", filesOf(map[string][]string{"a.go": {"+one"}})))

	require.NoError(t, st.Reset(ctx, "main"))

	p, err := st.Progress(ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, 0, p.TotalHunks)

	scopes, err := st.ListScopes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"develop"}, scopes)
}

func TestProgress_EmptyScopeIsComplete(t *testing.T) {
	st, _ := newTestStore(t)

	p, err := st.Progress(context.Background(), "main")
	require.NoError(t, err)
	assert.Equal(t, Progress{}, p)
	assert.True(t, p.Complete())
}

// Full review cycle: sync a parsed diff, review hunk by hunk, amend,
// re-review, approve the remainder.
func TestReviewCycle(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	parsed := diff.Parse(`diff --git a/svc.go b/svc.go
--- a/svc.go
+++ b/svc.go
@@ -1,2 +1,3 @@
 package svc
+var timeout = 30

@@ -10,2 +11,2 @@
-const retries = 1
+const retries = 3

`)
	require.Len(t, parsed, 1)
	require.Len(t, parsed[0].Hunks, 2)
	require.NoError(t, st.SyncWithDiff(ctx, "main", parsed))

	for _, h := range parsed[0].Hunks {
		require.NoError(t, st.SetStatus(ctx, "main", "svc.go", h.ContentHash, diff.StatusReviewed))
	}
	p, err := st.Progress(ctx, "main")
	require.NoError(t, err)
	assert.True(t, p.Complete())

	// Amend: first hunk unchanged, second rewritten.
	amended := diff.Parse(`diff --git a/svc.go b/svc.go
--- a/svc.go
+++ b/svc.go
@@ -1,2 +1,3 @@
 package svc
+var timeout = 30

@@ -10,2 +11,2 @@
-const retries = 1
+const retries = 5

`)
	require.NoError(t, st.SyncWithDiff(ctx, "main", amended))

	p, err = st.Progress(ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, 1, p.Reviewed)
	assert.Equal(t, 1, p.Unreviewed)
	assert.Equal(t, 1, p.Stale)
	assert.False(t, p.Complete())

	_, err = st.ApproveAll(ctx, "main")
	require.NoError(t, err)
	p, err = st.Progress(ctx, "main")
	require.NoError(t, err)
	assert.True(t, p.Complete())
}
