// Package diff parses unified diff output into files and hunks and
// assigns every hunk a content-addressed identity.
package diff

import "fmt"

// Status is the review state of a single hunk. The set is closed:
// persisted values outside it are a decode error, never a default.
type Status int

const (
	StatusUnreviewed Status = iota
	StatusReviewed
	StatusStale
)

func (s Status) String() string {
	switch s {
	case StatusUnreviewed:
		return "unreviewed"
	case StatusReviewed:
		return "reviewed"
	case StatusStale:
		return "stale"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// InvalidStatusError reports a persisted status value outside the
// known set.
type InvalidStatusError struct {
	Value string
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("invalid hunk status %q", e.Value)
}

// ParseStatus decodes the stored string form of a Status.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "unreviewed":
		return StatusUnreviewed, nil
	case "reviewed":
		return StatusReviewed, nil
	case "stale":
		return StatusStale, nil
	default:
		return StatusUnreviewed, &InvalidStatusError{Value: s}
	}
}

// Hunk is one contiguous change block from a unified diff. Content
// keeps the raw body lines (prefixes included) joined by newlines;
// ContentHash is the hex SHA-256 of Content and is the hunk's identity
// together with the file path.
type Hunk struct {
	OldStart    int
	OldCount    int
	NewStart    int
	NewCount    int
	Content     string
	ContentHash string
	Status      Status
}

// File groups the hunks of a single path. Files without hunks are
// never emitted by the parser.
type File struct {
	Path  string
	Hunks []Hunk
}

// HunkCount returns the total number of hunks across files.
func HunkCount(files []File) int {
	n := 0
	for _, f := range files {
		n += len(f.Hunks)
	}
	return n
}
