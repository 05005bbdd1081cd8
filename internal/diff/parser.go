package diff

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// cursor walks the diff line by line. Parsing is a single forward
// pass; the only look-back is one line, for recovering the old path
// of a deleted file.
type cursor struct {
	lines []string
	pos   int
}

func newCursor(input string) *cursor {
	return &cursor{lines: strings.Split(input, "\n")}
}

func (c *cursor) peek() (string, bool) {
	if c.pos >= len(c.lines) {
		return "", false
	}
	return c.lines[c.pos], true
}

func (c *cursor) advance() { c.pos++ }

func (c *cursor) prev() (string, bool) {
	if c.pos == 0 {
		return "", false
	}
	return c.lines[c.pos-1], true
}

// Parse scans unified diff text and returns the changed files with
// their hunks. Binary files and files without any parsable hunk are
// omitted. A malformed hunk header skips that hunk only; the rest of
// the diff is still parsed.
func Parse(input string) []File {
	if strings.TrimSpace(input) == "" {
		return nil
	}

	c := newCursor(input)
	var files []File
	for {
		line, ok := c.peek()
		if !ok {
			break
		}
		if !strings.HasPrefix(line, "diff --git ") {
			c.advance()
			continue
		}
		c.advance()

		path, binary := readFileHeader(c)
		if binary {
			continue
		}
		hunks := readHunks(c)
		if path != "" && len(hunks) > 0 {
			files = append(files, File{Path: path, Hunks: hunks})
		}
	}
	return files
}

// readFileHeader consumes header lines after a "diff --git" line and
// returns the new-side path, or the old-side path for deletions. The
// second return is true when the entry is a binary file.
func readFileHeader(c *cursor) (string, bool) {
	for {
		line, ok := c.peek()
		if !ok {
			return "", false
		}
		switch {
		case strings.HasPrefix(line, "Binary files "):
			c.advance()
			return "", true
		case strings.HasPrefix(line, "+++ "):
			path := stripPathPrefix(line[4:], "b/")
			if path == "/dev/null" {
				// Deleted file: the path lives on the preceding
				// "--- a/..." line.
				path = ""
				if old, ok := c.prev(); ok && strings.HasPrefix(old, "--- ") {
					path = stripPathPrefix(old[4:], "a/")
				}
			}
			c.advance()
			return path, false
		case strings.HasPrefix(line, "@@ "), strings.HasPrefix(line, "diff --git "):
			return "", false
		default:
			c.advance()
		}
	}
}

func stripPathPrefix(path, prefix string) string {
	return strings.TrimPrefix(path, prefix)
}

// readHunks consumes hunks until the next file entry.
func readHunks(c *cursor) []Hunk {
	var hunks []Hunk
	for {
		line, ok := c.peek()
		if !ok || strings.HasPrefix(line, "diff --git ") {
			return hunks
		}
		if !strings.HasPrefix(line, "@@ ") {
			c.advance()
			continue
		}
		h, ok := readHunk(c)
		if !ok {
			c.advance()
			continue
		}
		hunks = append(hunks, h)
	}
}

// readHunk parses one "@@ -old[,count] +new[,count] @@" header and the
// body lines that follow. It reports false without consuming the
// header line when the header does not parse.
func readHunk(c *cursor) (Hunk, bool) {
	header, _ := c.peek()
	rest, found := strings.CutPrefix(header, "@@ ")
	if !found {
		return Hunk{}, false
	}
	ranges, _, found := strings.Cut(rest, " @@")
	if !found {
		return Hunk{}, false
	}
	fields := strings.Fields(ranges)
	if len(fields) != 2 || !strings.HasPrefix(fields[0], "-") || !strings.HasPrefix(fields[1], "+") {
		return Hunk{}, false
	}
	oldStart, oldCount := parseRange(fields[0][1:])
	newStart, newCount := parseRange(fields[1][1:])
	c.advance()

	var body []string
	for {
		line, ok := c.peek()
		if !ok {
			break
		}
		if len(line) == 0 || !strings.ContainsRune("+- \\", rune(line[0])) {
			break
		}
		body = append(body, line)
		c.advance()
	}

	content := strings.Join(body, "\n")
	return Hunk{
		OldStart:    oldStart,
		OldCount:    oldCount,
		NewStart:    newStart,
		NewCount:    newCount,
		Content:     content,
		ContentHash: HashContent(content),
		Status:      StatusUnreviewed,
	}, true
}

// parseRange decodes "start[,count]"; a missing count means 1.
func parseRange(s string) (start, count int) {
	startStr, countStr, hasCount := strings.Cut(s, ",")
	start, _ = strconv.Atoi(startStr)
	if !hasCount {
		return start, 1
	}
	count, _ = strconv.Atoi(countStr)
	return start, count
}

// HashContent returns the hex SHA-256 of a hunk body. The same body
// always maps to the same identity, independent of position in the
// file or of surrounding hunks.
func HashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
