package merge

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/JeNeSuisPasDave/MarkdownTools/pkg/errors"
)

// leanpubMarkers are structural lines in an index file that name a
// section but list no input.
var leanpubMarkers = map[string]bool{
	"frontmatter:": true,
	"mainmatter:":  true,
	"backmatter:":  true,
}

// isIndexFile reports whether the file's first substantive line marks it
// as a merge index: exactly "frontmatter:" or "#merge" (interior
// whitespace allowed). Blank lines and comments before the marker are
// skipped; classification stops at the first line that is neither.
func (m *Merger) isIndexFile(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if line == "frontmatter:" || reIndexMerge.MatchString(line) {
			return true
		}
		if strings.HasPrefix(line, "#") {
			// comment; keep looking for a marker
			continue
		}
		break
	}
	return false
}

func (m *Merger) mergeIndexFile(path string, node *Node, w io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "cannot open index %s", path)
	}
	defer f.Close()
	return m.mergeIndex(f, path, node, w)
}

// mergeIndex treats each substantive line of r as an input file and
// merges them in order, separated by single blank lines. The entry's
// leading indentation (one tab, or each full run of 4 spaces, per
// position) becomes the heading offset for that entry. Metadata is kept
// only for the first entry.
//
// A listed file that does not exist is warned about and skipped; unlike
// inline directive targets, index entries never abort the run.
func (m *Merger) mergeIndex(r io.Reader, basePath string, node *Node, w io.Writer) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), 4<<20)

	first := true
	for sc.Scan() {
		raw := sc.Text()
		entry := strings.TrimSpace(raw)
		if entry == "" || strings.HasPrefix(entry, "#") || leanpubMarkers[entry] {
			continue
		}
		target := m.resolveWildcard(m.resolveTarget(basePath, entry))
		if _, err := os.Stat(target); err != nil {
			m.warnf("file does not exist: %s", target)
			continue
		}
		child, err := node.AddChild(target)
		if err != nil {
			return err
		}
		if !first {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		level := countIndentation(raw)
		if err := m.mergeFile(basePath, target, child, level, w, !first); err != nil {
			return err
		}
		first = false
	}
	return sc.Err()
}

// countIndentation counts the indent positions of an index entry: one
// tab, or each full run of 4 spaces, is one position. Extra spaces
// beyond a multiple of 4 are ignored.
func countIndentation(line string) int {
	level, spaces := 0, 0
	for _, r := range line {
		switch r {
		case '\t':
			level++
			spaces = 0
		case ' ':
			spaces++
			if spaces == 4 {
				level++
				spaces = 0
			}
		default:
			return level
		}
	}
	return level
}
