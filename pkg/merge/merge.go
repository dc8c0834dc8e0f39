package merge

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/JeNeSuisPasDave/MarkdownTools/pkg/errors"
)

// syntheticFence wraps code includes that arrive without their own fence.
const syntheticFence = "~~~"

// stdinPlaceholder is joined to the working directory to synthesize a
// resolution base for stdin-rooted chains. Later relative-path behavior
// depends on this literal base, so it is never inferred from elsewhere.
const stdinPlaceholder = "stdin"

// exportExtensions are the extensions a wildcard target marker may
// resolve to.
var exportExtensions = map[string]bool{
	".html": true,
	".tex":  true,
	".lyx":  true,
	".opml": true,
	".rtf":  true,
	".odf":  true,
}

// Options configure one Merger. The zero value is usable: wildcards
// resolve to .html, every directive form is active, and index handling
// is off.
type Options struct {
	// ExportExtension is substituted for a trailing ".*" marker on
	// transclusion targets. Defaults to ".html".
	ExportExtension string

	// BookNameIsIndex treats a file literally named "book.txt"
	// (case-insensitive) as an index.
	BookNameIsIndex bool

	// StdinIsIndex treats a sole stdin input as an index.
	StdinIsIndex bool

	// IgnoreTransclusions disables the {{path}} forms, bare and fenced.
	IgnoreTransclusions bool

	// RawOnly disables every form except the raw passthrough marker.
	RawOnly bool

	// Stdin is the stream used for stdin-rooted merges. Defaults to
	// os.Stdin.
	Stdin io.Reader

	// Logger receives diagnostic warnings (missing index entries,
	// heading depth exceeded). Warnings never abort a run. A nil
	// Logger discards them.
	Logger func(format string, args ...any)
}

// Merger assembles one output document from a tree of input documents.
// Each Merger holds its own compiled configuration, so independent
// merges with different options can run in one process without
// interference. A Merger is not safe for concurrent use.
type Merger struct {
	opts Options
}

// New validates opts and returns a Merger. An unrecognized export
// extension is rejected here, before any scanning begins.
func New(opts Options) (*Merger, error) {
	if opts.ExportExtension == "" {
		opts.ExportExtension = ".html"
	}
	if !exportExtensions[opts.ExportExtension] {
		return nil, errors.New(errors.ErrCodeInvalidExportTarget,
			"unsupported export extension %q", opts.ExportExtension)
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	return &Merger{opts: opts}, nil
}

func (m *Merger) warnf(format string, args ...any) {
	if m.opts.Logger != nil {
		m.opts.Logger(format, args...)
	}
}

// Merge expands one top-level input into w. For a file input the node's
// path decides handling: an index file (by name, when BookNameIsIndex is
// set, or by marker line) drives one merge per listed entry; anything
// else merges as literal content. For a stdin node the input stream is
// merged directly, as an index when StdinIsIndex is set.
//
// discardMetadata should be true for every top-level input after the
// first of a run; index files decide metadata per entry and ignore it.
func (m *Merger) Merge(node *Node, w io.Writer, discardMetadata bool) error {
	if node.FilePath() == "" {
		base := filepath.Join(node.RootPath(), stdinPlaceholder)
		if m.opts.StdinIsIndex {
			return m.mergeIndex(m.opts.Stdin, base, node, w)
		}
		return m.mergeStream(m.opts.Stdin, base, node, 0, w, discardMetadata)
	}
	abs := node.FilePath()
	if m.opts.BookNameIsIndex && strings.EqualFold(filepath.Base(abs), "book.txt") {
		return m.mergeIndexFile(abs, node, w)
	}
	if m.isIndexFile(abs) {
		return m.mergeIndexFile(abs, node, w)
	}
	return m.mergeFile(abs, abs, node, 0, w, discardMetadata)
}

// mergeFile merges one literal file into w, bumping headings by level.
// basePath is the resolution base for relative targets found inside.
func (m *Merger) mergeFile(basePath, path string, node *Node, level int, w io.Writer, discardMetadata bool) error {
	path = m.resolveWildcard(path)
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "cannot open %s", path)
	}
	defer f.Close()
	return m.mergeStream(f, basePath, node, level, w, discardMetadata)
}

// mergeStream runs the merge engine over r and writes produced lines to
// w, applying the per-entry heading offset to every emitted line.
func (m *Merger) mergeStream(r io.Reader, basePath string, node *Node, level int, w io.Writer, discardMetadata bool) error {
	bw := bufio.NewWriter(w)
	emit := func(line string) error {
		_, err := bw.WriteString(m.bumpHeading(level, line))
		if err != nil {
			return err
		}
		return bw.WriteByte('\n')
	}
	if err := m.mergeLines(node, basePath, r, false, false, discardMetadata, emit); err != nil {
		return err
	}
	return bw.Flush()
}

// emitFunc receives produced output lines, in document order, without
// line terminators.
type emitFunc func(line string) error

// mergeLines is the recursive line-production algorithm. It scans r one
// line at a time through a 5-slot and a 3-slot lookahead window (seeded
// and terminated with boundary sentinels), splices recursively-produced
// lines for every matched directive, and pushes everything else to emit
// unchanged. Output order is a depth-first, left-to-right expansion of
// the include tree.
//
// The lines composing a matched directive, surrounding blanks included,
// are consumed; the fence lines of a fenced transclusion are the one
// exception and are reproduced around the spliced content.
func (m *Merger) mergeLines(node *Node, basePath string, r io.Reader, isCode, needsFence, discardMetadata bool, emit emitFunc) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), 4<<20)
	next := func() (string, bool) {
		if sc.Scan() {
			return sc.Text(), true
		}
		return "", false
	}

	// Metadata is only ever at the very top, so it is peeled off before
	// the lookahead windows see anything. Code includes keep theirs.
	pending, havePending := skipMetadata(next, discardMetadata && !isCode)

	if needsFence {
		if err := emit(syntheticFence); err != nil {
			return err
		}
	}

	if isCode {
		// Code targets are copied verbatim and never rescanned, so no
		// lookahead is needed.
		if havePending {
			if err := emit(pending); err != nil {
				return err
			}
		}
		for {
			line, ok := next()
			if !ok {
				break
			}
			if err := emit(line); err != nil {
				return err
			}
		}
		if needsFence {
			if err := emit(syntheticFence); err != nil {
				return err
			}
		}
		return sc.Err()
	}

	// w5 is the primary window; the 3-slot window is always its suffix.
	// Seeding with three sentinels means a directive on the first line
	// of the file still has "blank" context above it.
	sentinel := bufLine{boundary: true}
	w5 := make([]bufLine, 0, 5)
	w5 = append(w5, sentinel, sentinel, sentinel)
	reset := func(keep ...bufLine) {
		w5 = w5[:0]
		w5 = append(w5, sentinel, sentinel, sentinel)
		for len(w5)+len(keep) < 5 {
			w5 = append(w5, sentinel)
		}
		w5 = append(w5, keep...)
	}
	flush := func(slots []bufLine) error {
		for _, l := range slots {
			if l.boundary {
				continue
			}
			if err := emit(l.text); err != nil {
				return err
			}
		}
		return nil
	}

	eofSeen := false
	for {
		var l bufLine
		switch {
		case havePending:
			l = bufLine{text: pending}
			havePending = false
		default:
			if text, ok := next(); ok {
				l = bufLine{text: text}
			} else if !eofSeen {
				// One trailing sentinel so a directive whose last line
				// is the file's last line is still detected.
				eofSeen = true
				l = sentinel
			} else {
				goto drain
			}
		}

		if len(w5) == cap(w5) {
			old := w5[0]
			copy(w5, w5[1:])
			w5 = w5[:len(w5)-1]
			if !old.boundary {
				if err := emit(old.text); err != nil {
					return err
				}
			}
		}
		w5 = append(w5, l)

		// Fenced transclusion gets priority over the 3-line forms.
		if d, ok := m.findDirective5(w5); ok {
			if err := emit(w5[1].text); err != nil {
				return err
			}
			if err := m.expandDirective(node, basePath, d, emit); err != nil {
				return err
			}
			if err := emit(w5[3].text); err != nil {
				return err
			}
			reset()
			continue
		}
		w3 := w5[len(w5)-3:]
		if d, ok := m.findDirective3(w3); ok {
			if err := flush(w5[:len(w5)-3]); err != nil {
				return err
			}
			if err := m.expandDirective(node, basePath, d, emit); err != nil {
				return err
			}
			reset()
			continue
		}
		if target, ok := m.rawTarget(w3[1]); ok {
			// Single-line form: lines around the marker are content.
			if err := flush(w5[:len(w5)-2]); err != nil {
				return err
			}
			if err := m.expandDirective(node, basePath, directive{path: target}, emit); err != nil {
				return err
			}
			reset(w5[len(w5)-1])
			continue
		}
		if m.shouldWrapRawMarker(w3[1]) {
			if err := flush(w5[:len(w5)-2]); err != nil {
				return err
			}
			if err := emit("<!-- " + w3[1].text + " -->"); err != nil {
				return err
			}
			reset(w5[len(w5)-1])
			continue
		}
	}

drain:
	if err := flush(w5); err != nil {
		return err
	}
	if needsFence {
		if err := emit(syntheticFence); err != nil {
			return err
		}
	}
	return sc.Err()
}

// expandDirective resolves a matched target, registers it on the
// ancestry chain, and splices its merged lines into the output. A cyclic
// target or an unopenable target is fatal; inline directives get no
// existence pre-check.
func (m *Merger) expandDirective(node *Node, basePath string, d directive, emit emitFunc) error {
	target := m.resolveTarget(basePath, d.path)
	child, err := node.AddChild(target)
	if err != nil {
		return err
	}
	f, err := os.Open(target)
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "cannot open include target %s", target)
	}
	defer f.Close()
	return m.mergeLines(child, basePath, f, d.isCode, d.needsFence, true, emit)
}

// resolveTarget turns a raw directive target into an absolute path:
// environment references and home-directory shorthand are expanded
// first, then a still-relative path is joined against the directory of
// the resolution base.
func (m *Merger) resolveTarget(basePath, path string) string {
	p := os.ExpandEnv(path)
	p = expandHome(p)
	if !filepath.IsAbs(p) {
		p = filepath.Join(filepath.Dir(basePath), p)
	}
	return p
}

// resolveWildcard replaces a trailing ".*" on a file path with the
// configured export extension.
func (m *Merger) resolveWildcard(path string) string {
	if wm := reWildcardExt.FindStringSubmatch(path); wm != nil {
		return wm[1] + m.opts.ExportExtension
	}
	return path
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// skipMetadata discards a leading metadata block when asked to: a first
// line that is exactly "---" or an "identifier: value" shorthand starts
// the block, which runs until a blank line, EOF, or an exact "..."
// terminator (all discarded). It returns the first body line, if any.
func skipMetadata(next func() (string, bool), discard bool) (string, bool) {
	line, ok := next()
	if !ok {
		return "", false
	}
	if !discard || !isMetadataStart(line) {
		return line, true
	}
	for {
		line, ok = next()
		if !ok {
			return "", false
		}
		if isMetadataEnd(line) {
			// the terminator itself is discarded
			return next()
		}
	}
}

func isMetadataStart(line string) bool {
	s := strings.TrimSpace(line)
	return s == "---" || reMetaShorthand.MatchString(s)
}

func isMetadataEnd(line string) bool {
	s := strings.TrimSpace(line)
	return s == "" || s == "..."
}

// bumpHeading prefixes level additional '#' characters on heading lines.
// Non-heading lines and non-positive levels pass through untouched. A
// result deeper than level 6 produces a warning but the line is still
// emitted.
func (m *Merger) bumpHeading(level int, line string) string {
	if level <= 0 {
		return line
	}
	hm := reHeading.FindStringSubmatch(line)
	if hm == nil {
		return line
	}
	if len(hm[1])+level > 6 {
		m.warnf("heading level increased beyond 6 for line: %s", shortenLine(line))
	}
	return strings.Repeat("#", level) + line
}

// shortenLine truncates long lines for display in diagnostics.
func shortenLine(line string) string {
	if len(line) <= 60 {
		return line
	}
	return line[:55] + " ..."
}
