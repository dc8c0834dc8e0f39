package merge

import (
	"regexp"
	"strings"
)

// Line patterns for the five directive syntaxes and their surrounding
// context. The patterns themselves are immutable and shared; which ones
// participate in matching depends on per-Merger options.
var (
	reFenceTagged = regexp.MustCompile("^(~{3,}|`{3,})[a-zA-Z0-9]+$")
	reFenceBare   = regexp.MustCompile("^(~{3,}|`{3,})$")

	reTransclusion   = regexp.MustCompile(`^\{\{(.+)\}\}$`)
	reSimpleInclude  = regexp.MustCompile(`^<<\[(.+)\]$`)
	reLeanpubInclude = regexp.MustCompile(`^<<\((.+)\)$`)
	reLeanpubCaption = regexp.MustCompile(`^<<\[.*\]\((.+)\)$`)

	// Raw markers exclude braces inside the path so that a {{path}}
	// transclusion line can never be mistaken for one.
	reRawMarker  = regexp.MustCompile(`^\{([^{}]+)\}$`)
	reRawComment = regexp.MustCompile(`^<!-- \{([^{}]+)\} -->$`)

	reHeading       = regexp.MustCompile(`^(#+)\s`)
	reMetaShorthand = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9 \t_-]*:\s+\S+`)
	reIndexMerge    = regexp.MustCompile(`^#\s*merge$`)
	reWildcardExt   = regexp.MustCompile(`^(.+)\.\*$`)
)

// directive is the result of a successful match: the raw target path and
// how the spliced content must be handled.
type directive struct {
	path       string
	isCode     bool // target content is copied verbatim, never rescanned
	needsFence bool // spliced content must be wrapped in a synthesized fence
}

// bufLine is one slot of a lookahead window. A boundary slot marks the
// start or end of the input rather than a real line.
type bufLine struct {
	text     string
	boundary bool
}

// isBlank reports whether the slot counts as "blank" for directive
// context: a boundary sentinel, an empty line, or whitespace only.
func (l bufLine) isBlank() bool {
	return l.boundary || strings.TrimSpace(l.text) == ""
}

func isFenceOpen(line string) bool {
	return reFenceTagged.MatchString(line) || reFenceBare.MatchString(line)
}

func isFenceClose(line string) bool {
	return reFenceBare.MatchString(line)
}

// findDirective5 matches the fenced-transclusion form against a full
// five-slot window:
//
//	blank, fence open, {{path}}, fence close, blank
//
// The fence lines are preserved in the output; the target is treated as
// code so its content is never rescanned and needs no synthesized fence.
func (m *Merger) findDirective5(w []bufLine) (directive, bool) {
	if len(w) != 5 || m.opts.RawOnly || m.opts.IgnoreTransclusions {
		return directive{}, false
	}
	if !w[0].isBlank() || !w[4].isBlank() {
		return directive{}, false
	}
	if w[1].isBlank() || w[2].isBlank() || w[3].isBlank() {
		return directive{}, false
	}
	if !isFenceOpen(w[1].text) || !isFenceClose(w[3].text) {
		return directive{}, false
	}
	path, ok := m.findTransclusion(w[2].text)
	if !ok {
		return directive{}, false
	}
	return directive{path: path, isCode: true}, true
}

// findDirective3 matches the three-line forms against a blank-delimited
// window: bare transclusion, simple include, then leanpub include. All
// three lines of a match are consumed.
func (m *Merger) findDirective3(w []bufLine) (directive, bool) {
	if len(w) != 3 || m.opts.RawOnly {
		return directive{}, false
	}
	if !w[0].isBlank() || !w[2].isBlank() || w[1].isBlank() {
		return directive{}, false
	}
	line := w[1].text
	if !m.opts.IgnoreTransclusions {
		if path, ok := m.findTransclusion(line); ok {
			return directive{path: path}, true
		}
	}
	if sm := reSimpleInclude.FindStringSubmatch(line); sm != nil {
		return directive{path: sm[1]}, true
	}
	if sm := reLeanpubInclude.FindStringSubmatch(line); sm != nil {
		return directive{path: sm[1], isCode: true, needsFence: true}, true
	}
	if sm := reLeanpubCaption.FindStringSubmatch(line); sm != nil {
		return directive{path: sm[1], isCode: true, needsFence: true}, true
	}
	return directive{}, false
}

// findTransclusion extracts the target of a {{path}} line. The literal
// target TOC is reserved and never matched. A trailing wildcard extension
// marker (".*") is replaced with the configured export extension.
func (m *Merger) findTransclusion(line string) (string, bool) {
	sm := reTransclusion.FindStringSubmatch(line)
	if sm == nil {
		return "", false
	}
	path := sm[1]
	if path == "TOC" {
		return "", false
	}
	if wm := reWildcardExt.FindStringSubmatch(path); wm != nil {
		path = wm[1] + m.opts.ExportExtension
	}
	return path, true
}

// rawTarget matches the single-line raw passthrough marker, {path} or
// <!-- {path} -->. Only active in raw-only mode.
func (m *Merger) rawTarget(l bufLine) (string, bool) {
	if !m.opts.RawOnly || l.boundary {
		return "", false
	}
	if sm := reRawComment.FindStringSubmatch(l.text); sm != nil {
		return sm[1], true
	}
	if sm := reRawMarker.FindStringSubmatch(l.text); sm != nil {
		return sm[1], true
	}
	return "", false
}

// shouldWrapRawMarker reports whether a bare {path} line seen outside
// raw-only mode must be rewritten as an html comment, so that a later
// raw-only pass can still find it.
func (m *Merger) shouldWrapRawMarker(l bufLine) bool {
	if m.opts.RawOnly || l.boundary {
		return false
	}
	return reRawMarker.MatchString(l.text)
}
