// Package merge implements recursive markdown document assembly.
//
// A merge run takes one or more top-level inputs (files or stdin) and
// produces a single stream of output lines. Within any input, inline
// directives splice the content of other files into the output exactly
// at the point they appear:
//
//	<<[chapter.md]          simple include
//	<<(listing.go)          code include, wrapped in a synthesized fence
//	<<[caption](listing.go) code include with caption
//	{{section.md}}          transclusion (bare, or inside an existing fence)
//	{raw.md}                raw passthrough marker (raw-only mode)
//
// Directives are recognized by surrounding context (blank lines, code
// fences) using a pair of fixed-size lookahead windows; everything else
// is passed through untouched. Included files are scanned recursively,
// except code includes, which are copied verbatim.
//
// Certain files act as indexes: an ordered list of further inputs, one
// per line, with leading indentation selecting a heading offset for
// that entry. See Merger.Merge for classification rules.
//
// # Cycle detection
//
// Every open file is represented by a Node in a parent-linked ancestry
// chain. Including a file that is already being expanded anywhere up
// the chain is a fatal error; the run aborts with no partial-output
// guarantee.
//
// # Usage
//
//	m, err := merge.New(merge.Options{ExportExtension: ".html"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	node := merge.NewRoot("book/index.txt")
//	if err := m.Merge(node, os.Stdout, false); err != nil {
//	    log.Fatal(err)
//	}
package merge
