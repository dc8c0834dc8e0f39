package merge

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/JeNeSuisPasDave/MarkdownTools/pkg/errors"
)

func TestNewRootPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "book.md")

	n := NewRoot(path)
	if n.FilePath() != path {
		t.Errorf("FilePath() = %q, want %q", n.FilePath(), path)
	}
	if n.RootPath() != dir {
		t.Errorf("RootPath() = %q, want %q", n.RootPath(), dir)
	}
}

func TestAddChildSharesRootPath(t *testing.T) {
	dir := t.TempDir()
	root := NewRoot(filepath.Join(dir, "book.md"))

	child, err := root.AddChild(filepath.Join(dir, "sub", "chapter.md"))
	if err != nil {
		t.Fatalf("AddChild error: %v", err)
	}
	// root path comes from the chain's root, not the child's own directory
	if child.RootPath() != dir {
		t.Errorf("child RootPath() = %q, want %q", child.RootPath(), dir)
	}
}

func TestAddChildDetectsCycles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.md")
	b := filepath.Join(dir, "b.md")
	c := filepath.Join(dir, "c.md")

	root := NewRoot(a)
	nb, err := root.AddChild(b)
	if err != nil {
		t.Fatalf("AddChild(b) error: %v", err)
	}
	nc, err := nb.AddChild(c)
	if err != nil {
		t.Fatalf("AddChild(c) error: %v", err)
	}

	// every identity on the chain, including the node's own, is rejected
	for _, ancestor := range []string{a, b, c} {
		if _, err := nc.AddChild(ancestor); !errors.Is(err, errors.ErrCodeCircularInclude) {
			t.Errorf("AddChild(%q) error = %v, want CIRCULAR_INCLUDE", ancestor, err)
		}
	}

	// any other identity succeeds at any depth
	if _, err := nc.AddChild(filepath.Join(dir, "d.md")); err != nil {
		t.Errorf("AddChild(d) error: %v", err)
	}
}

func TestIsAncestorDeepChain(t *testing.T) {
	dir := t.TempDir()
	n := NewRoot(filepath.Join(dir, "f0.md"))
	paths := []string{n.FilePath()}
	for i := 1; i <= 100; i++ {
		p := filepath.Join(dir, fmt.Sprintf("f%d.md", i))
		child, err := n.AddChild(p)
		if err != nil {
			t.Fatalf("AddChild depth %d error: %v", i, err)
		}
		paths = append(paths, p)
		n = child
	}
	for _, p := range paths {
		if !n.IsAncestor(p) {
			t.Errorf("IsAncestor(%q) = false, want true", p)
		}
	}
	if n.IsAncestor(filepath.Join(dir, "absent.md")) {
		t.Error("IsAncestor(absent) = true, want false")
	}
}

func TestStdinRoot(t *testing.T) {
	dir := t.TempDir()
	n := NewStdinRoot(dir)

	if n.FilePath() != "" {
		t.Errorf("FilePath() = %q, want empty", n.FilePath())
	}
	if n.RootPath() != dir {
		t.Errorf("RootPath() = %q, want %q", n.RootPath(), dir)
	}
	// a stdin root matches only the absent identity
	if !n.IsAncestor("") {
		t.Error("IsAncestor(\"\") = false, want true")
	}
	if n.IsAncestor(filepath.Join(dir, "x.md")) {
		t.Error("IsAncestor(x.md) = true, want false")
	}

	child, err := n.AddChild(filepath.Join(dir, "x.md"))
	if err != nil {
		t.Fatalf("AddChild error: %v", err)
	}
	if child.RootPath() != dir {
		t.Errorf("child RootPath() = %q, want %q", child.RootPath(), dir)
	}
}
