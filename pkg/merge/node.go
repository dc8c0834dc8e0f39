package merge

import (
	"path/filepath"

	"github.com/JeNeSuisPasDave/MarkdownTools/pkg/errors"
)

// Node represents one file (or stdin) currently being expanded. Nodes form
// a parent-linked chain from the file at the bottom of the include stack
// back up to the top-level input; the chain is what makes circular
// inclusion detectable before a file is opened a second time.
//
// A Node is never mutated after creation. Descendant nodes read their
// ancestors' paths during cycle checks but never modify them.
type Node struct {
	rootPath string
	filePath string // absolute path; empty when the node reads from stdin
	parent   *Node
}

// NewRoot creates the top-level node for a file input. The node's root
// path, inherited by all descendants, is the directory of the file.
func NewRoot(filePath string) *Node {
	abs, err := filepath.Abs(filePath)
	if err != nil {
		abs = filePath
	}
	return &Node{rootPath: filepath.Dir(abs), filePath: abs}
}

// NewStdinRoot creates the top-level node for a stdin input. The node has
// no file identity; relative include targets resolve against workDir.
func NewStdinRoot(workDir string) *Node {
	return &Node{rootPath: workDir}
}

// AddChild allocates a node for an include target found while expanding n.
// The child shares n's root path. If filePath is already held by n or any
// of its ancestors, AddChild returns a CIRCULAR_INCLUDE error; this is
// fatal and unwinds the entire run.
func (n *Node) AddChild(filePath string) (*Node, error) {
	if n.IsAncestor(filePath) {
		return nil, errors.New(errors.ErrCodeCircularInclude,
			"circular reference: file %q is an ancestor of itself", filePath)
	}
	return &Node{rootPath: n.rootPath, filePath: filePath, parent: n}, nil
}

// IsAncestor reports whether filePath is held by this node or by any node
// on the chain back to the root. The walk is iterative so that deep
// include trees cannot exhaust the call stack.
func (n *Node) IsAncestor(filePath string) bool {
	for cur := n; cur != nil; cur = cur.parent {
		if cur.filePath == filePath {
			return true
		}
	}
	return false
}

// FilePath returns the absolute path held by this node, or the empty
// string for a stdin node.
func (n *Node) FilePath() string { return n.filePath }

// RootPath returns the base directory used to resolve relative targets
// found within this node's subtree. For a pure stdin chain this is the
// working directory the root was created with.
func (n *Node) RootPath() string { return n.rootPath }
