// Package sitemap builds the navigation tree of a content directory.
package sitemap

import (
	"github.com/starford/folio/internal/metadata"
)

// Node is one entry of the sitemap: a document or a directory.
type Node struct {
	Title       string
	Description string
	Link        string
	Children    []*Node
	Hidden      bool
	Modified    string
	Subsection  bool

	meta   metadata.Record
	parent *Node // weak back-reference; used for inheritance and Root only
	path   string
	base   string // file name without extension
}

// Meta looks up key in the node's own metadata. When inherit is set and
// the own value is unset, the nearest ancestor's metadata is consulted.
func (n *Node) Meta(key string, inherit bool) any {
	v := n.meta[key]
	if !metadata.Truthy(v) && inherit && n.parent != nil {
		return n.parent.Meta(key, inherit)
	}
	return v
}

// Root returns the node the traversal started from.
func (n *Node) Root() *Node {
	for n.parent != nil {
		n = n.parent
	}
	return n
}

// Parent returns the node's parent, or nil at the root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Path returns the source path of the node relative to the content root.
func (n *Node) Path() string {
	return n.path
}

// superfluous reports whether n carries nothing to navigate to.
func (n *Node) superfluous() bool {
	return n.Link == "" && len(n.Children) == 0
}

func (n *Node) metaString(keys ...string) string {
	for _, key := range keys {
		if s := metadata.Format(n.Meta(key, true)); s != "" {
			return s
		}
	}
	return ""
}
