package sitemap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/merge"
	"github.com/starford/folio/internal/metadata"
	"github.com/starford/folio/internal/storage"
)

// Builder constructs sitemap trees from a content store.
type Builder struct {
	store           storage.Provider
	loader          *metadata.Loader
	logger          *slog.Logger
	extensions      map[string]string
	alwaysFrontpage bool
	collapse        bool
	parallel        int
}

// New creates a Builder reading from store.
func New(store storage.Provider, opts ...Option) *Builder {
	b := &Builder{
		store:           store,
		extensions:      defaultExtensions(),
		alwaysFrontpage: true,
		collapse:        true,
		parallel:        1,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = slog.New(slog.DiscardHandler)
	}
	b.loader = metadata.NewLoader(store, b.logger)
	return b
}

// Build returns the sitemap rooted at path (relative to the content root).
// Entries named in ignore are skipped at every level. The result may be
// superfluous, i.e. carry neither a link nor children.
func (b *Builder) Build(ctx context.Context, path string, ignore []string) (*Node, error) {
	if _, err := b.store.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", apperr.ErrMissingRoot, b.displayPath(path))
		}
		return nil, err
	}

	skip := make(map[string]struct{}, len(ignore))
	for _, name := range ignore {
		skip[name] = struct{}{}
	}

	node, err := b.build(ctx, path, nil, skip)
	if err != nil {
		return nil, err
	}
	b.logger.Debug("sitemap: built",
		slog.String("root", b.displayPath(path)),
		slog.Int("children", len(node.Children)))
	return node, nil
}

func (b *Builder) build(ctx context.Context, path string, parent *Node, skip map[string]struct{}) (*Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := b.store.Stat(path)
	if err != nil {
		return nil, err
	}
	meta, err := b.loader.Load(path)
	if err != nil {
		return nil, err
	}

	node := &Node{
		meta:   meta,
		parent: parent,
		path:   path,
		base:   b.baseName(path, info.IsDir()),
	}
	node.Title = node.metaString("title", "header")
	node.Description = node.metaString("description", "abstract")
	node.Hidden = meta.Bool("hidden")
	node.Subsection = meta.Bool("subsection")

	if !info.IsDir() {
		node.Modified = info.ModTime().Format(DateFormat)
		node.Link, err = b.link(node)
		if err != nil {
			return nil, err
		}
		return node, nil
	}

	children, err := b.buildChildren(ctx, node, skip)
	if err != nil {
		return nil, err
	}
	return b.assemble(node, children), nil
}

// buildChildren builds every candidate entry of the directory node and
// returns the non-superfluous results in navigation order.
func (b *Builder) buildChildren(ctx context.Context, node *Node, skip map[string]struct{}) ([]*Node, error) {
	paths, err := b.candidates(node.path, skip)
	if err != nil {
		return nil, err
	}

	built := make([]*Node, len(paths))
	if b.parallel > 1 && len(paths) > 1 {
		g, gCtx := errgroup.WithContext(ctx)
		g.SetLimit(b.parallel)
		for i, p := range paths {
			g.Go(func() error {
				child, err := b.build(gCtx, p, node, skip)
				built[i] = child
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i, p := range paths {
			child, err := b.build(ctx, p, node, skip)
			if err != nil {
				return nil, err
			}
			built[i] = child
		}
	}

	type keyed struct {
		key  string
		node *Node
	}
	var ordered []keyed
	for _, child := range built {
		if child.superfluous() {
			continue
		}
		key := child.base
		if idx := child.Meta("index", false); metadata.Truthy(idx) {
			key = metadata.Format(idx)
		}
		ordered = append(ordered, keyed{key: key, node: child})
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].key < ordered[j].key
	})

	out := make([]*Node, len(ordered))
	for i, k := range ordered {
		out[i] = k.node
	}
	return out, nil
}

// candidates lists the entries of dir that may become sitemap nodes.
func (b *Builder) candidates(dir string, skip map[string]struct{}) ([]string, error) {
	entries, err := b.store.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if _, ignored := skip[name]; ignored {
			continue
		}
		p := filepath.Join(dir, name)
		isDir := e.IsDir()
		if e.Type()&fs.ModeSymlink != 0 {
			info, err := b.store.Stat(p)
			if err != nil {
				return nil, err
			}
			isDir = info.IsDir()
		}
		if !isDir && !b.IsDocument(name) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// IsDocument reports whether a file named name has a source extension.
func (b *Builder) IsDocument(name string) bool {
	_, ok := b.extensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// assemble resolves the frontpage of a directory, then collapses it into a
// sole remaining child or attaches its children.
func (b *Builder) assemble(node *Node, children []*Node) *Node {
	if len(children) > 0 {
		if i := frontpage(children, node.base); i >= 0 {
			node.Link = children[i].Link
			children = append(children[:i:i], children[i+1:]...)
		} else if b.alwaysFrontpage {
			node.Link = children[0].Link
		}
	}

	switch {
	case len(children) == 0:
	case len(children) == 1 && b.collapse:
		return collapsed(node, children[0])
	case !node.meta.Bool("toplevel"):
		node.Children = children
	}
	return node
}

// frontpage returns the position of the child named "index", else of the
// child named like the directory itself, else -1.
func frontpage(children []*Node, dirBase string) int {
	for _, name := range []string{"index", dirBase} {
		for i, child := range children {
			if child.base == name {
				return i
			}
		}
	}
	return -1
}

// collapsed returns a node indistinguishable from child except that it
// keeps dir's place in the tree. The child's metadata wins over dir's.
func collapsed(dir, child *Node) *Node {
	return &Node{
		Title:       child.Title,
		Description: child.Description,
		Link:        child.Link,
		Children:    child.Children,
		Hidden:      child.Hidden,
		Modified:    child.Modified,
		Subsection:  child.Subsection,

		meta:   metadata.Record(merge.Deep(child.meta, dir.meta)),
		parent: dir.parent,
		path:   dir.path,
		base:   dir.base,
	}
}

// link maps the document path, relative to the traversal root, to the
// output document path.
func (b *Builder) link(node *Node) (string, error) {
	rel, err := filepath.Rel(node.Root().path, node.path)
	if err != nil {
		return "", fmt.Errorf("sitemap: link for %s: %w", node.path, err)
	}
	if rel == "." {
		rel = filepath.Base(node.path)
	}
	ext := filepath.Ext(rel)
	return filepath.ToSlash(strings.TrimSuffix(rel, ext)) + b.extensions[strings.ToLower(ext)], nil
}

func (b *Builder) baseName(path string, isDir bool) string {
	name := filepath.Base(b.displayPath(path))
	if isDir {
		return name
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// displayPath returns path joined to the content root.
func (b *Builder) displayPath(path string) string {
	return filepath.Join(b.store.Root(), path)
}
