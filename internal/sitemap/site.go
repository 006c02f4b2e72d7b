package sitemap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"slices"

	"github.com/starford/folio/internal/models"
)

// FooterDir is the subdirectory of the content root built as the footer tree.
const FooterDir = "footer"

// Site builds the main tree of the content root and, when present, the
// footer tree, and returns the children of both. The footer directory is
// never part of the main tree.
func (b *Builder) Site(ctx context.Context, ignore, footerIgnore []string) (models.Site, error) {
	if !slices.Contains(ignore, FooterDir) {
		ignore = append(slices.Clip(ignore), FooterDir)
	}

	var site models.Site
	main, err := b.Build(ctx, "", ignore)
	if err != nil {
		return site, fmt.Errorf("build sitemap: %w", err)
	}
	site.Main = Encode(main.Children)

	info, err := b.store.Stat(FooterDir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return site, nil
	case err != nil:
		return site, fmt.Errorf("stat footer: %w", err)
	case !info.IsDir():
		return site, nil
	}

	footer, err := b.Build(ctx, FooterDir, footerIgnore)
	if err != nil {
		return site, fmt.Errorf("build footer: %w", err)
	}
	site.Footer = Encode(footer.Children)
	return site, nil
}
