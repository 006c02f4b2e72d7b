package sitemap

import (
	"github.com/starford/folio/internal/models"
)

// Encode converts nodes into their wire form. Unset attributes are left
// zero so they are omitted when marshalled.
func Encode(nodes []*Node) []models.Entry {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]models.Entry, len(nodes))
	for i, n := range nodes {
		out[i] = models.Entry{
			Title:       n.Title,
			Description: n.Description,
			Link:        n.Link,
			Children:    Encode(n.Children),
			Hidden:      n.Hidden,
			Modified:    n.Modified,
			Subsection:  n.Subsection,
		}
	}
	return out
}
