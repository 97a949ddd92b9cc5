// Package corpus aggregates parsed documents into a slug index.
package corpus

import (
	"sort"

	"github.com/hallgrim/notelint/internal/apperr"
	"github.com/hallgrim/notelint/internal/models"
)

// Index maps slugs to documents. It is immutable after construction; lookups
// are pure reads and safe for concurrent use.
type Index struct {
	bySlug map[string]*models.Document
	docs   []*models.Document // path order
}

// BuildIndex aggregates documents into an Index. Input order does not matter:
// documents are sorted by path so every derived ordering is deterministic.
// Two documents sharing a slug fail construction with *apperr.DuplicateSlugError.
func BuildIndex(docs []*models.Document) (*Index, error) {
	sorted := make([]*models.Document, len(docs))
	copy(sorted, docs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	bySlug := make(map[string]*models.Document, len(sorted))
	for _, d := range sorted {
		if prev, ok := bySlug[d.Slug]; ok {
			return nil, &apperr.DuplicateSlugError{Slug: d.Slug, Paths: [2]string{prev.Path, d.Path}}
		}
		bySlug[d.Slug] = d
	}

	return &Index{bySlug: bySlug, docs: sorted}, nil
}

// Lookup returns the document registered under slug.
func (idx *Index) Lookup(slug string) (*models.Document, error) {
	d, ok := idx.bySlug[slug]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return d, nil
}

// Has reports whether slug resolves to a document.
func (idx *Index) Has(slug string) bool {
	_, ok := idx.bySlug[slug]
	return ok
}

// All enumerates every document in path order.
func (idx *Index) All() []*models.Document {
	return idx.docs
}

// Slugs returns every registered slug, sorted.
func (idx *Index) Slugs() []string {
	out := make([]string, 0, len(idx.bySlug))
	for s := range idx.bySlug {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of indexed documents.
func (idx *Index) Len() int {
	return len(idx.docs)
}
