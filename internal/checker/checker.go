// Package checker verifies cross-document and image references against the
// corpus index and the asset store.
package checker

import (
	"github.com/hallgrim/notelint/internal/corpus"
	"github.com/hallgrim/notelint/internal/models"
)

// AssetStore answers whether an asset name exists. The asset collaborator is
// external to the corpus text; only existence is checked here.
type AssetStore interface {
	Has(name string) bool
}

// Check verifies every reference in the corpus and returns the defects found.
// It does not mutate its inputs. Defect order is a contract: documents in
// corpus (path) order, then references in in-document occurrence order,
// cross-references and image references interleaved as they appear. A target
// unresolved by several occurrences in one document is reported once, at its
// first occurrence.
func Check(idx *corpus.Index, assets AssetStore) []models.Defect {
	var defects []models.Defect
	for _, doc := range idx.All() {
		defects = append(defects, checkDocument(idx, assets, doc)...)
	}
	return defects
}

func checkDocument(idx *corpus.Index, assets AssetStore, doc *models.Document) []models.Defect {
	var out []models.Defect
	seenRef := make(map[string]struct{})
	seenImg := make(map[string]struct{})
	ri, ii := 0, 0

	// Merge the two occurrence-ordered streams by line so the report reads
	// top to bottom within a document.
	for ri < len(doc.Refs) || ii < len(doc.Images) {
		takeRef := ii >= len(doc.Images) ||
			(ri < len(doc.Refs) && doc.Refs[ri].Line <= doc.Images[ii].Line)

		if takeRef {
			ref := doc.Refs[ri]
			ri++
			if idx.Has(ref.Target) {
				continue
			}
			if _, dup := seenRef[ref.Target]; dup {
				continue
			}
			seenRef[ref.Target] = struct{}{}
			out = append(out, models.Defect{
				Path:    doc.Path,
				Slug:    doc.Slug,
				Kind:    models.DanglingCrossReference,
				Target:  ref.Target,
				Line:    ref.Line,
				Heading: ref.Heading,
			})
			continue
		}

		img := doc.Images[ii]
		ii++
		if assets != nil && assets.Has(img.Asset) {
			continue
		}
		if _, dup := seenImg[img.Asset]; dup {
			continue
		}
		seenImg[img.Asset] = struct{}{}
		out = append(out, models.Defect{
			Path:    doc.Path,
			Slug:    doc.Slug,
			Kind:    models.MissingImageAsset,
			Target:  img.Asset,
			Line:    img.Line,
			Heading: img.Heading,
		})
	}

	return out
}
