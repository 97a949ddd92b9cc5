package parser

import (
	"errors"
	"reflect"
	"testing"

	"github.com/hallgrim/notelint/internal/apperr"
	"github.com/hallgrim/notelint/internal/models"
)

const sampleNote = `---
title: What's new in SwiftUI
kind: session
year: 2023
session: 10148
cta: https://developer.example.com/videos/play/wwdc2023/10148/
contributors:
  - alice
  - bob
---
# What's new in SwiftUI

Intro text with a link to [[scrolling-deep-dive]].

## Animations

See also [[animate-with-springs|the springs talk]].

![phase animator demo](images/phase-animator.png)

` + "```swift" + `
PhaseAnimator([0, 1]) { phase in
    // [[not-a-link]] inside a fence
}
` + "```" + `
`

func TestParse_MetadataAndSlug(t *testing.T) {
	doc, err := Parse("2023/swiftui.md", []byte(sampleNote))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Metadata.Title != "What's new in SwiftUI" {
		t.Errorf("title = %q", doc.Metadata.Title)
	}
	if doc.Metadata.Kind != models.KindSession {
		t.Errorf("kind = %q", doc.Metadata.Kind)
	}
	if doc.Metadata.Year != 2023 || doc.Metadata.Session != 10148 {
		t.Errorf("year/session = %d/%d", doc.Metadata.Year, doc.Metadata.Session)
	}
	if got := doc.Slug; got != "what-s-new-in-swiftui" {
		t.Errorf("slug = %q, want %q", got, "what-s-new-in-swiftui")
	}
	if len(doc.Metadata.Contributors) != 2 {
		t.Errorf("contributors = %v", doc.Metadata.Contributors)
	}
}

func TestParse_ExplicitSlugWins(t *testing.T) {
	input := "---\ntitle: Some Talk\nkind: session\nyear: 2022\nsession: 110\nslug: wwdc22-110\n---\nbody\n"
	doc, err := Parse("a.md", []byte(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Slug != "wwdc22-110" {
		t.Errorf("slug = %q, want %q", doc.Slug, "wwdc22-110")
	}
}

func TestParse_RefsInOccurrenceOrder(t *testing.T) {
	doc, err := Parse("2023/swiftui.md", []byte(sampleNote))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Refs) != 2 {
		t.Fatalf("refs = %v, want 2", doc.Refs)
	}
	if doc.Refs[0].Target != "scrolling-deep-dive" || doc.Refs[1].Target != "animate-with-springs" {
		t.Errorf("refs = %v", doc.Refs)
	}
	if doc.Refs[0].Line >= doc.Refs[1].Line {
		t.Errorf("ref lines out of order: %d, %d", doc.Refs[0].Line, doc.Refs[1].Line)
	}
	if doc.Refs[1].Heading != "Animations" {
		t.Errorf("heading = %q, want %q", doc.Refs[1].Heading, "Animations")
	}
}

func TestParse_ImageRefs(t *testing.T) {
	doc, err := Parse("2023/swiftui.md", []byte(sampleNote))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Images) != 1 {
		t.Fatalf("images = %v, want 1", doc.Images)
	}
	if doc.Images[0].Asset != "images/phase-animator.png" {
		t.Errorf("asset = %q", doc.Images[0].Asset)
	}
	if doc.Images[0].Heading != "Animations" {
		t.Errorf("heading = %q", doc.Images[0].Heading)
	}
}

func TestParse_RefsInHeadingLines(t *testing.T) {
	input := "---\ntitle: T\nkind: overview\n---\n" +
		"## See [[missing-doc]]\n" +
		"### ![screenshot](images/gone2.png)\n"
	doc, err := Parse("a.md", []byte(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Refs) != 1 || doc.Refs[0].Target != "missing-doc" {
		t.Fatalf("refs = %v, want missing-doc", doc.Refs)
	}
	if doc.Refs[0].Line != 5 {
		t.Errorf("ref line = %d, want 5", doc.Refs[0].Line)
	}
	if len(doc.Images) != 1 || doc.Images[0].Asset != "images/gone2.png" {
		t.Fatalf("images = %v, want images/gone2.png", doc.Images)
	}
	if doc.Images[0].Line != 6 {
		t.Errorf("image line = %d, want 6", doc.Images[0].Line)
	}
}

func TestParse_RemoteImagesSkipped(t *testing.T) {
	input := "---\ntitle: T\nkind: overview\n---\n![remote](https://example.com/a.png)\n![local](shot.png)\n"
	doc, err := Parse("a.md", []byte(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Images) != 1 || doc.Images[0].Asset != "shot.png" {
		t.Errorf("images = %v", doc.Images)
	}
}

func TestParse_FenceMasksReferences(t *testing.T) {
	doc, err := Parse("2023/swiftui.md", []byte(sampleNote))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, r := range doc.Refs {
		if r.Target == "not-a-link" {
			t.Error("reference inside code fence was extracted")
		}
	}
	if len(doc.Fences) != 1 {
		t.Fatalf("fences = %d, want 1", len(doc.Fences))
	}
	if doc.Fences[0].Language != "swift" {
		t.Errorf("fence language = %q", doc.Fences[0].Language)
	}
	if doc.Fences[0].Text == "" {
		t.Error("fence text is empty")
	}
}

func TestParse_UnterminatedFenceRunsToEOF(t *testing.T) {
	input := "---\ntitle: T\nkind: overview\n---\ntext\n```go\nfunc main() {}\n"
	doc, err := Parse("a.md", []byte(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Fences) != 1 {
		t.Fatalf("fences = %d, want 1", len(doc.Fences))
	}
	if doc.Fences[0].Text != "func main() {}" {
		t.Errorf("fence text = %q", doc.Fences[0].Text)
	}
}

func TestParse_CRLFLineEndings(t *testing.T) {
	input := "---\r\ntitle: T\r\nkind: overview\r\n---\r\n" +
		"```go\r\ncode\r\n```\r\nsee [[after-fence]]\r\n"
	doc, err := Parse("a.md", []byte(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Fences) != 1 {
		t.Fatalf("fences = %d, want 1", len(doc.Fences))
	}
	if doc.Fences[0].Text != "code" {
		t.Errorf("fence text = %q", doc.Fences[0].Text)
	}
	if len(doc.Refs) != 1 || doc.Refs[0].Target != "after-fence" {
		t.Errorf("refs = %v, want after-fence", doc.Refs)
	}
}

func TestParse_Deterministic(t *testing.T) {
	a, err := Parse("2023/swiftui.md", []byte(sampleNote))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := Parse("2023/swiftui.md", []byte(sampleNote))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("parsing the same bytes twice produced different records")
	}
}

func TestParse_MissingMetadataBlock(t *testing.T) {
	_, err := Parse("a.md", []byte("# Just a heading\nSome text.\n"))
	var mm *apperr.MalformedMetadataError
	if !errors.As(err, &mm) {
		t.Fatalf("err = %v, want MalformedMetadataError", err)
	}
	if mm.Path != "a.md" {
		t.Errorf("path = %q", mm.Path)
	}
}

func TestParse_UnterminatedMetadataBlock(t *testing.T) {
	_, err := Parse("a.md", []byte("---\ntitle: T\nkind: overview\nno closing delimiter\n"))
	var mm *apperr.MalformedMetadataError
	if !errors.As(err, &mm) {
		t.Fatalf("err = %v, want MalformedMetadataError", err)
	}
}

func TestParse_TerminatorMustBeExact(t *testing.T) {
	cases := map[string]string{
		"dash run":              "---\ntitle: T\nkind: overview\n----\nbody\n",
		"delimiter with suffix": "---\ntitle: T\nkind: overview\n--- note\nbody\n",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse("a.md", []byte(input))
			var mm *apperr.MalformedMetadataError
			if !errors.As(err, &mm) {
				t.Fatalf("err = %v, want MalformedMetadataError", err)
			}
		})
	}
}

func TestParse_TerminatorTrailingWhitespace(t *testing.T) {
	input := "---\ntitle: T\nkind: overview\n---  \nline five is [[target]]\n"
	doc, err := Parse("a.md", []byte(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Refs) != 1 || doc.Refs[0].Line != 5 {
		t.Errorf("refs = %v, want target at line 5", doc.Refs)
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse("a.md", []byte("---\n: invalid: yaml: {{{\n---\nBody\n"))
	var mm *apperr.MalformedMetadataError
	if !errors.As(err, &mm) {
		t.Fatalf("err = %v, want MalformedMetadataError", err)
	}
}

func TestParse_MissingRequiredFields(t *testing.T) {
	cases := map[string]string{
		"no title":              "---\nkind: overview\n---\nbody\n",
		"no kind":               "---\ntitle: T\n---\nbody\n",
		"bad kind":              "---\ntitle: T\nkind: podcast\n---\nbody\n",
		"session without year":  "---\ntitle: T\nkind: session\nsession: 5\n---\nbody\n",
		"session without number": "---\ntitle: T\nkind: session\nyear: 2023\n---\nbody\n",
		"bad cta":               "---\ntitle: T\nkind: overview\ncta: not a url\n---\nbody\n",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse("a.md", []byte(input))
			var mm *apperr.MalformedMetadataError
			if !errors.As(err, &mm) {
				t.Fatalf("err = %v, want MalformedMetadataError", err)
			}
		})
	}
}

func TestParse_LineNumbersMatchFile(t *testing.T) {
	input := "---\ntitle: T\nkind: overview\n---\nline five is [[target]]\n"
	doc, err := Parse("a.md", []byte(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Refs) != 1 {
		t.Fatalf("refs = %v", doc.Refs)
	}
	if doc.Refs[0].Line != 5 {
		t.Errorf("line = %d, want 5", doc.Refs[0].Line)
	}
}

func TestParse_UnsluggableTitle(t *testing.T) {
	_, err := Parse("a.md", []byte("---\ntitle: \"!!!\"\nkind: overview\n---\nbody\n"))
	var mm *apperr.MalformedMetadataError
	if !errors.As(err, &mm) {
		t.Fatalf("err = %v, want MalformedMetadataError", err)
	}
}

func TestDeriveSlug(t *testing.T) {
	m := &models.Metadata{Title: "Meet Swift OpenAPI Generator!"}
	if got := deriveSlug(m); got != "meet-swift-openapi-generator" {
		t.Errorf("slug = %q", got)
	}
}
