// Package parser turns raw note text into a structured document record:
// metadata block, body headings, cross-references, image references, and
// embedded code fences.
package parser

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"gopkg.in/yaml.v3"

	"github.com/hallgrim/notelint/internal/apperr"
	"github.com/hallgrim/notelint/internal/models"
)

var (
	wikilinkRe = regexp.MustCompile(`\[\[(.*?)\]\]`)
	imageRe    = regexp.MustCompile(`!\[[^\]]*\]\(\s*([^)\s]+)[^)]*\)`)
	slugRe     = regexp.MustCompile(`[^a-z0-9]+`)
)

// Parse produces a structured record from raw document bytes. It is
// deterministic: the same bytes always yield the same record. A missing or
// invalid metadata block fails with *apperr.MalformedMetadataError.
//
// The caller fills in Checksum; everything else is derived from data.
func Parse(path string, data []byte) (*models.Document, error) {
	meta, body, bodyLine, err := splitMetadata(path, data)
	if err != nil {
		return nil, err
	}
	if err := validateMetadata(meta); err != nil {
		return nil, &apperr.MalformedMetadataError{Path: path, Reason: err.Error()}
	}

	slug := deriveSlug(meta)
	if slug == "" {
		return nil, &apperr.MalformedMetadataError{Path: path, Reason: "cannot derive a slug from the title"}
	}

	doc := &models.Document{
		Path:     path,
		Slug:     slug,
		Metadata: *meta,
		Body:     body,
	}
	scanBody(doc, body, bodyLine)
	return doc, nil
}

// splitMetadata separates the YAML metadata block (between leading ---
// delimiter lines) from the body. A delimiter line is exactly "---" aside
// from trailing whitespace; a dash run or a "---"-prefixed line does not
// terminate the block. Returns the 1-based file line on which the body
// starts.
func splitMetadata(path string, data []byte) (*models.Metadata, string, int, error) {
	trimmed := bytes.TrimLeft(data, "\n\r")

	open := bytes.IndexByte(trimmed, '\n')
	if open < 0 || !isDelimiterLine(trimmed[:open]) {
		return nil, "", 0, &apperr.MalformedMetadataError{Path: path, Reason: "metadata block is missing"}
	}
	rest := trimmed[open+1:]

	yamlBlock, after, ok := findTerminator(rest)
	if !ok {
		return nil, "", 0, &apperr.MalformedMetadataError{Path: path, Reason: "metadata block is not terminated"}
	}

	body := strings.TrimLeft(string(after), "\n\r")

	var meta models.Metadata
	if err := yaml.Unmarshal(yamlBlock, &meta); err != nil {
		return nil, "", 0, &apperr.MalformedMetadataError{Path: path, Reason: fmt.Sprintf("invalid YAML: %v", err)}
	}

	// Lines consumed before the body: leading blanks, both delimiter lines,
	// the YAML block, and any blank lines trimmed off the body start.
	consumed := len(data) - len(body)
	bodyLine := bytes.Count(data[:consumed], []byte("\n")) + 1

	return &meta, body, bodyLine, nil
}

// findTerminator locates the closing delimiter line within rest and returns
// the YAML block before it and the remainder after it.
func findTerminator(rest []byte) (yamlBlock, after []byte, ok bool) {
	for off := 0; off < len(rest); {
		end := bytes.IndexByte(rest[off:], '\n')
		lineEnd := len(rest)
		if end >= 0 {
			lineEnd = off + end
		}
		if isDelimiterLine(rest[off:lineEnd]) {
			if end < 0 {
				return rest[:off], nil, true
			}
			return rest[:off], rest[lineEnd+1:], true
		}
		if end < 0 {
			break
		}
		off = lineEnd + 1
	}
	return nil, nil, false
}

// isDelimiterLine reports whether line is a metadata delimiter: exactly
// "---" aside from trailing whitespace.
func isDelimiterLine(line []byte) bool {
	return string(bytes.TrimRight(line, " \t\r")) == "---"
}

// validateMetadata enforces the required-field rules of the note templates.
func validateMetadata(m *models.Metadata) error {
	return validation.ValidateStruct(m,
		validation.Field(&m.Title, validation.Required),
		validation.Field(&m.Kind, validation.Required,
			validation.In(models.KindSession, models.KindOverview, models.KindBook)),
		validation.Field(&m.Year,
			validation.When(m.Kind == models.KindSession, validation.Required, validation.Min(2000))),
		validation.Field(&m.Session,
			validation.When(m.Kind == models.KindSession, validation.Required, validation.Min(1))),
		validation.Field(&m.CallToAction, is.URL),
	)
}

// deriveSlug returns the explicit slug field when set, otherwise a slug
// derived from the title: lowercased, non-alphanumeric runs collapsed to "-".
func deriveSlug(m *models.Metadata) string {
	if m.Slug != "" {
		return m.Slug
	}
	s := slugRe.ReplaceAllString(strings.ToLower(m.Title), "-")
	return strings.Trim(s, "-")
}

// scanBody walks the body line by line, tracking the current heading and
// fence state. References inside fenced code blocks are quoted material and
// are never extracted. startLine is the 1-based file line of the first body
// line, so recorded line numbers match the file on disk.
func scanBody(doc *models.Document, body string, startLine int) {
	var (
		heading   string
		fence     *models.CodeFence
		fenceText []string
		fenceMark string
	)

	lines := strings.Split(body, "\n")
	for i, line := range lines {
		fileLine := startLine + i
		line = strings.TrimRight(line, "\r")
		stripped := strings.TrimLeft(line, " ")

		if fence != nil {
			if isFenceClose(stripped, fenceMark) {
				fence.Text = strings.Join(fenceText, "\n")
				doc.Fences = append(doc.Fences, *fence)
				fence, fenceText = nil, nil
				continue
			}
			fenceText = append(fenceText, line)
			continue
		}

		if mark, lang, ok := fenceOpen(stripped); ok {
			fenceMark = mark
			fence = &models.CodeFence{Language: lang, Line: fileLine}
			continue
		}

		if strings.HasPrefix(stripped, "#") {
			if h := strings.TrimSpace(strings.TrimLeft(stripped, "#")); h != "" {
				heading = h
				doc.Headings = append(doc.Headings, heading)
			}
			// Heading text can itself carry references, so the line still
			// goes through the scans below.
		}

		for _, m := range wikilinkRe.FindAllStringSubmatch(line, -1) {
			target := m[1]
			// [[target|alias]] → target.
			if j := strings.Index(target, "|"); j >= 0 {
				target = target[:j]
			}
			target = strings.TrimSpace(target)
			if target == "" {
				continue
			}
			doc.Refs = append(doc.Refs, models.Reference{Target: target, Line: fileLine, Heading: heading})
		}

		for _, m := range imageRe.FindAllStringSubmatch(line, -1) {
			asset := strings.TrimPrefix(m[1], "./")
			// Remote images are outside the asset store.
			if strings.HasPrefix(asset, "http://") || strings.HasPrefix(asset, "https://") {
				continue
			}
			doc.Images = append(doc.Images, models.ImageRef{Asset: asset, Line: fileLine, Heading: heading})
		}
	}

	// Unterminated fence runs to end of body.
	if fence != nil {
		fence.Text = strings.Join(fenceText, "\n")
		doc.Fences = append(doc.Fences, *fence)
	}
}

// fenceOpen reports whether a line opens a code fence and returns the fence
// marker and the info-string language tag.
func fenceOpen(line string) (mark, lang string, ok bool) {
	for _, m := range []string{"```", "~~~"} {
		if strings.HasPrefix(line, m) {
			rest := strings.TrimLeft(line, string(m[0]))
			return m, strings.TrimSpace(rest), true
		}
	}
	return "", "", false
}

// isFenceClose reports whether a line closes a fence opened with mark.
func isFenceClose(line, mark string) bool {
	if !strings.HasPrefix(line, mark) {
		return false
	}
	return strings.TrimLeft(line, string(mark[0])) == ""
}
