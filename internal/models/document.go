// Package models defines the domain types for notelint.
package models

import "time"

// Page kinds recognised in a metadata block.
const (
	KindSession  = "session"
	KindOverview = "overview"
	KindBook     = "book"
)

// Metadata is the structured header block preceding a document body.
type Metadata struct {
	Title        string   `yaml:"title" json:"title"`
	Kind         string   `yaml:"kind" json:"kind"`
	Slug         string   `yaml:"slug,omitempty" json:"slug,omitempty"`
	Year         int      `yaml:"year,omitempty" json:"year,omitempty"`
	Session      int      `yaml:"session,omitempty" json:"session,omitempty"`
	CallToAction string   `yaml:"cta,omitempty" json:"cta,omitempty"`
	Contributors []string `yaml:"contributors,omitempty" json:"contributors,omitempty"`
}

// Reference is a cross-document link found in a body, in occurrence order.
type Reference struct {
	Target  string `json:"target"`
	Line    int    `json:"line"`
	Heading string `json:"heading,omitempty"`
}

// ImageRef points at an asset by name.
type ImageRef struct {
	Asset   string `json:"asset"`
	Line    int    `json:"line"`
	Heading string `json:"heading,omitempty"`
}

// CodeFence is an embedded snippet: quoted material, never executed.
type CodeFence struct {
	Language string `json:"language,omitempty"`
	Text     string `json:"text"`
	Line     int    `json:"line"`
}

// Document is one parsed note file.
type Document struct {
	Path     string      `json:"path"`
	Slug     string      `json:"slug"`
	Metadata Metadata    `json:"metadata"`
	Body     string      `json:"body"`
	Headings []string    `json:"headings,omitempty"`
	Refs     []Reference `json:"refs,omitempty"`
	Images   []ImageRef  `json:"images,omitempty"`
	Fences   []CodeFence `json:"fences,omitempty"`
	Checksum string      `json:"checksum"`
}

// FileMetadata is a lightweight representation returned by corpus listings.
type FileMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefectKind classifies a validation finding.
type DefectKind string

// Defect kinds reported by the reference checker.
const (
	DanglingCrossReference DefectKind = "DanglingCrossReference"
	MissingImageAsset      DefectKind = "MissingImageAsset"
)

// Defect is a non-fatal validation finding against one document.
type Defect struct {
	Path    string     `json:"path"`
	Slug    string     `json:"slug"`
	Kind    DefectKind `json:"kind"`
	Target  string     `json:"target"`
	Line    int        `json:"line"`
	Heading string     `json:"heading,omitempty"`
}
