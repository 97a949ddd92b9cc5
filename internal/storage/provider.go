// Package storage defines the read-only corpus and asset-store abstractions.
package storage

import "github.com/hallgrim/notelint/internal/models"

// Provider is the interface for corpus file access. The corpus is authored
// by humans and never mutated by the validator, so there is no write path.
type Provider interface {
	// List returns metadata for every .md file under dir (relative to the corpus root).
	List(dir string) ([]models.FileMetadata, error)
	// Read returns the raw bytes of the file at path (relative to the corpus root).
	Read(path string) ([]byte, error)
}
