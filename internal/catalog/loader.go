package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"catalogapi/internal/httpx"
)

//go:embed sample_catalog.json
var sampleCatalogJSON []byte

// bookRecord is the on-disk shape of a catalog entry.
type bookRecord struct {
	ID        string   `json:"id" validate:"notblank,max=64"`
	Title     string   `json:"titulo" validate:"notblank"`
	ISBN      ISBN     `json:"isbn"`
	Category  string   `json:"categoria"`
	Authors   []string `json:"autores" validate:"dive,notblank"`
	Available *bool    `json:"disponible" validate:"required"`
}

// LoadBooks decodes a JSON array of books and validates every entry.
// Duplicate ids are rejected.
func LoadBooks(r io.Reader) ([]Book, error) {
	var records []bookRecord
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	seen := make(map[string]bool, len(records))
	books := make([]Book, 0, len(records))
	for i, rec := range records {
		if details := httpx.ValidateStruct(rec); len(details) > 0 {
			msgs := make([]string, 0, len(details))
			for _, d := range details {
				msgs = append(msgs, d.Message)
			}
			return nil, fmt.Errorf("record %d: %s", i, strings.Join(msgs, "; "))
		}

		id := MustParseBookID(rec.ID)
		if seen[id.String()] {
			return nil, fmt.Errorf("record %d: duplicate id %q", i, id)
		}
		seen[id.String()] = true

		books = append(books, Book{
			ID:        id,
			Title:     strings.TrimSpace(rec.Title),
			ISBN:      ISBN{Value: strings.TrimSpace(rec.ISBN.Value)},
			Category:  strings.TrimSpace(rec.Category),
			Authors:   rec.Authors,
			Available: *rec.Available,
		})
	}
	return books, nil
}

// SampleBooks returns the built-in demo catalog.
func SampleBooks() []Book {
	books, err := LoadBooks(bytes.NewReader(sampleCatalogJSON))
	if err != nil {
		panic(err)
	}
	return books
}
