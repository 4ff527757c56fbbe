package catalog

import (
	"encoding/json"
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when no book matches the given identifier.
	ErrNotFound = errors.New("book not found")
	// ErrInvalidBookID is returned for blank book identifiers.
	ErrInvalidBookID = errors.New("book id must not be blank")
	// ErrInvalidCriterion is returned for blank search criteria.
	ErrInvalidCriterion = errors.New("search criterion must not be blank")
)

// BookID uniquely identifies a book in the catalog. The zero value is not a
// valid identifier; build one with ParseBookID.
type BookID struct {
	value string
}

// ParseBookID trims s and wraps it as a BookID.
func ParseBookID(s string) (BookID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return BookID{}, ErrInvalidBookID
	}
	return BookID{value: s}, nil
}

// MustParseBookID is ParseBookID for literals in tests and seed data.
func MustParseBookID(s string) BookID {
	id, err := ParseBookID(s)
	if err != nil {
		panic(err)
	}
	return id
}

func (id BookID) String() string { return id.value }

func (id BookID) IsZero() bool { return id.value == "" }

func (id BookID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.value)
}

func (id *BookID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseBookID(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ISBN holds the book number as given; the format is not checked.
type ISBN struct {
	Value string `json:"isbn_value"`
}

// Book is a catalog record.
type Book struct {
	ID        BookID   `json:"id"`
	Title     string   `json:"titulo"`
	ISBN      ISBN     `json:"isbn"`
	Category  string   `json:"categoria"`
	Authors   []string `json:"autores"`
	Available bool     `json:"disponible"`
}

// MarshalJSON keeps "autores" an array when a record has no authors.
func (b Book) MarshalJSON() ([]byte, error) {
	type plain Book
	if b.Authors == nil {
		b.Authors = []string{}
	}
	return json.Marshal(plain(b))
}

// Matches reports whether criterion occurs, ignoring case, in the title, an
// author, the ISBN value or the category. criterion must already be trimmed.
func (b Book) Matches(criterion string) bool {
	needle := strings.ToLower(criterion)
	if strings.Contains(strings.ToLower(b.Title), needle) ||
		strings.Contains(strings.ToLower(b.ISBN.Value), needle) ||
		strings.Contains(strings.ToLower(b.Category), needle) {
		return true
	}
	for _, a := range b.Authors {
		if strings.Contains(strings.ToLower(a), needle) {
			return true
		}
	}
	return false
}

// clone returns a copy that shares no slice memory with b.
func (b Book) clone() Book {
	if b.Authors != nil {
		b.Authors = append([]string(nil), b.Authors...)
	}
	return b
}
