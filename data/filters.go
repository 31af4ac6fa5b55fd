package data

import "strings"

// Filters narrows a book listing. Empty fields do not constrain the result.
type Filters struct {
	Status   Status `json:"status,omitempty"`
	Category string `json:"category,omitempty"`
	// Title matches any book whose title contains it, ignoring case.
	Title string `json:"title,omitempty"`
}

// IsZero reports whether no filter is set.
func (f Filters) IsZero() bool {
	return f.Status == "" && f.Category == "" && f.Title == ""
}

// Match reports whether the book satisfies every set filter.
func (f Filters) Match(book *Book) bool {
	if f.Status != "" && book.Status != f.Status {
		return false
	}
	if f.Category != "" && book.Category != f.Category {
		return false
	}
	if f.Title != "" && !strings.Contains(strings.ToLower(book.Title), strings.ToLower(f.Title)) {
		return false
	}
	return true
}
