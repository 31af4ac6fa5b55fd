package view

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"
	"unicode/utf8"

	"github.com/emzola/shelflog/data"
	"golang.org/x/term"
)

const (
	defaultWidth = 80
	timeLayout   = "2006-01-02 15:04"
)

// Renderer writes screens as plain text.
type Renderer struct {
	w     io.Writer
	width int
	// Location is used to display timestamps.
	Location *time.Location
}

// NewRenderer creates a renderer for w. When w is a terminal its width is
// used to fit long titles, otherwise 80 columns are assumed.
func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{w: w, width: terminalWidth(w), Location: time.Local}
}

func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return defaultWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return defaultWidth
	}
	return width
}

func (r *Renderer) printf(format string, args ...interface{}) {
	fmt.Fprintf(r.w, format, args...)
}

func (r *Renderer) time(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.In(r.Location).Format(timeLayout)
}

// List renders the book cards. Liked books carry a heart; the expanded book
// lists its notes.
func (r *Renderer) List(books []data.Book, filters data.Filters, ui *UIState) {
	r.filtersLine(filters)
	for _, b := range books {
		marker := ""
		if ui.Liked(b.ID) {
			marker = "  ♥"
		}
		r.printf("#%s  %s%s\n", b.ID, truncate(b.Title, r.width-len(b.ID)-6), marker)
		r.printf("    %s | %s | %s | %s\n", b.Author, b.Category, badge(b.Status), plural(len(b.Notes), "note"))
		if ui.Expanded(b.ID) {
			if len(b.Notes) == 0 {
				r.printf("    (no notes)\n")
			}
			for _, n := range b.Notes {
				r.printf("    - %s\n", n.Content)
			}
		}
	}
	r.printf("%s\n", plural(len(books), "book"))
}

// Table renders books as aligned columns.
func (r *Renderer) Table(books []data.Book) {
	tw := tabwriter.NewWriter(r.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tCATEGORY\tSTATUS\tNOTES")
	for _, b := range books {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\n", b.ID, truncate(b.Title, 40), b.Author, b.Category, b.Status, len(b.Notes))
	}
	tw.Flush()
}

// Detail renders every field of a book, including note timestamps.
func (r *Renderer) Detail(book *data.Book, ui *UIState) {
	tw := tabwriter.NewWriter(r.w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", book.ID)
	title := book.Title
	if ui != nil && ui.Liked(book.ID) {
		title += "  ♥"
	}
	fmt.Fprintf(tw, "Title:\t%s\n", title)
	fmt.Fprintf(tw, "Author:\t%s\n", book.Author)
	fmt.Fprintf(tw, "Category:\t%s\n", book.Category)
	fmt.Fprintf(tw, "Status:\t%s\n", badge(book.Status))
	fmt.Fprintf(tw, "Added:\t%s\n", r.time(book.CreatedAt))
	fmt.Fprintf(tw, "Updated:\t%s\n", r.time(book.UpdatedAt))
	tw.Flush()
	if len(book.Notes) == 0 {
		r.printf("Notes: none\n")
		return
	}
	r.printf("Notes (%d):\n", len(book.Notes))
	for i, n := range book.Notes {
		r.printf("  %d. %s  (%s)\n", i+1, n.Content, r.time(n.CreatedAt))
	}
}

// Error renders an error message. A non-empty retry names the command that
// repeats the failed operation.
func (r *Renderer) Error(message, retry string) {
	r.printf("Error: %s\n", message)
	if retry != "" {
		r.printf("Type '%s' to try again.\n", retry)
	}
}

func (r *Renderer) Loading() {
	r.printf("Loading...\n")
}

// Empty renders the empty list screen.
func (r *Renderer) Empty(filters data.Filters) {
	r.filtersLine(filters)
	if filters.IsZero() {
		r.printf("No books yet. Type 'add' to add one.\n")
		return
	}
	r.printf("No books match the current filters. Type 'clear' to reset them.\n")
}

// Message renders a one-line notice.
func (r *Renderer) Message(message string) {
	r.printf("%s\n", message)
}

func (r *Renderer) filtersLine(filters data.Filters) {
	if filters.IsZero() {
		return
	}
	var parts []string
	if filters.Status != "" {
		parts = append(parts, "status="+string(filters.Status))
	}
	if filters.Category != "" {
		parts = append(parts, "category="+filters.Category)
	}
	if filters.Title != "" {
		parts = append(parts, fmt.Sprintf("title~%q", filters.Title))
	}
	r.printf("Filters: %s\n", strings.Join(parts, " "))
}

func badge(s data.Status) string {
	return "[" + string(s) + "]"
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// truncate shortens s to at most max runes, marking the cut with an ellipsis.
func truncate(s string, max int) string {
	if max < 4 {
		max = 4
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-1]) + "…"
}
