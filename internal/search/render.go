package search

import (
	"fmt"
	"io"
	"math/rand"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	headingStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	categoryStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("82"))
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33"))
	sentenceStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	matchStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	randomColors = []lipgloss.Color{"1", "2", "3", "4", "5", "6"}
)

const separator = "**************************************************"

// Printer writes search results with the matched key highlighted.
type Printer struct {
	w   io.Writer
	key string
}

// NewPrinter creates a printer that highlights key in every result.
func NewPrinter(w io.Writer, key string) *Printer {
	return &Printer{w: w, key: key}
}

// Highlight styles every occurrence of the key and expands stored line breaks.
func (p *Printer) Highlight(text string) string {
	text = strings.ReplaceAll(text, `\n`, "\n")
	text = strings.ReplaceAll(text, "<br>", "\n")
	if p.key == "" {
		return text
	}
	return strings.ReplaceAll(text, p.key, matchStyle.Render(p.key))
}

// Menu prints the numbered category list.
func (p *Printer) Menu(names []string) {
	fmt.Fprintln(p.w, headingStyle.Render("Menu:"))
	for i, name := range names {
		fmt.Fprintf(p.w, "%d. %s\t\t", i+1, name)
	}
	fmt.Fprint(p.w, "\n\n")
}

// Talks prints the talks selected by sl, then the total match count.
func (p *Printer) Talks(talks []Talk, sl Slice) {
	fmt.Fprintln(p.w, headingStyle.Render("Talks:"))
	start, end := sl.Bounds(len(talks))
	for i := start; i < end; i++ {
		t := talks[i]
		fmt.Fprintf(p.w, "%d %s\n", i+1, dimStyle.Render(separator))
		fmt.Fprintln(p.w, categoryStyle.Render(t.Category))
		fmt.Fprintln(p.w, titleStyle.Render(p.Highlight(t.Title)))
		fmt.Fprintln(p.w, p.Highlight(t.Content))
	}
	fmt.Fprintf(p.w, "Total: %d\n", len(talks))
}

// Sentences prints the sentences selected by sl, then the total match count.
func (p *Printer) Sentences(sentences []string, sl Slice) {
	fmt.Fprintln(p.w, headingStyle.Render("Nothings:"))
	start, end := sl.Bounds(len(sentences))
	for i := start; i < end; i++ {
		fmt.Fprintf(p.w, "%d %s\n", i+1, dimStyle.Render(separator))
		fmt.Fprintln(p.w, sentenceStyle.Render(p.Highlight(sentences[i])))
	}
	fmt.Fprintf(p.w, "Total: %d\n", len(sentences))
}

// Random prints each sentence in a randomly chosen color.
func (p *Printer) Random(sentences []string) {
	for i, s := range sentences {
		style := lipgloss.NewStyle().Foreground(randomColors[rand.Intn(len(randomColors))])
		fmt.Fprintf(p.w, "%d. %s\n", i+1, style.Render(p.Highlight(s)))
	}
}

// ResultSet prints an ad-hoc query result as a table.
func (p *Printer) ResultSet(rs *ResultSet) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(dimStyle).
		Headers(rs.Columns...).
		Rows(rs.Rows...)
	fmt.Fprintln(p.w, t.Render())
	fmt.Fprintln(p.w, dimStyle.Render(fmt.Sprintf("(%d rows)", len(rs.Rows))))
}
