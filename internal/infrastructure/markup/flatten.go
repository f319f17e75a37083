package markup

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"Cadence/internal/ports"
)

var (
	htmlTagExpr    = regexp.MustCompile(`<[a-zA-Z/][^>]*>`)
	blockBreakExpr = regexp.MustCompile(`(?i)</(?:p|div|li|h[1-6]|blockquote|tr)>|<br\s*/?>`)
	codeFenceExpr  = regexp.MustCompile("(?s)```[a-zA-Z0-9]*\\n?(.*?)```")
	inlineCodeExpr = regexp.MustCompile("`([^`\\n]*)`")
	linkExpr       = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	boldExpr       = regexp.MustCompile(`\*\*([^*]+)\*\*|__([^_]+)__`)
	italicExpr     = regexp.MustCompile(`\*([^*\n]+)\*`)
	headingExpr    = regexp.MustCompile(`(?m)^#{1,6}\s*`)
	quoteExpr      = regexp.MustCompile(`(?m)^>\s?`)
	listMarkExpr   = regexp.MustCompile(`(?m)^\s*(?:[-*+]|\d+\.)\s+`)
)

// Flattener reduces model output to plain chat text: markdown decoration
// is stripped, HTML is parsed and reduced to its visible text. Chat
// transports render neither, so decoration would read as noise.
type Flattener struct{}

var _ ports.Flattener = (*Flattener)(nil)

// New builds a Flattener.
func New() *Flattener {
	return &Flattener{}
}

// Flatten strips markup and normalizes whitespace line by line.
func (f *Flattener) Flatten(markup string) (string, error) {
	text := stripMarkdown(markup)

	if htmlTagExpr.MatchString(text) {
		flattened, err := flattenHTML(text)
		if err != nil {
			return "", fmt.Errorf("flatten html: %w", err)
		}
		text = flattened
	}

	return normalizeLines(text), nil
}

func stripMarkdown(src string) string {
	src = codeFenceExpr.ReplaceAllString(src, "$1")
	src = inlineCodeExpr.ReplaceAllString(src, "$1")
	src = linkExpr.ReplaceAllString(src, "$1")
	src = boldExpr.ReplaceAllString(src, "$1$2")
	src = italicExpr.ReplaceAllString(src, "$1")
	src = headingExpr.ReplaceAllString(src, "")
	src = quoteExpr.ReplaceAllString(src, "")
	src = listMarkExpr.ReplaceAllString(src, "")
	return src
}

func flattenHTML(src string) (string, error) {
	// Closing block tags become line breaks so visible text keeps its
	// reading order once the tags are gone.
	src = blockBreakExpr.ReplaceAllString(src, "\n")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		return "", fmt.Errorf("parse document: %w", err)
	}

	doc.Find("script, style").Remove()
	return doc.Text(), nil
}

func normalizeLines(src string) string {
	lines := strings.Split(src, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
