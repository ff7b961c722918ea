// ABOUTME: Prompt construction for query generation and information extraction
// ABOUTME: Kept minimal; prompt engineering lives with the model configuration

package sources

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"blogforge-app-api/core/domain"
)

const queryGenerationSystem = `You are a search query generator for SEO research.
Respond with a JSON object of the form
{"query_1": "...", "query_2": "...", "query_3": "...", "query_4": "...", "query_5": "..."}
and nothing else.`

const informationSystem = `You are a research assistant extracting factual information
from scraped web content. Respond with a JSON object mapping information keys to
concise findings, each citing the source it came from. Respond with JSON only.`

// queryGenerationPrompt asks for n search queries for one processing unit.
func queryGenerationPrompt(n int, blogTitle, headingTitle, subsectionTitle, primaryKeyword, country string, outline *domain.Outline) string {
	outlineJSON, _ := json.Marshal(outline)

	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d web search queries to research the blog subsection below.\n\n", n)
	fmt.Fprintf(&b, "Blog title: %s\n", blogTitle)
	fmt.Fprintf(&b, "Heading: %s\n", headingTitle)
	fmt.Fprintf(&b, "Subsection: %s\n", subsectionTitle)
	fmt.Fprintf(&b, "Primary keyword: %s\n", primaryKeyword)
	fmt.Fprintf(&b, "Target country: %s\n", country)
	fmt.Fprintf(&b, "Current date: %s\n\n", time.Now().UTC().Format("January 2, 2006"))
	fmt.Fprintf(&b, "Full outline for context:\n%s\n", outlineJSON)
	return b.String()
}

// informationPrompt combines the scraped sources into one extraction request.
func informationPrompt(blogTitle, headingTitle, subsectionTitle string, pages []scrapedSource) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Extract the key factual information needed to write the subsection %q", subsectionTitle)
	fmt.Fprintf(&b, " under the heading %q of the blog %q.\n\n", headingTitle, blogTitle)
	b.WriteString("Sources:\n")
	for i, page := range pages {
		fmt.Fprintf(&b, "\n--- Source %d: %s (%s) ---\n", i+1, page.title, page.url)
		b.WriteString(truncate(page.content, maxSourceChars))
		b.WriteString("\n")
	}
	return b.String()
}

// maxSourceChars bounds the per-source content included in the extraction
// prompt so the combined request stays inside the model's context window.
const maxSourceChars = 6000

// truncate cuts s to at most max bytes without splitting a UTF-8 rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// scrapedSource pairs a scraped page with the query that found it.
type scrapedSource struct {
	url     string
	title   string
	content string
}
