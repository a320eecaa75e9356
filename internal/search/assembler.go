package search

import (
	"fmt"
	"strings"
)

// NoSearchResultsPlaceholder replaces an empty snippet list in the assembled context
const NoSearchResultsPlaceholder = "No search results found."

// Assemble joins snippets into the context block returned to the caller
func Assemble(query string, snippets []string) string {
	body := NoSearchResultsPlaceholder
	if len(snippets) > 0 {
		body = strings.Join(snippets, "\n")
	}
	return fmt.Sprintf("Search results for '%s':\n%s", query, body)
}
