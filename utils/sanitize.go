package utils

import (
	"html"

	"github.com/microcosm-cc/bluemonday"
)

// Tweets are plain text, so the strict policy strips all markup.
var sanitizer = bluemonday.StrictPolicy()

// Sanitize strips markup from tweet text. The policy entity-escapes the text
// it keeps, so the result is unescaped back to plain characters: stored text
// and its measured length must match what the user typed.
func Sanitize(input string) string {
	return html.UnescapeString(sanitizer.Sanitize(input))
}
