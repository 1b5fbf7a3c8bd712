package projections

import "strings"

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// Escape replaces the five HTML-significant characters with entities.
// POST: result contains no raw & < > " ' other than those inside entities
func Escape(s string) string {
	return htmlEscaper.Replace(s)
}
