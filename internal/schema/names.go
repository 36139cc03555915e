package schema

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// DeriveCaption builds a display caption from a snake_case descriptor
// name: "process_activity" becomes "Process Activity". Used when a
// descriptor omits its caption.
func DeriveCaption(name string) string {
	name = strings.TrimPrefix(name, AbstractPrefix)
	return titleCaser.String(strings.ReplaceAll(name, "_", " "))
}
