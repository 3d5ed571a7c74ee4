package utils

import "strings"

var germanUmlautReplacer = strings.NewReplacer(
	"ß", "ss",
	"ä", "ae",
	"ö", "oe",
	"ü", "ue",
	"Ä", "Ae",
	"Ö", "Oe",
	"Ü", "Ue",
)

// FoldGermanUmlauts transliterates German special characters to ASCII
// for upstream endpoints that cannot match them. Idempotent.
func FoldGermanUmlauts(s string) string {
	return germanUmlautReplacer.Replace(s)
}
