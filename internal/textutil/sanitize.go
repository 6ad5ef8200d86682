package textutil

import "strings"

// fileNameReplacer maps characters that are unsafe on common filesystems.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	`\`, "-",
	":", "-",
	"*", "",
	"?", "",
	`"`, "'",
	"<", "",
	">", "",
	"|", "-",
)

// SanitizeFileName makes name safe to use as a single path element. Separators
// and colons become dashes, other reserved characters and control characters
// are dropped, and leading or trailing dots and spaces are trimmed.
func SanitizeFileName(name string) string {
	name = fileNameReplacer.Replace(name)
	name = strings.Map(func(r rune) rune {
		if r < 0x20 {
			return -1
		}
		return r
	}, name)
	return strings.Trim(strings.TrimSpace(name), ".")
}
