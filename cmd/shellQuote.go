package cmd

import "strings"

// shellSafe holds the punctuation that never needs quoting in a POSIX shell
// word. Letters and digits are always safe.
const shellSafe = "-_./@:,+="

// shellQuote returns s as a single POSIX shell word. Words made only of safe
// characters are returned unchanged; everything else is single-quoted, with
// embedded quotes written as '\''.
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	needsQuote := strings.ContainsFunc(s, func(r rune) bool {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		return !isAlnum && !strings.ContainsRune(shellSafe, r)
	})
	if !needsQuote {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
