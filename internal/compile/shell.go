package compile

import "strings"

// ShellLine renders argv as a single POSIX shell command line. Tokens made of
// safe characters pass through; everything else is single-quoted, with
// embedded single quotes escaped. Empty tokens render as ''.
func ShellLine(argv []string) string {
	parts := make([]string, len(argv))
	for i, tok := range argv {
		parts[i] = shellQuote(tok)
	}
	return strings.Join(parts, " ")
}

// shellSafe are the characters that never need quoting in a POSIX shell word.
const shellSafe = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_@%+=:,./-"

func shellQuote(tok string) string {
	if tok == "" {
		return "''"
	}
	safe := true
	for i := 0; i < len(tok); i++ {
		if !strings.ContainsRune(shellSafe, rune(tok[i])) {
			safe = false
			break
		}
	}
	if safe {
		return tok
	}
	return "'" + strings.ReplaceAll(tok, "'", `'\''`) + "'"
}
