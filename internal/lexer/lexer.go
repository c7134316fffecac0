// Package lexer turns directory and file names into token sequences
// following the gloop naming grammar:
//
//	<seq>-<word>[-<word>...][{param}|!flag ...][.ext]
//
// The numeric prefix orders the entry among its siblings; each
// dash-delimited word is one argv token; !name emits --name; {v} emits a
// positional v; {k=v} emits --k=v. A file's trailing extension is inert and
// stripped before lexing. Names without a sequence prefix are inert.
package lexer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/isdood/gloop/pkg/types"
)

// maxExtLen is the longest suffix after the final dot that is treated as a
// file extension and stripped.
const maxExtLen = 10

// Lex parses a single entry name. It never fails: problems are reported as
// diagnostics with the bare name as the path (the scanner rewrites paths to
// be root-relative). Entries with error diagnostics must not contribute to a
// program; entries with Inert set carry no tokens by construction.
func Lex(name string, isDir bool) (types.Entry, []types.Diagnostic) {
	entry := types.Entry{Name: name, IsDir: isDir}
	var diags []types.Diagnostic

	body := name
	if !isDir {
		body = stripExtension(body)
	}

	seq, rest, ok := splitSequence(body)
	if !ok {
		entry.Inert = true
		diags = append(diags, types.Diagnostic{
			Severity: types.SeverityInfo,
			Path:     name,
			Message:  "no sequence prefix; entry is inert",
		})
		return entry, diags
	}
	entry.Seq = seq

	tokens, tokDiags := lexBody(name, rest)
	entry.Tokens = tokens
	diags = append(diags, tokDiags...)
	return entry, diags
}

// stripExtension removes a trailing ".ext" where ext is 1 to maxExtLen
// alphanumerics. The dot must not be the first character and must leave a
// non-empty stem, so ".gitignore" and "0001-a." survive unchanged.
func stripExtension(name string) string {
	dot := strings.LastIndexByte(name, '.')
	if dot <= 0 || dot == len(name)-1 {
		return name
	}
	ext := name[dot+1:]
	if len(ext) > maxExtLen {
		return name
	}
	for _, r := range ext {
		if !isAlnum(r) {
			return name
		}
	}
	return name[:dot]
}

// splitSequence splits the leading "<digits>-" prefix. ok is false when the
// name has no such prefix.
func splitSequence(name string) (seq int, rest string, ok bool) {
	i := 0
	for i < len(name) && name[i] >= '0' && name[i] <= '9' {
		i++
	}
	if i == 0 || i >= len(name) || name[i] != '-' {
		return 0, "", false
	}
	n, err := strconv.Atoi(name[:i])
	if err != nil {
		// Longer than an int; nobody sequences that many entries.
		return 0, "", false
	}
	return n, name[i+1:], true
}

// lexBody tokenizes everything after the sequence dash. name is the original
// entry name, used only for diagnostics.
func lexBody(name, body string) ([]types.Token, []types.Diagnostic) {
	var tokens []types.Token
	var diags []types.Diagnostic

	fail := func(format string, args ...any) {
		diags = append(diags, types.Diagnostic{
			Severity: types.SeverityError,
			Path:     name,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	if body == "" {
		fail("missing word after sequence prefix")
		return nil, diags
	}

	sawModifier := false
	i := 0
	for i < len(body) {
		switch c := body[i]; {
		case c == '!':
			flag, n := scanWord(body[i+1:])
			if flag == "" {
				fail("empty flag name after '!'")
				return tokens, diags
			}
			tokens = append(tokens, types.Token{Kind: types.TokenFlag, Name: flag})
			sawModifier = true
			i += 1 + n

		case c == '{':
			tok, n, err := scanParam(body[i:])
			if err != nil {
				fail("%s", err)
				return tokens, diags
			}
			tokens = append(tokens, tok)
			sawModifier = true
			i += n

		case c == '}':
			fail("unbalanced '}'")
			return tokens, diags

		case c == '-':
			if i+1 >= len(body) {
				fail("trailing '-'")
				return tokens, diags
			}
			if i == 0 || !isWordByte(body[i+1]) {
				fail("empty word")
				return tokens, diags
			}
			i++

		case isWordByte(c):
			word, n := scanWord(body[i:])
			if sawModifier {
				fail("word %q after modifier; modifiers must come last", word)
				return tokens, diags
			}
			tokens = append(tokens, types.Token{Kind: types.TokenWord, Name: word})
			i += n

		default:
			fail("unexpected character %q", string(c))
			return tokens, diags
		}
	}

	if len(tokens) == 0 {
		fail("missing word after sequence prefix")
		return nil, diags
	}
	if tokens[0].Kind != types.TokenWord {
		fail("modifier before any word")
		return tokens, diags
	}
	return tokens, diags
}

// scanParam scans a "{name}" or "{name=value}" modifier starting at the
// opening brace. Returns the token and the number of bytes consumed.
func scanParam(s string) (types.Token, int, error) {
	close := -1
	for j := 1; j < len(s); j++ {
		switch s[j] {
		case '{':
			return types.Token{}, 0, fmt.Errorf("nested '{' inside parameter")
		case '}':
			close = j
		}
		if close >= 0 {
			break
		}
	}
	if close < 0 {
		return types.Token{}, 0, fmt.Errorf("unbalanced '{'")
	}

	inner := s[1:close]
	name, value := inner, ""
	if eq := strings.IndexByte(inner, '='); eq >= 0 {
		name, value = inner[:eq], inner[eq+1:]
		if value == "" {
			return types.Token{}, 0, fmt.Errorf("empty value in parameter %q", inner)
		}
	}
	if name == "" {
		return types.Token{}, 0, fmt.Errorf("empty parameter name")
	}
	for _, r := range name {
		if !isWordRune(r) {
			return types.Token{}, 0, fmt.Errorf("invalid parameter name %q", name)
		}
	}
	return types.Token{Kind: types.TokenParam, Name: name, Value: value}, close + 1, nil
}

// scanWord returns the longest word-character prefix of s and its length.
func scanWord(s string) (string, int) {
	i := 0
	for i < len(s) && isWordByte(s[i]) {
		i++
	}
	return s[:i], i
}

func isWordByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' || c == '_' || c == '.'
}

func isWordRune(r rune) bool {
	return r < 128 && isWordByte(byte(r))
}

func isAlnum(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9'
}
