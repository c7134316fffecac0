package types

// Token kinds. A token is one unit of the argv a name contributes.
const (
	TokenWord  = "word"  // dash-delimited word, emitted as-is
	TokenFlag  = "flag"  // !name modifier, emitted as --name
	TokenParam = "param" // {v} or {k=v} modifier, emitted as v or --k=v
)

// Token is a single argv contribution lexed from an entry name.
type Token struct {
	Kind  string `json:"kind"`
	Name  string `json:"name"`
	Value string `json:"value,omitempty"` // set only for {k=v} params
}

// Argv renders the token as a single command-line argument.
func (t Token) Argv() string {
	switch t.Kind {
	case TokenFlag:
		return "--" + t.Name
	case TokenParam:
		if t.Value != "" {
			return "--" + t.Name + "=" + t.Value
		}
		return t.Name
	default:
		return t.Name
	}
}

// Entry is the lexed form of one directory or file name.
type Entry struct {
	Name    string  `json:"name"`     // original name as it appears on disk
	Seq     int     `json:"seq"`      // numeric sequence prefix
	IsDir   bool    `json:"is_dir"`   //
	Inert   bool    `json:"inert"`    // no sequence prefix; contributes nothing
	Tokens  []Token `json:"tokens"`   // ordered argv contributions
	RelPath string  `json:"rel_path"` // path relative to the compile root, set by the scanner
}

// Argv renders the entry's tokens in order.
func (e Entry) Argv() []string {
	out := make([]string, 0, len(e.Tokens))
	for _, t := range e.Tokens {
		out = append(out, t.Argv())
	}
	return out
}
