package types

import "fmt"

// Diagnostic severities, ordered from least to most severe.
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// Diagnostic records a problem or notice attached to a path during lexing,
// scanning, or compilation. Error-severity diagnostics fail strict compiles;
// in non-strict mode the offending entry is dropped and the diagnostic kept.
type Diagnostic struct {
	Severity string `json:"severity"`
	Path     string `json:"path"` // path relative to the compile root; may be a bare name during lexing
	Message  string `json:"message"`
}

// String renders the diagnostic in "severity: path: message" form.
func (d Diagnostic) String() string {
	if d.Path == "" {
		return fmt.Sprintf("%s: %s", d.Severity, d.Message)
	}
	return fmt.Sprintf("%s: %s: %s", d.Severity, d.Path, d.Message)
}

// HasErrors reports whether any diagnostic in the slice is error severity.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}
