// Package gloop carries module-level metadata shared by the CLI and
// embedding programs.
package gloop

// Version is the gloop release version.
const Version = "0.1.0"
