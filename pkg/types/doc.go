// Package types defines the entity types, the Index interface, and the
// standard error values for the gloop structural compiler: lexed entries,
// compiled commands, compilations, diagnostics, and configuration.
package types
