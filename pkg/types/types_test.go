package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenArgv(t *testing.T) {
	tests := []struct {
		name  string
		token Token
		want  string
	}{
		{"word", Token{Kind: TokenWord, Name: "restart"}, "restart"},
		{"flag", Token{Kind: TokenFlag, Name: "force"}, "--force"},
		{"positional param", Token{Kind: TokenParam, Name: "admin"}, "admin"},
		{"keyed param", Token{Kind: TokenParam, Name: "user", Value: "root"}, "--user=root"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.token.Argv())
		})
	}
}

func TestEntryArgv(t *testing.T) {
	e := Entry{
		Name: "0001-systemctl-restart-nginx!force{user=root}",
		Seq:  1,
		Tokens: []Token{
			{Kind: TokenWord, Name: "systemctl"},
			{Kind: TokenWord, Name: "restart"},
			{Kind: TokenWord, Name: "nginx"},
			{Kind: TokenFlag, Name: "force"},
			{Kind: TokenParam, Name: "user", Value: "root"},
		},
	}
	assert.Equal(t, []string{"systemctl", "restart", "nginx", "--force", "--user=root"}, e.Argv())

	assert.Empty(t, Entry{}.Argv())
}

func TestDiagnosticString(t *testing.T) {
	d := Diagnostic{Severity: SeverityWarning, Path: "0002-reboot", Message: "duplicate sequence 2"}
	assert.Equal(t, "warning: 0002-reboot: duplicate sequence 2", d.String())

	bare := Diagnostic{Severity: SeverityInfo, Message: "program is empty"}
	assert.Equal(t, "info: program is empty", bare.String())
}

func TestHasErrors(t *testing.T) {
	assert.False(t, HasErrors(nil))
	assert.False(t, HasErrors([]Diagnostic{
		{Severity: SeverityInfo},
		{Severity: SeverityWarning},
	}))
	assert.True(t, HasErrors([]Diagnostic{
		{Severity: SeverityWarning},
		{Severity: SeverityError},
	}))
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{"valid sqlite", Config{Backend: BackendSQLite, DataDir: "/tmp/gloop"}, nil},
		{"empty backend", Config{DataDir: "/tmp/gloop"}, ErrBackendEmpty},
		{"unknown backend", Config{Backend: "postgres"}, ErrBackendUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
