package compile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShellLine(t *testing.T) {
	tests := []struct {
		name string
		argv []string
		want string
	}{
		{
			name: "safe tokens pass through",
			argv: []string{"systemctl", "restart", "nginx"},
			want: "systemctl restart nginx",
		},
		{
			name: "flags and paths are safe",
			argv: []string{"rsync", "--archive", "/var/www", "user@host:/srv"},
			want: "rsync --archive /var/www user@host:/srv",
		},
		{
			name: "spaces force quoting",
			argv: []string{"echo", "hello world"},
			want: "echo 'hello world'",
		},
		{
			name: "shell metacharacters are quoted",
			argv: []string{"echo", "$(rm -rf /)", "a;b", "&&"},
			want: `echo '$(rm -rf /)' 'a;b' '&&'`,
		},
		{
			name: "embedded single quote",
			argv: []string{"echo", "don't"},
			want: `echo 'don'\''t'`,
		},
		{
			name: "empty token",
			argv: []string{"printf", ""},
			want: "printf ''",
		},
		{
			name: "empty argv",
			argv: nil,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShellLine(tt.argv))
		})
	}
}
