package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	keep := []string{"-c", "-config"}

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "config flag kept, server flags dropped",
			args: []string{"-a", "127.0.0.1:5050", "-c", "conf.json", "-o", "downloads"},
			want: []string{"-c", "conf.json"},
		},
		{
			name: "equals form",
			args: []string{"-config=conf.json", "-a", "127.0.0.1:5050"},
			want: []string{"-config=conf.json"},
		},
		{
			name: "short and long both kept in order",
			args: []string{"-config=first.json", "-c", "second.json"},
			want: []string{"-config=first.json", "-c", "second.json"},
		},
		{
			name: "dash token after flag is not its value",
			args: []string{"-c", "-config=alt.json"},
			want: []string{"-c", "-config=alt.json"},
		},
		{
			name: "trailing flag without value",
			args: []string{"-o", "downloads", "-c"},
			want: []string{"-c"},
		},
		{
			name: "nothing to keep",
			args: []string{"-a", "127.0.0.1:5050", "positional"},
			want: []string{},
		},
		{
			name: "empty input",
			args: []string{},
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, keep))
		})
	}
}

func TestJsonConfigFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"short flag", []string{"bin", "-c", "/etc/securechain.json"}, "/etc/securechain.json"},
		{"long flag", []string{"bin", "-config", "/etc/securechain.json"}, "/etc/securechain.json"},
		{"absent", []string{"bin", "-a", "127.0.0.1:5050"}, ""},
		{"last occurrence wins", []string{"bin", "-c", "one.json", "-config", "two.json"}, "two.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args
			assert.Equal(t, tt.want, JsonConfigFlags())
		})
	}
}
