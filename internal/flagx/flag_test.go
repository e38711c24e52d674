package flagx

import (
	"flag"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "short flag with separate value",
			args:    []string{"-c", "conf.json", "-a", "localhost"},
			allowed: []string{"-c"},
			want:    []string{"-c", "conf.json"},
		},
		{
			name:    "double dash with equals",
			args:    []string{"--config=alt.json", "-a", "localhost"},
			allowed: []string{"-config"},
			want:    []string{"--config=alt.json"},
		},
		{
			name:    "double dash with separate value",
			args:    []string{"--seed", "user:secret"},
			allowed: []string{"-seed"},
			want:    []string{"--seed", "user:secret"},
		},
		{
			name:    "unknown flags and positionals ignored",
			args:    []string{"-x", "1", "--y=2", "positional"},
			allowed: []string{"-c"},
			want:    []string{},
		},
		{
			name:    "flag without value at end",
			args:    []string{"-c"},
			allowed: []string{"-c"},
			want:    []string{"-c"},
		},
		{
			name:    "next dash argument is not a value",
			args:    []string{"-c", "-a", "host"},
			allowed: []string{"-c"},
			want:    []string{"-c"},
		},
		{
			name:    "value containing dashes in equals form",
			args:    []string{"-c=--weird.json"},
			allowed: []string{"-c"},
			want:    []string{"-c=--weird.json"},
		},
		{
			name:    "order and repeats preserved",
			args:    []string{"-ht", "3", "-a", ":1", "-other", "x", "-ht", "4"},
			allowed: []string{"-a", "-ht"},
			want:    []string{"-ht", "3", "-a", ":1", "-ht", "4"},
		},
		{
			name:    "prefix of an allowed flag does not match",
			args:    []string{"-h", "1"},
			allowed: []string{"-ht"},
			want:    []string{},
		},
		{
			name:    "empty args",
			args:    []string{},
			allowed: []string{"-c"},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterArgs(tt.args, tt.allowed)
			assert.Empty(t, cmp.Diff(tt.want, got))
		})
	}
}

func TestNames(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.String("a", "", "")
	fs.Int("ht", 0, "")
	fs.Bool("v", false, "")

	assert.ElementsMatch(t, []string{"-a", "-ht", "-v"}, Names(fs))
}

func TestConfigPath(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "short", args: []string{"-c", "/path/short.json"}, want: "/path/short.json"},
		{name: "long", args: []string{"-config", "/path/long.json"}, want: "/path/long.json"},
		{name: "equals", args: []string{"--config=/path/eq.json"}, want: "/path/eq.json"},
		{name: "mixed with other flags", args: []string{"-a", ":1", "-c", "x.json", "-d", "db"}, want: "x.json"},
		{name: "absent", args: []string{"-x", "1"}, want: ""},
		{name: "last wins", args: []string{"-c", "/path/1.json", "-config", "/path/2.json"}, want: "/path/2.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConfigPath(tt.args))
		})
	}
}
