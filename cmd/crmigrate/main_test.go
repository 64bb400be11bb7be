package main

import "testing"

func TestUseColor(t *testing.T) {
	for _, tc := range []struct {
		name     string
		terminal bool
		env      map[string]string
		wanted   bool
	}{
		{name: "terminal", terminal: true, wanted: true},
		{name: "not-a-terminal", terminal: false, wanted: false},
		{
			name:     "no-color",
			terminal: true,
			env:      map[string]string{"NO_COLOR": "1"},
			wanted:   false,
		},
		{
			name:     "dumb-terminal",
			terminal: true,
			env:      map[string]string{"TERM": "dumb"},
			wanted:   false,
		},
		{
			name:     "other-terminal",
			terminal: true,
			env:      map[string]string{"TERM": "xterm-256color"},
			wanted:   true,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			getenv := func(key string) string { return tc.env[key] }
			if found := useColor(tc.terminal, getenv); found != tc.wanted {
				t.Fatalf("wanted `%t`; found `%t`", tc.wanted, found)
			}
		})
	}
}
