package ui

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldUseColor(t *testing.T) {
	tests := []struct {
		name          string
		noColor       *string
		cliColor      string
		cliColorForce string
		want          bool
	}{
		{name: "NO_COLOR disables color", noColor: ptr("1"), want: false},
		{name: "empty NO_COLOR still disables", noColor: ptr(""), cliColorForce: "1", want: false},
		{name: "CLICOLOR=0 disables color", cliColor: "0", want: false},
		{name: "CLICOLOR_FORCE enables color without a TTY", cliColorForce: "1", want: true},
		{name: "NO_COLOR beats CLICOLOR_FORCE", noColor: ptr("1"), cliColorForce: "1", want: false},
		{name: "no TTY under go test", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.noColor != nil {
				t.Setenv("NO_COLOR", *tt.noColor)
			} else {
				unsetEnv(t, "NO_COLOR")
			}
			t.Setenv("CLICOLOR", tt.cliColor)
			t.Setenv("CLICOLOR_FORCE", tt.cliColorForce)
			if tt.name == "no TTY under go test" && IsTerminal() {
				t.Skip("stdout is a terminal")
			}
			assert.Equal(t, tt.want, ShouldUseColor())
		})
	}
}

func TestTerminalWidthFallback(t *testing.T) {
	if IsTerminal() {
		t.Skip("stdout is a terminal")
	}
	assert.Equal(t, 42, TerminalWidth(42))
}

func TestRenderMarkdownWithoutColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.Equal(t, "# title\n*text*", RenderMarkdown("# title\n*text*"))
}

func ptr(s string) *string { return &s }

// unsetEnv removes key for the duration of the test.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	_ = os.Unsetenv(key)
}
