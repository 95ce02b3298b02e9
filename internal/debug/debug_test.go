package debug

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnabled(t *testing.T) {
	tests := []struct {
		name    string
		env     bool
		verbose bool
		want    bool
	}{
		{"disabled by default", false, false, false},
		{"enabled by env", true, false, true},
		{"enabled by verbose flag", false, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldEnabled, oldVerbose := enabled, verboseMode
			defer func() { enabled, verboseMode = oldEnabled, oldVerbose }()

			enabled = tt.env
			SetVerbose(tt.verbose)

			assert.Equal(t, tt.want, Enabled())
		})
	}
}

func TestLogf(t *testing.T) {
	tests := []struct {
		name       string
		enabled    bool
		wantOutput string
	}{
		{"outputs when enabled", true, "fold: record h1: hello\n"},
		{"no output when disabled", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldEnabled := enabled
			defer func() {
				enabled = oldEnabled
				SetOutput(nil)
			}()

			var buf bytes.Buffer
			SetOutput(&buf)
			enabled = tt.enabled

			Logf("fold: record %s: %s\n", "h1", "hello")

			assert.Equal(t, tt.wantOutput, buf.String())
		})
	}
}

func TestQuiet(t *testing.T) {
	defer SetQuiet(false)

	SetQuiet(true)
	assert.True(t, IsQuiet())
	SetQuiet(false)
	assert.False(t, IsQuiet())
}

func TestPrintNormal(t *testing.T) {
	defer SetQuiet(false)

	var buf bytes.Buffer
	PrintNormal(&buf, "Exported %d records\n", 3)
	PrintlnNormal(&buf, "done")
	assert.Equal(t, "Exported 3 records\ndone\n", buf.String())

	buf.Reset()
	SetQuiet(true)
	PrintNormal(&buf, "Exported %d records\n", 3)
	PrintlnNormal(&buf, "done")
	assert.Empty(t, buf.String())
}
