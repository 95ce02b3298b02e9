// Package debug provides env- and flag-gated diagnostic output.
package debug

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	enabled     = os.Getenv("SIT_DEBUG") != ""
	verboseMode = false
	quietMode   = false
	logMutex    sync.Mutex
	output      io.Writer // nil means os.Stderr
)

func Enabled() bool {
	return enabled || verboseMode
}

// SetVerbose enables verbose/debug output
func SetVerbose(verbose bool) {
	verboseMode = verbose
}

// SetQuiet enables quiet mode (suppress non-essential output)
func SetQuiet(quiet bool) {
	quietMode = quiet
}

// IsQuiet returns true if quiet mode is enabled
func IsQuiet() bool {
	return quietMode
}

// SetOutput redirects debug logging; nil restores stderr.
func SetOutput(w io.Writer) {
	logMutex.Lock()
	defer logMutex.Unlock()
	output = w
}

// Logf writes to stderr when debugging is enabled. Safe for concurrent use
// by parallel folds.
func Logf(format string, args ...interface{}) {
	if !Enabled() {
		return
	}
	logMutex.Lock()
	defer logMutex.Unlock()
	w := output
	if w == nil {
		w = os.Stderr
	}
	fmt.Fprintf(w, format, args...)
}

// PrintNormal writes to w unless quiet mode is enabled.
// Use this for informational output that --quiet should suppress.
func PrintNormal(w io.Writer, format string, args ...interface{}) {
	if !quietMode {
		fmt.Fprintf(w, format, args...)
	}
}

// PrintlnNormal writes a line to w unless quiet mode is enabled
func PrintlnNormal(w io.Writer, args ...interface{}) {
	if !quietMode {
		fmt.Fprintln(w, args...)
	}
}
