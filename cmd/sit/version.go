package main

import (
	"fmt"
	"io"
	"runtime/debug"

	"github.com/spf13/cobra"
)

var (
	// Version is the current version of sit (overridden by ldflags at build time)
	Version = "0.1.0"
	// Build can be set via ldflags at compile time
	Build = "dev"
)

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printVersion(cmd.OutOrStdout(), a.jsonOutput)
		},
	}
}

func printVersion(w io.Writer, asJSON bool) error {
	commit := resolveCommitHash()
	if asJSON {
		result := map[string]string{
			"version": Version,
			"build":   Build,
		}
		if commit != "" {
			result["commit"] = commit
		}
		return writeJSON(w, result)
	}
	if commit != "" {
		_, err := fmt.Fprintf(w, "sit version %s (%s: %s)\n", Version, Build, shortCommit(commit))
		return err
	}
	_, err := fmt.Fprintf(w, "sit version %s (%s)\n", Version, Build)
	return err
}

// resolveCommitHash reads the VCS revision embedded by the go toolchain.
func resolveCommitHash() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" {
			return setting.Value
		}
	}
	return ""
}

func shortCommit(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
