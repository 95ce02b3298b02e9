package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sitproject/sit/internal/config"
	"github.com/sitproject/sit/internal/debug"
	"github.com/sitproject/sit/internal/telemetry"
	"github.com/sitproject/sit/internal/ui"
)

// app holds the global flags of one command tree.
type app struct {
	repoDir    string
	jsonOutput bool
	verbose    bool
	quiet      bool
	workers    int

	root *cobra.Command
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "sit",
		Short: "sit - serverless information tracker",
		Long: `Issues reconstructed from an append-only log of records.
sit folds each item's record history into its current state.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			if v, _ := cmd.Flags().GetBool("version"); v {
				_ = printVersion(cmd.OutOrStdout(), false)
				return
			}
			_ = cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			telemetry.Shutdown(ctx)
		},
	}
	a.root = rootCmd

	rootCmd.PersistentFlags().StringVar(&a.repoDir, "repo", "", "Repository directory (default: $SIT_DIR or .sit in or above the current directory)")
	rootCmd.PersistentFlags().BoolVar(&a.jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose/debug output")
	rootCmd.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, "Suppress non-essential output (errors only)")
	rootCmd.PersistentFlags().IntVar(&a.workers, "workers", 0, "Items folded in parallel (default: number of CPUs)")
	rootCmd.Flags().BoolP("version", "V", false, "Print version information")

	rootCmd.AddGroup(&cobra.Group{ID: "issues", Title: "Working With Items:"})
	rootCmd.AddGroup(&cobra.Group{ID: "data", Title: "Records & Data:"})

	rootCmd.AddCommand(
		newReduceCmd(a),
		newItemsCmd(a),
		newShowCmd(a),
		newRecordsCmd(a),
		newExportCmd(a),
		newVersionCmd(a),
	)
	return rootCmd
}

// setup runs before every command: settings, verbosity, colors, telemetry.
func (a *app) setup(cmd *cobra.Command) error {
	if err := config.Initialize(); err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("json") {
		config.Set(config.KeyJSON, a.jsonOutput)
	}
	if flags.Changed("repo") {
		config.Set(config.KeyRepo, a.repoDir)
	}
	if flags.Changed("workers") {
		config.Set(config.KeyWorkers, a.workers)
	}
	a.jsonOutput = config.GetBool(config.KeyJSON)

	debug.SetVerbose(a.verbose)
	debug.SetQuiet(a.quiet)
	ui.SetupColors()

	if err := telemetry.Init(cmd.Context(), "sit", Version); err != nil {
		debug.Logf("telemetry: %v\n", err)
	}
	return nil
}

// warnf prints a warning to stderr unless --quiet.
func (a *app) warnf(cmd *cobra.Command, format string, args ...interface{}) {
	debug.PrintlnNormal(cmd.ErrOrStderr(), ui.RenderWarn(ui.IconWarn+" "+fmt.Sprintf(format, args...)))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, ui.RenderFail("Error: "+err.Error()))
		return 1
	}
	return 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
