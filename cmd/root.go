// Package cmd defines and implements the CLI commands for the fundwatch
// executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fundwatch",
		Short: "Event-sourced session orchestration for the fund crawler.",
		Long: `fundwatch tracks fund crawling sessions as immutable event logs. It
schedules randomized batch delays, fixed per-page interaction steps, and the
daily re-crawl window, and serves session state over HTTP by replaying the
logs.`,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is built-in defaults plus FUNDWATCH_* env)")
	cmd.AddCommand(newServeCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
