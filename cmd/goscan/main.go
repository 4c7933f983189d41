// Command goscan is the thin CLI front end over the scanner and policy
// packages: scan a module's effects, check them against a policy file,
// or list every effect that requires caller awareness.
//
// Ported from rust-src/src/bin/check_package.rs and find_unsafe.rs,
// stripped of their interactive check-file workflow (out of scope per
// SPEC_FULL.md) and given a cobra front end instead of clap, matching
// the multi-subcommand idiom theRebelliousNerd-codenerd's CLI uses.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "goscan",
	Short: "goscan audits a Go module's security-relevant effects against a policy",
	Long: `goscan scans a Go module for security-relevant effects - calls into
dangerous standard-library surface, unsafe pointer use, raw FFI, function
pointer creation - and checks the resulting call graph against a
declarative allow/require policy.`,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(scanCmd, checkCmd, findUnsafeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
