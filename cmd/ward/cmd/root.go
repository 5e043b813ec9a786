// Package cmd implements the ward CLI's cobra subcommands: eval (run a
// policy), parse/lex (debugging dumps of the AST/token stream), and
// version. It is an external collaborator of the core —
// nothing under internal/eval, internal/compiler, internal/parser, or
// internal/lexer imports this package.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version information, set by build flags.
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var exitCode int

// ExitCode reports the process exit code an eval/parse/lex run requested;
// main() reads this after Execute returns nil.
func ExitCode() int { return exitCode }

func setExitCode(code int) { exitCode = code }

var rootCmd = &cobra.Command{
	Use:   "ward",
	Short: "Ward policy language interpreter",
	Long: `ward is a Go implementation of the Ward policy language, a
Datalog-flavored declarative policy language modeled on Rego/OPA.

Given a policy module and optional input/data documents, ward evaluates a
query path against it and reports a value, a success flag, and the
variable bindings its solution produced.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
}
