package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wardlang/ward/pkg/ward"
)

var compileCmd = &cobra.Command{
	Use:   "compile FILE",
	Short: "Compile a Ward policy file and report any errors",
	Long:  `Compile parses and compiles a policy module, printing its package path and rule names on success.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runCompile,
}

func init() {
	rootCmd.AddCommand(compileCmd)
}

func runCompile(_ *cobra.Command, args []string) error {
	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", args[0], err)
	}

	cm, err := ward.Compile(string(content))
	if err != nil {
		fmt.Fprintf(os.Stderr, "compile error in %s:\n%v\n", args[0], err)
		setExitCode(2)
		return fmt.Errorf("compilation failed")
	}

	fmt.Printf("package %v\n", cm.PackagePath)
	for _, name := range cm.RuleOrder {
		fmt.Printf("  rule %s (%d clause(s))\n", name, len(cm.RulesByName[name]))
	}
	setExitCode(0)
	return nil
}
