package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wardlang/ward/internal/cerrors"
	"github.com/wardlang/ward/internal/lexer"
	"github.com/wardlang/ward/internal/parser"
)

var parseCmd = &cobra.Command{
	Use:   "parse FILE",
	Short: "Parse a Ward policy file and print its AST",
	Long:  `Parse a Ward policy module and print the resulting AST, for debugging the lexer/parser.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func runParse(_ *cobra.Command, args []string) error {
	filename := args[0]
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	source := string(content)

	l := lexer.New(source)
	p := parser.New(l)
	mod := p.ParseModule()

	if errs := l.Errors(); len(errs) > 0 {
		printLexErrors(errs, source, filename)
		setExitCode(2)
		return fmt.Errorf("lexing failed with %d error(s)", len(errs))
	}
	if errs := p.Errors(); len(errs) > 0 {
		for _, e := range errs {
			d := cerrors.New("parse", e.Message, source, filename, e.Pos)
			fmt.Fprintln(os.Stderr, d.Format(false))
		}
		setExitCode(2)
		return fmt.Errorf("parsing failed with %d error(s)", len(errs))
	}

	fmt.Println(mod.String())
	return nil
}

func printLexErrors(errs []*lexer.Error, source, filename string) {
	for _, e := range errs {
		d := cerrors.New("lex", e.Message, source, filename, e.Pos)
		fmt.Fprintln(os.Stderr, d.Format(false))
	}
}
