package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wardlang/ward/internal/lexer"
	"github.com/wardlang/ward/internal/token"
)

var (
	lexShowPos  bool
	lexOnlyErrs bool
)

var lexCmd = &cobra.Command{
	Use:   "lex FILE",
	Short: "Tokenize a Ward policy file and print the resulting tokens",
	Long: `Tokenize (lex) a Ward policy module and print the resulting tokens.

Examples:
  ward lex policy.ward
  ward lex --show-pos policy.ward
  ward lex --only-errors policy.ward`,
	Args: cobra.ExactArgs(1),
	RunE: runLex,
}

func init() {
	rootCmd.AddCommand(lexCmd)
	lexCmd.Flags().BoolVar(&lexShowPos, "show-pos", false, "show token positions (line:column)")
	lexCmd.Flags().BoolVar(&lexOnlyErrs, "only-errors", false, "show only illegal tokens")
}

func runLex(_ *cobra.Command, args []string) error {
	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", args[0], err)
	}

	l := lexer.New(string(content))
	count, errCount := 0, 0
	for {
		tok := l.NextToken()
		if lexOnlyErrs && tok.Kind != token.ILLEGAL {
			if tok.Kind == token.EOF {
				break
			}
			continue
		}
		count++
		if tok.Kind == token.ILLEGAL {
			errCount++
		}
		printToken(tok)
		if tok.Kind == token.EOF {
			break
		}
	}

	if errCount > 0 {
		setExitCode(2)
		return fmt.Errorf("found %d illegal token(s)", errCount)
	}
	return nil
}

func printToken(tok token.Token) {
	out := fmt.Sprintf("[%-10s]", tok.Kind)
	if tok.Kind == token.EOF {
		out += " EOF"
	} else if tok.Literal == "" {
		out += fmt.Sprintf(" %s", tok.Kind)
	} else {
		out += fmt.Sprintf(" %q", tok.Literal)
	}
	if lexShowPos {
		out += fmt.Sprintf(" @%s", tok.Pos)
	}
	fmt.Println(out)
}
