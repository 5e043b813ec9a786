package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wardlang/ward/internal/cliutil"
	"github.com/wardlang/ward/internal/value"
	"github.com/wardlang/ward/pkg/ward"
)

var (
	evalPolicyFile  string
	evalConfigFile  string
	evalInputFile   string
	evalDataFile    string
	evalQueryPath   string
	evalFormat      string
	evalYAMLAliases bool
	evalProfile     bool
)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Evaluate a Ward policy against input/data documents",
	Long: `Evaluate compiles a policy module and runs a query against it.

Examples:
  ward eval --policy policy.ward --input input.json --query data.example.allow
  ward eval --policy policy.ward --config run.yaml --format json`,
	RunE: runEval,
}

func init() {
	rootCmd.AddCommand(evalCmd)
	evalCmd.Flags().StringVar(&evalPolicyFile, "policy", "", "policy module file (required unless set in --config)")
	evalCmd.Flags().StringVar(&evalConfigFile, "config", "", "config file (JSON or YAML) providing any of the other flags")
	evalCmd.Flags().StringVar(&evalInputFile, "input", "", "input document file (JSON or YAML)")
	evalCmd.Flags().StringVar(&evalDataFile, "data", "", "data document file (JSON or YAML)")
	evalCmd.Flags().StringVar(&evalQueryPath, "query", "", "dotted query path, e.g. data.example.allow")
	evalCmd.Flags().StringVar(&evalFormat, "format", "text", "output format: text|json")
	evalCmd.Flags().BoolVar(&evalYAMLAliases, "yaml-aliases", false, "allow YAML anchors/aliases in --config")
	evalCmd.Flags().BoolVar(&evalProfile, "profile", false, "print a timing/rule-count summary to stderr")
}

func runEval(_ *cobra.Command, _ []string) error {
	policyFile, inputFile, dataFile, queryPath, format := evalPolicyFile, evalInputFile, evalDataFile, evalQueryPath, evalFormat

	if evalConfigFile != "" {
		cfg, err := cliutil.LoadConfig(evalConfigFile, evalYAMLAliases)
		if err != nil {
			setExitCode(2)
			return err
		}
		policyFile = firstNonEmpty(policyFile, cfg.Policy)
		inputFile = firstNonEmpty(inputFile, cfg.Input)
		dataFile = firstNonEmpty(dataFile, cfg.Data)
		queryPath = firstNonEmpty(queryPath, cfg.Query)
		if cfg.Format != "" && format == "text" {
			format = cfg.Format
		}
		evalProfile = evalProfile || cfg.Profile
	}

	if policyFile == "" {
		setExitCode(2)
		return fmt.Errorf("--policy is required (or set via --config)")
	}

	source, err := os.ReadFile(policyFile)
	if err != nil {
		setExitCode(2)
		return fmt.Errorf("failed to read policy %s: %w", policyFile, err)
	}

	input, err := cliutil.LoadDocument(inputFile)
	if err != nil {
		setExitCode(2)
		return err
	}
	data, err := cliutil.LoadDocument(dataFile)
	if err != nil {
		setExitCode(2)
		return err
	}
	if data.IsNull() {
		data = value.Object(nil)
	}

	start := time.Now()
	policy, err := ward.NewPolicy(string(source))
	if err != nil {
		fmt.Fprintf(os.Stderr, "compile error in %s:\n%v\n", policyFile, err)
		setExitCode(2)
		return fmt.Errorf("compilation failed")
	}

	var query any
	if queryPath != "" {
		query = queryPath
	}
	res, err := policy.Evaluate(input, data, query)
	duration := time.Since(start)
	if err != nil {
		setExitCode(2)
		return fmt.Errorf("evaluation failed: %w", err)
	}

	if err := renderResult(res, format); err != nil {
		setExitCode(2)
		return err
	}

	if evalProfile {
		trace, _ := cliutil.BuildTrace(duration, len(policy.Module.RuleOrder))
		fmt.Fprintln(os.Stderr, cliutil.RenderProfile(trace))
	}

	if !res.Success {
		setExitCode(1)
		return nil
	}
	setExitCode(0)
	return nil
}

func renderResult(res ward.Result, format string) error {
	switch format {
	case "json":
		doc, err := cliutil.RenderJSON(res)
		if err != nil {
			return err
		}
		fmt.Println(cliutil.PrettyJSON(doc))
	default:
		fmt.Println(cliutil.RenderText(res))
	}
	return nil
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
