package main

import (
	"fmt"
	"os"

	"github.com/wardlang/ward/cmd/ward/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	os.Exit(cmd.ExitCode())
}
