// Command propmapper checks, decodes and round-trips documents against
// mapping tables declared in a YAML mapping file.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/reoring/propmapper"
)

func main() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		// issues were already rendered by the command
		if _, ok := propmapper.AsIssues(err); !ok {
			fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		}
		os.Exit(1)
	}
}
