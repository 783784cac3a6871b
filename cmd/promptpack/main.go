package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// errBlockingViolations signals a guardrail failure already reported to
// the user; the process exits nonzero without reprinting it.
var errBlockingViolations = errors.New("blocking violations")

var (
	osExit                 = os.Exit
	stderrWriter io.Writer = os.Stderr
)

func main() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		if errors.Is(err, errBlockingViolations) {
			osExit(1)
			return
		}
		fmt.Fprintln(stderrWriter, err)
		osExit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "promptpack",
		Short:         "Inspect, render, and validate prompt packs",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.AddCommand(newLintCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newRenderCmd())
	root.AddCommand(newCheckCmd())
	root.AddCommand(newToolsCmd())
	return root
}
