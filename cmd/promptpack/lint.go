package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AltairaLabs/promptpack-go/internal/parser"
)

func newLintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lint <pack.json>",
		Short: "Validate a pack document and report every schema violation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pack, err := parser.ParseFile(args[0])
			if err != nil {
				var perr *parser.ParseError
				if errors.As(err, &perr) && len(perr.Violations) > 0 {
					fmt.Fprintln(cmd.ErrOrStderr(), perr.Error())
					for _, v := range perr.Violations {
						fmt.Fprintf(cmd.ErrOrStderr(), "  %s\n", v.String())
					}
					return errBlockingViolations
				}
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s): %d prompt(s), %d fragment(s), %d tool(s)\n",
				pack.ID, pack.Version, pack.Name,
				len(pack.Prompts), len(pack.Fragments), len(pack.Tools))

			warned := false
			for name, prompt := range pack.Prompts {
				for _, tool := range prompt.Tools {
					if _, ok := pack.Tool(tool); !ok {
						fmt.Fprintf(cmd.OutOrStdout(), "warning: prompt %q references unknown tool %q\n", name, tool)
						warned = true
					}
				}
			}
			if !warned {
				fmt.Fprintln(cmd.OutOrStdout(), "ok")
			}
			return nil
		},
	}
}
