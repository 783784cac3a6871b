package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AltairaLabs/promptpack-go/internal/parser"
)

func newToolsCmd() *cobra.Command {
	var (
		promptName string
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "tools <pack.json>",
		Short: "Show the tools a prompt exposes after policy filtering",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pack, err := parser.ParseFile(args[0])
			if err != nil {
				return err
			}
			if _, ok := pack.Prompt(promptName); !ok {
				return fmt.Errorf("prompt %q not found in pack %q", promptName, pack.ID)
			}

			tools := pack.ToolsForPrompt(promptName)
			if asJSON {
				b, err := json.MarshalIndent(tools, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(b))
				return nil
			}

			if len(tools) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no tools")
				return nil
			}
			for _, t := range tools {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", t.Name, t.Description)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&promptName, "prompt", "", "prompt whose tools to list (required)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit full tool definitions as JSON")
	_ = cmd.MarkFlagRequired("prompt")
	return cmd
}
