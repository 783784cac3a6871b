package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AltairaLabs/promptpack-go/internal/parser"
	"github.com/AltairaLabs/promptpack-go/internal/template"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <pack.json>",
		Short: "List the prompts a pack defines and the inputs they need",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pack, err := parser.ParseFile(args[0])
			if err != nil {
				return err
			}

			names := make([]string, 0, len(pack.Prompts))
			for name := range pack.Prompts {
				names = append(names, name)
			}
			sort.Strings(names)

			engine := template.New(pack.TemplateEngine.Syntax, pack.Fragments)
			for _, name := range names {
				prompt := pack.Prompts[name]
				fmt.Fprintf(cmd.OutOrStdout(), "%s (v%s)\n", name, strings.TrimPrefix(prompt.Version, "v"))

				var required []string
				for _, v := range prompt.Variables {
					if v.Required && v.Default == nil {
						required = append(required, v.Name)
					}
				}
				if len(required) > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "  requires: %s\n", strings.Join(required, ", "))
				}
				if missing := engine.MissingFragments(prompt.SystemTemplate); len(missing) > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "  missing fragments: %s\n", strings.Join(missing, ", "))
				}
			}
			return nil
		},
	}
}
