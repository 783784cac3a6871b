package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/AltairaLabs/promptpack-go/internal/parser"
	"github.com/AltairaLabs/promptpack-go/internal/render"
)

func newRenderCmd() *cobra.Command {
	var (
		promptName string
		varFlags   []string
		varsFile   string
		model      string
		strict     bool
		showParams bool
	)

	cmd := &cobra.Command{
		Use:   "render <pack.json>",
		Short: "Resolve a prompt into ready-to-send text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pack, err := parser.ParseFile(args[0])
			if err != nil {
				return err
			}

			values, err := collectVariables(varFlags, varsFile)
			if err != nil {
				return err
			}

			var opts []render.Option
			if model != "" {
				opts = append(opts, render.WithModel(model))
			}
			r, err := render.New(pack, promptName, opts...)
			if err != nil {
				return err
			}

			var text string
			if strict {
				text, err = r.FormatStrict(values)
			} else {
				text, err = r.Format(values)
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), text)
			if showParams {
				params, err := json.MarshalIndent(r.Parameters(), "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "parameters: %s\n", params)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&promptName, "prompt", "", "prompt name to render (required)")
	cmd.Flags().StringArrayVar(&varFlags, "var", nil, "variable value as name=value (repeatable)")
	cmd.Flags().StringVar(&varsFile, "vars-file", "", "JSON or YAML file of variable values")
	cmd.Flags().StringVar(&model, "model", "", "target model for model-specific overrides")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail on unknown variables and undefined references")
	cmd.Flags().BoolVar(&showParams, "params", false, "print merged sampling parameters to stderr")
	_ = cmd.MarkFlagRequired("prompt")
	return cmd
}

// collectVariables merges a vars file with --var flags; flags win.
func collectVariables(varFlags []string, varsFile string) (map[string]any, error) {
	values := make(map[string]any)

	if varsFile != "" {
		b, err := os.ReadFile(varsFile)
		if err != nil {
			return nil, fmt.Errorf("read vars file: %w", err)
		}
		switch strings.ToLower(filepath.Ext(varsFile)) {
		case ".yaml", ".yml":
			if err := yaml.Unmarshal(b, &values); err != nil {
				return nil, fmt.Errorf("parse vars file %q: %w", varsFile, err)
			}
		default:
			if err := json.Unmarshal(b, &values); err != nil {
				return nil, fmt.Errorf("parse vars file %q: %w", varsFile, err)
			}
		}
	}

	for _, flag := range varFlags {
		name, value, ok := strings.Cut(flag, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --var %q: expected name=value", flag)
		}
		values[name] = value
	}
	return values, nil
}
