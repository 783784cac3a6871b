package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/AltairaLabs/promptpack-go/internal/guardrail"
	"github.com/AltairaLabs/promptpack-go/internal/parser"
)

func newCheckCmd() *cobra.Command {
	var (
		promptName  string
		contentFile string
	)

	cmd := &cobra.Command{
		Use:   "check <pack.json>",
		Short: "Run a prompt's guardrails against generated content",
		Long: `Run a prompt's guardrails against generated content, read from
--content or stdin. Exits nonzero when a blocking violation is found.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pack, err := parser.ParseFile(args[0])
			if err != nil {
				return err
			}
			prompt, ok := pack.Prompt(promptName)
			if !ok {
				return fmt.Errorf("prompt %q not found in pack %q", promptName, pack.ID)
			}

			content, err := readContent(cmd.InOrStdin(), contentFile)
			if err != nil {
				return err
			}

			result := guardrail.Run(content, prompt.Validators)
			for _, v := range result.Violations {
				severity := "warn"
				if v.FailOnViolation {
					severity = "fail"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s: %s\n", severity, v.ValidatorType, v.Message)
			}

			if result.HasBlockingViolations() {
				return errBlockingViolations
			}
			if len(result.Violations) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "ok")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&promptName, "prompt", "", "prompt whose validators to run (required)")
	cmd.Flags().StringVar(&contentFile, "content", "", "file with content to check (defaults to stdin)")
	_ = cmd.MarkFlagRequired("prompt")
	return cmd
}

func readContent(stdin io.Reader, contentFile string) (string, error) {
	if contentFile != "" {
		b, err := os.ReadFile(contentFile)
		if err != nil {
			return "", fmt.Errorf("read content: %w", err)
		}
		return string(b), nil
	}
	b, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(b), nil
}
