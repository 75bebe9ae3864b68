package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/JaimeStill/portal/internal/promptgen"
)

type promptOptions struct {
	file       string
	output     string
	skipChecks bool
}

func newPromptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Work with assistant prompts",
	}

	opts := &promptOptions{}
	render := &cobra.Command{
		Use:   "render",
		Short: "Render a prompt from a fields file",
		Long: `Render reads form fields from a YAML or JSON file (or stdin with "-")
and prints the generated prompt. Fields are validated the same way the
generate-prompt endpoint validates them unless --no-validate is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPromptRender(cmd, opts)
		},
	}
	render.Flags().StringVarP(&opts.file, "file", "f", "-", "Fields file (.yaml, .yml, .json) or - for stdin")
	render.Flags().StringVarP(&opts.output, "output", "o", "", "Write the prompt to this path instead of stdout")
	render.Flags().BoolVar(&opts.skipChecks, "no-validate", false, "Skip required-field validation")

	cmd.AddCommand(render)
	return cmd
}

func runPromptRender(cmd *cobra.Command, opts *promptOptions) error {
	fields, err := readFields(cmd.InOrStdin(), opts.file)
	if err != nil {
		return err
	}

	promptgen.ResolveFormType(fields)
	if !opts.skipChecks {
		if err := promptgen.Validate(fields); err != nil {
			return err
		}
	}

	prompt := promptgen.Generate(fields)

	if opts.output != "" {
		return os.WriteFile(opts.output, []byte(prompt), 0644)
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), prompt)
	return err
}

// readFields decodes a flat field map. JSON files use encoding/json so
// numbers keep their JSON form; everything else is parsed as YAML.
func readFields(stdin io.Reader, path string) (promptgen.Fields, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read fields: %w", err)
	}

	fields := promptgen.Fields{}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &fields)
	} else {
		err = yaml.Unmarshal(data, &fields)
	}
	if err != nil {
		return nil, fmt.Errorf("parse fields: %w", err)
	}
	return fields, nil
}
