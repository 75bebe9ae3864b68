package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/JaimeStill/portal/internal/config"
	"github.com/JaimeStill/portal/internal/webhooks"
)

// loadConfig is replaced in tests.
var loadConfig = config.Load

type dispatchOptions struct {
	file     string
	simulate bool
	live     bool
	timeout  time.Duration
	verbose  bool
}

func newWebhooksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webhooks",
		Short: "Inspect and exercise the webhook registry",
	}

	var all bool
	list := &cobra.Command{
		Use:   "list [form-type]",
		Short: "List registered endpoints",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			registry := webhooks.NewRegistry(cfg.Webhooks.Endpoints)
			return writeRegistry(cmd.OutOrStdout(), registry, args, all)
		},
	}
	list.Flags().BoolVarP(&all, "all", "a", false, "Include disabled endpoints")

	opts := &dispatchOptions{}
	dispatch := &cobra.Command{
		Use:   "dispatch <form-type>",
		Short: "Send a payload to every enabled endpoint of a form-type",
		Long: `Dispatch posts a YAML or JSON payload to the enabled endpoints of the
form-type and prints one result per endpoint. Simulation follows the
loaded configuration unless --simulate or --live is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDispatch(cmd, args[0], opts)
		},
	}
	dispatch.Flags().StringVarP(&opts.file, "file", "f", "-", "Payload file or - for stdin")
	dispatch.Flags().BoolVar(&opts.simulate, "simulate", false, "Force simulated delivery")
	dispatch.Flags().BoolVar(&opts.live, "live", false, "Force real delivery")
	dispatch.Flags().DurationVar(&opts.timeout, "timeout", time.Minute, "Overall dispatch deadline")
	dispatch.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log deliveries to stderr")
	dispatch.MarkFlagsMutuallyExclusive("simulate", "live")

	cmd.AddCommand(list, dispatch)
	return cmd
}

func writeRegistry(w io.Writer, registry *webhooks.Registry, args []string, all bool) error {
	formTypes := registry.FormTypes()
	if len(args) == 1 {
		if !slices.Contains(formTypes, args[0]) {
			return fmt.Errorf("unknown form-type %q", args[0])
		}
		formTypes = args
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FORM TYPE\tENABLED\tURL\tDESCRIPTION")
	for _, formType := range formTypes {
		for _, ep := range registry.Endpoints(formType) {
			if !ep.Enabled && !all {
				continue
			}
			fmt.Fprintf(tw, "%s\t%t\t%s\t%s\n", formType, ep.Enabled, ep.URL, ep.Description)
		}
	}
	return tw.Flush()
}

func runDispatch(cmd *cobra.Command, formType string, opts *dispatchOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	payload, err := readPayload(cmd.InOrStdin(), opts.file)
	if err != nil {
		return err
	}

	switch {
	case opts.simulate:
		cfg.Webhooks.Simulate = &opts.simulate
	case opts.live:
		simulate := false
		cfg.Webhooks.Simulate = &simulate
	}

	d := webhooks.NewDispatcher(
		webhooks.NewRegistry(cfg.Webhooks.Endpoints),
		&cfg.Webhooks,
		cmdLogger(cmd, opts.verbose),
	)

	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	defer cancel()

	results := d.Dispatch(ctx, formType, payload)
	if len(results) == 0 {
		return fmt.Errorf("no enabled endpoints for form-type %q", formType)
	}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(results); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}

	for _, r := range results {
		if !r.Success {
			return fmt.Errorf("delivery to %s failed", r.URL)
		}
	}
	return nil
}

// readPayload accepts YAML or JSON and re-encodes it as JSON so the
// dispatched body matches what the API would send.
func readPayload(stdin io.Reader, path string) (json.RawMessage, error) {
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
		return nil, fmt.Errorf("read payload: %w", err)
	}

	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parse payload: %w", err)
	}
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return body, nil
}
