package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/portal/internal/api"
	"github.com/JaimeStill/portal/internal/infrastructure"
	"github.com/JaimeStill/portal/pkg/openapi"
)

func newOpenAPICmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "openapi",
		Short: "Write the API's OpenAPI document",
		Long: `openapi builds the route table from the loaded configuration and writes
the same document the server publishes at /openapi.json. No database or
storage connection is opened.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			infra, err := infrastructure.New(cfg)
			if err != nil {
				return err
			}
			defer infra.Database.Connection().Close()

			spec, err := api.NewSpec(cfg, infra)
			if err != nil {
				return err
			}

			if output != "" {
				return openapi.WriteJSON(spec, output)
			}

			data, err := openapi.MarshalJSON(spec)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this path instead of stdout")

	return cmd
}
