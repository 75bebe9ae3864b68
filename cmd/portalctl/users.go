package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/portal/internal/auth"
)

func newUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "User administration helpers",
	}

	var password string
	hash := &cobra.Command{
		Use:   "hash-password",
		Short: "Print a bcrypt hash suitable for seeding users",
		Long:  `Hash reads the password from --password or the first line of stdin.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}
			if password == "" {
				return errors.New("password is required")
			}

			hashed, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hashed)
			return err
		},
	}
	hash.Flags().StringVarP(&password, "password", "p", "", "Password to hash")

	cmd.AddCommand(hash)
	return cmd
}
