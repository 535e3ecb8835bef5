package root

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newLoginCmd() *cobra.Command {
	var email string
	var password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and persist the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			d, cleanup, err := openDeps()
			if err != nil {
				return err
			}
			defer cleanup()

			if email == "" {
				email, err = prompt(cmd, "Email: ")
				if err != nil {
					return err
				}
			}
			if password == "" {
				password, err = prompt(cmd, "Password: ")
				if err != nil {
					return err
				}
			}
			if email == "" || password == "" {
				return errors.New("email and password are required")
			}

			if err := d.ctrl.Login(ctx, email, password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", d.ctrl.User().DisplayName())
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password (prompted when omitted)")

	return cmd
}

func prompt(cmd *cobra.Command, label string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), label)
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and clear the persisted session",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, cleanup, err := openDeps()
			if err != nil {
				return err
			}
			defer cleanup()

			d.ctrl.Logout(context.Background())
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			d, cleanup, err := openDeps()
			if err != nil {
				return err
			}
			defer cleanup()

			if err := requireLogin(ctx, d); err != nil {
				return err
			}
			u := d.ctrl.User()
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> (id %d)\n", u.DisplayName(), u.Email, u.ID)
			return nil
		},
	}
}
