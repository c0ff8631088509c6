package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/studyplanner/planner/internal/config"
	"github.com/studyplanner/planner/internal/errors"
)

func newLoginCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := bufio.NewReader(cmd.InOrStdin())
			if username == "" {
				fmt.Fprint(cmd.OutOrStdout(), "Username: ")
				line, _ := in.ReadString('\n')
				username = strings.TrimSpace(line)
			}
			if password == "" {
				fmt.Fprint(cmd.OutOrStdout(), "Password: ")
				line, _ := in.ReadString('\n')
				password = strings.TrimSpace(line)
			}

			res, err := client.Login(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			if err := config.SaveToken(res.Token); err != nil {
				return fmt.Errorf("saving token: %w", err)
			}
			ok(cmd.OutOrStdout(), "Logged in as %s (%s)", res.User.Username, res.User.Role)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (prompted when empty)")
	return noAuth(cmd)
}

func newSignupCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create a student account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			in := bufio.NewReader(cmd.InOrStdin())
			if username == "" {
				fmt.Fprint(out, "Username: ")
				line, _ := in.ReadString('\n')
				username = strings.TrimSpace(line)
			}
			if password == "" {
				fmt.Fprint(out, "Password: ")
				line, _ := in.ReadString('\n')
				password = strings.TrimSpace(line)
				fmt.Fprint(out, "Confirm password: ")
				line, _ = in.ReadString('\n')
				if strings.TrimSpace(line) != password {
					return errors.Validation("passwords do not match")
				}
			}

			user, err := client.Signup(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			ok(out, "Created account %s, log in with 'planner login -u %s'", user.Username, user.Username)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (prompted twice when empty)")
	return noAuth(cmd)
}

func newLogoutCmd() *cobra.Command {
	return noAuth(&cobra.Command{
		Use:   "logout",
		Short: "End the session and forget the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if client.Token() != "" {
				if err := client.Logout(cmd.Context()); err != nil {
					warn(cmd.ErrOrStderr(), "server logout failed: %v", err)
				}
			}
			if err := config.SaveToken(""); err != nil {
				return err
			}
			ok(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	})
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := client.Me(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) on %s\n", user.Username, user.Role, client.BaseURL())
			return nil
		},
	}
}
