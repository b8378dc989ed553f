package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/CrowderSoup/minijira/services"
)

var (
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session locally",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		password := loginPassword
		if password == "" {
			fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("read password: %w", err)
			}
			password = strings.TrimRight(line, "\r\n")
		}

		result, err := a.auth.Login(cmd.Context(), loginEmail, password)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", result.Name, result.Role)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.auth.Logout(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.requireSession(cmd.Context()); err != nil {
			return err
		}
		session, info, err := a.auth.Current(cmd.Context())
		if err != nil {
			return err
		}

		user := session.User
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s  %s <%s>\n", services.Initials(user.Name), user.Name, user.Email)
		fmt.Fprintf(out, "role: %s\n", user.Role)
		if !info.ExpiresAt.IsZero() {
			fmt.Fprintf(out, "session expires %s\n", relativeTime(info.ExpiresAt))
		}
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", os.Getenv("MINIJIRA_EMAIL"), "account email")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "account password (prompted when empty)")

	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)
}
