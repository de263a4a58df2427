package auth

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/crucial707/profiles-api/cmd/cli/client"
	"github.com/crucial707/profiles-api/cmd/cli/config"
)

// InitAuth registers login and logout on the root command.
func InitAuth(rootCmd *cobra.Command) {
	rootCmd.AddCommand(loginCmd(), logoutCmd())
}

// loginCmd logs in with email and password and stores the token locally.
func loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the profiles API",
		Long:  "Authenticate with email and password and store the token for subsequent commands.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" || password == "" {
				return errors.New("--email and --password are required")
			}

			var out struct {
				Token string `json:"token"`
			}
			c := client.New(config.APIURL(cmd), "")
			in := map[string]string{"username": email, "password": password}
			if err := c.Do(cmd.Context(), http.MethodPost, "/api/login", in, &out); err != nil {
				return errors.Wrap(err, "login failed")
			}
			if out.Token == "" {
				return errors.New("login succeeded but no token returned")
			}
			if err := config.SaveToken(out.Token); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Login successful. Token stored locally.")
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "profile email")
	cmd.Flags().StringVar(&password, "password", "", "profile password")
	return cmd
}

// logoutCmd revokes the stored token on the server and removes it locally.
func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and forget the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := config.LoadToken()
			if errors.Is(err, config.ErrNotLoggedIn) {
				fmt.Fprintln(cmd.OutOrStdout(), "No user logged in.")
				return nil
			}
			if err != nil {
				return err
			}

			c := client.New(config.APIURL(cmd), token)
			if err := c.Do(cmd.Context(), http.MethodPost, "/api/logout", nil, nil); err != nil {
				// An already invalid token still gets removed locally.
				var apiErr *client.APIError
				if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
					return errors.Wrap(err, "logout failed")
				}
			}
			if _, err := config.ClearToken(); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Logged out successfully.")
			return nil
		},
	}
}
