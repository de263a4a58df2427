package profile

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/crucial707/profiles-api/cmd/cli/client"
	"github.com/crucial707/profiles-api/cmd/cli/config"
	"github.com/crucial707/profiles-api/cmd/cli/output"
	"github.com/crucial707/profiles-api/internal/models"
)

// ==========================
// Init Profile
// ==========================
func InitProfile(rootCmd *cobra.Command) {
	profileCmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage user profiles",
	}

	profileCmd.AddCommand(
		listCmd(),
		getCmd(),
		createCmd(),
		updateCmd(),
		deleteCmd(),
	)

	rootCmd.AddCommand(profileCmd)
}

// newClient sends the saved token when there is one. Reads and registration work without it.
func newClient(cmd *cobra.Command) *client.Client {
	token, _ := config.LoadToken()
	return client.New(config.APIURL(cmd), token)
}

func authedClient(cmd *cobra.Command) (*client.Client, error) {
	token, err := config.LoadToken()
	if err != nil {
		return nil, err
	}
	return client.New(config.APIURL(cmd), token), nil
}

func render(cmd *cobra.Command, single bool, profiles ...models.Profile) error {
	if config.JSONOutput(cmd) {
		if single {
			return output.JSON(cmd.OutOrStdout(), profiles[0])
		}
		return output.JSON(cmd.OutOrStdout(), profiles)
	}
	rows := make([][]interface{}, 0, len(profiles))
	for _, p := range profiles {
		rows = append(rows, []interface{}{p.ID, p.Email, p.Name})
	}
	output.RenderTable(cmd.OutOrStdout(), []string{"ID", "Email", "Name"}, rows)
	return nil
}

// ==========================
// LIST
// ==========================
func listCmd() *cobra.Command {
	var search string
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			if search != "" {
				q.Set("search", search)
			}
			if limit > 0 {
				q.Set("limit", fmt.Sprint(limit))
			}
			if offset > 0 {
				q.Set("offset", fmt.Sprint(offset))
			}
			path := "/api/profile"
			if len(q) > 0 {
				path += "?" + q.Encode()
			}

			var profiles []models.Profile
			if err := newClient(cmd).Do(cmd.Context(), http.MethodGet, path, nil, &profiles); err != nil {
				return err
			}
			return render(cmd, false, profiles...)
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "filter by name or email")
	cmd.Flags().IntVar(&limit, "limit", 0, "page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "page offset")
	return cmd
}

// ==========================
// GET
// ==========================
func getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get [id]",
		Short: "Show one profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p models.Profile
			if err := newClient(cmd).Do(cmd.Context(), http.MethodGet, "/api/profile/"+url.PathEscape(args[0]), nil, &p); err != nil {
				return err
			}
			return render(cmd, true, p)
		},
	}
}

// ==========================
// CREATE (register)
// ==========================
func createCmd() *cobra.Command {
	var email, name, password string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a new profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			in := map[string]string{"email": email, "name": name, "password": password}
			var p models.Profile
			if err := newClient(cmd).Do(cmd.Context(), http.MethodPost, "/api/profile", in, &p); err != nil {
				return err
			}
			return render(cmd, true, p)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&password, "password", "", "password")
	return cmd
}

// ==========================
// UPDATE (partial)
// ==========================
func updateCmd() *cobra.Command {
	var email, name, password string

	cmd := &cobra.Command{
		Use:   "update [id]",
		Short: "Change your profile; only the given flags are sent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := authedClient(cmd)
			if err != nil {
				return err
			}
			in := map[string]string{}
			if cmd.Flags().Changed("email") {
				in["email"] = email
			}
			if cmd.Flags().Changed("name") {
				in["name"] = name
			}
			if cmd.Flags().Changed("password") {
				in["password"] = password
			}

			var p models.Profile
			if err := c.Do(cmd.Context(), http.MethodPatch, "/api/profile/"+url.PathEscape(args[0]), in, &p); err != nil {
				return err
			}
			return render(cmd, true, p)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "new email address")
	cmd.Flags().StringVar(&name, "name", "", "new display name")
	cmd.Flags().StringVar(&password, "password", "", "new password")
	return cmd
}

// ==========================
// DELETE
// ==========================
func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete your profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := authedClient(cmd)
			if err != nil {
				return err
			}
			if err := c.Do(cmd.Context(), http.MethodDelete, "/api/profile/"+url.PathEscape(args[0]), nil, nil); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Profile %s deleted.\n", args[0])
			return nil
		},
	}
}
