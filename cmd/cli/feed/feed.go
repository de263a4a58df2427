package feed

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/crucial707/profiles-api/cmd/cli/client"
	"github.com/crucial707/profiles-api/cmd/cli/config"
	"github.com/crucial707/profiles-api/cmd/cli/output"
	"github.com/crucial707/profiles-api/internal/models"
)

// ==========================
// Init Feed
// ==========================
func InitFeed(rootCmd *cobra.Command) {
	feedCmd := &cobra.Command{
		Use:   "feed",
		Short: "Read and post status updates",
	}

	feedCmd.AddCommand(
		listCmd(),
		postCmd(),
		editCmd(),
		deleteCmd(),
	)

	rootCmd.AddCommand(feedCmd)
}

func authedClient(cmd *cobra.Command) (*client.Client, error) {
	token, err := config.LoadToken()
	if err != nil {
		return nil, err
	}
	return client.New(config.APIURL(cmd), token), nil
}

func render(cmd *cobra.Command, single bool, items ...models.FeedItem) error {
	if config.JSONOutput(cmd) {
		if single {
			return output.JSON(cmd.OutOrStdout(), items[0])
		}
		return output.JSON(cmd.OutOrStdout(), items)
	}
	rows := make([][]interface{}, 0, len(items))
	for _, it := range items {
		rows = append(rows, []interface{}{it.ID, it.ProfileID, it.StatusText, it.CreatedOn.Format(time.RFC3339)})
	}
	output.RenderTable(cmd.OutOrStdout(), []string{"ID", "Profile", "Status", "Created"}, rows)
	return nil
}

// ==========================
// LIST
// ==========================
func listCmd() *cobra.Command {
	var profileID int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List feed items",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := authedClient(cmd)
			if err != nil {
				return err
			}
			path := "/api/feed"
			if profileID > 0 {
				path += "?" + url.Values{"user_profile": {fmt.Sprint(profileID)}}.Encode()
			}

			var items []models.FeedItem
			if err := c.Do(cmd.Context(), http.MethodGet, path, nil, &items); err != nil {
				return err
			}
			return render(cmd, false, items...)
		},
	}

	cmd.Flags().IntVar(&profileID, "profile", 0, "only items owned by this profile id")
	return cmd
}

// ==========================
// POST
// ==========================
func postCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "post [status text]",
		Short: "Post a status update",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := authedClient(cmd)
			if err != nil {
				return err
			}
			var item models.FeedItem
			if err := c.Do(cmd.Context(), http.MethodPost, "/api/feed", map[string]string{"status_text": args[0]}, &item); err != nil {
				return err
			}
			return render(cmd, true, item)
		},
	}
}

// ==========================
// EDIT
// ==========================
func editCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit [id] [status text]",
		Short: "Change the text of one of your status updates",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := authedClient(cmd)
			if err != nil {
				return err
			}
			var item models.FeedItem
			path := "/api/feed/" + url.PathEscape(args[0])
			if err := c.Do(cmd.Context(), http.MethodPatch, path, map[string]string{"status_text": args[1]}, &item); err != nil {
				return err
			}
			return render(cmd, true, item)
		},
	}
}

// ==========================
// DELETE
// ==========================
func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete one of your status updates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := authedClient(cmd)
			if err != nil {
				return err
			}
			if err := c.Do(cmd.Context(), http.MethodDelete, "/api/feed/"+url.PathEscape(args[0]), nil, nil); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Feed item %s deleted.\n", args[0])
			return nil
		},
	}
}
