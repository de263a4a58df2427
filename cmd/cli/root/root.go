package root

import (
	"github.com/spf13/cobra"

	"github.com/crucial707/profiles-api/cmd/cli/auth"
	"github.com/crucial707/profiles-api/cmd/cli/feed"
	"github.com/crucial707/profiles-api/cmd/cli/profile"
)

// New builds the full command tree.
func New() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "profiles",
		Short:         "Profiles API CLI",
		Long:          "Command line interface for the profiles REST API.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (default $PROFILES_API_URL or http://localhost:8080)")
	rootCmd.PersistentFlags().Bool("json", false, "print JSON instead of a table")

	auth.InitAuth(rootCmd)
	profile.InitProfile(rootCmd)
	feed.InitFeed(rootCmd)
	return rootCmd
}
