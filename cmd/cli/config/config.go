package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const (
	defaultAPIURL = "http://localhost:8080"
	tokenFileName = ".profiles_token"
)

// ErrNotLoggedIn is returned when no token has been saved.
var ErrNotLoggedIn = errors.New("not logged in: run `profiles login` first")

// APIURL returns the base URL for the profiles API: the --api-url flag, then
// PROFILES_API_URL, then the local default.
func APIURL(cmd *cobra.Command) string {
	if cmd != nil {
		if v, err := cmd.Flags().GetString("api-url"); err == nil && v != "" {
			return strings.TrimRight(v, "/")
		}
	}
	if v := os.Getenv("PROFILES_API_URL"); v != "" {
		return strings.TrimRight(v, "/")
	}
	return defaultAPIURL
}

// JSONOutput reports whether --json was given.
func JSONOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

// TokenPath is ~/.profiles_token unless PROFILES_TOKEN_FILE says otherwise.
func TokenPath() string {
	if v := os.Getenv("PROFILES_TOKEN_FILE"); v != "" {
		return v
	}
	dir, _ := os.UserHomeDir()
	return filepath.Join(dir, tokenFileName)
}

func SaveToken(token string) error {
	return errors.Wrap(os.WriteFile(TokenPath(), []byte(token), 0600), "save token")
}

func LoadToken() (string, error) {
	data, err := os.ReadFile(TokenPath())
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotLoggedIn
		}
		return "", errors.Wrap(err, "read token")
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNotLoggedIn
	}
	return token, nil
}

// ClearToken removes the saved token. It reports false when there was none.
func ClearToken() (bool, error) {
	err := os.Remove(TokenPath())
	if os.IsNotExist(err) {
		return false, nil
	}
	return err == nil, errors.Wrap(err, "remove token")
}
