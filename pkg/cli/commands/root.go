package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"cropdoc/pkg/client"
)

const (
	version       = "0.1.0"
	defaultServer = "http://localhost:8080"
	envServer     = "CROPDOC_SERVER"
)

var (
	serverURL string
	userID    string
)

var rootCmd = &cobra.Command{
	Use:     "cropctl",
	Short:   "Plant health advisory CLI",
	Version: version,
	Long: `A command-line client for the cropdoc server. Browse the crop disease
catalog, diagnose a leaf photo and ask the plant health assistant.`,
	Example: `  # List supported crops
  $ cropctl crops

  # Diagnose a tomato leaf
  $ cropctl analyze --crop tomato --image leaf.jpg

  # Ask a question in Hindi
  $ cropctl chat "How do I stop leaf curl?" --lang hi`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "", "server URL (default $"+envServer+" or "+defaultServer+")")
	rootCmd.PersistentFlags().StringVarP(&userID, "user", "u", "", "user id sent as X-User-Id")

	rootCmd.AddCommand(cropsCmd)
	rootCmd.AddCommand(diseasesCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(historyCmd)
}

func resolveServer() string {
	if serverURL != "" {
		return serverURL
	}
	if v := os.Getenv(envServer); v != "" {
		return v
	}
	return defaultServer
}

func newClient() (*client.APIClient, error) {
	c, err := client.NewAPIClient(resolveServer(), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return c, nil
}

func commandContext(d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), d)
}
