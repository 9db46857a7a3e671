package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/busview/busview/config"
	"github.com/busview/busview/internal/core/explorer"
	"github.com/busview/busview/internal/gateway/rabbit"
	"github.com/busview/busview/pkg/logger"
)

var (
	cfg *config.Config

	flagConnection    string
	flagManagementURL string
	flagYes           bool
)

var rootCmd = &cobra.Command{
	Use:   "busview",
	Short: "Browse and manage message broker namespaces",
	Long: `busview explores a broker namespace: queues, topics, subscriptions and
rules, with send, peek, dead-letter and purge operations on top.`,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.LoadConfig(VERSION)
		logger.Init(cfg.LogLevel)
		if flagConnection != "" {
			cfg.ConnectionString = flagConnection
		}
		if flagManagementURL != "" {
			cfg.ManagementURL = flagManagementURL
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConnection, "connection", "", "broker connection string (overrides BUSVIEW_CONNECTION_STRING)")
	rootCmd.PersistentFlags().StringVar(&flagManagementURL, "management-url", "", "management API URL (overrides BUSVIEW_MANAGEMENT_URL)")
	rootCmd.PersistentFlags().BoolVarP(&flagYes, "yes", "y", false, "skip confirmation prompts")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(connectCmd)
	rootCmd.AddCommand(queuesCmd)
	rootCmd.AddCommand(topicsCmd)
	rootCmd.AddCommand(subscriptionsCmd)
	rootCmd.AddCommand(rulesCmd)
}

// newExplorer connects to the broker and builds the coordinator. Callers own
// the returned service and must Close it.
func newExplorer() (*explorer.Service, error) {
	gw, err := rabbit.New(rabbit.Config{
		ConnectionString: cfg.ConnectionString,
		ManagementURL:    cfg.ManagementURL,
	})
	if err != nil {
		return nil, err
	}
	factory := rabbit.NewFactory(cfg.ManagementURL)
	return explorer.New(cfg.ConnectionString, gw, factory, nil), nil
}

// peekContext bounds a peek by the configured peek timeout; zero or
// negative means unbounded.
func peekContext() (context.Context, context.CancelFunc) {
	if cfg.PeekTimeout <= 0 {
		return context.Background(), func() {}
	}
	return context.WithTimeout(context.Background(), cfg.PeekTimeout)
}

// confirm asks before a destructive operation. A declined prompt aborts the
// command quietly with no error.
func confirm(prompt string) bool {
	if flagYes {
		return true
	}
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// parseOptionArgs turns repeated key=value arguments into the raw option map
// the create-option tables validate.
func parseOptionArgs(args []string) (map[string]string, error) {
	if len(args) == 0 {
		return nil, nil
	}
	opts := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, found := strings.Cut(arg, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("option '%s' is not in key=value form", arg)
		}
		opts[key] = value
	}
	return opts, nil
}
