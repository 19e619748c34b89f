// Command vamctl is the operator CLI for the VAM ledger API.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := newRootCmd(viper.New()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:           "vamctl",
		Short:         "VAM ledger CLI tool",
		Long:          `A command line interface for operating the VAM ledger API: auctions, balances, reconciliation and tokens.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(v, configFile)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (default $HOME/.vamctl.yaml)")
	flags.String("url", "http://localhost:8080", "Base URL of the VAM ledger API")
	flags.String("token", "", "Bearer token sent with every request")
	flags.Duration("timeout", 10*time.Second, "Request timeout")
	_ = v.BindPFlag("url", flags.Lookup("url"))
	_ = v.BindPFlag("token", flags.Lookup("token"))
	_ = v.BindPFlag("timeout", flags.Lookup("timeout"))

	v.SetEnvPrefix("VAMCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	rootCmd.AddCommand(
		auctionsCmd(v),
		balancesCmd(v),
		reconcileCmd(v),
		tokenCmd(v),
	)

	return rootCmd
}

// loadConfig reads the optional config file. A missing default file is not
// an error; a missing explicit one is.
func loadConfig(v *viper.Viper, configFile string) error {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		v.AddConfigPath(home)
		v.SetConfigName(".vamctl")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", filepath.Base(v.ConfigFileUsed()), err)
	}
	return nil
}

func clientFrom(v *viper.Viper) *apiClient {
	return newAPIClient(v.GetString("url"), v.GetString("token"), v.GetDuration("timeout"))
}
