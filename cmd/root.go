// Package cmd implements the command-line interface for goveille.
// It provides the root command and subcommands for running research batches,
// inspecting the cache and serving the HTTP API.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jonesrussell/goveille/cmd/cachecmd"
	"github.com/jonesrussell/goveille/cmd/httpd"
	"github.com/jonesrussell/goveille/cmd/research"
	"github.com/jonesrussell/goveille/cmd/watch"
)

// version is overridable at build time with -ldflags.
var version = "0.1.0"

var (
	// cfgFile holds the path to the configuration file.
	cfgFile string

	// debug enables debug logging for all commands.
	debug bool

	rootCmd = &cobra.Command{
		Use:   "goveille",
		Short: "Web research and relevance validation for French businesses",
		Long: `goveille researches businesses on the web and classifies findings
into economic-activity themes (recruitment, events, innovation, ...),
validating every result against the entity before it is reported.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command.
func Execute() error {
	// Load .env early so environment variables are visible to viper.
	_ = godotenv.Load()

	if err := initConfig(); err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}

	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"config file (default is ./config.yaml)",
	)
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("goveille version %s\n", version)
		},
	})

	rootCmd.AddCommand(research.Command())
	rootCmd.AddCommand(watch.Command())
	rootCmd.AddCommand(httpd.Command())
	rootCmd.AddCommand(cachecmd.Command())
}

// initConfig reads the config file and environment variables into viper.
func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("GOVEILLE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if debug {
		viper.Set("logging.level", "debug")
		viper.Set("app.debug", true)
	}

	// The config file is optional: defaults and environment variables
	// cover a full configuration.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return err
		}
	}
	return nil
}
