// Package cfg provides configuration and command-line interface setup for batchtube.
package cfg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"batchtube/internal/contracts"
	"batchtube/internal/domain/keys"
	"batchtube/internal/domain/paths"
	"batchtube/internal/utils/logging"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "batchtube [urls...]",
	Short: "batchtube downloads batches of videos through yt-dlp with bounded concurrency.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Level = viper.GetInt(keys.DebugLevel)

		if logFile := viper.GetString(keys.LogToFile); logFile != "" {
			if err := logging.SetupLogging(logFile); err != nil {
				return err
			}
		}

		if viper.IsSet(keys.ConfigFile) {
			configFile := viper.GetString(keys.ConfigFile)
			info, err := os.Stat(configFile)
			if err != nil {
				return fmt.Errorf("failed check for config file path: %w", err)
			}
			if info.IsDir() {
				return errors.New("config file entered is a directory, should be a file")
			}
			viper.SetConfigFile(configFile)
			if err := viper.MergeInConfig(); err != nil {
				return fmt.Errorf("failed loading config file: %w", err)
			}
		} else {
			viper.SetConfigName("config")
			viper.AddConfigPath(paths.CfgDir)
			var notFound viper.ConfigFileNotFoundError
			if err := viper.MergeInConfig(); err != nil && !errors.As(err, &notFound) {
				return fmt.Errorf("failed loading config file: %w", err)
			}
		}
		return validateFlags()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Lookup("help").Changed {
			return nil
		}
		if len(args) == 0 && !viper.IsSet(keys.BatchFile) {
			return cmd.Help()
		}
		return runBatch(cmd.Context(), store, args)
	},
}

// store is injected once at startup and shared by all commands.
var store contracts.HistoryStore

// InitCommands initializes all commands and their flags.
func InitCommands(ctx context.Context, s contracts.HistoryStore) error {
	store = s

	viper.AutomaticEnv()
	viper.SetEnvPrefix("BATCHTUBE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	if err := initRootFlags(rootCmd); err != nil {
		return err
	}

	rootCmd.AddCommand(initHistoryCmds(s))
	rootCmd.AddCommand(initDupesCmd())
	rootCmd.AddCommand(initGrabCmd(s))
	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
