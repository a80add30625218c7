package cfg

import (
	"fmt"

	"batchtube/internal/domain/consts"
	"batchtube/internal/domain/keys"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// initRootFlags sets up the root command's flags and binds them to Viper.
func initRootFlags(cmd *cobra.Command) error {
	pf := cmd.PersistentFlags()
	pf.Int(keys.DebugLevel, 0, "Debug level (0-5)")
	pf.String(keys.ConfigFile, "", "Config file to load (any Viper-supported format)")
	pf.String(keys.LogToFile, "", "Log file location")

	f := cmd.Flags()
	f.Int(keys.MaxConcurrent, consts.DefaultMaxConcurrent, "Maximum simultaneous downloads")
	f.String(keys.OutputDir, ".", "Directory to download into")
	f.String(keys.OutputTmpl, "", "yt-dlp output filename template")
	f.String(keys.Format, "", "yt-dlp format selector (e.g. 'bv*+ba/b')")
	f.String(keys.MaxFilesize, "", "Skip files larger than this (e.g. 500m)")
	f.Int(keys.Retries, consts.DefaultRetries, "Per-item retry count passed to yt-dlp")
	f.String(keys.BatchFile, "", "File containing URLs, one per line ('#' comments allowed)")
	f.String(keys.CookieSource, "", "Browser to read cookies from (e.g. firefox)")
	f.String(keys.CookieFile, "", "Netscape-format cookie file to use")
	f.StringSlice(keys.ExtraArgs, nil, "Extra arguments passed through to yt-dlp")

	for _, key := range []string{
		keys.DebugLevel, keys.ConfigFile, keys.LogToFile,
	} {
		if err := viper.BindPFlag(key, pf.Lookup(key)); err != nil {
			return fmt.Errorf("failed to bind flag %q: %w", key, err)
		}
	}
	for _, key := range []string{
		keys.MaxConcurrent, keys.OutputDir, keys.OutputTmpl, keys.Format,
		keys.MaxFilesize, keys.Retries, keys.BatchFile, keys.CookieSource,
		keys.CookieFile, keys.ExtraArgs,
	} {
		if err := viper.BindPFlag(key, f.Lookup(key)); err != nil {
			return fmt.Errorf("failed to bind flag %q: %w", key, err)
		}
	}
	return nil
}

// validateFlags verifies that the user input flags are valid.
func validateFlags() error {
	if mc := viper.GetInt(keys.MaxConcurrent); mc <= 0 {
		return fmt.Errorf("%s must be a positive integer, got %d", keys.MaxConcurrent, mc)
	}
	if r := viper.GetInt(keys.Retries); r < 0 {
		return fmt.Errorf("%s must not be negative, got %d", keys.Retries, r)
	}
	if viper.GetString(keys.CookieSource) != "" && viper.GetString(keys.CookieFile) != "" {
		return fmt.Errorf("%s and %s are mutually exclusive", keys.CookieSource, keys.CookieFile)
	}
	return nil
}
