package cfg

import (
	"fmt"
	"strings"
	"time"

	"batchtube/internal/contracts"
	"batchtube/internal/domain/keys"
	"batchtube/internal/models"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// initHistoryCmds builds the history command tree for querying past downloads.
func initHistoryCmds(s contracts.HistoryStore) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "View and manage download history",
	}
	historyCmd.AddCommand(
		historyListCmd(s),
		historySearchCmd(s),
		historyClearCmd(s),
	)
	return historyCmd
}

func historyListCmd(s contracts.HistoryStore) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent downloads",
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				entries []models.HistoryEntry
				err     error
			)
			if since := viper.GetString(keys.HistorySince); since != "" {
				entries, err = s.DownloadsSince(cmd.Context(), since)
			} else {
				entries, err = s.RecentDownloads(cmd.Context(), viper.GetInt(keys.HistoryLimit))
			}
			if err != nil {
				return err
			}
			printEntries(entries)
			return nil
		},
	}
	cmd.Flags().Int(keys.HistoryLimit, 20, "Maximum number of entries to show")
	cmd.Flags().String(keys.HistorySince, "", "Only show downloads since this time (e.g. '2025-01-02', 'Jan 2')")
	if err := viper.BindPFlag(keys.HistoryLimit, cmd.Flags().Lookup(keys.HistoryLimit)); err != nil {
		panic(err)
	}
	if err := viper.BindPFlag(keys.HistorySince, cmd.Flags().Lookup(keys.HistorySince)); err != nil {
		panic(err)
	}
	return cmd
}

func historySearchCmd(s contracts.HistoryStore) *cobra.Command {
	return &cobra.Command{
		Use:   "search <term>",
		Short: "Search download history by URL or filename",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := s.SearchDownloads(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printEntries(entries)
			return nil
		},
	}
}

func historyClearCmd(s contracts.HistoryStore) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete download history entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := s.ClearDownloads(cmd.Context(), viper.GetString(keys.OlderThan))
			if err != nil {
				return err
			}
			fmt.Printf("Deleted %d history entries\n", n)
			return nil
		},
	}
	cmd.Flags().String(keys.OlderThan, "", "Only delete entries older than this time (empty deletes all)")
	if err := viper.BindPFlag(keys.OlderThan, cmd.Flags().Lookup(keys.OlderThan)); err != nil {
		panic(err)
	}
	return cmd
}

// printEntries renders history rows in a fixed-width table.
func printEntries(entries []models.HistoryEntry) {
	if len(entries) == 0 {
		fmt.Println("No downloads found")
		return
	}

	fmt.Printf("%-20s %-10s %-40s %s\n", "WHEN", "STATUS", "URL", "FILE")
	for _, e := range entries {
		fmt.Printf("%-20s %-10s %-40s %s\n",
			e.CreatedAt.Format(time.DateTime),
			e.Status,
			truncate(e.URL, 40),
			e.Filename)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.TrimSpace(s[:n-3]) + "..."
}
