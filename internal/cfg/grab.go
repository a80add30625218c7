package cfg

import (
	"fmt"

	"batchtube/internal/contracts"
	"batchtube/internal/domain/keys"
	"batchtube/internal/scraper"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// initGrabCmd builds the command that scrapes video links off a web page,
// optionally feeding them straight into a download batch.
func initGrabCmd(s contracts.HistoryStore) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grab <page-url>",
		Short: "Scrape video links from a web page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			links, err := scraper.New().CollectVideoLinks(args[0])
			if err != nil {
				return err
			}
			if len(links) == 0 {
				fmt.Println("No video links found")
				return nil
			}

			if viper.GetBool(keys.GrabDownload) {
				return runBatch(cmd.Context(), s, links)
			}
			for _, link := range links {
				fmt.Println(link)
			}
			return nil
		},
	}
	cmd.Flags().Bool(keys.GrabDownload, false, "Download the scraped links as a batch")
	if err := viper.BindPFlag(keys.GrabDownload, cmd.Flags().Lookup(keys.GrabDownload)); err != nil {
		panic(err)
	}
	return cmd
}
