package main

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/uni-enrich/internal/config"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape <url>",
	Short: "Print a website as markdown via Throxy",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateKeys(config.ModeThroxy); err != nil {
			return err
		}

		md, err := newThroxyClient().WebsiteMarkdownScrape(cmd.Context(), args[0])
		if err != nil {
			return eris.Wrap(err, "scrape")
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), md)
		return err
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Run a web search via Throxy and print the results as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateKeys(config.ModeThroxy); err != nil {
			return err
		}

		resp, err := newThroxyClient().Search(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return eris.Wrap(err, "search")
		}
		return printJSON(cmd.OutOrStdout(), resp)
	},
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
	rootCmd.AddCommand(searchCmd)
}
