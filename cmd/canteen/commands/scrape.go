package commands

import (
	"os"
	"strings"

	"canteen-backend/internal/menu"
	"canteen-backend/internal/serviceutil"
	"canteen-backend/internal/telemetry"

	"github.com/PuerkitoBio/goquery"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var scrapeFile *string

func init() {
	scrapeFile = scrapeCmd.Flags().String("file", "", "Parse a saved copy of the menu page instead of fetching it.")
	rootCmd.AddCommand(scrapeCmd)
}

func printWeek(week menu.WeeklyMenu) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Day", "Soup", "Dishes", "Extra"})

	for _, day := range week.Days() {
		if day.Menu.Closed {
			t.AppendRow(table.Row{day.Weekday, "closed", "", ""})
			continue
		}
		extra := ""
		if day.Menu.ExtraOverride != nil {
			extra = *day.Menu.ExtraOverride
		}
		t.AppendRow(table.Row{
			day.Weekday,
			day.Menu.Soup,
			strings.Join(day.Menu.Dishes, "\n"),
			extra,
		})
		t.AppendSeparator()
	}

	t.SetStyle(table.StyleRounded)
	t.Render()
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [--file <path/to/page.html>]",
	Short: "Scrapes the menu page and prints the parsed week without storing it.",
	Run: func(cmd *cobra.Command, args []string) {
		var week menu.WeeklyMenu

		if *scrapeFile != "" {
			f, err := os.Open(*scrapeFile)
			if err != nil {
				serviceutil.Fatal("failed to open page", err)
			}
			defer f.Close()
			doc, err := goquery.NewDocumentFromReader(f)
			if err != nil {
				serviceutil.Fatal("failed to read page", err)
			}
			week, err = menu.ParseDocument(doc)
			if err != nil {
				serviceutil.Fatal("failed to parse page", err)
			}
			printWeek(week)
			return
		}

		cfg, err := readConfig(*configPath)
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}
		tel := telemetry.SlogAPI{}
		scraper := menu.NewScraper(menu.NewFetcher(cfg.FetcherOptions(), tel), tel)
		week, err = scraper.ScrapeMenu(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to scrape menu", err)
		}
		printWeek(week)
	},
}
