package commands

import (
	"fmt"
	"os"
	"time"

	"canteen-backend/internal/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(syncCmd)
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Scrapes the menu page and stores the week in the database.",
	Run: func(cmd *cobra.Command, args []string) {
		d, err := newDeps(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to initialize", err)
		}
		defer d.Close()

		report, err := d.service.Refresh(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to sync menu", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Day", "Dinners", "Override extra"})
		for _, day := range report.Days {
			if day.Skipped {
				t.AppendRow(table.Row{day.Weekday, "skipped", ""})
				continue
			}
			override := ""
			if day.OverrideExtraID != 0 {
				override = fmt.Sprint(day.OverrideExtraID)
			}
			t.AppendRow(table.Row{day.Weekday, fmt.Sprint(day.DinnerIDs), override})
		}
		t.AppendFooter(table.Row{"", "updated", report.UpdatedAt.Format(time.DateTime)})
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
