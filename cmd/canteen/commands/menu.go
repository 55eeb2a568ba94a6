package commands

import (
	"fmt"
	"os"
	"strings"
	"time"

	"canteen-backend/internal/menu"
	"canteen-backend/internal/service"
	"canteen-backend/internal/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(menuCmd)
}

func extraNames(extras []service.ExtraView) string {
	names := make([]string, 0, len(extras))
	for _, e := range extras {
		names = append(names, e.Name)
	}
	return strings.Join(names, ", ")
}

func printDinners(dinners []service.DinnerView) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"ID", "Name", "Kind", "Price", "Extras"})
	for _, d := range dinners {
		t.AppendRow(table.Row{d.ID, d.Name, d.Kind, formatPrice(d.Price), extraNames(d.Extras)})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}

var menuCmd = &cobra.Command{
	Use:   "menu <weekday>",
	Short: "Prints the stored menu of a weekday (0-5 or a day name).",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		weekday, err := menu.ParseWeekday(args[0])
		if err != nil {
			serviceutil.Fatal("invalid weekday", err)
		}

		d, err := newDeps(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to initialize", err)
		}
		defer d.Close()

		info, err := d.service.GetMenuInfo(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to read menu info", err)
		}
		day, err := d.service.GetDayMenu(cmd.Context(), weekday)
		if err != nil {
			serviceutil.Fatal("failed to read menu", err)
		}

		d.tel.ReportDebug("menu last updated", info.LastUpdate.Format(time.DateTime))
		if day.NoService {
			fmt.Printf("no service on %s (as of %s)\n", day.Day, day.UpdatedAt.Format(time.DateTime))
			return
		}
		printDinners(day.Dinners)
	},
}
