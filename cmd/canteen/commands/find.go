package commands

import (
	"fmt"
	"os"
	"strings"

	"canteen-backend/internal/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var findLimit *int

func init() {
	findLimit = findCmd.Flags().Int("limit", 10, "The maximum amount of matches to print.")
	rootCmd.AddCommand(findCmd)
}

var findCmd = &cobra.Command{
	Use:   "find <name> [--limit <n>]",
	Short: "Searches the stored dinners by name.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		d, err := newDeps(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to initialize", err)
		}
		defer d.Close()

		matches, err := d.service.FindDinners(cmd.Context(), strings.Join(args, " "), *findLimit)
		if err != nil {
			serviceutil.Fatal("failed to search dinners", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"ID", "Name", "Kind", "Price", "Similarity"})
		for _, m := range matches {
			t.AppendRow(table.Row{
				m.Dinner.ID,
				m.Dinner.Name,
				m.Dinner.Kind,
				formatPrice(m.Dinner.Price),
				fmt.Sprintf("%.2f", m.Similarity),
			})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
