package commands

import (
	"log/slog"

	"canteen-backend/internal/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(seedCmd)
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Inserts the configured standard extras for every category that has none.",
	Run: func(cmd *cobra.Command, args []string) {
		d, err := newDeps(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to initialize", err)
		}
		defer d.Close()

		slog.Info("seeded standard extras", "inserted", d.seeded)
	},
}
