package commands

import (
	"context"
	"time"

	"canteen-backend/internal/chrono"
	"canteen-backend/internal/serviceutil"
	"canteen-backend/internal/telemetry"

	"github.com/spf13/cobra"
)

const report_serve_refresh = "serve.refresh"

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the stored menus over http and refreshes them on a schedule.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		otel, err := telemetry.SetupFromEnv(ctx, "canteen")
		if err != nil {
			serviceutil.Fatal("failed to setup telemetry", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
			defer cancel()
			otel.Shutdown(shutdownCtx)
		}()
		telemetry.InstrumentPerfStats(ctx)

		d, err := newDeps(ctx)
		if err != nil {
			serviceutil.Fatal("failed to initialize", err)
		}
		defer d.Close()

		refresh := func() {
			_, err := d.service.Refresh(ctx)
			if err != nil {
				d.tel.ReportBroken(report_serve_refresh, err)
			}
		}

		cron := chrono.NewStandardCron(d.tel)
		defer cron.Stop()
		err = cron.Cron(d.cfg.RefreshCron, refresh)
		if err != nil {
			serviceutil.Fatal("invalid refresh cron", err)
		}
		if d.cfg.RefreshOnStart {
			go refresh()
		}

		err = serviceutil.StartHttpServer(ctx, d.cfg.HttpPort, d.service.Handler(d.cfg.AdminToken))
		if err != nil {
			serviceutil.Fatal("http server", err)
		}
	},
}
