package cmd

import (
	"log"
	"os/signal"
	"syscall"

	"github.com/buffos/revenue-timeline/internal/contract"
	"github.com/buffos/revenue-timeline/internal/server"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

// serveCmd hosts interactive chart sessions over HTTP.
var serveCmd = &cobra.Command{
	Use:   "serve [data-file]",
	Short: "Serve interactive timeline sessions over HTTP.",
	Long: `Start an HTTP server where every client session owns a live chart.

Clients create a session, forward pointer and brush input to it and poll
the events endpoint for range and hover notifications. The least recently
used sessions are disposed once --session-cache-size is reached.`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		records, err := loadRecords(rootCtx)
		if err != nil {
			return err
		}

		gin.SetMode(gin.ReleaseMode)
		store, err := server.NewStore(records, server.StoreOptions{
			Size:         cfg.SessionCacheSize,
			PointerRate:  rate.Limit(cfg.PointerRate),
			PointerBurst: cfg.PointerBurst,
			Logger:       log.Default(),
		})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(rootCtx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		contract.LogInfo("Serving %d records on %s", len(records), cfg.ListenAddr)
		return server.Run(ctx, cfg.ListenAddr, store, server.Options{CORSOrigins: cfg.CORSOrigins})
	},
}
