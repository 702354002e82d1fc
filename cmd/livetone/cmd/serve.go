package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nfrund/livetone/internal/hub"
	"github.com/nfrund/livetone/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the validation API and the collaborator relay",
	Long: `Start the HTTP server on LIVETONE_SERVER_ADDR (default :8080).

Routes:
  POST /api/validate   {"code": "..."} -> violations and the gate's error
  GET  /api/denylist   the effective deny-list
  GET  /ws             collaborator relay; every message is sent to all clients
  GET  /health         liveness probe`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := loadValidator()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(background(cmd), os.Interrupt, syscall.SIGTERM)
		defer stop()

		relayHub := hub.NewHub()
		go relayHub.Run(ctx)

		return server.New(cfg, v, relayHub).Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
