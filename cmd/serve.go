package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cnb.cool/zhiqiangwang/pkg/logx"
	"github.com/spf13/cobra"

	"github.com/fstjohn-aops/ec2-instance-controls/internal/server"
)

// serveCmd runs the HTTP server for Slack slash commands.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Slack command HTTP server",
	Long:  `Run the HTTP server that receives Slack slash-command posts and executes instance control commands.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		dispatcher, err := newDispatcher(ctx)
		if err != nil {
			return err
		}

		srv := server.NewHTTPServer(cfg, dispatcher)

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start()
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return err
		case sig := <-quit:
			logx.Info("Received signal %s, shutting down", sig)
		}

		shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return srv.Stop(shutdownCtx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
