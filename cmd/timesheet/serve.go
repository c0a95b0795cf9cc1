package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonaycp/my-timesheet/internal/server"
	"github.com/jonaycp/my-timesheet/internal/util"
)

var (
	servePort      int
	serveDev       bool
	serveNoBrowser bool
)

// serveCmd runs the web page and HTTP API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web page and HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (overrides config)")
	serveCmd.Flags().BoolVar(&serveDev, "dev", false, "development mode (debug logs, no browser)")
	serveCmd.Flags().BoolVar(&serveNoBrowser, "no-browser", false, "do not open a browser")
}

func runServe(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = servePort
	} else if port, err := util.FindAvailablePort(cfg.Server.Port, 10); err == nil {
		cfg.Server.Port = port
	}
	if serveDev {
		cfg.Server.DevMode = true
	}

	srv, err := server.NewServer(cfg, logger)
	if err != nil {
		return err
	}
	defer srv.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	url := util.LocalURL(cfg.Server.Port)
	fmt.Fprintf(cmd.OutOrStdout(), "Serving on %s (Ctrl+C to stop)\n", url)
	if !cfg.Server.DevMode && !serveNoBrowser {
		if err := util.OpenBrowser(url); err != nil {
			logger.Warn("could not open browser", zap.String("url", url), zap.Error(err))
		}
	}

	return srv.Run(ctx, fmt.Sprintf(":%d", cfg.Server.Port))
}
