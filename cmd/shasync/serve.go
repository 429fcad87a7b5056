package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/tqbf/shasync/pkg/manifestserver"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:      "serve",
		Usage:     "serve a manifest file over HTTP and WebSocket",
		ArgsUsage: "<manifest.txt>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Value: ":8377",
				Usage: "listen address",
			},
			&cli.StringFlag{
				Name:    "require-token",
				EnvVars: []string{"SHASYNC_SERVE_TOKEN"},
				Usage:   "reject requests without this bearer token",
			},
		},
		Action: serveAction,
	}
}

func serveAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("usage: shasync serve <manifest.txt>")
	}
	text, err := os.ReadFile(c.Args().First())
	if err != nil {
		return err
	}

	srv := manifestserver.New(text)
	if tok := c.String("require-token"); tok != "" {
		srv.RequireToken(tok)
	}

	addr := manifestserver.Addr(c.String("addr"))
	hs := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		slog.Info("serving",
			"addr", addr,
			"text", manifestserver.TextPath,
			"stream", manifestserver.StreamPath,
		)
		errc <- hs.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(), 5*time.Second,
	)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	slog.Info("stopped", "requests", srv.Requests.Load())
	return nil
}
