package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"

	"github.com/tqbf/shasync/pkg/config"
	"github.com/tqbf/shasync/pkg/fetch"
	"github.com/tqbf/shasync/pkg/manifest"
)

const appVersion = "0.1.0"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "shasync",
		Usage: "verify and mirror a game install against its depot manifest",
		Before: func(c *cli.Context) error {
			configureLogging(c.Bool("verbose"))
			return nil
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				EnvVars: []string{"SHASYNC_CONFIG"},
				Usage:   "config file (default: $XDG_CONFIG_HOME/" + config.RelPath + ")",
			},
			&cli.StringFlag{
				Name:  "url",
				Usage: "manifest source: http(s)://, ws(s)://, file:// or a path",
			},
			&cli.StringFlag{
				Name:  "token",
				Usage: "bearer token for the manifest endpoint",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "operation timeout (0 disables)",
			},
			&cli.IntFlag{
				Name:  "rps",
				Usage: "limit manifest requests per second",
			},
			&cli.IntFlag{
				Name:  "burst",
				Value: 1,
				Usage: "request burst when --rps is set",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "verbose output",
			},
		},
		Commands: []*cli.Command{
			fetchCmd(),
			checkCmd(),
			statusCmd(),
			verifyCmd(),
			copyCmd(),
			generateCmd(),
			diffCmd(),
			serveCmd(),
			{
				Name:  "version",
				Usage: "print version",
				Action: func(c *cli.Context) error {
					fmt.Fprintln(c.App.Writer, appVersion)
					return nil
				},
			},
		},
	}
}

func configureLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		}),
	).With("run", uuid.NewString()))
}

// loadConfig reads the config file and applies global flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if c.IsSet("url") {
		cfg.ManifestURL = c.String("url")
	}
	if c.IsSet("token") {
		cfg.Token = c.String("token")
	}
	if c.IsSet("timeout") {
		cfg.Timeout = c.Duration("timeout")
	}
	if c.IsSet("rps") {
		cfg.Throttle = config.Throttle{
			RPS:   c.Int("rps"),
			Burst: c.Int("burst"),
		}
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func contextWithTimeout(
	cfg *config.Config,
) (context.Context, context.CancelFunc) {
	if cfg.Timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), cfg.Timeout)
}

func fetchManifest(
	ctx context.Context,
	cfg *config.Config,
) (*manifest.Manifest, error) {
	client, err := fetch.New(cfg.ManifestURL, cfg.FetchOptions()...)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	m, err := client.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	slog.Debug("manifest",
		"url", client.URL.Redacted(),
		"entries", m.Len(),
		"elapsed", time.Since(start),
	)
	return m, nil
}

// setup is the common prologue of every command that needs a manifest.
func setup(c *cli.Context) (
	context.Context,
	context.CancelFunc,
	*config.Config,
	*manifest.Manifest,
	error,
) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	ctx, cancel := contextWithTimeout(cfg)
	m, err := fetchManifest(ctx, cfg)
	if err != nil {
		cancel()
		return nil, nil, nil, nil, err
	}
	return ctx, cancel, cfg, m, nil
}

func interactive() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func humanBytes(n uint64) string {
	switch {
	case n >= 1<<30:
		return fmt.Sprintf(
			"%.1f GB", float64(n)/(1<<30),
		)
	case n >= 1<<20:
		return fmt.Sprintf(
			"%.1f MB", float64(n)/(1<<20),
		)
	case n >= 1<<10:
		return fmt.Sprintf(
			"%.1f KB", float64(n)/(1<<10),
		)
	default:
		return fmt.Sprintf("%d B", n)
	}
}
