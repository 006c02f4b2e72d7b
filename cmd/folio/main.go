package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/folio/internal"
	pkgconfig "github.com/starford/folio/pkg/config"
)

var version = "dev"

type runFunc func(ctx context.Context, opts ...internal.Option) error

// loadConfig reads the config file, then applies the positional directory
// and the flags the user set on top of it.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if dir := cmd.Args().First(); dir != "" {
		cfg.Sitemap.Root = dir
	}
	if cmd.IsSet("ignore") {
		cfg.Sitemap.Ignore = append(cfg.Sitemap.Ignore, cmd.StringSlice("ignore")...)
	}
	if cmd.IsSet("output") {
		cfg.Sitemap.Output = cmd.String("output")
	}
	if cmd.IsSet("port") {
		cfg.App.HTTP.Port = int(cmd.Int("port"))
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return cfg, nil
}

func action(run runFunc) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		opts := []internal.Option{
			internal.WithConfig(cfg),
			internal.WithVersion(version),
		}
		if err := run(ctx, opts...); err != nil {
			return fmt.Errorf("%s: %w", cmd.Name, err)
		}
		return nil
	}
}

func main() {
	cmd := &cli.Command{
		Name:      "folio",
		Usage:     "Build the navigation sitemap of a static site from its content directory",
		Version:   version,
		ArgsUsage: "[DIR]",
		Action:    action(internal.Build),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "folio.yaml",
				Value:       "folio.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringSliceFlag{
				Name:  "ignore",
				Usage: "Entry name to skip in the main tree (repeatable)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the sitemap to `FILE` instead of stdout",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "HTTP port for serve",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "build",
				Usage:     "Build the sitemap once (default)",
				ArgsUsage: "[DIR]",
				Action:    action(internal.Build),
			},
			{
				Name:      "serve",
				Usage:     "Serve /sitemap.json and rebuild it when the content changes",
				ArgsUsage: "[DIR]",
				Action:    action(internal.Serve),
			},
			{
				Name:      "mcp",
				Usage:     "Serve the sitemap over MCP on stdin/stdout",
				ArgsUsage: "[DIR]",
				Action:    action(internal.ServeMCP),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
