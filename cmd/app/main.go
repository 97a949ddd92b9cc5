package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/hallgrim/notelint/internal"
	pkgconfig "github.com/hallgrim/notelint/pkg/config"
)

// loadConfig builds the effective configuration: defaults, then the YAML
// config file (when present), then flag overrides.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()

	configPath := cmd.String("config")
	loaded, err := pkgconfig.LoadIfExists(configPath, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if !loaded && cmd.IsSet("config") {
		return nil, fmt.Errorf("config file not found: %s", configPath)
	}

	if cmd.IsSet("corpus") {
		cfg.Corpus.Path = cmd.String("corpus")
	}
	if cmd.IsSet("assets") {
		cfg.Corpus.AssetsDir = cmd.String("assets")
	}
	if cmd.IsSet("cache") {
		cfg.Cache.Path = cmd.String("cache")
	}
	if cmd.IsSet("output") {
		cfg.App.Output = cmd.String("output")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func runValidate(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	clean, err := internal.Validate(ctx, internal.WithConfig(cfg))
	if err != nil {
		return err
	}
	if !clean {
		// Defect lines are already on stderr, one per defect.
		return cli.Exit("", 1)
	}
	return nil
}

func runWatch(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.Watch(ctx, internal.WithConfig(cfg))
}

func runLookup(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	slug := cmd.Args().First()
	if slug == "" {
		return fmt.Errorf("usage: notelint lookup <slug>")
	}
	return internal.Lookup(ctx, slug, internal.WithConfig(cfg))
}

func runList(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.List(ctx, internal.WithConfig(cfg))
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.ServeMCP(ctx, internal.WithConfig(cfg))
}

func main() {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to config file",
			DefaultText: "notelint.yaml",
			Value:       "notelint.yaml",
			Sources:     cli.EnvVars("NOTELINT_CONFIG_FILE"),
		},
		&cli.StringFlag{
			Name:    "corpus",
			Usage:   "Corpus root directory",
			Sources: cli.EnvVars("NOTELINT_CORPUS"),
		},
		&cli.StringFlag{
			Name:    "assets",
			Usage:   "Asset store directory for image references",
			Sources: cli.EnvVars("NOTELINT_ASSETS"),
		},
		&cli.StringFlag{
			Name:    "cache",
			Usage:   "Incremental cache database path (empty disables)",
			Sources: cli.EnvVars("NOTELINT_CACHE"),
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Report format: text or json",
		},
	}

	cmd := &cli.Command{
		Name:   "notelint",
		Usage:  "Validator for a markdown conference-notes corpus: metadata blocks, slug index, cross-references, image assets",
		Flags:  flags,
		Action: runValidate,
		Commands: []*cli.Command{
			{
				Name:   "validate",
				Usage:  "Validate the corpus once and exit nonzero on defects",
				Action: runValidate,
			},
			{
				Name:   "watch",
				Usage:  "Re-validate whenever the corpus changes on disk",
				Action: runWatch,
			},
			{
				Name:      "lookup",
				Usage:     "Resolve a slug to its document path",
				ArgsUsage: "<slug>",
				Action:    runLookup,
			},
			{
				Name:   "list",
				Usage:  "List every document as slug and path",
				Action: runList,
			},
			{
				Name:   "mcp",
				Usage:  "Serve validator tools over MCP stdio",
				Action: runMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		if msg := err.Error(); msg != "" {
			slog.Error("application error", slog.String("error", msg))
		}
		os.Exit(1)
	}
}
