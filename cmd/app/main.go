package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/hyprtext/internal"
	"github.com/starford/hyprtext/internal/linesort"
	"github.com/starford/hyprtext/internal/snapshot"
	"github.com/starford/hyprtext/internal/storage"
	pkgconfig "github.com/starford/hyprtext/pkg/config"
)

var version = "dev"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadIfExists(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func options(cmd *cli.Command) ([]internal.Option, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return []internal.Option{
		internal.WithConfig(cfg),
		internal.WithFiles(cmd.Args().Slice()),
		internal.WithVersion(version),
	}, nil
}

func run(ctx context.Context, cmd *cli.Command) error {
	opts, err := options(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	opts, err := options(cmd)
	if err != nil {
		return err
	}
	if err := internal.RunMCP(ctx, opts...); err != nil {
		return fmt.Errorf("mcp run error: %w", err)
	}
	return nil
}

func runSort(_ context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		if cmd.Bool("write") {
			return fmt.Errorf("--write needs a file argument")
		}
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		_, err = io.WriteString(os.Stdout, linesort.Text(string(data)))
		return err
	}

	disk := storage.NewDisk()
	data, err := disk.Read(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	sorted := linesort.Text(string(data))
	if cmd.Bool("write") {
		if sorted == string(data) {
			return nil
		}
		return disk.Write(path, []byte(sorted))
	}
	_, err = io.WriteString(os.Stdout, sorted)
	return err
}

func main() {
	defaultConfig := filepath.Join(snapshot.DefaultDir(), "settings.yaml")

	cmd := &cli.Command{
		Name:      "hyprtext",
		Usage:     "Text editor session that keeps lines grouped by their marker",
		ArgsUsage: "[FILE...]",
		Version:   version,
		Action:    run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: defaultConfig,
				Value:       defaultConfig,
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "mcp",
				Usage:     "Serve the editing session as MCP tools over stdio",
				ArgsUsage: "[FILE...]",
				Action:    runMCP,
			},
			{
				Name:      "sort",
				Usage:     "Group the lines of FILE (or stdin) by marker",
				ArgsUsage: "[FILE]",
				Action:    runSort,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "write",
						Aliases: []string{"w"},
						Usage:   "Rewrite FILE in place",
					},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
