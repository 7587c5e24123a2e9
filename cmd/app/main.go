package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/filebridge/internal"
	pkgconfig "github.com/starford/filebridge/pkg/config"
)

var version = "dev"

// configFlag is declared on the root command; subcommands read it through
// the command lineage.
func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("APP_CONFIG_FILE"),
	}
}

// loadOptions reads the config file (falling back to defaults when it does
// not exist) and returns the options shared by every subcommand.
func loadOptions(cmd *cli.Command) ([]internal.Option, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	found, err := pkgconfig.LoadOptional(configPath, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
		internal.WithVersion(version),
	}
	if found {
		opts = append(opts, internal.WithConfigPath(configPath))
	}
	return opts, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	if err := internal.RunMCP(ctx, opts...); err != nil {
		return fmt.Errorf("mcp run error: %w", err)
	}
	return nil
}

func read(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return errors.New("read: exactly one path argument is required")
	}
	path := cmd.Args().First()
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	text, err := internal.ReadFile(path, opts...)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	_, err = fmt.Fprintln(os.Stdout, text)
	return err
}

func main() {
	cmd := &cli.Command{
		Name:    "filebridge",
		Usage:   "Host command bridge that hands local files to a front-end as base64 text",
		Version: version,
		Action:  serve,
		Flags:   []cli.Flag{configFlag()},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve host commands over HTTP (default)",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve host commands as MCP tools on stdio",
				Action: serveMCP,
			},
			{
				Name:      "read",
				Usage:     "Print a file's contents as base64 text",
				ArgsUsage: "<path>",
				Action:    read,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
