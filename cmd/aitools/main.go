package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	root := &cli.Command{
		Name:  "aitools",
		Usage: "AI tools directory server and maintenance CLI",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Value:   "./configs/config.yaml",
				Usage:   "path to the yaml config file",
				Sources: cli.EnvVars("CONFIG_PATH"),
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
			importCommand(),
			exportCommand(),
			purgeTokensCommand(),
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return runServer(ctx, c.String("config"))
		},
	}

	if err := root.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
