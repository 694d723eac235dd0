package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/ashwinyue/aitools-hub/internal/config"
	"github.com/ashwinyue/aitools-hub/internal/database"
	"github.com/ashwinyue/aitools-hub/internal/service/transfer"
)

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Create or update the database schema",
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return err
			}
			db, err := database.New(cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			fmt.Println("migration complete")
			return nil
		},
	}
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import tools from a CSV or JSON file for a user",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Required: true, Usage: "owner account email"},
			&cli.StringFlag{Name: "file", Required: true, Usage: "path to the .csv or .json file"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			a, err := newApp(ctx, c.String("config"))
			if err != nil {
				return err
			}
			defer a.Close()

			ownerID, err := a.ownerByEmail(ctx, c.String("email"))
			if err != nil {
				return err
			}

			path := c.String("file")
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}

			res, err := a.svc.Transfer.Import(ctx, ownerID, transfer.Upload{
				FileName: filepath.Base(path),
				Data:     data,
			})
			if err != nil {
				return err
			}

			fmt.Println(res.Message())
			fmt.Printf("invalid=%d duplicates=%d failed=%d\n", res.Invalid, res.Duplicates, res.Failed)
			return nil
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export a user's visible tools as CSV or JSON",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Required: true, Usage: "owner account email"},
			&cli.StringFlag{Name: "out", Usage: "output file or directory (default: dated file name in the working directory)"},
			&cli.StringFlag{Name: "format", Value: "csv", Usage: "csv or json"},
			&cli.BoolFlag{Name: "extended", Usage: "include pricing and tags columns in csv"},
			&cli.StringFlag{Name: "ids", Usage: "comma separated tool ids to export (default: all)"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			a, err := newApp(ctx, c.String("config"))
			if err != nil {
				return err
			}
			defer a.Close()

			ownerID, err := a.ownerByEmail(ctx, c.String("email"))
			if err != nil {
				return err
			}

			var ids []string
			for _, id := range strings.Split(c.String("ids"), ",") {
				if id = strings.TrimSpace(id); id != "" {
					ids = append(ids, id)
				}
			}

			file, err := a.svc.Transfer.Export(ctx, ownerID, transfer.ExportOptions{
				Format:   transfer.Format(strings.ToLower(c.String("format"))),
				Extended: c.Bool("extended"),
				IDs:      ids,
			})
			if err != nil {
				return err
			}

			out := c.String("out")
			if out == "" {
				out = file.Name
			} else if info, err := os.Stat(out); err == nil && info.IsDir() {
				out = filepath.Join(out, file.Name)
			}

			if err := os.WriteFile(out, file.Data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
			fmt.Printf("exported %d tools to %s\n", file.Count, out)
			return nil
		},
	}
}

func purgeTokensCommand() *cli.Command {
	return &cli.Command{
		Name:  "purge-tokens",
		Usage: "Delete expired auth tokens",
		Action: func(ctx context.Context, c *cli.Command) error {
			a, err := newApp(ctx, c.String("config"))
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.svc.Auth.PurgeTokens(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("purged %d expired tokens\n", n)
			return nil
		},
	}
}
