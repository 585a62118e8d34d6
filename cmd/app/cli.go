package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/starford/jera/internal"
	"github.com/starford/jera/internal/models"
	"github.com/starford/jera/internal/noteservice"
	pkgconfig "github.com/starford/jera/pkg/config"
)

// newCLI builds the command tree. Command output goes to out.
func newCLI(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:    "jera",
		Usage:   "Local single-user note manager with categories",
		Version: Version,
		Writer:  out,
		Action:  serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file (defaults apply when it is missing)",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the HTTP API with autosave",
				Action: serve,
			},
			addCmd(),
			editCmd(),
			removeCmd(),
			listCmd(),
			showCmd(),
			categoriesCmd(),
			{
				Name:  "mcp",
				Usage: "Serve MCP tools on stdio",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					return internal.RunMCP(ctx, internal.WithConfig(cfg), internal.WithVersion(Version))
				},
			},
		},
	}
}

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

// withSession loads the store for a one-shot command. Logs go to stderr so
// stdout carries only command output.
func withSession(cmd *cli.Command, fn func(*noteservice.Service) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	sess, err := internal.Open([]internal.Option{
		internal.WithConfig(cfg),
		internal.WithLogOutput(os.Stderr),
	})
	if err != nil {
		return err
	}
	defer sess.Close()
	return fn(sess.Service)
}

func ref(cmd *cli.Command) (string, error) {
	if cmd.Args().Len() != 1 {
		return "", errors.New("expected exactly one note id or position")
	}
	return cmd.Args().First(), nil
}

func addCmd() *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "Add a note",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Note title"},
			&cli.StringFlag{Name: "content", Aliases: []string{"m"}, Usage: "Note text (\"-\" reads stdin)"},
			&cli.StringFlag{Name: "category", Aliases: []string{"g"}, Value: models.DefaultCategory, Usage: "Category"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			content, err := contentFlag(cmd)
			if err != nil {
				return err
			}
			return withSession(cmd, func(svc *noteservice.Service) error {
				n, err := svc.CreateNote(ctx, noteservice.Draft{
					Title:    cmd.String("title"),
					Content:  content,
					Category: cmd.String("category"),
				})
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.Root().Writer, n.ID)
				return nil
			})
		},
	}
}

func editCmd() *cli.Command {
	return &cli.Command{
		Name:      "edit",
		Usage:     "Edit a note; omitted fields keep their value",
		ArgsUsage: "<id|position>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "New title"},
			&cli.StringFlag{Name: "content", Aliases: []string{"m"}, Usage: "New text (\"-\" reads stdin)"},
			&cli.StringFlag{Name: "category", Aliases: []string{"g"}, Usage: "New category"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			r, err := ref(cmd)
			if err != nil {
				return err
			}
			return withSession(cmd, func(svc *noteservice.Service) error {
				id, err := svc.Resolve(r)
				if err != nil {
					return err
				}
				old, err := svc.GetNote(ctx, id)
				if err != nil {
					return err
				}
				d := noteservice.Draft{Title: old.Title, Content: old.Content, Category: old.Category}
				if cmd.IsSet("title") {
					d.Title = cmd.String("title")
				}
				if cmd.IsSet("content") {
					if d.Content, err = contentFlag(cmd); err != nil {
						return err
					}
				}
				if cmd.IsSet("category") {
					d.Category = cmd.String("category")
				}
				_, err = svc.UpdateNote(ctx, id, d, "")
				return err
			})
		},
	}
}

func removeCmd() *cli.Command {
	return &cli.Command{
		Name:      "rm",
		Usage:     "Delete a note",
		ArgsUsage: "<id|position>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			r, err := ref(cmd)
			if err != nil {
				return err
			}
			return withSession(cmd, func(svc *noteservice.Service) error {
				id, err := svc.Resolve(r)
				if err != nil {
					return err
				}
				return svc.DeleteNote(ctx, id)
			})
		},
	}
}

func listCmd() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List notes, optionally by category",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "category", Aliases: []string{"g"}, Usage: "Exact category (default: all categories)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withSession(cmd, func(svc *noteservice.Service) error {
				tw := tabwriter.NewWriter(cmd.Root().Writer, 0, 4, 2, ' ', 0)
				_, _ = fmt.Fprintln(tw, "#\tID\tCATEGORY\tTITLE\tMODIFIED")
				for _, n := range svc.ListNotes(ctx, cmd.String("category")) {
					_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
						svc.Store().IndexOf(n.ID), n.ID, n.Category, n.Title, n.Modified.Format(time.DateTime))
				}
				return tw.Flush()
			})
		},
	}
}

func showCmd() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Print one note",
		ArgsUsage: "<id|position>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			r, err := ref(cmd)
			if err != nil {
				return err
			}
			return withSession(cmd, func(svc *noteservice.Service) error {
				id, err := svc.Resolve(r)
				if err != nil {
					return err
				}
				n, err := svc.GetNote(ctx, id)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.Root().Writer, "%s\nCategory: %s\nCreated:  %s\nModified: %s\n\n%s\n",
					n.Title, n.Category, n.Created.Format(time.DateTime), n.Modified.Format(time.DateTime), n.Content)
				return nil
			})
		},
	}
}

func categoriesCmd() *cli.Command {
	return &cli.Command{
		Name:  "categories",
		Usage: "List assignable categories",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withSession(cmd, func(svc *noteservice.Service) error {
				for _, c := range svc.Categories(ctx) {
					_, _ = fmt.Fprintln(cmd.Root().Writer, c)
				}
				return nil
			})
		},
	}
}

func contentFlag(cmd *cli.Command) (string, error) {
	v := cmd.String("content")
	if v != "-" {
		return v, nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read content from stdin: %w", err)
	}
	return string(data), nil
}
