package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/m3rciful/cinebot/bot/app"
	"github.com/m3rciful/cinebot/bot/model"
	"github.com/m3rciful/cinebot/bot/store"
	"github.com/m3rciful/cinebot/core/bootstrap"
	coredatabase "github.com/m3rciful/cinebot/core/database"
	"github.com/m3rciful/cinebot/core/logger"
)

type pathResolver func() (string, error)

// withStore loads the database-only config, starts the logger and runs fn.
func withStore(resolve pathResolver, fn func(cfg *app.Config) error) error {
	path, err := resolve()
	if err != nil {
		return err
	}
	cfg, err := app.LoadStoreConfig(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logger.InitLogger(cfg.CoreConfig()); err != nil {
		return err
	}
	defer func() { _ = logger.Shutdown() }()
	return fn(cfg)
}

func newMigrateCmd(resolve pathResolver) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(resolve, func(cfg *app.Config) error {
				return coredatabase.RunMigrations(cfg.Database)
			})
		},
	}
}

func newSeedCmd(resolve pathResolver) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Upsert films and cinemas from a YAML catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(resolve, func(cfg *app.Config) error {
				if file != "" {
					cfg.Catalog.SeedFile = file
				}
				if cfg.Catalog.SeedFile == "" {
					return fmt.Errorf("no catalog file: pass --file or set catalog.seed_file")
				}
				seeders, err := app.Seeders(cfg)
				if err != nil {
					return err
				}
				res, err := bootstrap.Run(cmd.Context(), bootstrap.Options{
					Config:   cfg.CoreConfig(),
					Database: cfg.Database,
					Seeders:  seeders,
				})
				if err != nil {
					return err
				}
				return res.DB.Close()
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "catalog YAML file")
	return cmd
}

func newCatalogCmd(resolve pathResolver) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Print the stored films and cinemas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(resolve, func(cfg *app.Config) error {
				db, err := coredatabase.Connect(cfg.Database)
				if err != nil {
					return err
				}
				defer db.Close()

				ctx := cmd.Context()
				films, err := store.NewFilmStore(db).All(ctx)
				if err != nil {
					return err
				}
				cinemas, err := store.NewCinemaStore(db).All(ctx)
				if err != nil {
					return err
				}
				renderCatalog(cmd.OutOrStdout(), films, cinemas)
				return nil
			})
		},
	}
}

func renderCatalog(w io.Writer, films []model.Film, cinemas []model.Cinema) {
	ft := table.NewWriter()
	ft.SetOutputMirror(w)
	ft.SetTitle("Films")
	ft.SetStyle(table.StyleLight)
	ft.Style().Format.Footer = text.FormatDefault
	ft.AppendHeader(table.Row{"#", "UUID", "Name", "Type", "Year", "Rating", "Cinemas"})
	for i, f := range films {
		ft.AppendRow(table.Row{i + 1, f.UUID, f.Name, f.Type, f.Year, strconv.FormatFloat(f.Rating, 'f', 1, 64), len(f.Cinemas)})
	}
	ft.AppendFooter(table.Row{"Total", "", len(films)})
	ft.Render()

	ct := table.NewWriter()
	ct.SetOutputMirror(w)
	ct.SetTitle("Cinemas")
	ct.SetStyle(table.StyleLight)
	ct.Style().Format.Footer = text.FormatDefault
	ct.AppendHeader(table.Row{"#", "UUID", "Name", "Lat", "Lon", "Films"})
	for i, c := range cinemas {
		ct.AppendRow(table.Row{i + 1, c.UUID, c.Name, c.Lat, c.Lon, len(c.Films)})
	}
	ct.AppendFooter(table.Row{"Total", "", len(cinemas)})
	ct.Render()
}
