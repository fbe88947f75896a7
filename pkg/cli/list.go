package cli

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/datamart/pkg/cli/config"
	"github.com/m-mizutani/datamart/pkg/domain/interfaces"
	"github.com/m-mizutani/datamart/pkg/domain/model"
)

// loadCatalog builds the catalog and fetches it once. A failed fetch falls back to the snapshot cache.
func loadCatalog(ctx context.Context, cfg *config.Catalog) (interfaces.CatalogUseCase, func(), error) {
	catalogUC, closer, err := cfg.Configure(ctx)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to configure catalog")
	}

	if err := catalogUC.Refresh(ctx); err != nil {
		ctxlog.From(ctx).Warn("Catalog fetch failed, using fallback", slog.Any("error", err))
	}
	return catalogUC, closer, nil
}

func cmdList() *cli.Command {
	var (
		catalogCfg config.Catalog
		query      string
		tags       []string
		sortKey    string
		sortOrder  string
		page       int
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "query",
			Aliases:     []string{"q"},
			Usage:       "Search term matched against dataset names",
			Destination: &query,
		},
		&cli.StringSliceFlag{
			Name:        "tag",
			Aliases:     []string{"t"},
			Usage:       "Required tag (repeatable, all must match)",
			Destination: &tags,
		},
		&cli.StringFlag{
			Name:        "sort",
			Usage:       "Sort key (name, downloads, size)",
			Value:       string(model.SortByDownloads),
			Destination: &sortKey,
		},
		&cli.StringFlag{
			Name:        "order",
			Usage:       "Sort order (asc, desc)",
			Value:       string(model.SortDesc),
			Destination: &sortOrder,
		},
		&cli.IntFlag{
			Name:        "page",
			Aliases:     []string{"p"},
			Usage:       "Page number",
			Value:       1,
			Destination: &page,
		},
	}
	flags = append(flags, catalogCfg.Flags()...)

	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List datasets matching a filter",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			key, err := model.ParseSortKey(sortKey)
			if err != nil {
				return err
			}
			order, err := model.ParseSortOrder(sortOrder)
			if err != nil {
				return err
			}

			catalogUC, closer, err := loadCatalog(ctx, &catalogCfg)
			if err != nil {
				return err
			}
			defer closer()

			state := model.NewFilterState()
			state.SetSearchTerm(query)
			state.SelectTags(tags...)
			state.SetSort(key, order)
			state.SetPage(page)

			view, err := catalogUC.Datasets(ctx, state)
			if err != nil {
				return err
			}

			return renderView(c.Root().Writer, view)
		},
	}
}
