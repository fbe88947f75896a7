package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/datamart/pkg/cli/config"
)

func cmdFacets() *cli.Command {
	var catalogCfg config.Catalog

	return &cli.Command{
		Name:  "facets",
		Usage: "List tag facets of the catalog",
		Flags: catalogCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			catalogUC, closer, err := loadCatalog(ctx, &catalogCfg)
			if err != nil {
				return err
			}
			defer closer()

			facets, err := catalogUC.Facets(ctx)
			if err != nil {
				return err
			}

			return renderFacets(c.Root().Writer, facets)
		},
	}
}
