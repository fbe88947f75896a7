package config

import (
	"context"

	"github.com/urfave/cli/v3"
	"google.golang.org/api/option"

	"github.com/m-mizutani/datamart/pkg/domain/interfaces"
	"github.com/m-mizutani/datamart/pkg/infra/firestore"
	"github.com/m-mizutani/datamart/pkg/infra/memory"
)

// Firestore holds configuration of the saved dataset repository
type Firestore struct {
	ProjectID       string
	DatabaseID      string
	CredentialsFile string
}

// Flags returns CLI flags for Firestore configuration
func (c *Firestore) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Google Cloud project of the saved dataset store. An in-memory store is used when empty.",
			Destination: &c.ProjectID,
			Sources:     cli.EnvVars("DATAMART_FIRESTORE_PROJECT_ID"),
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore database ID",
			Value:       "(default)",
			Destination: &c.DatabaseID,
			Sources:     cli.EnvVars("DATAMART_FIRESTORE_DATABASE_ID"),
		},
		&cli.StringFlag{
			Name:        "firestore-credentials",
			Usage:       "Service account key file for Firestore",
			Destination: &c.CredentialsFile,
			Sources:     cli.EnvVars("DATAMART_FIRESTORE_CREDENTIALS"),
		},
	}
}

// Configure builds the saved dataset repository. The returned function releases its client.
func (c *Firestore) Configure(ctx context.Context) (interfaces.SavedRepository, func(), error) {
	if c.ProjectID == "" {
		return memory.NewSavedRepository(), func() {}, nil
	}

	var opts []option.ClientOption
	if c.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(c.CredentialsFile))
	}

	repo, err := firestore.NewSavedRepository(ctx, c.ProjectID, c.DatabaseID, opts...)
	if err != nil {
		return nil, nil, err
	}

	return repo, func() { _ = repo.Close() }, nil
}
