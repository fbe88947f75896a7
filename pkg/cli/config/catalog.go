package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"golang.org/x/text/language"
	"google.golang.org/api/option"

	"github.com/m-mizutani/datamart/pkg/domain/catalog"
	"github.com/m-mizutani/datamart/pkg/domain/interfaces"
	"github.com/m-mizutani/datamart/pkg/infra/badger"
	"github.com/m-mizutani/datamart/pkg/infra/gcs"
	"github.com/m-mizutani/datamart/pkg/infra/registry"
	"github.com/m-mizutani/datamart/pkg/infra/s3"
	"github.com/m-mizutani/datamart/pkg/usecase"
)

// Catalog holds configuration of the catalog source, its snapshot cache and the view engine
type Catalog struct {
	RegistryURL     string
	RegistryToken   string `masq:"secret"`
	SnapshotURI     string
	Profile         string
	ProfileFile     string
	CachePath       string
	RefreshInterval time.Duration
	Language        string

	GCPCredentials string
	S3             s3.Config
}

// Flags returns CLI flags for catalog configuration
func (c *Catalog) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "registry-url",
			Usage:       "Dataset listing endpoint of the registry",
			Value:       "https://huggingface.co/api/datasets",
			Destination: &c.RegistryURL,
			Sources:     cli.EnvVars("DATAMART_REGISTRY_URL"),
		},
		&cli.StringFlag{
			Name:        "registry-token",
			Usage:       "Bearer token for the registry",
			Destination: &c.RegistryToken,
			Sources:     cli.EnvVars("DATAMART_REGISTRY_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "snapshot-uri",
			Usage:       "Read the catalog from a JSON snapshot (gs://bucket/object or s3://bucket/key) instead of the registry",
			Destination: &c.SnapshotURI,
			Sources:     cli.EnvVars("DATAMART_SNAPSHOT_URI"),
		},
		&cli.StringFlag{
			Name:        "profile",
			Usage:       "Field accessor profile of the source payload (registry, backend)",
			Value:       "registry",
			Destination: &c.Profile,
			Sources:     cli.EnvVars("DATAMART_PROFILE"),
		},
		&cli.StringFlag{
			Name:        "profile-file",
			Usage:       "TOML or YAML file overriding accessor paths of the profile",
			Destination: &c.ProfileFile,
			Sources:     cli.EnvVars("DATAMART_PROFILE_FILE"),
		},
		&cli.StringFlag{
			Name:        "cache-path",
			Usage:       "Directory of the snapshot cache used when the source is down at startup. Disabled when empty.",
			Destination: &c.CachePath,
			Sources:     cli.EnvVars("DATAMART_CACHE_PATH"),
		},
		&cli.DurationFlag{
			Name:        "refresh-interval",
			Usage:       "Interval of periodic catalog refresh. Zero disables it.",
			Value:       time.Hour,
			Destination: &c.RefreshInterval,
			Sources:     cli.EnvVars("DATAMART_REFRESH_INTERVAL"),
		},
		&cli.StringFlag{
			Name:        "language",
			Usage:       "BCP 47 language tag used to collate dataset names",
			Value:       "en",
			Destination: &c.Language,
			Sources:     cli.EnvVars("DATAMART_LANGUAGE"),
		},
		&cli.StringFlag{
			Name:        "gcp-credentials",
			Usage:       "Service account key file for gs:// snapshots",
			Destination: &c.GCPCredentials,
			Sources:     cli.EnvVars("DATAMART_GCP_CREDENTIALS", "GOOGLE_APPLICATION_CREDENTIALS"),
		},
		&cli.StringFlag{
			Name:        "s3-endpoint",
			Usage:       "S3 compatible endpoint for s3:// snapshots",
			Value:       "s3.amazonaws.com",
			Destination: &c.S3.Endpoint,
			Sources:     cli.EnvVars("DATAMART_S3_ENDPOINT"),
		},
		&cli.StringFlag{
			Name:        "s3-access-key",
			Usage:       "S3 access key",
			Destination: &c.S3.AccessKey,
			Sources:     cli.EnvVars("DATAMART_S3_ACCESS_KEY", "AWS_ACCESS_KEY_ID"),
		},
		&cli.StringFlag{
			Name:        "s3-secret-key",
			Usage:       "S3 secret key",
			Destination: &c.S3.SecretKey,
			Sources:     cli.EnvVars("DATAMART_S3_SECRET_KEY", "AWS_SECRET_ACCESS_KEY"),
		},
		&cli.StringFlag{
			Name:        "s3-region",
			Usage:       "S3 region",
			Destination: &c.S3.Region,
			Sources:     cli.EnvVars("DATAMART_S3_REGION", "AWS_REGION"),
		},
		&cli.BoolFlag{
			Name:        "s3-use-ssl",
			Usage:       "Use TLS for the S3 endpoint",
			Value:       true,
			Destination: &c.S3.UseSSL,
			Sources:     cli.EnvVars("DATAMART_S3_USE_SSL"),
		},
	}
}

// LogValue implements slog.LogValuer
func (c Catalog) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("registry_url", c.RegistryURL),
		slog.String("snapshot_uri", c.SnapshotURI),
		slog.String("profile", c.Profile),
		slog.String("cache_path", c.CachePath),
		slog.Duration("refresh_interval", c.RefreshInterval),
		slog.String("language", c.Language),
	)
}

// Accessor resolves the field accessor from the profile and the optional profile file
func (c *Catalog) Accessor() (catalog.Accessor, error) {
	a, err := catalog.Profile(c.Profile)
	if err != nil {
		return catalog.Accessor{}, err
	}
	if c.ProfileFile == "" {
		return a, nil
	}
	return catalog.LoadAccessor(c.ProfileFile, a)
}

// Engine builds the view engine for the configured language
func (c *Catalog) Engine() (*catalog.Engine, error) {
	tag, err := language.Parse(c.Language)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid language tag", goerr.V("language", c.Language))
	}
	return catalog.NewEngine(catalog.WithLanguage(tag)), nil
}

// Source builds the catalog source. A snapshot URI takes precedence over the registry.
func (c *Catalog) Source(ctx context.Context) (interfaces.CatalogSource, error) {
	switch {
	case gcs.IsURI(c.SnapshotURI):
		var opts []option.ClientOption
		if c.GCPCredentials != "" {
			opts = append(opts, option.WithCredentialsFile(c.GCPCredentials))
		}
		return gcs.NewSource(ctx, c.SnapshotURI, opts...)

	case s3.IsURI(c.SnapshotURI):
		return s3.NewSource(c.SnapshotURI, c.S3)

	case c.SnapshotURI != "":
		return nil, goerr.New("unsupported snapshot URI", goerr.V("uri", c.SnapshotURI))
	}

	var opts []registry.Option
	if c.RegistryToken != "" {
		opts = append(opts, registry.WithToken(c.RegistryToken))
	}
	return registry.NewClient(c.RegistryURL, opts...)
}

// Configure builds the catalog use case. The returned function releases the snapshot cache.
func (c *Catalog) Configure(ctx context.Context) (interfaces.CatalogUseCase, func(), error) {
	src, err := c.Source(ctx)
	if err != nil {
		return nil, nil, err
	}

	accessor, err := c.Accessor()
	if err != nil {
		return nil, nil, err
	}

	engine, err := c.Engine()
	if err != nil {
		return nil, nil, err
	}

	opts := []usecase.CatalogOption{
		usecase.WithAccessor(accessor),
		usecase.WithEngine(engine),
	}

	closer := func() {}
	if c.CachePath != "" {
		cache, err := badger.New(c.CachePath)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, usecase.WithSnapshotCache(cache))
		closer = func() {
			_ = cache.Close()
		}
	}

	uc := usecase.NewCatalog(src, opts...)

	return uc, closer, nil
}
