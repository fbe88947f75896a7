package gcs

import (
	"context"
	"errors"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/option"

	"github.com/m-mizutani/datamart/pkg/domain/interfaces"
	"github.com/m-mizutani/datamart/pkg/domain/model"
)

const scheme = "gs://"

type source struct {
	client *storage.Client
	bucket string
	object string
}

// ParseURI splits gs://bucket/object into its parts
func ParseURI(uri string) (bucket, object string, err error) {
	rest, ok := strings.CutPrefix(uri, scheme)
	if !ok {
		return "", "", goerr.New("not a gs:// URI", goerr.V("uri", uri), goerr.T(model.ErrTagInvalidInput))
	}
	bucket, object, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", goerr.New("gs:// URI needs bucket and object", goerr.V("uri", uri), goerr.T(model.ErrTagInvalidInput))
	}
	return bucket, object, nil
}

// IsURI reports whether uri points to Cloud Storage
func IsURI(uri string) bool {
	return strings.HasPrefix(uri, scheme)
}

// NewSource creates a catalog source reading a snapshot object from Cloud Storage
func NewSource(ctx context.Context, uri string, opts ...option.ClientOption) (interfaces.CatalogSource, error) {
	bucket, object, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Cloud Storage client")
	}

	return &source{
		client: client,
		bucket: bucket,
		object: object,
	}, nil
}

// Fetch reads the whole snapshot object
func (s *source) Fetch(ctx context.Context) ([]byte, error) {
	r, err := s.client.Bucket(s.bucket).Object(s.object).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, goerr.Wrap(err, "snapshot object not found",
				goerr.V("bucket", s.bucket),
				goerr.V("object", s.object),
				goerr.T(model.ErrTagNotFound))
		}
		return nil, goerr.Wrap(err, "failed to open snapshot object",
			goerr.V("bucket", s.bucket),
			goerr.V("object", s.object))
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read snapshot object",
			goerr.V("bucket", s.bucket),
			goerr.V("object", s.object))
	}
	return data, nil
}
