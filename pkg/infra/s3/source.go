package s3

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/m-mizutani/datamart/pkg/domain/interfaces"
	"github.com/m-mizutani/datamart/pkg/domain/model"
)

const scheme = "s3://"

// Config holds the connection settings of an S3 compatible endpoint
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string `masq:"secret"`
	Region    string
	UseSSL    bool
}

type source struct {
	api    *minio.Client
	bucket string
	key    string
}

// ParseURI splits s3://bucket/key into its parts
func ParseURI(uri string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(uri, scheme)
	if !ok {
		return "", "", goerr.New("not an s3:// URI", goerr.V("uri", uri), goerr.T(model.ErrTagInvalidInput))
	}
	bucket, key, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", goerr.New("s3:// URI needs bucket and key", goerr.V("uri", uri), goerr.T(model.ErrTagInvalidInput))
	}
	return bucket, key, nil
}

// IsURI reports whether uri points to an S3 bucket
func IsURI(uri string) bool {
	return strings.HasPrefix(uri, scheme)
}

// NewSource creates a catalog source reading a snapshot object from S3
func NewSource(uri string, cfg Config) (interfaces.CatalogSource, error) {
	bucket, key, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}

	api, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create S3 client", goerr.V("endpoint", cfg.Endpoint))
	}

	return &source{
		api:    api,
		bucket: bucket,
		key:    key,
	}, nil
}

// Fetch downloads the whole snapshot object into memory
func (s *source) Fetch(ctx context.Context) ([]byte, error) {
	obj, err := s.api.GetObject(ctx, s.bucket, s.key, minio.GetObjectOptions{})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get snapshot object",
			goerr.V("bucket", s.bucket),
			goerr.V("key", s.key))
	}
	defer obj.Close()

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, obj); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, goerr.Wrap(err, "snapshot object not found",
				goerr.V("bucket", s.bucket),
				goerr.V("key", s.key),
				goerr.T(model.ErrTagNotFound))
		}
		return nil, goerr.Wrap(err, "failed to read snapshot object",
			goerr.V("bucket", s.bucket),
			goerr.V("key", s.key))
	}

	return buf.Bytes(), nil
}
