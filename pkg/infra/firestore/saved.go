package firestore

import (
	"context"
	"net/url"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/m-mizutani/datamart/pkg/domain/model"
)

const (
	usersCollection = "users"
	savedCollection = "saved"
)

// SavedRepository stores bookmarks under users/{user}/saved/{dataset}
type SavedRepository struct {
	client *firestore.Client
}

// NewSavedRepository connects to the Firestore database
func NewSavedRepository(ctx context.Context, projectID, databaseID string, opts ...option.ClientOption) (*SavedRepository, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Firestore client",
			goerr.V("project_id", projectID),
			goerr.V("database_id", databaseID))
	}

	return &SavedRepository{client: client}, nil
}

// Close releases the Firestore client
func (r *SavedRepository) Close() error {
	return r.client.Close()
}

// Dataset IDs contain "/" which Firestore reserves as a path separator.
func docID(datasetID string) string {
	return url.PathEscape(datasetID)
}

func (r *SavedRepository) saved(user string) *firestore.CollectionRef {
	return r.client.Collection(usersCollection).Doc(user).Collection(savedCollection)
}

func (r *SavedRepository) List(ctx context.Context, user string) ([]*model.SavedDataset, error) {
	docs, err := r.saved(user).OrderBy("saved_at", firestore.Desc).Documents(ctx).GetAll()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list saved datasets", goerr.V("user", user))
	}

	out := make([]*model.SavedDataset, 0, len(docs))
	for _, doc := range docs {
		var s model.SavedDataset
		if err := doc.DataTo(&s); err != nil {
			return nil, goerr.Wrap(err, "failed to decode saved dataset",
				goerr.V("user", user),
				goerr.V("doc", doc.Ref.ID))
		}
		out = append(out, &s)
	}
	return out, nil
}

func (r *SavedRepository) Put(ctx context.Context, saved *model.SavedDataset) error {
	if _, err := r.saved(saved.User).Doc(docID(saved.DatasetID)).Set(ctx, saved); err != nil {
		return goerr.Wrap(err, "failed to save dataset",
			goerr.V("user", saved.User),
			goerr.V("dataset_id", saved.DatasetID))
	}
	return nil
}

func (r *SavedRepository) Delete(ctx context.Context, user, datasetID string) error {
	ref := r.saved(user).Doc(docID(datasetID))

	if _, err := ref.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(err, "saved dataset not found",
				goerr.V("user", user),
				goerr.V("dataset_id", datasetID),
				goerr.T(model.ErrTagNotFound))
		}
		return goerr.Wrap(err, "failed to get saved dataset",
			goerr.V("user", user),
			goerr.V("dataset_id", datasetID))
	}

	if _, err := ref.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete saved dataset",
			goerr.V("user", user),
			goerr.V("dataset_id", datasetID))
	}
	return nil
}
