package catalog

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/m-mizutani/datamart/pkg/domain/model"
)

// Accessor maps source JSON fields onto DatasetRecord using gjson paths
type Accessor struct {
	ID           string `toml:"id" yaml:"id"`
	DisplayName  string `toml:"display_name" yaml:"display_name"`
	Tags         string `toml:"tags" yaml:"tags"`
	Downloads    string `toml:"downloads" yaml:"downloads"`
	LastModified string `toml:"last_modified" yaml:"last_modified"`
	SizeCategory string `toml:"size_category" yaml:"size_category"`
	SizeBytes    string `toml:"size_bytes" yaml:"size_bytes"`
}

// RegistryAccessor reads records in the dataset registry API shape
var RegistryAccessor = Accessor{
	ID:           "id",
	DisplayName:  "cardData.pretty_name",
	Tags:         "tags",
	Downloads:    "downloads",
	LastModified: "lastModified",
	SizeCategory: "cardData.size_categories.0",
	SizeBytes:    "usedStorage",
}

// BackendAccessor reads records in the backend service shape
var BackendAccessor = Accessor{
	ID:           "id",
	DisplayName:  "author.name",
	Tags:         "tags",
	Downloads:    "downloads",
	LastModified: "updatedAt",
	SizeCategory: "sizeCategory",
	SizeBytes:    "sizeBytes",
}

var profiles = map[string]Accessor{
	"registry": RegistryAccessor,
	"backend":  BackendAccessor,
}

// Profile returns a built-in accessor by name
func Profile(name string) (Accessor, error) {
	a, ok := profiles[strings.ToLower(name)]
	if !ok {
		return Accessor{}, goerr.New("unknown accessor profile",
			goerr.V("profile", name),
			goerr.T(model.ErrTagInvalidInput))
	}
	return a, nil
}

// LoadAccessor reads a TOML or YAML file on top of base. Empty fields keep the base path.
func LoadAccessor(path string, base Accessor) (Accessor, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Accessor{}, goerr.Wrap(err, "failed to read accessor file", goerr.V("path", path))
	}

	var override Accessor
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, &override)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &override)
	default:
		return Accessor{}, goerr.New("unsupported accessor file format",
			goerr.V("path", path),
			goerr.V("ext", ext),
			goerr.T(model.ErrTagInvalidInput))
	}
	if err != nil {
		return Accessor{}, goerr.Wrap(err, "failed to parse accessor file", goerr.V("path", path))
	}

	return base.merge(override), nil
}

func (a Accessor) merge(o Accessor) Accessor {
	pick := func(base, override string) string {
		if override != "" {
			return override
		}
		return base
	}
	return Accessor{
		ID:           pick(a.ID, o.ID),
		DisplayName:  pick(a.DisplayName, o.DisplayName),
		Tags:         pick(a.Tags, o.Tags),
		Downloads:    pick(a.Downloads, o.Downloads),
		LastModified: pick(a.LastModified, o.LastModified),
		SizeCategory: pick(a.SizeCategory, o.SizeCategory),
		SizeBytes:    pick(a.SizeBytes, o.SizeBytes),
	}
}

// Decode converts a JSON array into records. Entries without an id are dropped
// and a repeated id keeps its first occurrence.
func Decode(data []byte, a Accessor) ([]*model.DatasetRecord, error) {
	if !gjson.ValidBytes(data) {
		return nil, goerr.New("catalog payload is not valid JSON", goerr.V("size", len(data)))
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, goerr.New("catalog payload is not a JSON array", goerr.V("type", root.Type.String()))
	}

	records := []*model.DatasetRecord{}
	seen := make(map[string]struct{})

	root.ForEach(func(_, item gjson.Result) bool {
		r := a.record(item)
		if r.ID == "" {
			return true
		}
		if _, dup := seen[r.ID]; dup {
			return true
		}
		seen[r.ID] = struct{}{}
		records = append(records, r)
		return true
	})

	return records, nil
}

func (a Accessor) record(item gjson.Result) *model.DatasetRecord {
	r := &model.DatasetRecord{
		ID:           item.Get(a.ID).String(),
		DisplayName:  strings.TrimSpace(item.Get(a.DisplayName).String()),
		Tags:         []string{},
		Downloads:    max(item.Get(a.Downloads).Int(), 0),
		SizeCategory: item.Get(a.SizeCategory).String(),
		SizeBytes:    max(item.Get(a.SizeBytes).Int(), 0),
	}
	if r.DisplayName == "" {
		r.DisplayName = model.UnnamedDataset
	}
	if r.SizeCategory == "" {
		r.SizeCategory = model.UnknownSizeCategory
	}
	if lm := item.Get(a.LastModified); lm.Exists() {
		r.LastModified = lm.Time()
	}
	for _, tag := range item.Get(a.Tags).Array() {
		if s := tag.String(); s != "" {
			r.Tags = append(r.Tags, s)
		}
	}
	return r
}
