package http

import (
	"encoding/xml"
	"net/http"
	"net/url"
	"strings"

	"github.com/m-mizutani/ctxlog"

	"github.com/m-mizutani/datamart/pkg/domain/interfaces"
	"github.com/m-mizutani/datamart/pkg/domain/model"
)

const (
	sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

	// sitemapMaxURLs is the protocol limit of one sitemap file
	sitemapMaxURLs = 50000
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// datasetURL builds the public page URL of a dataset. Each ID segment is escaped separately.
func datasetURL(baseURL, id string) string {
	segments := strings.Split(id, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.TrimRight(baseURL, "/") + "/datasets/" + strings.Join(segments, "/")
}

func buildSitemap(baseURL string, records []*model.DatasetRecord) *sitemapURLSet {
	set := &sitemapURLSet{
		Xmlns: sitemapNamespace,
		URLs:  make([]sitemapURL, 0, min(len(records), sitemapMaxURLs)),
	}

	for _, rec := range records {
		if len(set.URLs) >= sitemapMaxURLs {
			break
		}
		u := sitemapURL{Loc: datasetURL(baseURL, rec.ID)}
		if !rec.LastModified.IsZero() {
			u.LastMod = rec.LastModified.UTC().Format("2006-01-02")
		}
		set.URLs = append(set.URLs, u)
	}
	return set
}

// handleSitemap serves GET /sitemap.xml
func handleSitemap(catalogUC interfaces.CatalogUseCase, baseURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := catalogUC.All(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}

		w.Header().Set("Content-Type", "application/xml; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(xml.Header))

		enc := xml.NewEncoder(w)
		enc.Indent("", "  ")
		if err := enc.Encode(buildSitemap(baseURL, records)); err != nil {
			ctxlog.From(r.Context()).Error("Failed to encode sitemap", "error", err)
		}
	}
}
