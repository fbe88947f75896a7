package http_test

import (
	"encoding/xml"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"

	controller "github.com/m-mizutani/datamart/pkg/controller/http"
)

func TestSitemap(t *testing.T) {
	server := newTestServer(t, newTestCatalog(), controller.WithBaseURL("https://data.example.com/"))

	w := serve(server, httptest.NewRequest(http.MethodGet, "/sitemap.xml", nil))
	gt.Equal(t, w.Code, http.StatusOK)
	gt.True(t, strings.Contains(w.Header().Get("Content-Type"), "application/xml"))

	var set struct {
		URLs []struct {
			Loc     string `xml:"loc"`
			LastMod string `xml:"lastmod"`
		} `xml:"url"`
	}
	gt.NoError(t, xml.Unmarshal(w.Body.Bytes(), &set))
	gt.Equal(t, len(set.URLs), 4)
	gt.Equal(t, set.URLs[0].Loc, "https://data.example.com/datasets/org/wiki")
	gt.Equal(t, set.URLs[0].LastMod, "2024-05-01")
	gt.Equal(t, set.URLs[3].Loc, "https://data.example.com/datasets/solo")
	gt.Equal(t, set.URLs[3].LastMod, "")
}
