package registry_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/gt"
	"github.com/tidwall/gjson"

	"github.com/m-mizutani/datamart/pkg/infra/registry"
)

func TestClient_Fetch_FollowsPages(t *testing.T) {
	var authHeaders, fullParams []string
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeaders = append(authHeaders, r.Header.Get("Authorization"))
		fullParams = append(fullParams, r.URL.Query().Get("full"))

		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("cursor") == "" {
			w.Header().Set("Link", `<`+server.URL+`/api/datasets?full=true&cursor=p2>; rel="next"`)
			_, _ = w.Write([]byte(`[{"id":"a"},{"id":"b"}]`))
			return
		}
		_, _ = w.Write([]byte(`[{"id":"c"}]`))
	}))
	defer server.Close()

	client, err := registry.NewClient(server.URL+"/api/datasets", registry.WithToken("secret-token"))
	gt.NoError(t, err)

	data, err := client.Fetch(context.Background())
	gt.NoError(t, err)

	result := gjson.ParseBytes(data)
	gt.True(t, result.IsArray())
	gt.A(t, result.Array()).Length(3)
	gt.Equal(t, result.Get("2.id").String(), "c")
	gt.Equal(t, authHeaders, []string{"Bearer secret-token", "Bearer secret-token"})
	gt.Equal(t, fullParams, []string{"true", "true"})
}

func TestClient_Fetch_MaxPages(t *testing.T) {
	calls := 0
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Link", `<`+server.URL+`/api/datasets>; rel="next"`)
		_, _ = w.Write([]byte(`[{"id":"loop"}]`))
	}))
	defer server.Close()

	client, err := registry.NewClient(server.URL+"/api/datasets", registry.WithMaxPages(3))
	gt.NoError(t, err)

	var logs bytes.Buffer
	ctx := ctxlog.With(context.Background(), slog.New(slog.NewJSONHandler(&logs, nil)))

	data, err := client.Fetch(ctx)
	gt.NoError(t, err)
	gt.Equal(t, calls, 3)
	gt.A(t, gjson.ParseBytes(data).Array()).Length(3)
	gt.True(t, strings.Contains(logs.String(), "Registry listing truncated at page limit"))
	gt.True(t, strings.Contains(logs.String(), `"pages":3`))
}

func TestClient_Fetch_LastPageDoesNotWarn(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"only"}]`))
	}))
	defer server.Close()

	client, err := registry.NewClient(server.URL, registry.WithMaxPages(1))
	gt.NoError(t, err)

	var logs bytes.Buffer
	ctx := ctxlog.With(context.Background(), slog.New(slog.NewJSONHandler(&logs, nil)))

	_, err = client.Fetch(ctx)
	gt.NoError(t, err)
	gt.False(t, strings.Contains(logs.String(), "truncated"))
}

func TestClient_Fetch_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr bool
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `oops`, wantErr: true},
		{name: "not an array", status: http.StatusOK, body: `{"error":"x"}`, wantErr: true},
		{name: "empty array", status: http.StatusOK, body: `[]`, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client, err := registry.NewClient(server.URL)
			gt.NoError(t, err)

			data, err := client.Fetch(context.Background())
			if tt.wantErr {
				gt.Error(t, err)
				return
			}
			gt.NoError(t, err)
			gt.Equal(t, string(data), "[]")
		})
	}
}

func TestNewClient_InvalidEndpoint(t *testing.T) {
	_, err := registry.NewClient("not a url")
	gt.Error(t, err)
}
