package registry

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/tidwall/gjson"

	"github.com/m-mizutani/datamart/pkg/domain/interfaces"
)

const (
	defaultPageLimit = 1000
	defaultMaxPages  = 50
)

var nextLinkPattern = regexp.MustCompile(`<([^>]+)>;\s*rel="next"`)

type client struct {
	httpClient *http.Client
	endpoint   string
	token      string
	pageLimit  int
	maxPages   int
}

// Option configures the registry client
type Option func(*client)

// WithToken sets the bearer token sent to the registry
func WithToken(token string) Option {
	return func(c *client) {
		c.token = token
	}
}

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// WithPageLimit sets the number of datasets requested per page
func WithPageLimit(n int) Option {
	return func(c *client) {
		c.pageLimit = n
	}
}

// WithMaxPages bounds how many pages are followed through Link headers
func WithMaxPages(n int) Option {
	return func(c *client) {
		c.maxPages = n
	}
}

// NewClient creates a client for the dataset listing endpoint of the registry API
func NewClient(endpoint string, opts ...Option) (interfaces.CatalogSource, error) {
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, goerr.Wrap(err, "invalid registry endpoint", goerr.V("endpoint", endpoint))
	}

	c := &client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		endpoint:   endpoint,
		pageLimit:  defaultPageLimit,
		maxPages:   defaultMaxPages,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Fetch downloads every page of the listing and joins them into one JSON array
func (c *client) Fetch(ctx context.Context) ([]byte, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse registry endpoint", goerr.V("endpoint", c.endpoint))
	}
	q := u.Query()
	q.Set("full", "true")
	q.Set("limit", strconv.Itoa(c.pageLimit))
	u.RawQuery = q.Encode()

	var buf bytes.Buffer
	buf.WriteByte('[')
	count := 0

	next := u.String()
	for page := 0; next != "" && page < c.maxPages; page++ {
		body, link, err := c.get(ctx, next)
		if err != nil {
			return nil, err
		}

		result := gjson.ParseBytes(body)
		if !result.IsArray() {
			return nil, goerr.New("registry returned non-array page",
				goerr.V("url", next),
				goerr.V("page", page))
		}
		result.ForEach(func(_, item gjson.Result) bool {
			if count > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(item.Raw)
			count++
			return true
		})

		next = parseNextLink(link)
	}

	if next != "" {
		ctxlog.From(ctx).Warn("Registry listing truncated at page limit",
			"pages", c.maxPages,
			"page_size", c.pageLimit,
			"datasets", count,
			"next", next,
		)
	}

	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func (c *client) get(ctx context.Context, target string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, "", goerr.Wrap(err, "failed to create registry request", goerr.V("url", target))
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", goerr.Wrap(err, "failed to request registry", goerr.V("url", target))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, "", goerr.New("unexpected registry status",
			goerr.V("url", target),
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(snippet)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", goerr.Wrap(err, "failed to read registry response", goerr.V("url", target))
	}

	return body, resp.Header.Get("Link"), nil
}

func parseNextLink(header string) string {
	m := nextLinkPattern.FindStringSubmatch(header)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}
