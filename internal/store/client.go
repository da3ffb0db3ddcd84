// Package store talks to the remote content store. The REST client and the
// in-memory store both satisfy interfaces.RemoteStore and always hand back
// canonical records.
package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	urlkit "github.com/goliatone/go-urlkit"
	"golang.org/x/time/rate"

	"github.com/goliatone/go-cms-bulkload/internal/logging"
	"github.com/goliatone/go-cms-bulkload/pkg/interfaces"
)

const (
	routeGroup      = "cms"
	collectionRoute = "collection"
	defaultPrefix   = "/api"
)

// Config configures the REST client.
type Config struct {
	BaseURL string
	Token   string
	// APIPrefix is prepended to every collection path. Defaults to /api.
	APIPrefix string
	// Endpoints maps a logical collection name to its remote path segment
	// when the two differ.
	Endpoints map[string]string
	// Timeout bounds each request. Zero keeps the transport default.
	Timeout time.Duration
	// RateLimit caps requests per second. Zero disables limiting.
	RateLimit  float64
	HTTPClient *http.Client
}

// Client is the REST implementation of interfaces.RemoteStore.
type Client struct {
	token     string
	mapped    map[string]bool
	routes    *urlkit.Group
	http      *http.Client
	limiter   *rate.Limiter
	logger    interfaces.Logger
}

var _ interfaces.RemoteStore = (*Client)(nil)

// NewClient validates cfg and builds a client.
func NewClient(cfg Config, logger interfaces.Logger) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, ErrBaseURLRequired
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("store: invalid base url %q: %w", cfg.BaseURL, err)
	}

	prefix := "/" + strings.Trim(strings.TrimSpace(cfg.APIPrefix), "/")
	if prefix == "/" {
		prefix = defaultPrefix
	}
	paths := map[string]string{collectionRoute: prefix + "/:collection"}
	mapped := map[string]bool{}
	for name, path := range cfg.Endpoints {
		name, path = strings.TrimSpace(name), strings.Trim(strings.TrimSpace(path), "/")
		if name == "" || path == "" {
			continue
		}
		paths[endpointRoute(name)] = prefix + "/" + path
		mapped[name] = true
	}
	manager := urlkit.NewRouteManager(&urlkit.Config{
		Groups: []urlkit.GroupConfig{
			{Name: routeGroup, BaseURL: base, Paths: paths},
		},
	})
	group, err := lookupGroup(manager, routeGroup)
	if err != nil {
		return nil, err
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	client := &Client{
		token:     strings.TrimSpace(cfg.Token),
		mapped:    mapped,
		routes:    group,
		http:      httpClient,
		logger:    logging.Ensure(logger),
	}
	if cfg.RateLimit > 0 {
		client.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}
	return client, nil
}

// List runs a filtered, paginated listing.
func (c *Client) List(ctx context.Context, collection string, opts interfaces.ListOptions) (*interfaces.RecordPage, error) {
	endpoint, err := c.buildURL(collection, "")
	if err != nil {
		return nil, err
	}
	query := url.Values{}
	for field, value := range opts.Filters {
		query.Set(fmt.Sprintf("filters[%s][$eq]", field), value)
	}
	if opts.Page > 0 {
		query.Set("pagination[page]", strconv.Itoa(opts.Page))
	}
	if opts.PageSize > 0 {
		query.Set("pagination[pageSize]", strconv.Itoa(opts.PageSize))
	}
	if encoded := query.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	body, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	page, err := decodeList(body)
	if err != nil {
		return nil, &RemoteError{Method: http.MethodGet, URL: endpoint, Err: err}
	}
	if page.Page == 0 {
		page.Page = max(opts.Page, 1)
	}
	return page, nil
}

// Create posts data wrapped in a {"data": ...} envelope.
func (c *Client) Create(ctx context.Context, collection string, data any) (*interfaces.Record, error) {
	endpoint, err := c.buildURL(collection, "")
	if err != nil {
		return nil, err
	}
	return c.write(ctx, http.MethodPost, endpoint, data)
}

// Update replaces the document addressed by id.
func (c *Client) Update(ctx context.Context, collection, id string, data any) (*interfaces.Record, error) {
	if strings.TrimSpace(id) == "" {
		return nil, &RemoteError{Method: http.MethodPut, Err: ErrMissingIdentifier}
	}
	endpoint, err := c.buildURL(collection, id)
	if err != nil {
		return nil, err
	}
	return c.write(ctx, http.MethodPut, endpoint, data)
}

func (c *Client) write(ctx context.Context, method, endpoint string, data any) (*interfaces.Record, error) {
	payload, err := json.Marshal(map[string]any{"data": data})
	if err != nil {
		return nil, &RemoteError{Method: method, URL: endpoint, Err: fmt.Errorf("encode payload: %w", err)}
	}
	body, err := c.do(ctx, method, endpoint, payload)
	if err != nil {
		return nil, err
	}
	record, err := decodeSingle(body)
	if err != nil {
		return nil, &RemoteError{Method: method, URL: endpoint, Err: err}
	}
	return record, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload []byte) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &RemoteError{Method: method, URL: endpoint, Err: err}
		}
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, &RemoteError{Method: method, URL: endpoint, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("bulkload.store.request.failed", "method", method, "url", endpoint, "error", err)
		return nil, &RemoteError{Method: method, URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RemoteError{Method: method, URL: endpoint, StatusCode: resp.StatusCode, Err: err}
	}
	c.logger.Debug("bulkload.store.request",
		"method", method,
		"url", endpoint,
		"status", resp.StatusCode,
		"duration_ms", time.Since(started).Milliseconds(),
	)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RemoteError{Method: method, URL: endpoint, StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

// buildURL resolves the collection endpoint and appends id, when given, as a
// single escaped path segment.
func (c *Client) buildURL(collection, id string) (string, error) {
	collection = strings.TrimSpace(collection)
	var builder *urlkit.Builder
	if c.mapped[collection] {
		builder = c.routes.Builder(endpointRoute(collection))
	} else {
		builder = c.routes.Builder(collectionRoute).WithParam("collection", collection)
	}
	built, err := builder.Build()
	if err != nil {
		return "", fmt.Errorf("store: endpoint for %q: %w", collection, err)
	}
	if id == "" {
		return built, nil
	}

	u, err := url.Parse(built)
	if err != nil {
		return "", fmt.Errorf("store: endpoint for %q: %w", collection, err)
	}
	escaped := strings.TrimRight(u.EscapedPath(), "/")
	u.Path = strings.TrimRight(u.Path, "/") + "/" + id
	u.RawPath = escaped + "/" + url.PathEscape(id)
	return u.String(), nil
}

func endpointRoute(collection string) string {
	return collectionRoute + "." + collection
}

func lookupGroup(manager *urlkit.RouteManager, name string) (group *urlkit.Group, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("store: route group %q not found", name)
		}
	}()
	return manager.Group(name), nil
}
