// Package sanity queries a Sanity dataset over the HTTP query API and maps
// the results onto content documents.
package sanity

//go:generate mockgen -source=client.go -destination=mocks/mocks.go -package=mocks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ErrUnexpectedStatus is wrapped by every *APIError.
var ErrUnexpectedStatus = errors.New("sanity: unexpected status")

// APIError is a non-2xx response from the query API.
type APIError struct {
	StatusCode  int
	Description string
}

func (e *APIError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("sanity: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("sanity: unexpected status %d: %s", e.StatusCode, e.Description)
}

func (e *APIError) Unwrap() error { return ErrUnexpectedStatus }

// Params are bound query parameters. Each key is sent as $key.
type Params map[string]any

// Querier runs a GROQ query. The returned message is the raw "result" member
// of the response and is the JSON literal null when nothing matched.
type Querier interface {
	Fetch(ctx context.Context, query string, params Params) (json.RawMessage, error)
}

// Perspectives understood by the query API.
const (
	PerspectivePublished = "published"
	PerspectiveDrafts    = "drafts"
	PerspectiveRaw       = "raw"
)

// maxGETQuerySize mirrors the official client: longer requests are sent as POST.
const maxGETQuerySize = 11264

// Config holds Sanity client configuration.
type Config struct {
	ProjectID   string
	Dataset     string
	APIVersion  string
	Token       string
	UseCDN      bool
	Perspective string
	Timeout     time.Duration
	// BaseURL overrides the project host, e.g. for tests.
	BaseURL string
}

// Client implements Querier against the HTTP query endpoint.
type Client struct {
	httpClient  *http.Client
	endpoint    string
	token       string
	perspective string
	logger      zerolog.Logger
}

// New creates a Client. ProjectID is required unless BaseURL is set.
func New(cfg Config, logger zerolog.Logger) (*Client, error) {
	if cfg.ProjectID == "" && cfg.BaseURL == "" {
		return nil, errors.New("sanity: project id is required")
	}
	if cfg.Dataset == "" {
		cfg.Dataset = "production"
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = "2025-01-01"
	}
	if cfg.Perspective == "" {
		cfg.Perspective = PerspectivePublished
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	base := cfg.BaseURL
	if base == "" {
		host := "api.sanity.io"
		// Authenticated and draft reads always go to the live API.
		if cfg.UseCDN && cfg.Token == "" && cfg.Perspective == PerspectivePublished {
			host = "apicdn.sanity.io"
		}
		base = "https://" + cfg.ProjectID + "." + host
	}
	version := strings.TrimPrefix(cfg.APIVersion, "v")

	return &Client{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		endpoint:    strings.TrimRight(base, "/") + "/v" + version + "/data/query/" + url.PathEscape(cfg.Dataset),
		token:       cfg.Token,
		perspective: cfg.Perspective,
		logger:      logger.With().Str("component", "sanity").Logger(),
	}, nil
}

type queryResponse struct {
	Ms     int             `json:"ms"`
	Result json.RawMessage `json:"result"`
}

// Fetch runs query with params bound as GROQ parameters.
func (c *Client) Fetch(ctx context.Context, query string, params Params) (json.RawMessage, error) {
	values := url.Values{}
	values.Set("query", query)
	values.Set("perspective", c.perspective)
	for k, v := range params {
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode param %s: %w", k, err)
		}
		values.Set("$"+k, string(encoded))
	}

	var req *http.Request
	var err error
	if qs := values.Encode(); len(qs) <= maxGETQuerySize {
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+qs, nil)
	} else {
		req, err = c.newPostRequest(ctx, query, params)
	}
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeAPIError(resp)
	}

	var qr queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&qr); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	c.logger.Debug().
		Int("server_ms", qr.Ms).
		Dur("latency", time.Since(start)).
		Int("params", len(params)).
		Msg("query")

	if len(qr.Result) == 0 {
		return json.RawMessage("null"), nil
	}
	return qr.Result, nil
}

func (c *Client) newPostRequest(ctx context.Context, query string, params Params) (*http.Request, error) {
	body, err := json.Marshal(struct {
		Query  string `json:"query"`
		Params Params `json:"params,omitempty"`
	}{query, params})
	if err != nil {
		return nil, err
	}
	u := c.endpoint + "?perspective=" + url.QueryEscape(c.perspective)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// decodeAPIError reads both error shapes the API returns:
// {"error":{"description":"..."}} and {"error":"...","message":"..."}.
func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var body struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if json.Unmarshal(data, &body) != nil {
		return apiErr
	}
	var nested struct {
		Description string `json:"description"`
	}
	var flat string
	switch {
	case json.Unmarshal(body.Error, &nested) == nil && nested.Description != "":
		apiErr.Description = nested.Description
	case body.Message != "":
		apiErr.Description = body.Message
	case json.Unmarshal(body.Error, &flat) == nil:
		apiErr.Description = flat
	}
	return apiErr
}
