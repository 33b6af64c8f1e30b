package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/covidtimeseries/metadata/internal/pkg/logger"
	"github.com/covidtimeseries/metadata/internal/pkg/metrics"
)

const (
	// DefaultEndpoint is the Aristotle registry's GraphQL JSON endpoint
	DefaultEndpoint = "https://registry.aristotlemetadata.com/api/graphql/json"
	// DefaultTimeout bounds a single registry round trip
	DefaultTimeout = 15 * time.Second

	// maxErrorBody caps how much of a non-2xx body is kept on a StatusError
	maxErrorBody = 512
)

// Config holds the configuration for the registry client.
type Config struct {
	// Endpoint is the GraphQL endpoint URL. Defaults to DefaultEndpoint.
	Endpoint string

	// Timeout is the request timeout. Defaults to 15 seconds.
	// Ignored when HTTPClient is set.
	Timeout time.Duration

	// UserAgent is sent with every request when set.
	UserAgent string

	// HTTPClient overrides the underlying HTTP client.
	HTTPClient *http.Client

	// Logger receives debug output for each round trip. Defaults to the
	// package logger.
	Logger *zap.Logger
}

// Client queries the metadata registry. It is safe for concurrent use.
type Client struct {
	endpoint   string
	userAgent  string
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a registry client. It fails if any of the built-in query
// documents does not validate against the registry schema.
func New(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Log
	}

	schema, err := LoadSchema()
	if err != nil {
		return nil, err
	}
	for _, doc := range documents {
		if err := validateDocument(schema, doc); err != nil {
			return nil, err
		}
	}

	return &Client{
		endpoint:   cfg.Endpoint,
		userAgent:  cfg.UserAgent,
		httpClient: cfg.HTTPClient,
		logger:     cfg.Logger,
	}, nil
}

// Endpoint returns the URL queries are posted to
func (c *Client) Endpoint() string {
	return c.endpoint
}

// graphqlRequest is the JSON body posted to the registry
type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// Execute posts query and variables to the registry and returns the decoded
// payload. Transport failures, non-2xx statuses and undecodable bodies are
// returned as errors; GraphQL errors inside a 2xx payload are not.
func (c *Client) Execute(ctx context.Context, query string, variables map[string]any) (*Response, error) {
	return c.execute(ctx, "execute", query, variables)
}

func (c *Client) execute(ctx context.Context, operation, query string, variables map[string]any) (*Response, error) {
	if variables == nil {
		variables = map[string]any{}
	}
	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordRegistryRequest(operation, metrics.OutcomeTransportError, time.Since(start))
		c.logger.Debug("registry request failed",
			zap.String("operation", operation),
			zap.Error(err),
		)
		return nil, fmt.Errorf("post %s: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		metrics.RecordRegistryRequest(operation, metrics.OutcomeStatusError, time.Since(start))
		c.logger.Debug("registry returned non-2xx",
			zap.String("operation", operation),
			zap.Int("status", resp.StatusCode),
		)
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(excerpt))}
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		metrics.RecordRegistryRequest(operation, metrics.OutcomeDecodeError, time.Since(start))
		return nil, fmt.Errorf("decode %s response: %w", operation, err)
	}

	elapsed := time.Since(start)
	metrics.RecordRegistryRequest(operation, metrics.OutcomeOK, elapsed)
	c.logger.Debug("registry request completed",
		zap.String("operation", operation),
		zap.Duration("latency", elapsed),
		zap.Int("errors", len(out.Errors)),
	)
	return &out, nil
}
