// Package remote submits customers to the optional customer service. The
// service is never authoritative: local state is final whatever it answers.
package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// CustomerPayload is the body of a submit request.
type CustomerPayload struct {
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	CompanyName string `json:"companyName"`
}

// Result is the service's answer for one customer.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Options configures a Client.
type Options struct {
	// Endpoint receives POSTed CustomerPayload documents.
	Endpoint string
	// TokenURL, ClientID and ClientSecret enable the OAuth2 client
	// credentials grant. Leave ClientID empty for an unauthenticated service.
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string
	// Timeout bounds each request. Zero means no timeout.
	Timeout time.Duration
	// HTTPClient overrides the base transport, mainly for tests.
	HTTPClient *http.Client
}

// Client is an HTTP client for the customer service.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a Client from opts.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	if opts.Endpoint == "" {
		return nil, fmt.Errorf("remote endpoint is not configured")
	}
	base := opts.HTTPClient
	if base == nil {
		base = &http.Client{}
	}
	httpClient := base
	if opts.ClientID != "" {
		cfg := &clientcredentials.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			TokenURL:     opts.TokenURL,
			Scopes:       opts.Scopes,
			AuthStyle:    oauth2.AuthStyleInParams,
		}
		// Token requests go through the same base client.
		ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
		httpClient = cfg.Client(ctx)
	}
	if opts.Timeout > 0 {
		c := *httpClient
		c.Timeout = opts.Timeout
		httpClient = &c
	}
	return &Client{endpoint: opts.Endpoint, httpClient: httpClient}, nil
}

// SubmitCustomer posts one customer. Transport failures and non-2xx
// responses are returned as errors; a decoded answer is returned as Result.
func (c *Client) SubmitCustomer(ctx context.Context, p CustomerPayload) (Result, error) {
	body, err := sonic.Marshal(p)
	if err != nil {
		return Result{}, fmt.Errorf("encoding customer: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("customer service request failed: %w", err)
	}
	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return Result{}, fmt.Errorf("reading response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, fmt.Errorf("customer service error %d: %s", resp.StatusCode, bytes.TrimSpace(data))
	}

	var res Result
	if err := sonic.Unmarshal(data, &res); err != nil {
		return Result{}, fmt.Errorf("decoding customer service response: %w", err)
	}
	return res, nil
}
