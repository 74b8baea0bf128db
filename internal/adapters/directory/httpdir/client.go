package httpdir

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"lifetag-access/internal/platform/httpclient"
	"lifetag-access/internal/ports/directory"
)

var ErrNotConfigured = errors.New("directory client not configured")

// Config del cliente del directorio externo de doctores/pacientes.
type Config struct {
	BaseURL string
	APIKey  string

	// Opcional: header de la API key. Default "X-Api-Key".
	APIKeyHeader string

	Timeout time.Duration
}

// Client implementa directory.Directory contra el servicio de directorio.
type Client struct {
	http         *httpclient.Client
	apiKey       string
	apiKeyHeader string
}

func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, ErrNotConfigured
	}

	hc, err := httpclient.NewWithBaseURL(cfg.BaseURL, cfg.Timeout)
	if err != nil {
		return nil, err
	}

	header := strings.TrimSpace(cfg.APIKeyHeader)
	if header == "" {
		header = "X-Api-Key"
	}

	return &Client{
		http:         hc,
		apiKey:       strings.TrimSpace(cfg.APIKey),
		apiKeyHeader: header,
	}, nil
}

type personResponse struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Blocked  bool   `json:"is_blocked"`
}

func (c *Client) Doctor(ctx context.Context, id string) (directory.Person, error) {
	return c.fetch(ctx, "/doctors/"+strings.TrimSpace(id))
}

func (c *Client) Patient(ctx context.Context, id string) (directory.Person, error) {
	return c.fetch(ctx, "/patients/"+strings.TrimSpace(id))
}

func (c *Client) fetch(ctx context.Context, path string) (directory.Person, error) {
	headers := map[string]string{}
	if c.apiKey != "" {
		headers[c.apiKeyHeader] = c.apiKey
	}

	var resp personResponse
	if err := c.http.DoJSON(ctx, http.MethodGet, path, headers, nil, &resp); err != nil {
		var httpErr *httpclient.HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound {
			return directory.Person{}, directory.ErrNotFound
		}
		return directory.Person{}, fmt.Errorf("directory fetch: %w", err)
	}

	if strings.TrimSpace(resp.ID) == "" {
		return directory.Person{}, directory.ErrNotFound
	}

	return directory.Person{
		ID:       resp.ID,
		FullName: resp.FullName,
		Blocked:  resp.Blocked,
	}, nil
}
