// Package backend provides the HTTP client for the decision-intel REST API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pulseboard/pulseboard/internal/models"
)

// TokenProvider returns the current bearer token, or "" when the caller is
// not authenticated. Injected explicitly so tests never need ambient state.
type TokenProvider func() string

// ClientConfig tunes retry and transport behavior.
type ClientConfig struct {
	MaxRetries     int
	RetryDelayBase time.Duration
	Token          TokenProvider
}

// Client provides access to the backend REST API.
type Client struct {
	apiURL         string
	httpClient     *http.Client
	token          TokenProvider
	maxRetries     int
	retryDelayBase time.Duration
}

// NewClient creates a backend API client.
func NewClient(apiURL string, timeout time.Duration, cfg ClientConfig) *Client {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelayBase <= 0 {
		cfg.RetryDelayBase = time.Second
	}
	if cfg.Token == nil {
		cfg.Token = func() string { return "" }
	}
	return &Client{
		apiURL:         strings.TrimRight(apiURL, "/"),
		httpClient:     &http.Client{Timeout: timeout},
		token:          cfg.Token,
		maxRetries:     cfg.MaxRetries,
		retryDelayBase: cfg.RetryDelayBase,
	}
}

// FetchDashboard retrieves the latest KPI tiles from GET /dashboard.
func (c *Client) FetchDashboard(ctx context.Context) ([]models.KPITile, error) {
	var tiles []models.KPITile
	if err := c.getJSON(ctx, "/dashboard", &tiles); err != nil {
		return nil, fmt.Errorf("failed to fetch dashboard: %w", err)
	}
	return tiles, nil
}

// FetchAlerts retrieves the most recent alerts from GET /alerts.
func (c *Client) FetchAlerts(ctx context.Context) ([]models.Alert, error) {
	var alerts []models.Alert
	if err := c.getJSON(ctx, "/alerts", &alerts); err != nil {
		return nil, fmt.Errorf("failed to fetch alerts: %w", err)
	}
	return alerts, nil
}

// FetchMarketData retrieves market-intelligence items from GET /market-data.
func (c *Client) FetchMarketData(ctx context.Context) ([]models.MarketData, error) {
	var items []models.MarketData
	if err := c.getJSON(ctx, "/market-data", &items); err != nil {
		return nil, fmt.Errorf("failed to fetch market data: %w", err)
	}
	return items, nil
}

// FetchEfficiency retrieves per-day efficiency records from GET /efficiency.
func (c *Client) FetchEfficiency(ctx context.Context) ([]models.EfficiencyMetric, error) {
	var records []models.EfficiencyMetric
	if err := c.getJSON(ctx, "/efficiency", &records); err != nil {
		return nil, fmt.Errorf("failed to fetch efficiency metrics: %w", err)
	}
	return records, nil
}

// FetchNews retrieves the news feed from GET /news.
func (c *Client) FetchNews(ctx context.Context) ([]models.NewsItem, error) {
	var items []models.NewsItem
	if err := c.getJSON(ctx, "/news", &items); err != nil {
		return nil, fmt.Errorf("failed to fetch news: %w", err)
	}
	return items, nil
}

// AskAI submits a free-form query to POST /ask-ai and returns the forecast
// and recommended actions.
func (c *Client) AskAI(ctx context.Context, req models.AskAIRequest) (*models.AskAIResponse, error) {
	var resp models.AskAIResponse
	if err := c.postJSON(ctx, "/ask-ai", req, &resp); err != nil {
		return nil, fmt.Errorf("failed to query AI: %w", err)
	}
	return &resp, nil
}

// Login performs the OAuth2 password-grant login (form-encoded) and returns
// the bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (*models.Token, error) {
	form := url.Values{}
	form.Set("username", email) // OAuth2 convention uses "username"
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/auth/login", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var token models.Token
	if err := c.do(req, &token); err != nil {
		return nil, fmt.Errorf("failed to log in: %w", err)
	}
	return &token, nil
}

// Register creates an account via POST /auth/register and returns the bearer
// token.
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.Token, error) {
	var token models.Token
	if err := c.postJSON(ctx, "/auth/register", req, &token); err != nil {
		return nil, fmt.Errorf("failed to register: %w", err)
	}
	return &token, nil
}

// CreateCompany submits the onboarding payload via POST /company.
func (c *Client) CreateCompany(ctx context.Context, company models.CompanyCreate) error {
	if err := c.postJSON(ctx, "/company", company, nil); err != nil {
		return fmt.Errorf("failed to create company: %w", err)
	}
	return nil
}

// IngestFile uploads a data file via multipart POST /ingest/file.
func (c *Client) IngestFile(ctx context.Context, filename string, content io.Reader) error {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return fmt.Errorf("failed to buffer upload: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/ingest/file", &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	if err := c.do(req, nil); err != nil {
		return fmt.Errorf("failed to ingest file: %w", err)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

// do executes a request with linear-backoff retry on transport errors and
// server-side failures. Non-2xx responses surface the response body text.
// GetBody is set by the request constructors for all buffered bodies, so
// retries replay the payload.
func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if t := c.token(); t != "" {
		req.Header.Set("Authorization", "Bearer "+t)
	}

	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		if i > 0 {
			time.Sleep(c.retryDelayBase * time.Duration(i))
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return fmt.Errorf("failed to rewind request body: %w", err)
				}
				req.Body = body
			}
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode >= 500 {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			lastErr = fmt.Errorf("server error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		}

		if out == nil {
			io.Copy(io.Discard, resp.Body) //nolint:errcheck
			resp.Body.Close()
			return nil
		}
		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}
