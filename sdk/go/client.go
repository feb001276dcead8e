// Package lifecurvesdk is a typed HTTP client for the Lifecurve API.
package lifecurvesdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a minimal Lifecurve HTTP API client.
type Client struct {
	BaseURL     string
	BearerToken string
	HTTPClient  *http.Client
	Timeout     time.Duration
}

// New creates a client with sane defaults.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		Timeout: 10 * time.Second,
	}
}

// Token is an auth response.
type Token struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// Validation is a parameter check result.
type Validation struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

// Curve is a sampled function. Y entries are nil where the function is
// unbounded (the pdf and hazard at x=0 for shape < 1).
type Curve struct {
	Type string     `json:"type"`
	X    []float64  `json:"x"`
	Y    []*float64 `json:"y"`
}

// Fit is an estimated parameter pair.
type Fit struct {
	Shape  float64 `json:"shape"`
	Scale  float64 `json:"scale"`
	Method string  `json:"method"`
}

// SampleSummary describes the lifetimes a fit consumed.
type SampleSummary struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean_years"`
	Min   float64 `json:"min_years"`
	Max   float64 `json:"max_years"`
}

// MLEFit is a data fit with its sample summary.
type MLEFit struct {
	Fit
	Sample SampleSummary `json:"sample"`
}

// SavedCurve is a stored named curve.
type SavedCurve struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Shape       float64 `json:"shape"`
	Scale       float64 `json:"scale"`
	Method      string  `json:"method"`
	CreatedAt   string  `json:"created_at"`
}

// APIError wraps non-2xx responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d body=%s", e.StatusCode, e.Body)
}

// Register creates an account and stores the returned token on the client.
func (c *Client) Register(ctx context.Context, email, password string) (Token, error) {
	var resp Token
	err := c.do(ctx, http.MethodPost, "v0/auth/register", map[string]any{
		"email":    email,
		"password": password,
	}, &resp)
	if err == nil {
		c.BearerToken = resp.Token
	}
	return resp, err
}

// Login exchanges credentials for a token and stores it on the client.
func (c *Client) Login(ctx context.Context, email, password string) (Token, error) {
	var resp Token
	err := c.do(ctx, http.MethodPost, "v0/auth/login", map[string]any{
		"email":    email,
		"password": password,
	}, &resp)
	if err == nil {
		c.BearerToken = resp.Token
	}
	return resp, err
}

// ValidateParameters checks a shape/scale pair.
func (c *Client) ValidateParameters(ctx context.Context, shape, scale float64) (Validation, error) {
	var resp Validation
	err := c.do(ctx, http.MethodPost, "v0/validate", map[string]any{
		"shape": shape,
		"scale": scale,
	}, &resp)
	return resp, err
}

// GenerateCurve samples a curve over its display domain. curveType and
// numPoints may be zero values to use server defaults.
func (c *Client) GenerateCurve(ctx context.Context, shape, scale float64, curveType string, numPoints int) (Curve, error) {
	body := map[string]any{"shape": shape, "scale": scale}
	if curveType != "" {
		body["curve_type"] = curveType
	}
	if numPoints > 0 {
		body["num_points"] = numPoints
	}
	var resp Curve
	err := c.do(ctx, http.MethodPost, "v0/curves/generate", body, &resp)
	return resp, err
}

// FitPoints fits parameters to three failure ages.
func (c *Client) FitPoints(ctx context.Context, ages [3]float64) (Fit, error) {
	var resp Fit
	err := c.do(ctx, http.MethodPost, "v0/fit/points", map[string]any{
		"ages": ages[:],
	}, &resp)
	return resp, err
}

// FitMLE fits parameters to observed lifetimes.
func (c *Client) FitMLE(ctx context.Context, lifetimes []float64) (MLEFit, error) {
	var resp MLEFit
	err := c.do(ctx, http.MethodPost, "v0/fit/mle", map[string]any{
		"lifetimes": lifetimes,
	}, &resp)
	return resp, err
}

// Guided maps questionnaire answers to starting parameters.
func (c *Client) Guided(ctx context.Context, pattern string, predictable, defects, lateLife bool, averageLife float64) (Fit, error) {
	var resp Fit
	err := c.do(ctx, http.MethodPost, "v0/guided", map[string]any{
		"pattern":      pattern,
		"predictable":  predictable,
		"defects":      defects,
		"late_life":    lateLife,
		"average_life": averageLife,
	}, &resp)
	return resp, err
}

// SaveCurve stores a named curve for the authenticated user.
func (c *Client) SaveCurve(ctx context.Context, name, description string, shape, scale float64, method string) (SavedCurve, error) {
	var resp SavedCurve
	err := c.do(ctx, http.MethodPost, "v0/curves", map[string]any{
		"name":        name,
		"description": description,
		"shape":       shape,
		"scale":       scale,
		"method":      method,
	}, &resp)
	return resp, err
}

// ListCurves returns the authenticated user's curves, newest first.
func (c *Client) ListCurves(ctx context.Context) ([]SavedCurve, error) {
	var resp []SavedCurve
	err := c.do(ctx, http.MethodGet, "v0/curves", nil, &resp)
	return resp, err
}

// GetCurve returns one saved curve by name.
func (c *Client) GetCurve(ctx context.Context, name string) (SavedCurve, error) {
	var resp SavedCurve
	err := c.do(ctx, http.MethodGet, "v0/curves/"+url.PathEscape(name), nil, &resp)
	return resp, err
}

// DeleteCurve removes a saved curve.
func (c *Client) DeleteCurve(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, "v0/curves/"+url.PathEscape(name), nil, nil)
}

// ExportCurve downloads a saved curve as CSV or xlsx bytes.
func (c *Client) ExportCurve(ctx context.Context, name, kind, format string) ([]byte, error) {
	endpoint := fmt.Sprintf("v0/curves/%s/export?kind=%s&format=%s",
		url.PathEscape(name), url.QueryEscape(kind), url.QueryEscape(format))
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base()+"/"+endpoint, nil)
	if err != nil {
		return nil, err
	}
	if c.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.BearerToken)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(data)}
	}
	return data, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	url := c.base() + "/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.BearerToken)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(b)}
	}
	if out != nil && resp.StatusCode != http.StatusNoContent {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) base() string {
	return strings.TrimRight(c.BaseURL, "/")
}
