package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/llmcalc/llmcalc/calc"
)

// Client wraps HTTP calls to a calculation service. It satisfies
// calc.Calculator, referencing hardware and models by their catalog ids.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client targeting the given base URL
// (e.g. "http://localhost:8080").
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Utilization submits POST /api/v1/calculations.
func (c *Client) Utilization(ctx context.Context, in calc.CalculationInput, hw calc.Hardware, m calc.Model) (*calc.CalculationResult, error) {
	req := CalculationRequest{HardwareID: hw.ID, ModelID: m.ID, Input: in}
	var res calc.CalculationResult
	if err := c.doPost(ctx, "/api/v1/calculations", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Concurrency submits POST /api/v1/concurrency.
func (c *Client) Concurrency(ctx context.Context, in calc.ConcurrencyInput, hw calc.Hardware, m calc.Model) (*calc.ConcurrencyResult, error) {
	req := ConcurrencyRequest{HardwareID: hw.ID, ModelID: m.ID, Input: in}
	var res calc.ConcurrencyResult
	if err := c.doPost(ctx, "/api/v1/concurrency", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ListHardware fetches GET /api/v1/hardware.
func (c *Client) ListHardware(ctx context.Context) ([]calc.Hardware, error) {
	var records []calc.Hardware
	if err := c.doGet(ctx, "/api/v1/hardware", &records); err != nil {
		return nil, err
	}
	return records, nil
}

// ListModels fetches GET /api/v1/models.
func (c *Client) ListModels(ctx context.Context) ([]calc.Model, error) {
	var records []calc.Model
	if err := c.doGet(ctx, "/api/v1/models", &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Client) doPost(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.readError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) doGet(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.readError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) readError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	var apiErr ErrorResponse
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
		return fmt.Errorf("API error %d: %s", resp.StatusCode, apiErr.Error)
	}
	return fmt.Errorf("API error %d: %s", resp.StatusCode, string(body))
}
