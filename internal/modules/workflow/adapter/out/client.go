package out

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"habitwatch/internal/modules/workflow/domain"
	workflowout "habitwatch/internal/modules/workflow/port/out"
	"habitwatch/internal/platform/clock"
)

const defaultBaseURL = "https://detect.roboflow.com"

// Client submits frames to a hosted workflow run endpoint.
type Client struct {
	http      *http.Client
	clock     clock.Clock
	baseURL   string
	apiKey    string
	workspace string
	workflow  string
}

type ClientOption func(*Client)

func WithBaseURL(url string) ClientOption {
	return func(c *Client) { c.baseURL = url }
}

func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.http = h }
}

func NewClient(apiKey, workspace, workflow string, clk clock.Clock, opts ...ClientOption) workflowout.Inferencer {
	c := &Client{
		http:      &http.Client{Timeout: 30 * time.Second},
		clock:     clk,
		baseURL:   defaultBaseURL,
		apiKey:    apiKey,
		workspace: workspace,
		workflow:  workflow,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type inferRequest struct {
	APIKey string      `json:"api_key"`
	Inputs inferInputs `json:"inputs"`
}

type inferInputs struct {
	Image inferImage `json:"image"`
}

type inferImage struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Infer posts one JPEG frame and decodes the workflow's classification.
func (c *Client) Infer(ctx context.Context, frame []byte) (domain.Result, error) {
	body, err := json.Marshal(inferRequest{
		APIKey: c.apiKey,
		Inputs: inferInputs{Image: inferImage{
			Type:  "base64",
			Value: base64.StdEncoding.EncodeToString(frame),
		}},
	})
	if err != nil {
		return domain.Result{}, fmt.Errorf("encode workflow request: %w", err)
	}

	url := fmt.Sprintf("%s/infer/workflows/%s/%s", c.baseURL, c.workspace, c.workflow)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return domain.Result{}, fmt.Errorf("build workflow request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Result{}, fmt.Errorf("call workflow: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return domain.Result{}, fmt.Errorf("read workflow response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return domain.Result{}, fmt.Errorf("workflow returned %s: %s", resp.Status, truncate(data, 200))
	}
	return domain.DecodeResult(data, c.clock.Now())
}

func truncate(data []byte, n int) string {
	if len(data) > n {
		data = data[:n]
	}
	return string(data)
}
