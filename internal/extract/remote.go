package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// remoteExtractor calls a managed document-processing HTTP service: the
// file bytes go up, plain text and a confidence score come back.
type remoteConfig struct {
	Endpoint string `json:"endpoint"`
	APIKey   string `json:"api_key"`
	Timeout  int    `json:"timeout"`
}

type remoteExtractor struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

type remoteResponse struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

func init() {
	Register("remote", createRemoteExtractor)
}

func createRemoteExtractor(args interface{}) (Extractor, error) {
	cfg := &remoteConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("remote extractor endpoint is required")
	}
	timeout := 60 * time.Second
	if cfg.Timeout > 0 {
		timeout = time.Duration(cfg.Timeout) * time.Second
	}
	return &remoteExtractor{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:   cfg.APIKey,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

func (e *remoteExtractor) Extract(ctx context.Context, r io.Reader, mimeType string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint+"/v1/extract", r)
	if err != nil {
		return nil, err
	}
	if mimeType != "" {
		req.Header.Set("Content-Type", mimeType)
	}
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("extract request failed: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	var out remoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.Text) == "" {
		return nil, fmt.Errorf("extractor returned empty text")
	}
	return &Result{Text: out.Text, Confidence: out.Confidence}, nil
}
