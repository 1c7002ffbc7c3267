// Package modelclient implements the generative-model transport named
// in SPEC_FULL.md §6 (reference implementation Ollama): a single
// request/response JSON contract shared by the Classifier's prompt
// variant and the Regenerator (§4.3, §4.4).
package modelclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/standardbeagle/perfguard/internal/perrors"
)

// Client is a model.ModelClient backed by Ollama's HTTP API. It is
// bound to a single model name at construction, matching the
// model.ModelClient contract's single-argument Send.
type Client struct {
	httpClient *http.Client
	baseURL    string
	model      string
}

// New builds a Client targeting baseURL (e.g. "http://localhost:11434")
// and bound to the named model for every Send call.
func New(baseURL, model string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		baseURL:    baseURL,
		model:      model,
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Send posts prompt to /api/generate with stream disabled and returns
// the response field. A transport failure surfaces as
// perrors.ConnectionError; a non-200 status or a payload missing a
// usable response field surfaces as perrors.InvalidResponseError
// (§7 "missing response key").
func (c *Client) Send(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(generateRequest{Model: c.model, Prompt: prompt, Stream: false})
	if err != nil {
		return "", perrors.NewInvalidResponseError(err)
	}

	url := c.baseURL + "/api/generate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", perrors.NewInvalidResponseError(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", perrors.NewConnectionError(url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", perrors.NewInvalidResponseError(fmt.Errorf("status %d from %s", resp.StatusCode, url))
	}

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", perrors.NewInvalidResponseError(err)
	}
	if parsed.Response == "" {
		return "", perrors.NewInvalidResponseError(fmt.Errorf("missing response field"))
	}
	return parsed.Response, nil
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// Available probes GET /api/tags and reports whether model appears in
// the list of locally available models.
func (c *Client) Available(ctx context.Context, model string) (bool, error) {
	url := c.baseURL + "/api/tags"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, perrors.NewConnectionError(url, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, perrors.NewConnectionError(url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, perrors.NewConnectionError(url, fmt.Errorf("status %d", resp.StatusCode))
	}

	var parsed tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return false, perrors.NewConnectionError(url, err)
	}

	for _, m := range parsed.Models {
		if m.Name == model {
			return true, nil
		}
	}
	return false, nil
}
