// Package metricsclient implements the EndpointSource adapter of
// SPEC_FULL.md §4.1: querying the Instana-style metrics backend named
// in §6 for slow HTTP endpoints and filtering the result against a
// latency threshold and the supported-technology allowlist.
package metricsclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/standardbeagle/perfguard/internal/model"
	"github.com/standardbeagle/perfguard/internal/perrors"
)

// Client is a model.MetricsClient backed by the Instana-style
// application-monitoring REST API, following the same
// *http.Client{Timeout: ...} shape the teacher's own server.Client uses.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	apiKey       string
	tickInterval time.Duration
	allowedTechs map[string]struct{}
}

// New builds a Client targeting https://{unit}-{tenant}.instana.io, per
// §6. apiKey is sent verbatim in the Authorization header (it is
// expected to already carry the "apiToken " prefix). allowedTechs
// restricts fetched endpoints to the supported-technology set.
func New(tenant, unit, apiKey string, tickInterval time.Duration, allowedTechs []string) *Client {
	techs := make(map[string]struct{}, len(allowedTechs))
	for _, t := range allowedTechs {
		techs[t] = struct{}{}
	}
	return &Client{
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		baseURL:      fmt.Sprintf("https://%s-%s.instana.io/api/application-monitoring", unit, tenant),
		apiKey:       apiKey,
		tickInterval: tickInterval,
		allowedTechs: techs,
	}
}

type metricDescriptor struct {
	Aggregation string `json:"aggregation"`
	Metric      string `json:"metric"`
}

type orderBy struct {
	By        string `json:"by"`
	Direction string `json:"direction"`
}

type timeFrame struct {
	To         int64 `json:"to"`
	WindowSize int64 `json:"windowSize"`
}

type endpointsRequest struct {
	ApplicationBoundaryScope string              `json:"applicationBoundaryScope"`
	ExcludeSynthetic         bool                `json:"excludeSynthetic"`
	EntityType               string              `json:"entityType"`
	Metrics                  []metricDescriptor  `json:"metrics"`
	Order                    orderBy             `json:"order"`
	TimeFrame                timeFrame           `json:"timeFrame"`
}

type endpointItem struct {
	Label        string   `json:"label"`
	Technologies []string `json:"technologies"`
	Metrics      struct {
		Latency struct {
			Mean float64 `json:"mean"`
		} `json:"latency"`
	} `json:"metrics"`
}

type endpointsResponse struct {
	Items []endpointItem `json:"items"`
}

// Fetch posts the fixed metrics query of §6 and returns one Endpoint
// per item that carries exactly one technologies entry.
func (c *Client) Fetch(ctx context.Context) ([]*model.Endpoint, error) {
	now := time.Now()
	reqBody := endpointsRequest{
		ApplicationBoundaryScope: "ALL",
		ExcludeSynthetic:         true,
		EntityType:               "HTTP",
		Metrics:                  []metricDescriptor{{Aggregation: "MEAN", Metric: "latency"}},
		Order:                    orderBy{By: "latency.mean", Direction: "DESC"},
		TimeFrame: timeFrame{
			To:         now.UnixMilli(),
			WindowSize: c.tickInterval.Milliseconds(),
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, perrors.NewConnectionError(c.baseURL, err)
	}

	url := c.baseURL + "/metrics/endpoints?fillTimeSeries=true"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, perrors.NewConnectionError(url, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, perrors.NewConnectionError(url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, perrors.NewConnectionError(url, fmt.Errorf("status %d: %s", resp.StatusCode, string(body)))
	}

	var parsed endpointsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, perrors.NewConnectionError(url, err)
	}

	endpoints := make([]*model.Endpoint, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if len(item.Technologies) != 1 {
			continue
		}
		endpoints = append(endpoints, &model.Endpoint{
			Label:      item.Label,
			Technology: item.Technologies[0],
			Latency:    item.Metrics.Latency.Mean,
		})
	}
	return endpoints, nil
}

// Filter retains endpoints whose latency meets thresholdMs and whose
// technology is in the supported-technology set this Client was built
// with.
func (c *Client) Filter(endpoints []*model.Endpoint, thresholdMs float64) []*model.Endpoint {
	out := make([]*model.Endpoint, 0, len(endpoints))
	for _, e := range endpoints {
		if e.Latency < thresholdMs {
			continue
		}
		if _, ok := c.allowedTechs[e.Technology]; !ok {
			continue
		}
		out = append(out, e)
	}
	return out
}
