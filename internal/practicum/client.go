// Package practicum implements the client for the homework statuses API.
package practicum

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"homework_bot/internal/domain"
)

// DefaultEndpoint is the production homework statuses URL.
const DefaultEndpoint = "https://practicum.yandex.ru/api/user_api/homework_statuses/"

const (
	defaultTimeout = 30 * time.Second

	// maxBodySize caps how much of a response is read; the status API returns
	// a few records at most.
	maxBodySize = 1 << 20
)

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Statuses is a validated homework statuses response. Homework records stay
// raw; only the first one is interpreted per poll.
type Statuses struct {
	CurrentDate int64
	Homeworks   []json.RawMessage
}

// Client fetches homework status updates.
type Client struct {
	httpc    HTTPClient
	endpoint string
	token    string
	timeout  time.Duration
}

// New creates a Client authorized by the given API token. A non-positive
// timeout falls back to the 30-second default.
func New(httpc HTTPClient, endpoint, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpc:    httpc,
		endpoint: endpoint,
		token:    token,
		timeout:  timeout,
	}
}

// HomeworkStatuses requests homework updates since the given Unix timestamp
// and returns the validated response.
func (c *Client) HomeworkStatuses(ctx context.Context, from int64) (*Statuses, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, domain.Errorf(domain.KindTransport, "create request: %w", err)
	}
	req.Header.Set("Authorization", "OAuth "+c.token)
	q := req.URL.Query()
	q.Set("from_date", strconv.FormatInt(from, 10))
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, domain.Errorf(domain.KindTransport, "request to %s: %w", c.endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, domain.Errorf(domain.KindTransport, "read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, domain.Errorf(domain.KindStatusCode,
			"request to %s returned status %d (from_date=%d): %s",
			c.endpoint, resp.StatusCode, from, body)
	}

	return ParseStatuses(body)
}

// ParseStatuses decodes a response body and checks it against the documented
// schema: a JSON object carrying both the current_date integer and a
// non-empty homeworks list.
func ParseStatuses(data []byte) (*Statuses, error) {
	var wire struct {
		CurrentDate json.RawMessage `json:"current_date"`
		Homeworks   json.RawMessage `json:"homeworks"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, domain.Errorf(domain.KindShape, "response is not a JSON object: %w", err)
		}
		return nil, domain.Errorf(domain.KindDecode, "response is not valid JSON: %w", err)
	}

	// A whole-body null decodes into the wire struct as a no-op, so it has
	// to be rejected before it reads as a pair of missing keys.
	if string(bytes.TrimSpace(data)) == "null" {
		return nil, domain.Errorf(domain.KindShape, "response is not a JSON object")
	}

	if wire.CurrentDate == nil || wire.Homeworks == nil {
		return nil, domain.Errorf(domain.KindMissingKey,
			"response is missing the %s", missingKeys(wire.CurrentDate == nil, wire.Homeworks == nil))
	}

	var out Statuses
	if err := json.Unmarshal(wire.CurrentDate, &out.CurrentDate); err != nil {
		return nil, domain.Errorf(domain.KindShape, "current_date is not an integer: %w", err)
	}
	if err := json.Unmarshal(wire.Homeworks, &out.Homeworks); err != nil {
		return nil, domain.Errorf(domain.KindShape, "homeworks is not a list: %w", err)
	}
	if len(out.Homeworks) == 0 {
		return nil, domain.Errorf(domain.KindEmptyResult, "homeworks list is empty")
	}
	return &out, nil
}

func missingKeys(currentDate, homeworks bool) string {
	switch {
	case currentDate && homeworks:
		return "current_date and homeworks keys"
	case currentDate:
		return "current_date key"
	default:
		return "homeworks key"
	}
}
