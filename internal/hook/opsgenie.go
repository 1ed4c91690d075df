package hook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/alertops/opsgenie/internal/config"
	"github.com/alertops/opsgenie/internal/types"
	"github.com/alertops/opsgenie/internal/version"
	"github.com/rs/zerolog"
)

// ErrMissingAPIKey is returned by New when the connection has no API key.
var ErrMissingAPIKey = errors.New("opsgenie: connection has no API key")

// APIError is a non-2xx answer from the alert API
type APIError struct {
	StatusCode int
	Message    string
	RequestID  string
}

func (e *APIError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("opsgenie API error: %d - %s (request %s)", e.StatusCode, e.Message, e.RequestID)
	}
	return fmt.Sprintf("opsgenie API error: %d - %s", e.StatusCode, e.Message)
}

// wireKeys maps payload keys whose name differs on the wire
var wireKeys = map[string]string{
	"visible_to": "visibleTo",
}

// Hook performs alert calls against the Opsgenie REST API for one connection.
// Each call issues exactly one HTTP request.
type Hook struct {
	connID string
	host   string
	apiKey string
	logger zerolog.Logger
	client *http.Client
}

// New creates a hook for a resolved connection
func New(conn config.Connection, logger zerolog.Logger) (*Hook, error) {
	if conn.APIKey == "" {
		return nil, fmt.Errorf("%w (connection %s)", ErrMissingAPIKey, conn.ID)
	}

	host := strings.TrimRight(conn.Host, "/")
	if host == "" {
		host = config.DefaultHost
	}
	timeout := conn.Timeout
	if timeout == 0 {
		timeout = config.DefaultTimeout
	}

	return &Hook{
		connID: conn.ID,
		host:   host,
		apiKey: conn.APIKey,
		logger: logger.With().Str("component", "hook").Str("conn_id", conn.ID).Logger(),
		client: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// CreateAlert creates an alert from payload
func (h *Hook) CreateAlert(ctx context.Context, payload types.Payload) (*types.Response, error) {
	return h.do(ctx, http.MethodPost, "/v2/alerts", nil, toWire(payload))
}

// CloseAlert closes the alert addressed by identifier. An empty
// identifierType lets the API default to "id".
func (h *Hook) CloseAlert(ctx context.Context, identifier, identifierType string, payload types.Payload) (*types.Response, error) {
	query := url.Values{}
	if identifierType != "" {
		query.Set("identifierType", identifierType)
	}
	path := "/v2/alerts/" + url.PathEscape(identifier) + "/close"
	return h.do(ctx, http.MethodPost, path, query, toWire(payload))
}

// DeleteAlert deletes the alert addressed by req
func (h *Hook) DeleteAlert(ctx context.Context, req types.DeleteAlertRequest) (*types.Response, error) {
	query := url.Values{}
	if req.IdentifierType != "" {
		query.Set("identifierType", req.IdentifierType)
	}
	if req.User != "" {
		query.Set("user", req.User)
	}
	if req.Source != "" {
		query.Set("source", req.Source)
	}
	path := "/v2/alerts/" + url.PathEscape(req.Identifier)
	return h.do(ctx, http.MethodDelete, path, query, nil)
}

// do sends one request and decodes the API acknowledgement
func (h *Hook) do(ctx context.Context, method, path string, query url.Values, body map[string]any) (*types.Response, error) {
	endpoint := h.host + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payload: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "GenieKey "+h.apiKey)
	req.Header.Set("User-Agent", version.UserAgent())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(data))}
		var errBody struct {
			Message   string `json:"message"`
			RequestID string `json:"requestId"`
		}
		if json.Unmarshal(data, &errBody) == nil && errBody.Message != "" {
			apiErr.Message = errBody.Message
			apiErr.RequestID = errBody.RequestID
		}
		h.logger.Debug().
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Msg("Alert API request rejected")
		return nil, apiErr
	}

	out := &types.Response{StatusCode: resp.StatusCode}
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return nil, fmt.Errorf("failed to parse response: %w", err)
		}
	}

	h.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Str("request_id", out.RequestID).
		Msg("Alert API request accepted")

	return out, nil
}

// toWire renames payload keys to their API spelling
func toWire(payload types.Payload) map[string]any {
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		if wk, ok := wireKeys[k]; ok {
			k = wk
		}
		out[k] = v
	}
	return out
}
