// Package backend talks to the marketplace REST backend that owns accounts,
// products and purchases.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/campus-marketplace/internal/domain"
	"go.uber.org/zap"
)

const maxBodyBytes = 4 << 20

type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Detail  json.RawMessage `json:"detail"`
}

// call performs one request and decodes the envelope into a Result.
// The returned error is only set for transport or decoding failures and
// always wraps domain.ErrUpstreamUnavailable.
func call[T any](ctx context.Context, c *Client, method, path, token string, query url.Values, body any) (Result[T], error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return Result[T]{}, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return Result[T]{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("backend request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return Result[T]{}, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Result[T]{}, fmt.Errorf("%w: read body: %v", domain.ErrUpstreamUnavailable, err)
	}
	c.logger.Debug("backend request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)
	return decode[T](resp.StatusCode, raw)
}

func decode[T any](status int, raw []byte) (Result[T], error) {
	var env envelope
	if len(bytes.TrimSpace(raw)) > 0 {
		// Anything that is not an envelope object is treated as a bare payload
		// on success and as a detail-less failure otherwise.
		if err := json.Unmarshal(raw, &env); err != nil {
			env = envelope{}
		}
	}

	success := status < http.StatusBadRequest
	if env.Success != nil {
		success = *env.Success && success
	}
	if !success {
		if status < http.StatusBadRequest {
			status = http.StatusUnprocessableEntity
		}
		return Fail[T](&domain.UpstreamError{Status: status, Detail: detailText(env.Detail)}), nil
	}

	var data T
	payload := env.Data
	if env.Success == nil && len(payload) == 0 {
		payload = raw
	}
	if len(payload) > 0 && string(payload) != "null" {
		if err := json.Unmarshal(payload, &data); err != nil {
			return Result[T]{}, fmt.Errorf("%w: decode data: %v", domain.ErrUpstreamUnavailable, err)
		}
	}
	// Callers expecting an object dereference it, so a missing one is an upstream fault.
	if v := reflect.ValueOf(data); v.Kind() == reflect.Pointer && v.IsNil() {
		return Result[T]{}, fmt.Errorf("%w: empty data", domain.ErrUpstreamUnavailable)
	}
	return Ok(data), nil
}

// detailText flattens detail into a displayable string. Most responses send a
// plain string; validation failures may send a list of objects with "msg".
func detailText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	}
	return string(raw)
}

// unwrap turns a (Result, error) pair into the (value, error) callers expect.
func unwrap[T any](res Result[T], err error) (T, error) {
	if err != nil {
		var zero T
		return zero, err
	}
	return res.Unwrap()
}
