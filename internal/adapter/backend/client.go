// Package backend holds the REST clients for the external collaborators:
// the role-scoped customer/loan API, the interest calculator and the
// loan-photo endpoint. Responses decode into explicit schema structs;
// malformed bodies surface as RemoteRejection, transport failures as
// ErrNetwork.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"goldloan-origination/internal/domain/downstream"
	"goldloan-origination/internal/domain/session"
)

const authHeader = "x-auth-token"

type Client struct {
	baseURL string
	hc      *http.Client
	log     zerolog.Logger
}

func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		hc:      &http.Client{Timeout: timeout},
		log:     log.With().Str("component", "backend_client").Logger(),
	}
}

// rolePrefix selects the role-scoped sub-API from the session; the
// workflow is identical under either prefix.
func rolePrefix(ctx context.Context) string {
	if s, ok := session.FromContext(ctx); ok && s.Role.Valid() {
		return s.Role.Prefix()
	}
	return session.RoleEmployee.Prefix()
}

// apiError is the backend's failure envelope: field-level errors[] or a
// single message.
type apiError struct {
	Errors []struct {
		Msg string `json:"msg"`
	} `json:"errors"`
	Message string `json:"message"`
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	if s, ok := session.FromContext(req.Context()); ok && s.Token != "" {
		req.Header.Set(authHeader, s.Token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("url", req.URL.String()).Msg("transport failure")
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, downstream.ErrNetwork)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, downstream.ErrNetwork)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeRejection(resp.StatusCode, raw)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &downstream.RemoteRejection{
			Status:   resp.StatusCode,
			Messages: []string{"malformed response body"},
		}
	}
	return nil
}

func decodeRejection(status int, raw []byte) error {
	var ae apiError
	_ = json.Unmarshal(raw, &ae)

	var msgs []string
	for _, e := range ae.Errors {
		if e.Msg != "" {
			msgs = append(msgs, e.Msg)
		}
	}
	if len(msgs) == 0 && ae.Message != "" {
		msgs = append(msgs, ae.Message)
	}
	if len(msgs) == 0 {
		msgs = append(msgs, http.StatusText(status))
	}
	return &downstream.RemoteRejection{Status: status, Messages: msgs}
}
