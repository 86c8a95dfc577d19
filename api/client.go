// Package api implements the client for the remote session service.
//
// Every operation resolves to one of three outcomes: a server-confirmed
// result, a server rejection (4xx), or an unreachable server. The session
// controller's fail-open/fail-closed policy depends on which outcome
// occurred, so the distinction is carried in the returned *Error.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

const defaultTimeout = 15 * time.Second

// Client talks to the remote session service. It is stateless: credentials
// are passed per call, never cached here.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// New creates a Client for the service at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope is the top-level response wrapper used by every endpoint.
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// NeighborhoodConfig fetches the community branding and contact configuration.
func (c *Client) NeighborhoodConfig(ctx context.Context, code string) (*Neighborhood, error) {
	const op = "neighborhood config"
	var n Neighborhood
	path := "/neighborhood/config/" + url.PathEscape(code)
	if err := c.get(ctx, op, path, "", &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// ValidateAccountNumber checks whether an account number exists in the
// neighborhood and is still available for binding to a device.
func (c *Client) ValidateAccountNumber(ctx context.Context, code, accountNumber string) (*AccountCheck, error) {
	const op = "account validation"
	var res AccountCheck
	path := "/neighborhood-account-number/check-availability/" + url.PathEscape(code) +
		"?numberId=" + url.QueryEscape(accountNumber)
	if err := c.get(ctx, op, path, "", &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Register completes the registration flow and returns the issued credentials.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*Registration, error) {
	const op = "registration"
	var reg Registration
	if err := c.post(ctx, op, "/neighborhood-register", "", req, &reg); err != nil {
		return nil, err
	}
	if reg.AccessToken == "" || reg.RefreshToken == "" {
		return nil, &Error{Op: op, Kind: KindServer, Message: "response missing credentials"}
	}
	return &reg, nil
}

// licenseData is the raw license record returned by the server.
type licenseData struct {
	Code          string `json:"code"`
	Status        string `json:"status"`
	AccountNumber string `json:"accountNumber"`
}

// CheckLicense looks up the license record and normalizes every possible
// outcome, transport failures included, into a LicenseResult. It never
// returns an error: the caller branches on the status, and punishing a user
// for a failed read is a policy decision that does not belong here.
func (c *Client) CheckLicense(ctx context.Context, licenseCode, accessToken string) LicenseResult {
	const op = "license check"
	var data licenseData
	path := "/neighborhood-license/code/" + url.PathEscape(licenseCode)
	err := c.get(ctx, op, path, accessToken, &data)
	if err != nil {
		return licenseResultFromError(err)
	}
	return normalizeLicenseStatus(data.Status)
}

// SendPanicEvent delivers a panic activation. The body carries both the
// structured event and the legacy wire frame consumed by the receiving
// equipment.
func (c *Client) SendPanicEvent(ctx context.Context, accessToken, accountNumber string, ev PanicEvent) error {
	const op = "panic event"
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	body := struct {
		PanicEvent
		Frame    string `json:"trama"`
		Protocol string `json:"protocolo"`
	}{
		PanicEvent: ev,
		Frame:      Frame(accountNumber),
		Protocol:   "BSAS",
	}
	return c.post(ctx, op, "/neighborhood-event", accessToken, body, nil)
}

func (c *Client) get(ctx context.Context, op, path, token string, out any) error {
	return c.do(ctx, op, http.MethodGet, path, token, nil, out)
}

func (c *Client) post(ctx context.Context, op, path, token string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return &Error{Op: op, Kind: KindServer, Err: err}
	}
	return c.do(ctx, op, http.MethodPost, path, token, body, out)
}

func (c *Client) do(ctx context.Context, op, method, path, token string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &Error{Op: op, Kind: KindUnreachable, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Op: op, Kind: KindUnreachable, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &Error{Op: op, Kind: KindServer, StatusCode: resp.StatusCode, Err: err}
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	switch {
	case resp.StatusCode >= 500:
		return &Error{Op: op, Kind: KindServer, StatusCode: resp.StatusCode, Message: env.Message}
	case resp.StatusCode >= 400:
		return &Error{Op: op, Kind: KindRejected, StatusCode: resp.StatusCode, Message: env.Message}
	}

	if decodeErr != nil {
		return &Error{Op: op, Kind: KindServer, StatusCode: resp.StatusCode, Err: decodeErr}
	}
	if env.Status != "success" {
		return &Error{
			Op:         op,
			Kind:       KindServer,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("unexpected status %q: %s", env.Status, env.Message),
		}
	}
	if out != nil {
		if env.Data == nil {
			return &Error{Op: op, Kind: KindServer, StatusCode: resp.StatusCode, Message: "response missing data"}
		}
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &Error{Op: op, Kind: KindServer, StatusCode: resp.StatusCode, Err: err}
		}
	}
	return nil
}
