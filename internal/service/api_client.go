package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RemoteError is returned for every non-2xx answer of the lunches API.
type RemoteError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d, body: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

type APIClientOptions struct {
	BaseURL     string
	Company     string
	AccessToken string
	// APISecret signs a short-lived service token when AccessToken is empty.
	APISecret string
	Timeout   time.Duration
}

// APIClient talks to one instance of the lunches API.
type APIClient struct {
	baseURL     string
	company     string
	accessToken string
	apiSecret   []byte
	client      *http.Client
}

func NewAPIClient(opts APIClientOptions) *APIClient {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &APIClient{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		company:     opts.Company,
		accessToken: opts.AccessToken,
		apiSecret:   []byte(opts.APISecret),
		client:      &http.Client{Timeout: timeout},
	}
}

func (c *APIClient) Company() string {
	return c.company
}

func (c *APIClient) Menus() *MenusService {
	return &MenusService{api: c}
}

func (c *APIClient) Users() *UsersService {
	return &UsersService{api: c}
}

func (c *APIClient) Orders() *OrdersService {
	return &OrdersService{api: c}
}

func (c *APIClient) token() (string, error) {
	if c.accessToken != "" || len(c.apiSecret) == 0 {
		return c.accessToken, nil
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":     "lunchsync",
		"company": c.company,
		"iat":     jwt.NewNumericDate(now),
		"exp":     jwt.NewNumericDate(now.Add(5 * time.Minute)),
	})
	signed, err := token.SignedString(c.apiSecret)
	if err != nil {
		return "", fmt.Errorf("sign service token: %w", err)
	}
	return signed, nil
}

// do sends the request and decodes a 2xx JSON answer into out when out is
// not nil.
func (c *APIClient) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	token, err := c.token()
	if err != nil {
		return err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &RemoteError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: string(b)}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
