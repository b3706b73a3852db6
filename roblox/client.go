// Package roblox is a typed client for the Roblox users and thumbnails
// APIs, covering the lookups the moderation workflow needs.
package roblox

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const (
	DefaultUserAPI      = "https://users.roblox.com/v1"
	DefaultThumbnailAPI = "https://thumbnails.roblox.com/v1"
)

var (
	// ErrUserNotFound means the queried user does not exist.
	ErrUserNotFound = errors.New("roblox: user not found")
	// ErrUserInvalid means the query cannot be a Roblox username.
	ErrUserInvalid = errors.New("roblox: invalid username")
	// ErrUserTooShort means the query is under the minimum username length.
	ErrUserTooShort = errors.New("roblox: query too short")
	// ErrRateLimited means the API asked us to back off.
	ErrRateLimited = errors.New("roblox: rate limited")
	// ErrUnavailable covers transport failures and server-side errors.
	ErrUnavailable = errors.New("roblox: service unavailable")
)

// Client talks to the Roblox web APIs.
type Client struct {
	userAPI      string
	thumbnailAPI string
	httpClient   *http.Client
}

// NewClient creates a Client for the given API base URLs. Empty bases fall
// back to the production endpoints.
func NewClient(userAPI, thumbnailAPI string) *Client {
	if userAPI == "" {
		userAPI = DefaultUserAPI
	}
	if thumbnailAPI == "" {
		thumbnailAPI = DefaultThumbnailAPI
	}
	return &Client{
		userAPI:      userAPI,
		thumbnailAPI: thumbnailAPI,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// apiError is the error envelope Roblox APIs return on non-2xx responses.
type apiError struct {
	Errors []struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

func (c *Client) do(req *http.Request, result any) error {
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("%w: decode: %v", ErrUnavailable, err)
		}
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return ErrUserNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case resp.StatusCode == http.StatusBadRequest:
		var body apiError
		_ = json.NewDecoder(resp.Body).Decode(&body)
		if len(body.Errors) > 0 {
			return fmt.Errorf("%w: %s", ErrUserInvalid, body.Errors[0].Message)
		}
		return ErrUserInvalid
	default:
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
}

func (c *Client) get(ctx context.Context, url string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("roblox: build request: %w", err)
	}
	return c.do(req, result)
}

func (c *Client) post(ctx context.Context, url string, payload, result any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("roblox: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("roblox: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, result)
}
