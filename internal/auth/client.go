// Package auth is the HTTP gateway to the remote auth service.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"studycal/internal/model"
)

// AuthError is a failed or rejected remote auth call. Message carries the
// server-supplied reason when the response body had one.
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// Client talks to the auth service (<base>/login, <base>/signup).
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the given base URL. timeout bounds every
// call; zero falls back to 15s.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authResponse is the success shape: {user:{id,email,name}, token?}.
type authResponse struct {
	User struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	} `json:"user"`
	Token string `json:"token"`
}

// errorResponse is the non-2xx shape: {message}.
type errorResponse struct {
	Message string `json:"message"`
}

// Login exchanges credentials for an Identity.
func (c *Client) Login(ctx context.Context, email, password string) (model.Identity, error) {
	return c.post(ctx, "/login", loginRequest{Email: email, Password: password})
}

// Signup registers a new account and returns its Identity.
func (c *Client) Signup(ctx context.Context, name, email, password string) (model.Identity, error) {
	return c.post(ctx, "/signup", signupRequest{Name: name, Email: email, Password: password})
}

func (c *Client) post(ctx context.Context, path string, payload any) (model.Identity, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return model.Identity{}, fmt.Errorf("auth: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return model.Identity{}, fmt.Errorf("auth: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.Identity{}, fmt.Errorf("auth: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Prefer the server's message; fall back to the status line.
		msg := resp.Status
		var er errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&er); err == nil && er.Message != "" {
			msg = er.Message
		}
		return model.Identity{}, &AuthError{Status: resp.StatusCode, Message: msg}
	}

	var ar authResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return model.Identity{}, fmt.Errorf("auth: decode response: %w", err)
	}

	return model.Identity{
		ID:    ar.User.ID,
		Email: ar.User.Email,
		Name:  ar.User.Name,
		Token: ar.Token,
	}, nil
}
