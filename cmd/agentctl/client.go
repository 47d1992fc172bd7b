package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"propal/internal/domain"
	"propal/internal/localstore"
)

// apiClient is a thin JSON client for the propal server.
type apiClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func newAPIClient(baseURL, token string) *apiClient {
	return &apiClient{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("server returned %d", e.Status)
}

func (c *apiClient) do(ctx context.Context, method, path string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		var errBody struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		return &apiError{Status: resp.StatusCode, Message: errBody.Error}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *apiClient) Signup(ctx context.Context, username, email, password, phone string) error {
	return c.do(ctx, http.MethodPost, "/api/signup", map[string]string{
		"username": username, "email": email, "password": password, "phone": phone,
	}, nil)
}

func (c *apiClient) Login(ctx context.Context, email, password string) (string, localstore.Profile, error) {
	var resp struct {
		Token string             `json:"token"`
		User  localstore.Profile `json:"user"`
	}
	err := c.do(ctx, http.MethodPost, "/api/login", map[string]string{
		"email": email, "password": password,
	}, &resp)
	return resp.Token, resp.User, err
}

func (c *apiClient) UpdateProfile(ctx context.Context, newEmail, newPassword string) error {
	return c.do(ctx, http.MethodPut, "/api/profile", map[string]string{
		"newEmail": newEmail, "newPassword": newPassword,
	}, nil)
}

func (c *apiClient) FetchCatalog(ctx context.Context) (*domain.Catalog, error) {
	var cat domain.Catalog
	if err := c.do(ctx, http.MethodGet, "/api/stt", nil, &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}
