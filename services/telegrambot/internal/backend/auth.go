package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// APIError carries the backend's machine-readable error code so the bot
// can turn it into a human reply.
type APIError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func (e *APIError) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
}

func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 5 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

func doJSON(ctx context.Context, hc *http.Client, method, url, bearerToken string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+bearerToken)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	if !env.Success {
		if env.Error != nil {
			return env.Error
		}
		return fmt.Errorf("backend returned status %d", resp.StatusCode)
	}
	if out != nil && env.Data != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	return nil
}

// AuthClient drives the auth service on behalf of a chat.
type AuthClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewAuthClient(authURL string) *AuthClient {
	return &AuthClient{baseURL: authURL, httpClient: newHTTPClient()}
}

type RegisterRequest struct {
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	Email       string  `json:"email"`
	Username    *string `json:"username,omitempty"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
	Password    string  `json:"password"`
	Role        string  `json:"role"`
}

type User struct {
	ID         string `json:"id"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	IsVerified bool   `json:"isVerified"`
}

type AuthResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         User   `json:"user"`
	ExpiresIn    int64  `json:"expiresIn"`
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

func (c *AuthClient) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := doJSON(ctx, c.httpClient, http.MethodPost, c.baseURL+"/auth/register", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *AuthClient) Login(ctx context.Context, identifier, password string) (*AuthResponse, error) {
	body := map[string]string{"identifier": identifier, "password": password}
	var out AuthResponse
	if err := doJSON(ctx, c.httpClient, http.MethodPost, c.baseURL+"/auth/login", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *AuthClient) VerifyOTP(ctx context.Context, identifier, otp string) error {
	body := map[string]string{"identifier": identifier, "otp": otp}
	return doJSON(ctx, c.httpClient, http.MethodPost, c.baseURL+"/auth/verify-otp", "", body, nil)
}

func (c *AuthClient) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	body := map[string]string{"refreshToken": refreshToken}
	var out TokenPair
	if err := doJSON(ctx, c.httpClient, http.MethodPost, c.baseURL+"/auth/refresh-token", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *AuthClient) Logout(ctx context.Context, accessToken string) error {
	return doJSON(ctx, c.httpClient, http.MethodPost, c.baseURL+"/auth/logout", accessToken, nil, nil)
}
