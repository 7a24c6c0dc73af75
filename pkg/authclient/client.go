package authclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client calls the auth service's internal API. Downstream services use
// it to validate a "performed by" actor without duplicating the user
// table.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(authServiceURL string) *Client {
	return &Client{
		baseURL: authServiceURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

type ValidationResult struct {
	Valid  bool   `json:"valid"`
	UserID string `json:"userId"`
	Role   string `json:"role,omitempty"`
}

type validateEnvelope struct {
	Success bool              `json:"success"`
	Data    *ValidationResult `json:"data"`
}

// ValidateUser checks that the account exists and is active. The
// caller's bearer token is forwarded; an unreachable auth service
// surfaces as an error, not a silent pass.
func (c *Client) ValidateUser(ctx context.Context, userID, bearerToken string) (*ValidationResult, error) {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		fmt.Sprintf("%s/internal/users/%s/validate", c.baseURL, userID),
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+bearerToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return &ValidationResult{Valid: false, UserID: userID}, nil
	case http.StatusNotFound:
		return &ValidationResult{Valid: false, UserID: userID}, nil
	default:
		return nil, fmt.Errorf("auth service returned status %d", resp.StatusCode)
	}

	var env validateEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if !env.Success || env.Data == nil {
		return &ValidationResult{Valid: false, UserID: userID}, nil
	}
	return env.Data, nil
}
