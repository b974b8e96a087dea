package cohere

import (
	"context"
	"errors"
)

// ErrInvalidAPIKey is returned by CheckAPIKey when the server rejects the key.
var ErrInvalidAPIKey = errors.New("invalid API key")

type checkAPIKeyResponse struct {
	Valid          bool   `json:"valid"`
	OrganizationID string `json:"organization_id,omitempty"`
	OwnerID        string `json:"owner_id,omitempty"`
}

// CheckAPIKey verifies the client's API key.
func (c *Client) CheckAPIKey(ctx context.Context) error {
	var resp checkAPIKeyResponse
	if err := c.post(ctx, "/check-api-key", nil, &resp); err != nil {
		return err
	}
	if !resp.Valid {
		return ErrInvalidAPIKey
	}
	return nil
}
