package mfasdk

import (
	"context"
	"net/http"
	"net/url"
)

// ListFactors returns the enabled factors and whether any of them needs
// user input.
func (c *Client) ListFactors(ctx context.Context) (*FactorsResponse, error) {
	var out FactorsResponse
	if err := c.call(ctx, http.MethodGet, "/v1/factors", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// StartSession opens a verification session for a user whose password
// was already accepted.
func (c *Client) StartSession(ctx context.Context, req StartSessionRequest) (*SessionResponse, error) {
	var out SessionResponse
	if err := c.call(ctx, http.MethodPost, "/v1/sessions", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetSession(ctx context.Context, sessionID string) (*SessionResponse, error) {
	var out SessionResponse
	path := "/v1/sessions/" + url.PathEscape(sessionID)
	if err := c.call(ctx, http.MethodGet, path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// NextFactor returns the factor to present. Calling it may deliver a
// one-time code the first time a code factor comes up.
func (c *Client) NextFactor(ctx context.Context, sessionID string) (*NextFactorResponse, error) {
	var out NextFactorResponse
	path := "/v1/sessions/" + url.PathEscape(sessionID) + "/next"
	if err := c.call(ctx, http.MethodGet, path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Verify submits the user's input for one factor.
func (c *Client) Verify(ctx context.Context, sessionID string, req VerifyRequest) (*VerifyResponse, error) {
	var out VerifyResponse
	path := "/v1/sessions/" + url.PathEscape(sessionID) + "/verify"
	if err := c.call(ctx, http.MethodPost, path, req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Resend issues a fresh code for a code factor, invalidating the old one.
func (c *Client) Resend(ctx context.Context, sessionID, factor string) (*Delivery, error) {
	var out Delivery
	path := "/v1/sessions/" + url.PathEscape(sessionID) + "/factors/" + url.PathEscape(factor) + "/resend"
	if err := c.call(ctx, http.MethodPost, path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
