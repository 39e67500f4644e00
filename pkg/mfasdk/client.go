package mfasdk

import (
	"net/http"
	"strings"
	"time"
)

// Client talks to the MFA service on behalf of a backend (the portal). All
// /v1 calls carry the shared service token.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// NewClient creates a client with a 10 second timeout.
func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		Token:   token,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}
