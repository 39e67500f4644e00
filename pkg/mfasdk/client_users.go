package mfasdk

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

func userPath(userID string, parts ...string) string {
	p := "/v1/users/" + url.PathEscape(userID) + "/factors"
	for _, part := range parts {
		p += "/" + url.PathEscape(part)
	}
	return p
}

// ListUserFactors returns the user's enrollments with destinations masked.
func (c *Client) ListUserFactors(ctx context.Context, userID string) (*UserFactorsResponse, error) {
	var out UserFactorsResponse
	if err := c.call(ctx, http.MethodGet, userPath(userID), nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RevokeFactor(ctx context.Context, userID, factor string) error {
	return c.call(ctx, http.MethodDelete, userPath(userID, factor), nil, nil, http.StatusNoContent)
}

// UnlockFactor clears a lock left by too many failed attempts.
func (c *Client) UnlockFactor(ctx context.Context, userID, factor string) error {
	return c.call(ctx, http.MethodPost, userPath(userID, factor, "unlock"), nil, nil, http.StatusNoContent)
}

// BeginTOTP creates a pending authenticator enrollment. Show the otpauth URL
// as a QR code, then call ConfirmTOTP with the first code.
func (c *Client) BeginTOTP(ctx context.Context, userID string, req TOTPBeginRequest) (*TOTPEnrollResponse, error) {
	var out TOTPEnrollResponse
	if err := c.call(ctx, http.MethodPost, userPath(userID, "totp"), req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ConfirmTOTP(ctx context.Context, userID string, req TOTPConfirmRequest) error {
	return c.call(ctx, http.MethodPost, userPath(userID, "totp", "confirm"), req, nil, http.StatusNoContent)
}

// SetPhone binds a phone number to the sms factor.
func (c *Client) SetPhone(ctx context.Context, userID string, req DestinationRequest) (*UserFactor, error) {
	return c.setDestination(ctx, userID, "sms", req)
}

// SetEmail binds an address to the email factor.
func (c *Client) SetEmail(ctx context.Context, userID string, req DestinationRequest) (*UserFactor, error) {
	return c.setDestination(ctx, userID, "email", req)
}

func (c *Client) setDestination(ctx context.Context, userID, factor string, req DestinationRequest) (*UserFactor, error) {
	var out UserFactor
	if err := c.call(ctx, http.MethodPut, userPath(userID, factor), req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// RegenerateBackupCodes replaces every backup code of the user. The codes
// are only ever returned here.
func (c *Client) RegenerateBackupCodes(ctx context.Context, userID string) (*BackupCodesResponse, error) {
	var out BackupCodesResponse
	if err := c.call(ctx, http.MethodPost, userPath(userID, "backupcodes"), nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListAudit returns one page of the user's audit log. before and limit are
// optional.
func (c *Client) ListAudit(ctx context.Context, userID, before string, limit int) (*AuditResponse, error) {
	q := url.Values{}
	if before != "" {
		q.Set("before", before)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := "/v1/users/" + url.PathEscape(userID) + "/audit"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out AuditResponse
	if err := c.call(ctx, http.MethodGet, path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
